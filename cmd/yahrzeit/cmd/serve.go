package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/app"
	"github.com/tartampluch/go-yahrzeit/internal/config"
)

const serveName = "serve"

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   serveName,
		Short: "Serve the yahrzeit iCalendar feed and keep it in sync",
		Long: `Serve the yahrzeit feed on 127.0.0.1:SERVER_PORT and resync the address
book every REFRESH_INTERVAL_MIN minutes. SIGHUP forces a resync; SIGINT or
SIGTERM stops the server gracefully.

Routes: /yahrzeits.ics, /today, /times?date=YYYY-MM-DD, /times/YYYY-MM-DD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logStartupInfo()

			a, err := app.New(c.settings)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go watchHangup(ctx, a)

			return a.Run(ctx)
		},
	}
}

// watchHangup turns SIGHUP into a sync request until ctx ends.
func watchHangup(ctx context.Context, a *app.App) {
	hup := make(chan os.Signal, config.ChannelBufferSize)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			slog.Info(config.MsgResyncSignal, config.LogKeyComponent, config.CompCLI)
			a.RequestSync()
		}
	}
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}
