package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/tartampluch/go-yahrzeit/internal/app"
	"github.com/tartampluch/go-yahrzeit/internal/config"
)

// sourceConfigured reports whether the settings point at an address book.
func (c *cli) sourceConfigured() bool {
	switch c.settings.Source.Mode {
	case config.SourceModeLocal:
		return c.settings.Source.LocalPath != ""
	case config.SourceModeWeb:
		return c.settings.Source.WebURL != ""
	}
	return false
}

// clock adapts cli.now to engine.Clock.
type clock func() time.Time

func (f clock) Now() time.Time { return f() }

// syncedApp reads the address book once through the headless host.
func (c *cli) syncedApp(cmd *cobra.Command) (*app.App, error) {
	if !c.sourceConfigured() {
		return nil, errors.New(config.ErrNoSource)
	}
	a, err := app.New(c.settings)
	if err != nil {
		return nil, err
	}
	if c.now != nil {
		a.Clock = clock(c.now)
	}
	if err := a.Sync(cmd.Context()); err != nil {
		return nil, err
	}
	return a, nil
}
