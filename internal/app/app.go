// Package app hosts the yahrzeit feed without a UI: it owns the settings,
// the sync worker and the HTTP server, and exposes the last synced records
// to the CLI.
package app

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/engine"
	"github.com/tartampluch/go-yahrzeit/internal/locale"
	"github.com/tartampluch/go-yahrzeit/internal/server"
	"github.com/tartampluch/go-yahrzeit/internal/today"
	"github.com/tartampluch/go-yahrzeit/internal/yahrzeit"
	"github.com/tartampluch/go-yahrzeit/internal/zmanim"
)

// PasswordFunc returns the secret stored for user under service.
type PasswordFunc func(service, user string) (string, error)

// App wires the feed generator to the server and keeps the last sync result.
type App struct {
	Settings   *config.Settings
	Server     *server.CalendarServer
	Fetcher    engine.VCardFetcher
	Clock      engine.Clock // Injected clock for testability
	Translator *locale.Translator
	Password   PasswordFunc

	location *time.Location
	policy   yahrzeit.AdarPolicy

	mu      sync.RWMutex
	entries []engine.YahrzeitEntry
	status  string

	syncChan chan struct{}
}

// New builds an App from validated settings. The server reads the clock
// through the App, so replacing Clock afterwards affects both.
func New(s *config.Settings) (*App, error) {
	loc, err := s.Location()
	if err != nil {
		return nil, err
	}
	lc, err := s.LocationContext()
	if err != nil {
		return nil, err
	}
	policy, err := s.Policy()
	if err != nil {
		return nil, err
	}

	a := &App{
		Settings:   s,
		Fetcher:    engine.NewHTTPFetcher(),
		Clock:      engine.RealClock{},
		Translator: locale.New(s.Language),
		Password:   keyring.Get,
		location:   loc,
		policy:     policy,
		syncChan:   make(chan struct{}, config.ChannelBufferSize),
	}

	srv := server.NewCalendarServer(s.Server.Port)
	srv.Location = loc
	srv.Zmanim = lc
	srv.Sunset = zmanim.MeeusSunset{}
	srv.Now = func() time.Time { return a.Clock.Now() }
	a.Server = srv

	return a, nil
}

// Run serves the feed and keeps it fresh until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.backgroundWorker(ctx)
	}()

	err := a.Server.Start(ctx)
	if err != nil {
		slog.Error(config.ErrServerStartup,
			config.LogKeyError, err,
			config.LogKeyComponent, config.CompApp)
	}

	cancel()
	<-done

	if err == nil {
		slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompApp)
	}
	return err
}

// RequestSync asks the worker for an immediate sync. It never blocks; a
// request already pending absorbs this one.
func (a *App) RequestSync() {
	select {
	case a.syncChan <- struct{}{}:
	default:
	}
}

// Sync runs one synchronization and publishes the result.
func (a *App) Sync(ctx context.Context) error {
	return a.performSync(ctx, false)
}

// backgroundWorker manages the periodic synchronization schedule.
func (a *App) backgroundWorker(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = a.performSync(ctx, false)

	// A nil channel never fires, so a zero interval leaves only manual syncs.
	var tick <-chan time.Time
	interval := a.Settings.RefreshInterval()
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-a.syncChan:
			_ = a.performSync(ctx, true)

		case <-tick:
			_ = a.performSync(ctx, false)
		}
	}
}

// performSync executes the pipeline (fetch, parse, generate) and swaps the
// served feed. On failure the previous feed and entries stay in place.
func (a *App) performSync(ctx context.Context, manual bool) error {
	slog.Info(config.MsgSyncReq,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyManual, manual)

	gen := &engine.Generator{
		Clock:             a.Clock,
		Fetcher:           a.Fetcher,
		FormatSummary:     a.Translator.Summary,
		FormatDescription: a.Translator.Description,
	}

	icsData, entries, countToday, err := gen.RunSync(ctx, a.loadSyncConfig())
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error(config.MsgSyncFailed, config.LogKeyError, err, config.LogKeyComponent, config.CompApp)
		}
		a.setStatus(config.FallbackSyncError)
		return err
	}

	a.mu.Lock()
	a.entries = entries
	a.mu.Unlock()

	a.Server.Update(icsData)
	a.setStatus(a.Translator.TodayStatus(countToday))
	return nil
}

func (a *App) setStatus(status string) {
	a.mu.Lock()
	a.status = status
	a.mu.Unlock()

	slog.Debug(config.MsgStatusUpdated,
		config.LogKeyComponent, config.CompApp,
		config.LogKeyState, status)
}

// loadSyncConfig assembles the engine configuration from settings and the keyring.
func (a *App) loadSyncConfig() engine.SyncConfig {
	s := a.Settings
	cfg := engine.SyncConfig{
		Mode:            s.Source.Mode,
		LocalPath:       s.Source.LocalPath,
		WebURL:          s.Source.WebURL,
		WebUser:         s.Source.WebUser,
		ReminderTrigger: s.ReminderTrigger(),
		Location:        a.location,
		DefaultPolicy:   a.policy,
	}

	if cfg.WebUser != "" && a.Password != nil {
		if p, err := a.Password(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompApp)
		}
	}

	return cfg
}

// Status is the localized count of today's yahrzeits, or an error label
// after a failed sync. It is empty before the first sync.
func (a *App) Status() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Entries returns the last synced entries, sorted by next observance.
func (a *App) Entries() []engine.YahrzeitEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.entries)
}

// Records returns the records behind Entries.
func (a *App) Records() []yahrzeit.Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]yahrzeit.Record, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Record)
	}
	return out
}

// Policy is the system default Adar policy.
func (a *App) Policy() yahrzeit.AdarPolicy { return a.policy }

// Today is the civil date in the site timezone.
func (a *App) Today() calendar.GregorianDate {
	return calendar.FromTime(a.Clock.Now().In(a.location))
}

// ThisMonth lists the observances falling in the current Hebrew month.
func (a *App) ThisMonth() (today.Context, []yahrzeit.Observance, error) {
	c, err := today.Current(a.Today())
	if err != nil {
		return today.Context{}, nil, err
	}
	obs, err := today.InMonth(a.Records(), c, a.policy)
	return c, obs, err
}

// Upcoming lists the observances from today through the next days-1 days.
func (a *App) Upcoming(days int) ([]yahrzeit.Observance, error) {
	return yahrzeit.Upcoming(a.Records(), a.Today(), days, a.policy)
}
