package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/yahrzeit"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the engine.VCardFetcher interface using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

// sixCheshvan5787 is 2026-10-17, 10:00 UTC.
var sixCheshvan5787 = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

// Rachel's yahrzeit is today, Leah's in two weeks, Sarah's next month.
const threeCards = "BEGIN:VCARD\nVERSION:4.0\nFN:Rachel\nDEATHDATE:20191104\nEND:VCARD\n" +
	"BEGIN:VCARD\nVERSION:4.0\nFN:Leah\nDEATHDATE:20201107\nEND:VCARD\n" +
	"BEGIN:VCARD\nVERSION:4.0\nFN:Sarah\nDEATHDATE:20211114\nEND:VCARD\n"

func testSettings(t *testing.T, vcf string) *config.Settings {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.vcf")
	require.NoError(t, os.WriteFile(path, []byte(vcf), 0o600))

	s := &config.Settings{
		SiteTimezone:         "UTC",
		CalendarLocation:     "diaspora",
		TorahReadingCycle:    "annual",
		CandleLightingOffset: 18,
		HavdalahOffset:       42,
		Latitude:             31.7683,
		Longitude:            35.2137,
		Language:             "en",
		LogFormat:            "json",
	}
	s.Server.Port = "18096"
	s.Source.Mode = config.SourceModeLocal
	s.Source.LocalPath = path
	s.Reminder.Unit = config.UnitDays
	s.Reminder.Direction = config.DirBefore
	require.NoError(t, s.Validate())
	return s
}

// setupTestApp builds an App on a local vCard file with a pinned clock.
func setupTestApp(t *testing.T, vcf string) *App {
	t.Helper()
	a, err := New(testSettings(t, vcf))
	require.NoError(t, err)
	a.Clock = MockClock{CurrentTime: sixCheshvan5787}
	return a
}

func getFeed(t *testing.T, a *App) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.Server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, config.RouteFeed, nil))
	return rec
}

// -----------------------------------------------------------------------------
// Construction
// -----------------------------------------------------------------------------

func TestNew_WiresServer(t *testing.T) {
	a := setupTestApp(t, threeCards)

	assert.Equal(t, "18096", a.Server.Port)
	assert.NotNil(t, a.Server.Sunset, "Production app should carry a sunset provider")
	assert.Equal(t, 42, a.Server.Zmanim.HavdalahOffset)
	assert.Equal(t, sixCheshvan5787, a.Server.Now(), "Server must read the injected clock")
	assert.Equal(t, "en", a.Translator.Lang())
	assert.Empty(t, a.Status(), "No status before the first sync")
}

func TestNew_RejectsBadSettings(t *testing.T) {
	s := testSettings(t, threeCards)
	s.SiteTimezone = "Mars/Olympus_Mons"
	_, err := New(s)
	assert.Error(t, err)

	s = testSettings(t, threeCards)
	s.AdarPolicy = "adar3"
	_, err = New(s)
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------
// Configuration Mapping
// -----------------------------------------------------------------------------

func TestConfiguration_Mapping(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(config.KeyringService, "admin", "s3cret"))

	s := testSettings(t, threeCards)
	s.Source.Mode = config.SourceModeWeb
	s.Source.WebURL = "https://secure.example.com"
	s.Source.WebUser = "admin"
	s.Reminder.Value = 2
	s.AdarPolicy = "adar2"
	s.SiteTimezone = "Asia/Jerusalem"

	a, err := New(s)
	if err != nil {
		t.Skipf("timezone database unavailable: %v", err)
	}

	cfg := a.loadSyncConfig()

	assert.Equal(t, config.SourceModeWeb, cfg.Mode)
	assert.Equal(t, "https://secure.example.com", cfg.WebURL)
	assert.Equal(t, "admin", cfg.WebUser)
	assert.Equal(t, "s3cret", cfg.WebPass, "Password comes from the keyring")
	assert.Equal(t, "-P2D", cfg.ReminderTrigger)
	assert.Equal(t, yahrzeit.ObserveInAdarII, cfg.DefaultPolicy)
	require.NotNil(t, cfg.Location)
	assert.Equal(t, "Asia/Jerusalem", cfg.Location.String())
}

func TestConfiguration_MissingPassword(t *testing.T) {
	keyring.MockInit()

	s := testSettings(t, threeCards)
	s.Source.WebUser = "nobody"
	a, err := New(s)
	require.NoError(t, err)

	cfg := a.loadSyncConfig()
	assert.Empty(t, cfg.WebPass, "A missing secret is not fatal")
	assert.Empty(t, cfg.ReminderTrigger, "Reminder value 0 disables the alarm")
}

func TestConfiguration_PasswordLookupIsInjectable(t *testing.T) {
	s := testSettings(t, threeCards)
	s.Source.WebUser = "admin"
	a, err := New(s)
	require.NoError(t, err)

	var gotService, gotUser string
	a.Password = func(service, user string) (string, error) {
		gotService, gotUser = service, user
		return "pw", nil
	}

	assert.Equal(t, "pw", a.loadSyncConfig().WebPass)
	assert.Equal(t, config.KeyringService, gotService)
	assert.Equal(t, "admin", gotUser)
}

// -----------------------------------------------------------------------------
// Sync Logic Integration Tests
// -----------------------------------------------------------------------------

func TestPerformSync_Success(t *testing.T) {
	a := setupTestApp(t, threeCards)

	require.NoError(t, a.Sync(context.Background()))

	assert.Equal(t, "1 yahrzeit today", a.Status())

	entries := a.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Rachel", entries[0].Name, "Sorted by next observance")
	assert.Equal(t, "Leah", entries[1].Name)
	assert.Equal(t, "Sarah", entries[2].Name)

	rec := getFeed(t, a)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "SUMMARY:Yahrzeit of Rachel (7 years)")
	assert.Contains(t, rec.Body.String(), "DESCRIPTION:6 Cheshvan 5787. Date of death: 2019-11-04.")
}

func TestPerformSync_Web(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(config.KeyringService, "admin", "pw"))

	s := testSettings(t, "")
	s.Source.Mode = config.SourceModeWeb
	s.Source.WebURL = "http://test.local"
	s.Source.WebUser = "admin"
	a, err := New(s)
	require.NoError(t, err)
	a.Clock = MockClock{CurrentTime: sixCheshvan5787}

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, "http://test.local", "admin", "pw").
		Return(io.NopCloser(bytes.NewBufferString(threeCards)), nil)
	a.Fetcher = fetcher

	require.NoError(t, a.Sync(context.Background()))
	fetcher.AssertExpectations(t)
	assert.Len(t, a.Entries(), 3)
}

func TestPerformSync_Failure(t *testing.T) {
	s := testSettings(t, "")
	s.Source.Mode = config.SourceModeWeb
	s.Source.WebURL = "http://test.local"
	a, err := New(s)
	require.NoError(t, err)

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))
	a.Fetcher = fetcher

	assert.Error(t, a.Sync(context.Background()))
	fetcher.AssertExpectations(t)
	assert.Equal(t, config.FallbackSyncError, a.Status())
	assert.Equal(t, http.StatusServiceUnavailable, getFeed(t, a).Code, "No feed was ever published")
}

func TestPerformSync_FailureKeepsPreviousFeed(t *testing.T) {
	a := setupTestApp(t, threeCards)
	require.NoError(t, a.Sync(context.Background()))

	a.Settings.Source.LocalPath = filepath.Join(t.TempDir(), "missing.vcf")
	require.Error(t, a.Sync(context.Background()))

	assert.Len(t, a.Entries(), 3, "Entries survive a failed sync")
	assert.Equal(t, http.StatusOK, getFeed(t, a).Code, "The last good feed is still served")
	assert.Equal(t, config.FallbackSyncError, a.Status())
}

func TestPerformSync_HebrewLocale(t *testing.T) {
	s := testSettings(t, threeCards)
	s.Language = "he"
	a, err := New(s)
	require.NoError(t, err)
	a.Clock = MockClock{CurrentTime: sixCheshvan5787}

	require.NoError(t, a.Sync(context.Background()))
	assert.Contains(t, getFeed(t, a).Body.String(), "יארצייט של Rachel")
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

func TestThisMonth(t *testing.T) {
	a := setupTestApp(t, threeCards)
	require.NoError(t, a.Sync(context.Background()))

	c, obs, err := a.ThisMonth()
	require.NoError(t, err)

	assert.Equal(t, calendar.HebrewDate{Year: 5787, Month: calendar.Cheshvan, Day: 6}, c.HebrewDate)
	require.Len(t, obs, 2, "Sarah's yahrzeit falls in Kislev")
	assert.Equal(t, "Rachel", obs[0].Record.Name)
	assert.Equal(t, calendar.Date(2026, time.October, 17), obs[0].Date)
	assert.Equal(t, "Leah", obs[1].Record.Name)
	assert.Equal(t, calendar.Date(2026, time.October, 31), obs[1].Date)
	assert.Equal(t, 6, obs[1].Years)
}

func TestUpcoming(t *testing.T) {
	a := setupTestApp(t, threeCards)
	require.NoError(t, a.Sync(context.Background()))

	obs, err := a.Upcoming(30)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	obs, err = a.Upcoming(40)
	require.NoError(t, err)
	require.Len(t, obs, 3)
	assert.Equal(t, "Sarah", obs[2].Record.Name)
	assert.Equal(t, calendar.Date(2026, time.November, 20), obs[2].Date)
	assert.Equal(t, 5, obs[2].Years)

	_, err = a.Upcoming(0)
	assert.Error(t, err)
}

func TestToday_UsesSiteTimezone(t *testing.T) {
	s := testSettings(t, threeCards)
	a, err := New(s)
	require.NoError(t, err)

	// 22:30 UTC on the 16th is already the 17th three hours east.
	a.Clock = MockClock{CurrentTime: time.Date(2026, 10, 16, 22, 30, 0, 0, time.UTC)}
	assert.Equal(t, calendar.Date(2026, time.October, 16), a.Today())

	a.location = time.FixedZone("IDT", 3*60*60)
	assert.Equal(t, calendar.Date(2026, time.October, 17), a.Today())
}

// -----------------------------------------------------------------------------
// Worker Lifecycle
// -----------------------------------------------------------------------------

func TestWorker_ManualSyncAndStop(t *testing.T) {
	a := setupTestApp(t, strings.SplitAfter(threeCards, "END:VCARD\n")[0])

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.backgroundWorker(ctx)
	}()

	require.Eventually(t, func() bool { return len(a.Entries()) == 1 },
		2*time.Second, 10*time.Millisecond, "Worker syncs once at start")

	require.NoError(t, os.WriteFile(a.Settings.Source.LocalPath, []byte(threeCards), 0o600))
	a.RequestSync()

	require.Eventually(t, func() bool { return len(a.Entries()) == 3 },
		2*time.Second, 10*time.Millisecond, "RequestSync triggers an immediate sync")

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}
}

func TestRequestSync_NeverBlocks(t *testing.T) {
	a := setupTestApp(t, threeCards)
	for range config.ChannelBufferSize + 3 {
		a.RequestSync()
	}
	assert.Len(t, a.syncChan, config.ChannelBufferSize)
}

func TestRun_Lifecycle(t *testing.T) {
	a := setupTestApp(t, threeCards)
	a.Server.Port = "18097"

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	url := "http://127.0.0.1:18097" + config.RouteFeed
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond, "Feed is served after the first sync")

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_ReportsStartupError(t *testing.T) {
	a := setupTestApp(t, threeCards)
	a.Server.Port = ""

	err := a.Run(context.Background())
	assert.Error(t, err)
}
