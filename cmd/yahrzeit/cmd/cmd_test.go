package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/yahrzeit"
	"github.com/tartampluch/go-yahrzeit/internal/zmanim"
)

// -----------------------------------------------------------------------------
// Mocks & Helpers
// -----------------------------------------------------------------------------

// MockSunset stands in for the astronomical provider.
type MockSunset struct {
	mock.Mock
}

func (m *MockSunset) Sunset(date calendar.GregorianDate, latitude, longitude float64) (time.Time, error) {
	args := m.Called(date, latitude, longitude)
	return args.Get(0).(time.Time), args.Error(1)
}

// sixCheshvan5787 is 2026-10-17, 10:00 UTC.
var sixCheshvan5787 = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

const threeCards = "BEGIN:VCARD\nVERSION:4.0\nFN:Rachel\nDEATHDATE:20191104\nEND:VCARD\n" +
	"BEGIN:VCARD\nVERSION:4.0\nFN:Leah\nDEATHDATE:20201107\nEND:VCARD\n" +
	"BEGIN:VCARD\nVERSION:4.0\nFN:Sarah\nDEATHDATE:20211114\nEND:VCARD\n"

// settingsEnv lists every variable Settings reads.
var settingsEnv = []string{
	"SITE_TIMEZONE", "JEWISH_CALENDAR_LOCATION", "TORAH_READING_CYCLE",
	"SHABBAT_CANDLE_LIGHTING_OFFSET", "HAVDALAH_OFFSET", "LATITUDE", "LONGITUDE",
	"ADAR_POLICY", "APP_LANGUAGE", "LOG_FORMAT", "SERVER_PORT", "SOURCE_MODE",
	"LOCAL_PATH", "WEB_URL", "WEB_USER", "REFRESH_INTERVAL_MIN",
	"REMINDER_VALUE", "REMINDER_UNIT", "REMINDER_DIRECTION",
}

// cleanEnv unsets every settings variable for the duration of the test, so
// defaults apply.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range settingsEnv {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

// run executes the command tree with args and returns stdout.
func run(t *testing.T, c *cli, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(c)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	c.close()
	return out.String(), err
}

// lines splits output into whitespace-separated fields per line.
func lines(out string) [][]string {
	var rows [][]string
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		rows = append(rows, strings.Fields(l))
	}
	return rows
}

func pinned() *cli {
	return &cli{now: func() time.Time { return sixCheshvan5787 }}
}

func writeBook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.vcf")
	require.NoError(t, os.WriteFile(path, []byte(threeCards), 0o600))
	return path
}

// -----------------------------------------------------------------------------
// Settings
// -----------------------------------------------------------------------------

func TestInvalidSettingsFailCommands(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SITE_TIMEZONE", "Nowhere/City")

	_, err := run(t, pinned(), "convert", "2026-10-17")
	assert.Error(t, err)
}

func TestVersion_NeedsNoSettings(t *testing.T) {
	cleanEnv(t)
	t.Setenv("SITE_TIMEZONE", "Nowhere/City")

	out, err := run(t, &cli{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, config.AppName)
	assert.Contains(t, out, config.Version)
}

func TestConfigFlag(t *testing.T) {
	cleanEnv(t)
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte("language: he\n"), 0o600))

	out, err := run(t, pinned(), "--config", path, "convert", "2026-10-17")
	require.NoError(t, err)
	assert.Contains(t, out, "5787")
	assert.NotContains(t, out, "Cheshvan", "Month name comes from the Hebrew catalog")
}

// -----------------------------------------------------------------------------
// Conversions
// -----------------------------------------------------------------------------

func TestConvert(t *testing.T) {
	cleanEnv(t)

	out, err := run(t, pinned(), "convert", "2026-10-17")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17\t6 Cheshvan 5787\n", out)

	out, err = run(t, pinned(), "convert")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17\t6 Cheshvan 5787\n", out, "Defaults to today")

	_, err = run(t, pinned(), "convert", "2026-02-30")
	assert.Error(t, err)

	_, err = run(t, pinned(), "convert", "2026-10-17", "extra")
	assert.Error(t, err)
}

func TestHebrew(t *testing.T) {
	cleanEnv(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"5787", "cheshvan", "30"}, "30 Cheshvan 5787\t2026-11-10\n"},
		{[]string{"5787", "adar", "10"}, "10 Adar I 5787\t2027-02-17\n"},
		{[]string{"5787", "adar ii", "10"}, "10 Adar II 5787\t2027-03-19\n"},
		{[]string{"5787", "13", "10"}, "10 Adar II 5787\t2027-03-19\n"},
		{[]string{"5785", "adar", "10"}, "10 Adar 5785\t2025-03-10\n"},
		{[]string{"5786", "nisan", "15"}, "15 Nisan 5786\t2026-04-02\n"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, pinned(), append([]string{"hebrew"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestHebrew_Errors(t *testing.T) {
	cleanEnv(t)

	for _, args := range [][]string{
		{"five", "cheshvan", "1"},
		{"5787", "brumaire", "1"},
		{"5787", "cheshvan", "first"},
		{"5785", "adar ii", "10"},
		{"5785", "kislev", "31"},
		{"5787", "cheshvan"},
	} {
		_, err := run(t, pinned(), append([]string{"hebrew"}, args...)...)
		assert.Error(t, err, "hebrew %v", args)
	}
}

func TestYear(t *testing.T) {
	cleanEnv(t)

	out, err := run(t, pinned(), "year", "5787")
	require.NoError(t, err)
	assert.Contains(t, out, "Leap year")

	rows := lines(out)
	require.Len(t, rows, 14, "Header plus thirteen months")
	assert.Equal(t, []string{"5787", "Leap", "year", "complete", "385"}, rows[0])
	assert.Equal(t, []string{"Tishrei", "30", "2026-09-12"}, rows[1])
	assert.Equal(t, []string{"Cheshvan", "30", "2026-10-12"}, rows[2])
	assert.Equal(t, []string{"Adar", "I", "30", "2027-02-08"}, rows[6])
	assert.Equal(t, []string{"Adar", "II", "29", "2027-03-10"}, rows[7])
	assert.Equal(t, []string{"Nisan", "30", "2027-04-08"}, rows[8])

	_, err = run(t, pinned(), "year", "0")
	assert.Error(t, err)
	_, err = run(t, pinned(), "year", "next")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------
// Yahrzeits
// -----------------------------------------------------------------------------

func TestNext(t *testing.T) {
	cleanEnv(t)

	out, err := run(t, pinned(), "next", "2019-11-04", "--count", "2")
	require.NoError(t, err)

	rows := lines(out)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2019-11-04", "6", "Cheshvan", "5780"}, rows[0])
	assert.Equal(t, []string{"2026-10-17", "6", "Cheshvan", "5787", "7"}, rows[1], "Today counts")
	assert.Equal(t, []string{"2027-11-06", "6", "Cheshvan", "5788", "8"}, rows[2])
}

func TestNext_From(t *testing.T) {
	cleanEnv(t)

	out, err := run(t, pinned(), "next", "2019-11-04", "-n", "1", "--from", "2026-10-18")
	require.NoError(t, err)
	rows := lines(out)
	require.Len(t, rows, 2)
	assert.Equal(t, "2027-11-06", rows[1][0])
}

func TestNext_AfterSunset(t *testing.T) {
	cleanEnv(t)

	out, err := run(t, pinned(), "next", "2019-11-03", "--after-sunset", "-n", "1")
	require.NoError(t, err)
	rows := lines(out)
	assert.Equal(t, []string{"2019-11-03", "6", "Cheshvan", "5780"}, rows[0], "Death after sunset belongs to the next Hebrew day")
	assert.Equal(t, "2026-10-17", rows[1][0])
}

func TestNext_AdarPolicy(t *testing.T) {
	cleanEnv(t)

	// 10 Adar 5785, a common year; 5787 is a leap year.
	_, err := run(t, pinned(), "next", "2025-03-10", "-n", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, yahrzeit.ErrAdarPolicyRequired))

	out, err := run(t, pinned(), "next", "2025-03-10", "-n", "1", "--adar-policy", "adar1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2027-02-17", "10", "Adar", "I", "5787", "2"}, lines(out)[1])

	out, err = run(t, pinned(), "next", "2025-03-10", "-n", "1", "--adar-policy", "adar2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2027-03-19", "10", "Adar", "II", "5787", "2"}, lines(out)[1])

	t.Setenv("ADAR_POLICY", "adar2")
	out, err = run(t, pinned(), "next", "2025-03-10", "-n", "1")
	require.NoError(t, err)
	assert.Equal(t, "2027-03-19", lines(out)[1][0], "System default applies without a flag")

	out, err = run(t, pinned(), "next", "2025-03-10", "-n", "1", "--adar-policy", "adar1")
	require.NoError(t, err)
	assert.Equal(t, "2027-02-17", lines(out)[1][0], "The flag overrides the system default")

	_, err = run(t, pinned(), "next", "2025-03-10", "--adar-policy", "adar3")
	assert.Error(t, err)
}

func TestUpcoming(t *testing.T) {
	cleanEnv(t)
	t.Setenv("LOCAL_PATH", writeBook(t))

	out, err := run(t, pinned(), "upcoming")
	require.NoError(t, err)
	rows := lines(out)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2026-10-17", "6", "Cheshvan", "5787", "Rachel", "7"}, rows[0])
	assert.Equal(t, []string{"2026-10-31", "20", "Cheshvan", "5787", "Leah", "6"}, rows[1])

	out, err = run(t, pinned(), "upcoming", "--days", "40")
	require.NoError(t, err)
	rows = lines(out)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2026-11-20", "10", "Kislev", "5787", "Sarah", "5"}, rows[2])
}

func TestUpcoming_NoSource(t *testing.T) {
	cleanEnv(t)

	_, err := run(t, pinned(), "upcoming")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrNoSource)
}

func TestToday(t *testing.T) {
	cleanEnv(t)

	out, err := run(t, pinned(), "today")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17\t6 Cheshvan 5787\tLeap year\n", out)

	t.Setenv("LOCAL_PATH", writeBook(t))
	out, err = run(t, pinned(), "today")
	require.NoError(t, err)
	rows := lines(out)
	require.Len(t, rows, 3, "Sarah's yahrzeit is in Kislev")
	assert.Equal(t, "Rachel", rows[1][4])
	assert.Equal(t, "Leah", rows[2][4])
}

// -----------------------------------------------------------------------------
// Service Times
// -----------------------------------------------------------------------------

func TestTimes(t *testing.T) {
	cleanEnv(t)

	provider := new(MockSunset)
	provider.On("Sunset", calendar.Date(2024, time.October, 4), 0.0, 0.0).
		Return(time.Date(2024, 10, 4, 15, 19, 50, 0, time.UTC), nil)
	provider.On("Sunset", calendar.Date(2024, time.October, 5), 0.0, 0.0).
		Return(time.Date(2024, 10, 5, 15, 18, 35, 0, time.UTC), nil)

	c := pinned()
	c.sunset = provider

	out, err := run(t, c, "times", "2024-10-04")
	require.NoError(t, err)
	assert.Equal(t,
		"Sunset\t2024-10-04T15:19:50Z\n"+
			"Candle lighting\t2024-10-04T15:01:50Z\n"+
			"Havdalah\t2024-10-05T16:00:35Z\n",
		out)
	provider.AssertExpectations(t)
}

func TestTimes_NoSunset(t *testing.T) {
	cleanEnv(t)

	provider := new(MockSunset)
	provider.On("Sunset", mock.Anything, mock.Anything, mock.Anything).
		Return(time.Time{}, zmanim.ErrNoSunset)

	c := pinned()
	c.sunset = provider

	_, err := run(t, c, "times", "2024-06-21")
	require.Error(t, err)
	assert.True(t, errors.Is(err, zmanim.ErrNoSunset))
}

func TestTimes_BadDate(t *testing.T) {
	cleanEnv(t)
	_, err := run(t, pinned(), "times", "21/06/2024")
	assert.Error(t, err)
}
