package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/tartampluch/go-yahrzeit/internal/yahrzeit"
	"github.com/tartampluch/go-yahrzeit/internal/zmanim"
)

// Settings is the site configuration. Values come from an optional YAML
// file, then from the environment (a .env file in the working directory is
// loaded first), then from the env-default tags.
type Settings struct {
	// SiteTimezone is the IANA zone in which "today" is resolved.
	SiteTimezone string `env:"SITE_TIMEZONE" env-default:"UTC" yaml:"siteTimezone"`
	// CalendarLocation is diaspora or israel.
	CalendarLocation string `env:"JEWISH_CALENDAR_LOCATION" env-default:"diaspora" yaml:"jewishCalendarLocation"`
	// TorahReadingCycle is annual or triennial. It is validated and carried
	// for other consumers; nothing here reads it.
	TorahReadingCycle string `env:"TORAH_READING_CYCLE" env-default:"annual" yaml:"torahReadingCycle"`

	CandleLightingOffset int     `env:"SHABBAT_CANDLE_LIGHTING_OFFSET" env-default:"18" yaml:"shabbatCandleLightingOffset"`
	HavdalahOffset       int     `env:"HAVDALAH_OFFSET" env-default:"42" yaml:"havdalahOffset"`
	Latitude             float64 `env:"LATITUDE" env-default:"0" yaml:"latitude"`
	Longitude            float64 `env:"LONGITUDE" env-default:"0" yaml:"longitude"`

	// AdarPolicy is the system default for deaths in Adar of a common year:
	// empty, adar1 or adar2.
	AdarPolicy string `env:"ADAR_POLICY" yaml:"adarPolicy"`
	// Language selects the feed locale. The variable is not LANGUAGE, which
	// POSIX systems already use for message catalogs.
	Language  string `env:"APP_LANGUAGE" env-default:"en" yaml:"language"`
	LogFormat string `env:"LOG_FORMAT" env-default:"json" yaml:"logFormat"`

	Server struct {
		Port string `env:"SERVER_PORT" env-default:"18080" yaml:"port"`
	} `yaml:"server"`

	Source struct {
		Mode      string `env:"SOURCE_MODE" env-default:"local" yaml:"mode"`
		LocalPath string `env:"LOCAL_PATH" yaml:"localPath"`
		WebURL    string `env:"WEB_URL" yaml:"webURL"`
		WebUser   string `env:"WEB_USER" yaml:"webUser"`
		// RefreshIntervalMin is the sync period; 0 disables periodic sync.
		RefreshIntervalMin int `env:"REFRESH_INTERVAL_MIN" env-default:"60" yaml:"refreshIntervalMin"`
	} `yaml:"source"`

	Reminder struct {
		// Value 0 disables the VALARM.
		Value     int    `env:"REMINDER_VALUE" env-default:"0" yaml:"value"`
		Unit      string `env:"REMINDER_UNIT" env-default:"d" yaml:"unit"`
		Direction string `env:"REMINDER_DIRECTION" env-default:"before" yaml:"direction"`
	} `yaml:"reminder"`
}

// Load reads settings from path (which may be empty) and the environment,
// then validates them.
func Load(path string) (*Settings, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	var s Settings
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &s)
	} else {
		err = cleanenv.ReadEnv(&s)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsLoad, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrSettingsInvalid, err)
	}
	return &s, nil
}

// Validate reports every problem at once.
func (s *Settings) Validate() error {
	var errs []error

	if _, err := s.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := s.LocationContext(); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(TorahCycles, s.TorahReadingCycle) {
		errs = append(errs, fmt.Errorf("%s, got %q", ErrTorahCycle, s.TorahReadingCycle))
	}
	if _, err := s.Policy(); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		errs = append(errs, fmt.Errorf("%s: %q", ErrLanguage, s.Language))
	}
	if s.LogFormat != LogFormatJSON && s.LogFormat != LogFormatText {
		errs = append(errs, fmt.Errorf("%s, got %q", ErrLogFormat, s.LogFormat))
	}
	if err := ValidatePort(s.Server.Port); err != nil {
		errs = append(errs, err)
	}

	switch s.Source.Mode {
	case SourceModeLocal, SourceModeWeb:
	default:
		errs = append(errs, fmt.Errorf("%s: %q", ErrModeUnsupport, s.Source.Mode))
	}
	if s.Source.RefreshIntervalMin < 0 {
		errs = append(errs, fmt.Errorf("%s, got %d", ErrInterval, s.Source.RefreshIntervalMin))
	}

	switch s.Reminder.Unit {
	case UnitDays, UnitHours, UnitMinutes:
	default:
		errs = append(errs, fmt.Errorf("%s, got %q", ErrReminderUnit, s.Reminder.Unit))
	}
	switch s.Reminder.Direction {
	case DirBefore, DirAfter:
	default:
		errs = append(errs, fmt.Errorf("%s, got %q", ErrReminderDir, s.Reminder.Direction))
	}

	return errors.Join(errs...)
}

// ValidatePort checks a TCP port given as text.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("%s: %q", ErrPortNumber, port)
	}
	if n < MinPort || n > MaxPort {
		return fmt.Errorf("%s: %d", ErrPortRange, n)
	}
	return nil
}

// Location resolves SiteTimezone.
func (s *Settings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.SiteTimezone)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", ErrTimezone, s.SiteTimezone, err)
	}
	return loc, nil
}

// LocationContext builds the value passed to service time calculations.
func (s *Settings) LocationContext() (zmanim.LocationContext, error) {
	mode, err := zmanim.ParseMode(s.CalendarLocation)
	if err != nil {
		return zmanim.LocationContext{}, err
	}
	lc := zmanim.LocationContext{
		Mode:                 mode,
		Latitude:             s.Latitude,
		Longitude:            s.Longitude,
		CandleLightingOffset: s.CandleLightingOffset,
		HavdalahOffset:       s.HavdalahOffset,
	}
	if err := lc.Validate(); err != nil {
		return zmanim.LocationContext{}, err
	}
	return lc, nil
}

// Policy parses the system-wide AdarPolicy.
func (s *Settings) Policy() (yahrzeit.AdarPolicy, error) {
	return yahrzeit.ParseAdarPolicy(s.AdarPolicy)
}

// RefreshInterval is the sync period, or 0 when periodic sync is disabled.
func (s *Settings) RefreshInterval() time.Duration {
	if s.Source.RefreshIntervalMin <= DisabledInterval {
		return 0
	}
	return time.Duration(s.Source.RefreshIntervalMin) * time.Minute
}

// ReminderTrigger renders the reminder as an ISO 8601 duration for a VALARM
// TRIGGER, e.g. "-P1D". It is empty when reminders are disabled.
func (s *Settings) ReminderTrigger() string {
	if s.Reminder.Value <= 0 {
		return ""
	}

	sign := ISOPeriodPrefix
	if s.Reminder.Direction == DirBefore {
		sign = ISONegativePrefix
	}

	switch s.Reminder.Unit {
	case UnitHours:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, s.Reminder.Value, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%s%s%d%s", sign, ISOTimePrefix, s.Reminder.Value, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, s.Reminder.Value, ISODay)
	}
}
