// Package zmanim computes Shabbat and festival candle-lighting and havdalah
// times as fixed minute offsets from sunset.
//
// Sunset itself comes from a SunsetProvider. MeeusSunset is the production
// implementation; tests inject a fake.
package zmanim

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
)

// ErrNoSunset is returned by providers when the sun does not set on the
// requested date, as in polar day or polar night.
var ErrNoSunset = errors.New("sun does not set on this date")

// Mode selects which observance calendar applies to the site.
type Mode int

const (
	Diaspora Mode = iota
	Israel
)

func (m Mode) String() string {
	switch m {
	case Diaspora:
		return "diaspora"
	case Israel:
		return "israel"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "diaspora" or "israel" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "diaspora", "":
		return Diaspora, nil
	case "israel":
		return Israel, nil
	default:
		return Diaspora, fmt.Errorf("unknown calendar location %q (want diaspora or israel)", s)
	}
}

// Default offsets, in minutes.
const (
	DefaultCandleLightingOffset = 18
	DefaultHavdalahOffset       = 42
)

// LocationContext is the site configuration needed for service times. It is
// passed by value and never read from globals.
type LocationContext struct {
	Mode      Mode
	Latitude  float64
	Longitude float64 // degrees east
	// CandleLightingOffset is subtracted from sunset, in minutes.
	CandleLightingOffset int
	// HavdalahOffset is added to the following day's sunset, in minutes.
	HavdalahOffset int
}

// Validate checks coordinates and offsets.
func (l LocationContext) Validate() error {
	var errs []error
	if l.Latitude < -90 || l.Latitude > 90 {
		errs = append(errs, fmt.Errorf("latitude %.4f out of range", l.Latitude))
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		errs = append(errs, fmt.Errorf("longitude %.4f out of range", l.Longitude))
	}
	if l.CandleLightingOffset < 0 {
		errs = append(errs, fmt.Errorf("candle lighting offset %d is negative", l.CandleLightingOffset))
	}
	if l.HavdalahOffset < 0 {
		errs = append(errs, fmt.Errorf("havdalah offset %d is negative", l.HavdalahOffset))
	}
	return errors.Join(errs...)
}

// SunsetProvider returns the instant of sunset on the civil date at the
// given coordinates.
type SunsetProvider interface {
	Sunset(date calendar.GregorianDate, latitude, longitude float64) (time.Time, error)
}

// Times holds the service times for an erev Shabbat or erev Yom Tov date.
type Times struct {
	Date           calendar.GregorianDate
	Mode           Mode
	Sunset         time.Time
	CandleLighting time.Time
	// Havdalah is measured from sunset on the day after Date.
	Havdalah time.Time
}

// ServiceTimes computes candle lighting on date and havdalah on the day that
// follows. Provider errors are returned wrapped, unchanged otherwise.
func ServiceTimes(date calendar.GregorianDate, loc LocationContext, provider SunsetProvider) (Times, error) {
	if err := loc.Validate(); err != nil {
		return Times{}, err
	}
	next, err := calendar.AddDays(date, 1)
	if err != nil {
		return Times{}, err
	}

	sunset, err := provider.Sunset(date, loc.Latitude, loc.Longitude)
	if err != nil {
		return Times{}, fmt.Errorf("sunset on %s: %w", date, err)
	}
	nextSunset, err := provider.Sunset(next, loc.Latitude, loc.Longitude)
	if err != nil {
		return Times{}, fmt.Errorf("sunset on %s: %w", next, err)
	}

	return Times{
		Date:           date,
		Mode:           loc.Mode,
		Sunset:         sunset,
		CandleLighting: sunset.Add(-time.Duration(loc.CandleLightingOffset) * time.Minute),
		Havdalah:       nextSunset.Add(time.Duration(loc.HavdalahOffset) * time.Minute),
	}, nil
}
