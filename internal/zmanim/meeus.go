package zmanim

import (
	"errors"
	"time"

	"github.com/soniakeys/meeus/v3/globe"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/rise"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
)

// deltaT approximates TT-UT in seconds for the current decades. The error it
// introduces in sunset is well under a second.
const deltaT = 69.0

// MeeusSunset computes apparent sunset with the algorithms of Meeus,
// Astronomical Algorithms, chapter 15: standard altitude -0°50', no elevation
// correction.
type MeeusSunset struct{}

// Sunset returns sunset in UTC on the civil date local to the coordinates.
func (MeeusSunset) Sunset(date calendar.GregorianDate, latitude, longitude float64) (time.Time, error) {
	if err := date.Validate(); err != nil {
		return time.Time{}, err
	}
	day := date.Time(time.UTC)

	t, err := sunsetUT(day, latitude, longitude)
	if err != nil {
		return time.Time{}, err
	}

	// rise.Times answers within one UT day. Far from Greenwich that can be
	// the sunset of the neighbouring local day, so shift and retry once.
	switch c := localSolarDate(t, longitude).Compare(date); {
	case c < 0:
		return sunsetUT(day.AddDate(0, 0, 1), latitude, longitude)
	case c > 0:
		return sunsetUT(day.AddDate(0, 0, -1), latitude, longitude)
	}
	return t, nil
}

// sunsetUT returns the sunset rise.Times finds in the UT day starting at day.
func sunsetUT(day time.Time, latitude, longitude float64) (time.Time, error) {
	jd := julian.CalendarGregorianToJD(day.Year(), int(day.Month()), float64(day.Day()))

	α := make([]unit.RA, 3)
	δ := make([]unit.Angle, 3)
	for i := range α {
		α[i], δ[i] = solar.ApparentEquatorial(jd + float64(i-1) + deltaT/86400)
	}

	p := globe.Coord{
		Lat: unit.AngleFromDeg(latitude),
		// Meeus counts longitude positive west.
		Lon: unit.AngleFromDeg(-longitude),
	}
	_, _, set, err := rise.Times(p, deltaT, rise.Stdh0Solar, sidereal.Apparent0UT(jd), α, δ)
	if err != nil {
		if errors.Is(err, rise.ErrorCircumpolar) {
			return time.Time{}, ErrNoSunset
		}
		return time.Time{}, err
	}
	return day.Add(time.Duration(set.Sec() * float64(time.Second))).Round(time.Second), nil
}

// localSolarDate is the civil date at the instant t in local mean solar time.
func localSolarDate(t time.Time, longitude float64) calendar.GregorianDate {
	offset := time.Duration(longitude * 4 * float64(time.Minute))
	return calendar.FromTime(t.UTC().Add(offset))
}
