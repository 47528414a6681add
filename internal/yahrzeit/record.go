package yahrzeit

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
)

// Record is a remembered death. The Hebrew anchor is derived once, when the
// record is created, and is the only input to every later lookup; the
// Gregorian date is kept for display.
type Record struct {
	Name        string
	DateOfDeath calendar.GregorianDate
	// AfterSunset marks a death after nightfall, which belongs to the
	// following Hebrew day.
	AfterSunset bool
	// Policy overrides the system default for deaths in Adar of a common year.
	Policy AdarPolicy

	hebrewDay   int
	hebrewMonth calendar.Month
	hebrewYear  int
}

// NewRecord converts the date of death and stores the result as the
// record's Hebrew anchor.
func NewRecord(name string, dateOfDeath calendar.GregorianDate, afterSunset bool) (Record, error) {
	day := dateOfDeath
	if afterSunset {
		next, err := calendar.AddDays(dateOfDeath, 1)
		if err != nil {
			return Record{}, err
		}
		day = next
	}
	h, err := calendar.GregorianToHebrew(day)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Name:        name,
		DateOfDeath: dateOfDeath,
		AfterSunset: afterSunset,
		hebrewDay:   h.Day,
		hebrewMonth: h.Month,
		hebrewYear:  h.Year,
	}, nil
}

// RecordFromAnchor rebuilds a record from persisted fields without touching
// the Gregorian date. hebrewYear may be 0 when it was never stored.
func RecordFromAnchor(name string, dateOfDeath calendar.GregorianDate, hebrewMonth calendar.Month, hebrewDay, hebrewYear int) (Record, error) {
	if err := checkAnniversary(hebrewMonth, hebrewDay, PolicyUnspecified); err != nil {
		return Record{}, err
	}
	if hebrewYear != 0 {
		if err := (calendar.HebrewDate{Year: hebrewYear, Month: hebrewMonth, Day: hebrewDay}).Validate(); err != nil {
			return Record{}, err
		}
	}
	return Record{
		Name:        name,
		DateOfDeath: dateOfDeath,
		hebrewDay:   hebrewDay,
		hebrewMonth: hebrewMonth,
		hebrewYear:  hebrewYear,
	}, nil
}

// HebrewDay returns the anchored day of death.
func (r Record) HebrewDay() int { return r.hebrewDay }

// HebrewMonth returns the anchored month of death.
func (r Record) HebrewMonth() calendar.Month { return r.hebrewMonth }

// HebrewYear returns the anchored year of death, or 0 if unknown.
func (r Record) HebrewYear() int { return r.hebrewYear }

// HebrewDateOfDeath returns the full anchor. The year is 0 if unknown.
func (r Record) HebrewDateOfDeath() calendar.HebrewDate {
	return calendar.HebrewDate{Year: r.hebrewYear, Month: r.hebrewMonth, Day: r.hebrewDay}
}

// EffectivePolicy picks the AdarPolicy for this record.
//
// A death in a known leap year is never ambiguous: Adar I deaths stay in
// Adar I and Adar II deaths in Adar II. Otherwise the record's own policy wins
// over the system default.
func (r Record) EffectivePolicy(systemDefault AdarPolicy) AdarPolicy {
	if r.hebrewYear != 0 && calendar.IsLeapYear(r.hebrewYear) {
		switch r.hebrewMonth {
		case calendar.AdarI:
			return ObserveInAdarI
		case calendar.AdarII:
			return ObserveInAdarII
		}
	}
	if r.Policy != PolicyUnspecified {
		return r.Policy
	}
	return systemDefault
}

// Next returns the first observance strictly after from.
func (r Record) Next(from calendar.GregorianDate, systemDefault AdarPolicy) (calendar.GregorianDate, error) {
	return NextOccurrence(r.hebrewMonth, r.hebrewDay, from, r.EffectivePolicy(systemDefault))
}

// Occurrences returns all observances strictly after from.
func (r Record) Occurrences(from calendar.GregorianDate, systemDefault AdarPolicy) (iter.Seq[calendar.GregorianDate], error) {
	return OccurrencesFrom(r.hebrewMonth, r.hebrewDay, from, r.EffectivePolicy(systemDefault))
}

// ObservanceIn resolves the observance during one Hebrew year.
func (r Record) ObservanceIn(hebrewYear int, systemDefault AdarPolicy) (Observance, error) {
	h, err := Resolve(r.hebrewMonth, r.hebrewDay, hebrewYear, r.EffectivePolicy(systemDefault))
	if err != nil {
		return Observance{}, err
	}
	g, err := calendar.HebrewToGregorian(h)
	if err != nil {
		return Observance{}, err
	}
	return Observance{Record: r, Date: g, Hebrew: h, Years: r.yearsAt(hebrewYear)}, nil
}

// yearsAt counts the anniversaries up to hebrewYear, or 0 when the year of
// death is unknown.
func (r Record) yearsAt(hebrewYear int) int {
	if r.hebrewYear == 0 || hebrewYear < r.hebrewYear {
		return 0
	}
	return hebrewYear - r.hebrewYear
}

// Observance is one resolved yahrzeit.
type Observance struct {
	Record Record
	Date   calendar.GregorianDate
	Hebrew calendar.HebrewDate
	// Years since the death, 0 if the year of death is unknown.
	Years int
}

// Upcoming lists the observances that fall on from or within the following
// days-1 days, earliest first. Records that cannot be resolved are left out
// and their errors joined into the returned error.
func Upcoming(records []Record, from calendar.GregorianDate, days int, systemDefault AdarPolicy) ([]Observance, error) {
	if days < 1 {
		return nil, fmt.Errorf("window must be at least one day, got %d", days)
	}
	end, err := calendar.AddDays(from, days)
	if err != nil {
		end = calendar.MaxGregorian
	}

	var (
		out  []Observance
		errs []error
	)
	for _, r := range records {
		next, err := r.firstAnniversaryFrom(from, systemDefault)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, err))
			continue
		}
		if !next.Before(end) {
			continue
		}
		h, err := calendar.GregorianToHebrew(next)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Name, err))
			continue
		}
		out = append(out, Observance{Record: r, Date: next, Hebrew: h, Years: r.yearsAt(h.Year)})
	}

	slices.SortStableFunc(out, func(a, b Observance) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.Record.Name, b.Record.Name)
	})
	return out, errors.Join(errs...)
}

// firstAnniversaryFrom returns the first observance on or after from that
// comes after the death itself. The day of death, and for a death after
// sunset the Hebrew day it belongs to, are never anniversaries.
func (r Record) firstAnniversaryFrom(from calendar.GregorianDate, systemDefault AdarPolicy) (calendar.GregorianDate, error) {
	var (
		next calendar.GregorianDate
		err  error
	)
	if !from.After(r.DateOfDeath) {
		next, err = r.Next(r.DateOfDeath, systemDefault)
	} else {
		next, err = r.nextOnOrAfter(from, systemDefault)
	}
	for err == nil && r.hebrewYear != 0 {
		h, herr := calendar.GregorianToHebrew(next)
		if herr != nil {
			return next, herr
		}
		if h.Year > r.hebrewYear {
			break
		}
		next, err = r.Next(next, systemDefault)
	}
	return next, err
}

// nextOnOrAfter is Next including from itself. At MinGregorian there is no
// day before from to search after, so from is checked directly.
func (r Record) nextOnOrAfter(from calendar.GregorianDate, systemDefault AdarPolicy) (calendar.GregorianDate, error) {
	if before, err := calendar.AddDays(from, -1); err == nil {
		return r.Next(before, systemDefault)
	}
	h, err := calendar.GregorianToHebrew(from)
	if err != nil {
		return calendar.GregorianDate{}, err
	}
	if o, err := r.ObservanceIn(h.Year, systemDefault); err == nil && o.Date == from {
		return from, nil
	}
	return r.Next(from, systemDefault)
}
