// Package yahrzeit resolves the annual observance of a death anniversary
// recorded as a Hebrew month and day.
//
// Observances follow the Hebrew date, not a day count: a death on 30 Cheshvan
// is kept on 1 Kislev in years where Cheshvan has 29 days, and a death in Adar
// of a common year needs an AdarPolicy once the yahrzeit reaches a leap year.
package yahrzeit

import (
	"errors"
	"fmt"
	"iter"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
)

// Resolve returns the Hebrew date on which a death on (month, day) is observed
// during the Hebrew year.
//
// Rules, in order:
//   - Adar in a leap year is read through policy; PolicyUnspecified fails
//     with a ConfigurationError.
//   - Adar II in a common year becomes Adar.
//   - Day 30 of a month that has 29 days in that year rolls forward to day 1
//     of the following month.
func Resolve(month calendar.Month, day int, year int, policy AdarPolicy) (calendar.HebrewDate, error) {
	if err := checkAnniversary(month, day, policy); err != nil {
		return calendar.HebrewDate{}, err
	}

	target := month
	leap := calendar.IsLeapYear(year)
	switch {
	case month == calendar.Adar && leap:
		switch policy {
		case ObserveInAdarI:
			target = calendar.AdarI
		case ObserveInAdarII:
			target = calendar.AdarII
		default:
			return calendar.HebrewDate{}, &ConfigurationError{Month: month, Day: day, Year: year}
		}
	case month == calendar.AdarII && !leap:
		target = calendar.Adar
	}

	length, err := calendar.MonthLength(year, target)
	if err != nil {
		return calendar.HebrewDate{}, err
	}
	if day > length {
		// Only day 30 gets here; checkAnniversary rejects 30 for months that
		// never have it, so the next month is in the same year.
		next, _ := calendar.NextMonth(year, target)
		return calendar.HebrewDate{Year: year, Month: next, Day: 1}, nil
	}
	return calendar.HebrewDate{Year: year, Month: target, Day: day}, nil
}

// NextOccurrence returns the first observance strictly after from.
func NextOccurrence(month calendar.Month, day int, from calendar.GregorianDate, policy AdarPolicy) (calendar.GregorianDate, error) {
	start, err := calendar.GregorianToHebrew(from)
	if err != nil {
		return calendar.GregorianDate{}, err
	}
	// An observance always lies inside its own Hebrew year, so the year after
	// from's year is guaranteed to be later than from.
	for year := start.Year; year <= start.Year+1; year++ {
		g, err := observe(month, day, year, policy)
		if err != nil {
			if year == start.Year && errors.Is(err, calendar.ErrOutOfRange) {
				// The observance in from's year predates the range.
				continue
			}
			return calendar.GregorianDate{}, err
		}
		if g.After(from) {
			return g, nil
		}
	}
	// Unreachable for valid input.
	return calendar.GregorianDate{}, fmt.Errorf("no observance of %d %s after %s", day, month, from)
}

// OccurrencesFrom returns every observance strictly after from, one per
// Hebrew year, in increasing order. The sequence ends only at the upper bound
// of the supported calendar range, so callers must cap how many they take.
// Each call to the returned iterator starts again from from.
//
// Inputs are validated before the sequence is built. A death in Adar without
// a policy is rejected up front, since the sequence reaches a leap year within
// three years.
func OccurrencesFrom(month calendar.Month, day int, from calendar.GregorianDate, policy AdarPolicy) (iter.Seq[calendar.GregorianDate], error) {
	if err := checkAnniversary(month, day, policy); err != nil {
		return nil, err
	}
	start, err := calendar.GregorianToHebrew(from)
	if err != nil {
		return nil, err
	}
	if month == calendar.Adar && policy == PolicyUnspecified {
		return nil, &ConfigurationError{Month: month, Day: day, Year: nextLeapYear(start.Year)}
	}

	return func(yield func(calendar.GregorianDate) bool) {
		for year := start.Year; ; year++ {
			g, err := observe(month, day, year, policy)
			if err != nil {
				if year == start.Year {
					continue
				}
				// Past the supported range.
				return
			}
			if !g.After(from) {
				continue
			}
			if !yield(g) {
				return
			}
		}
	}, nil
}

// observe resolves the observance in year and converts it to Gregorian.
func observe(month calendar.Month, day int, year int, policy AdarPolicy) (calendar.GregorianDate, error) {
	h, err := Resolve(month, day, year, policy)
	if err != nil {
		return calendar.GregorianDate{}, err
	}
	return calendar.HebrewToGregorian(h)
}

// checkAnniversary rejects (month, day) pairs that no Hebrew year contains.
func checkAnniversary(month calendar.Month, day int, policy AdarPolicy) error {
	if !month.Valid() {
		return &calendar.InvalidDateError{Value: fmt.Sprintf("%d %s", day, month), Reason: "unknown month"}
	}
	maxDay := 30
	switch month {
	case calendar.Iyar, calendar.Tammuz, calendar.Elul, calendar.Tevet, calendar.AdarII:
		maxDay = 29
	}
	if day < 1 || day > maxDay {
		return &calendar.InvalidDateError{
			Value:  fmt.Sprintf("%d %s", day, month),
			Reason: fmt.Sprintf("%s never has more than %d days", month, maxDay),
		}
	}
	if !policy.Valid() {
		return fmt.Errorf("invalid %s", policy)
	}
	return nil
}

func nextLeapYear(year int) int {
	for !calendar.IsLeapYear(year) {
		year++
	}
	return year
}
