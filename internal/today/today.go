// Package today describes a caller-supplied civil date in Hebrew calendar
// terms, for dashboards and month-scoped yahrzeit lists.
//
// Nothing here reads the clock or a timezone. Callers resolve "today" in the
// site timezone and pass it in; results are recomputed on every call.
package today

import (
	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/yahrzeit"
)

// Context is the Hebrew view of one civil date.
type Context struct {
	Gregorian  calendar.GregorianDate
	HebrewDate calendar.HebrewDate
	IsLeapYear bool
	// MonthName is the English transliteration, "Adar I" or "Adar II" in
	// leap years.
	MonthName string
}

// Current converts today to its Hebrew context.
func Current(today calendar.GregorianDate) (Context, error) {
	h, err := calendar.GregorianToHebrew(today)
	if err != nil {
		return Context{}, err
	}
	leap := calendar.IsLeapYear(h.Year)
	return Context{
		Gregorian:  today,
		HebrewDate: h,
		IsLeapYear: leap,
		MonthName:  h.Month.Name(leap),
	}, nil
}

// MonthSpan returns the first and last civil days of the current Hebrew
// month. At the edges of the supported range the span is clipped.
func (c Context) MonthSpan() (first, last calendar.GregorianDate, err error) {
	h := c.HebrewDate
	length, err := calendar.MonthLength(h.Year, h.Month)
	if err != nil {
		return first, last, err
	}
	first, err = calendar.AddDays(c.Gregorian, 1-h.Day)
	if err != nil {
		first = calendar.MinGregorian
	}
	last, err = calendar.AddDays(c.Gregorian, length-h.Day)
	if err != nil {
		last = calendar.MaxGregorian
	}
	return first, last, nil
}

// InMonth returns the records whose observance in the current Hebrew year
// falls inside the current Hebrew month, earliest first. Records that need an
// Adar policy the caller did not give are skipped and reported in the error.
func InMonth(records []yahrzeit.Record, c Context, systemDefault yahrzeit.AdarPolicy) ([]yahrzeit.Observance, error) {
	first, last, err := c.MonthSpan()
	if err != nil {
		return nil, err
	}
	days, err := calendar.DaysBetween(first, last)
	if err != nil {
		return nil, err
	}
	return yahrzeit.Upcoming(records, first, days+1, systemDefault)
}
