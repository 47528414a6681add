package calendar

import (
	"fmt"
	"time"
)

// Supported range. Both conversions reject anything outside it.
var (
	MinGregorian = GregorianDate{Year: 1, Month: time.January, Day: 1}
	MaxGregorian = GregorianDate{Year: 9999, Month: time.December, Day: 31}
)

var (
	minJDN = gregorianToJDN(MinGregorian.Year, int(MinGregorian.Month), MinGregorian.Day)
	maxJDN = gregorianToJDN(MaxGregorian.Year, int(MaxGregorian.Month), MaxGregorian.Day)
)

// GregorianToHebrew converts a Gregorian date to the Hebrew date that begins
// at the preceding sunset. Day boundaries are not considered; callers that
// care about the evening should pass the following civil day.
func GregorianToHebrew(g GregorianDate) (HebrewDate, error) {
	jdn, err := g.jdn()
	if err != nil {
		return HebrewDate{}, err
	}
	return jdnToHebrew(jdn), nil
}

// HebrewToGregorian converts a Hebrew date to the Gregorian date on whose
// daytime it falls.
func HebrewToGregorian(h HebrewDate) (GregorianDate, error) {
	jdn, err := h.jdn()
	if err != nil {
		return GregorianDate{}, err
	}
	y, m, d := jdnToGregorian(jdn)
	return GregorianDate{Year: y, Month: time.Month(m), Day: d}, nil
}

// NewYear returns the Gregorian date of 1 Tishrei of the Hebrew year.
func NewYear(year int) (GregorianDate, error) {
	return HebrewToGregorian(HebrewDate{Year: year, Month: Tishrei, Day: 1})
}

// AddDays moves g by n days, staying inside the supported range.
func AddDays(g GregorianDate, n int) (GregorianDate, error) {
	jdn, err := g.jdn()
	if err != nil {
		return GregorianDate{}, err
	}
	jdn += int64(n)
	if jdn < minJDN || jdn > maxJDN {
		return GregorianDate{}, &RangeError{Value: fmt.Sprintf("%s%+d days", g, n)}
	}
	y, m, d := jdnToGregorian(jdn)
	return GregorianDate{Year: y, Month: time.Month(m), Day: d}, nil
}

// DaysBetween returns the number of days from a to b.
func DaysBetween(a, b GregorianDate) (int, error) {
	ja, err := a.jdn()
	if err != nil {
		return 0, err
	}
	jb, err := b.jdn()
	if err != nil {
		return 0, err
	}
	return int(jb - ja), nil
}

// Validate checks that g is a real Gregorian date inside the supported range.
func (g GregorianDate) Validate() error {
	_, err := g.jdn()
	return err
}

// Validate checks that h exists in its year and maps into the supported range.
func (h HebrewDate) Validate() error {
	_, err := h.jdn()
	return err
}

// JDN returns the Julian Day Number of the date.
func (g GregorianDate) JDN() (int64, error) {
	return g.jdn()
}

func (g GregorianDate) jdn() (int64, error) {
	if g.Month < time.January || g.Month > time.December {
		return 0, &InvalidDateError{Value: g.String(), Reason: "month must be 1-12"}
	}
	if g.Day < 1 || g.Day > gregorianMonthLength(g.Year, g.Month) {
		return 0, &InvalidDateError{Value: g.String(), Reason: fmt.Sprintf("%s %d has %d days", g.Month, g.Year, gregorianMonthLength(g.Year, g.Month))}
	}
	if g.Before(MinGregorian) || g.After(MaxGregorian) {
		return 0, &RangeError{Value: g.String()}
	}
	return gregorianToJDN(g.Year, int(g.Month), g.Day), nil
}

func (h HebrewDate) jdn() (int64, error) {
	if h.Year < minHebrewYear || h.Year > maxHebrewYear {
		return 0, &RangeError{Value: fmt.Sprintf("Hebrew year %d", h.Year)}
	}
	length, err := MonthLength(h.Year, h.Month)
	if err != nil {
		return 0, err
	}
	if h.Day < 1 || h.Day > length {
		return 0, &InvalidDateError{
			Value:  h.String(),
			Reason: fmt.Sprintf("%s %d has %d days", h.Month.Name(IsLeapYear(h.Year)), h.Year, length),
		}
	}
	jdn := hebrewEpochJDN + newYearDay(h.Year) + int64(daysBeforeMonth(h.Year, h.Month)) + int64(h.Day-1)
	if jdn < minJDN || jdn > maxJDN {
		return 0, &RangeError{Value: h.String()}
	}
	return jdn, nil
}

// Hebrew years that overlap the supported Gregorian span.
var (
	minHebrewYear = jdnToHebrew(minJDN).Year
	maxHebrewYear = jdnToHebrew(maxJDN).Year
)

// daysBeforeMonth sums the lengths of the months preceding m in its year.
func daysBeforeMonth(year int, m Month) int {
	days := 0
	for _, cur := range Months(year) {
		if cur == m {
			break
		}
		days += monthLength(year, cur)
	}
	return days
}

func jdnToHebrew(jdn int64) HebrewDate {
	day := jdn - hebrewEpochJDN
	// The mean year slightly overestimates, so the estimate is at most one
	// year ahead; step back and walk forward.
	year := int(floorDiv(day*averageYearDen, averageYearNum)) + 1
	for newYearDay(year) > day {
		year--
	}
	for newYearDay(year+1) <= day {
		year++
	}

	remaining := int(day - newYearDay(year))
	for _, m := range Months(year) {
		length := monthLength(year, m)
		if remaining < length {
			return HebrewDate{Year: year, Month: m, Day: remaining + 1}
		}
		remaining -= length
	}
	// Unreachable: the months of a year sum to its length.
	panic(fmt.Sprintf("calendar: day %d overflows Hebrew year %d", jdn, year))
}

// gregorianToJDN uses the Fliegel–Van Flandern integer algorithm.
func gregorianToJDN(year, month, day int) int64 {
	a := int64((14 - month) / 12)
	y := int64(year) + 4800 - a
	m := int64(month) + 12*a - 3
	return int64(day) + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

func jdnToGregorian(jdn int64) (year, month, day int) {
	a := jdn + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153
	day = int(e - (153*m+2)/5 + 1)
	month = int(m + 3 - 12*(m/10))
	year = int(100*b + d - 4800 + m/10)
	return year, month, day
}

func weekdayOfJDN(jdn int64) time.Weekday {
	return time.Weekday(mod64(jdn+1, 7))
}

func gregorianMonthLength(year int, m time.Month) int {
	switch m {
	case time.February:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}
