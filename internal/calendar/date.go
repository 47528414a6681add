// Package calendar converts between the proleptic Gregorian calendar and the
// fixed arithmetic Hebrew calendar.
//
// All computation is done on whole days and whole "parts" (1/1080 of an hour),
// so results are exact and identical on every platform. Functions are pure and
// safe for concurrent use.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month identifies a Hebrew month. Months are numbered from Nisan, as in the
// biblical reckoning, while the year itself begins at Tishrei.
type Month int

const (
	Nisan    Month = 1
	Iyar     Month = 2
	Sivan    Month = 3
	Tammuz   Month = 4
	Av       Month = 5
	Elul     Month = 6
	Tishrei  Month = 7
	Cheshvan Month = 8
	Kislev   Month = 9
	Tevet    Month = 10
	Shevat   Month = 11
	// Adar is the single Adar of a common year. In a leap year it is the
	// inserted 30-day month, Adar I.
	Adar Month = 12
	// AdarII exists only in leap years and corresponds to a common year's Adar.
	AdarII Month = 13

	// AdarI names Adar when it is read in a leap year.
	AdarI = Adar
)

var monthNames = [...]string{
	Nisan:    "Nisan",
	Iyar:     "Iyar",
	Sivan:    "Sivan",
	Tammuz:   "Tammuz",
	Av:       "Av",
	Elul:     "Elul",
	Tishrei:  "Tishrei",
	Cheshvan: "Cheshvan",
	Kislev:   "Kislev",
	Tevet:    "Tevet",
	Shevat:   "Shevat",
	Adar:     "Adar",
	AdarII:   "Adar II",
}

// String returns the English transliteration of the month. Adar is rendered
// without a numeral; use Name to get "Adar I" in leap years.
func (m Month) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m]
}

// Name returns the month name as it reads in the given kind of year.
func (m Month) Name(leap bool) string {
	if m == Adar && leap {
		return "Adar I"
	}
	return m.String()
}

// Valid reports whether m is one of the thirteen month identifiers.
func (m Month) Valid() bool {
	return m >= Nisan && m <= AdarII
}

// ParseMonth accepts a month name (case-insensitive, common spellings) or its
// numeric identifier.
func ParseMonth(s string) (Month, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("'", "", "-", " ", "_", " ").Replace(key)
	if m, ok := monthAliases[key]; ok {
		return m, nil
	}
	if n, err := strconv.Atoi(key); err == nil && Month(n).Valid() {
		return Month(n), nil
	}
	return 0, fmt.Errorf("unknown hebrew month %q", s)
}

var monthAliases = map[string]Month{
	"nisan": Nisan, "nissan": Nisan,
	"iyar": Iyar, "iyyar": Iyar,
	"sivan": Sivan,
	"tammuz": Tammuz, "tamuz": Tammuz,
	"av": Av, "menachem av": Av,
	"elul": Elul,
	"tishrei": Tishrei, "tishri": Tishrei,
	"cheshvan": Cheshvan, "heshvan": Cheshvan, "marcheshvan": Cheshvan, "chesvan": Cheshvan,
	"kislev": Kislev,
	"tevet": Tevet, "teves": Tevet,
	"shevat": Shevat, "shvat": Shevat,
	"adar": Adar, "adar i": AdarI, "adar 1": AdarI, "adar rishon": AdarI,
	"adar ii": AdarII, "adar 2": AdarII, "adar sheni": AdarII,
}

// YearType classifies a Hebrew year by its length. It fixes whether Cheshvan
// and Kislev have 29 or 30 days.
type YearType int

const (
	// Deficient years (353 or 383 days) have 29-day Cheshvan and Kislev.
	Deficient YearType = iota + 1
	// Regular years (354 or 384 days) have 29-day Cheshvan and 30-day Kislev.
	Regular
	// Complete years (355 or 385 days) have 30-day Cheshvan and Kislev.
	Complete
)

func (t YearType) String() string {
	switch t {
	case Deficient:
		return "deficient"
	case Regular:
		return "regular"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("YearType(%d)", int(t))
	}
}

// GregorianDate is a day in the proleptic Gregorian calendar.
type GregorianDate struct {
	Year  int
	Month time.Month
	Day   int
}

// HebrewDate is a day in the Hebrew calendar.
type HebrewDate struct {
	Year  int
	Month Month
	Day   int
}

const gregorianLayout = "2006-01-02"

// Date is shorthand for building a GregorianDate.
func Date(year int, month time.Month, day int) GregorianDate {
	return GregorianDate{Year: year, Month: month, Day: day}
}

// FromTime takes the calendar date of t in t's own location. The caller is
// responsible for converting t to the intended timezone first.
func FromTime(t time.Time) GregorianDate {
	y, m, d := t.Date()
	return GregorianDate{Year: y, Month: m, Day: d}
}

// ParseGregorian parses a YYYY-MM-DD string.
func ParseGregorian(s string) (GregorianDate, error) {
	t, err := time.Parse(gregorianLayout, strings.TrimSpace(s))
	if err != nil {
		return GregorianDate{}, fmt.Errorf("parse gregorian date %q: %w", s, err)
	}
	return FromTime(t), nil
}

// Time returns midnight of the date in loc.
func (g GregorianDate) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(g.Year, g.Month, g.Day, 0, 0, 0, 0, loc)
}

// String formats the date as YYYY-MM-DD.
func (g GregorianDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", g.Year, int(g.Month), g.Day)
}

// Compare returns -1, 0 or +1 depending on whether g is before, equal to or
// after o.
func (g GregorianDate) Compare(o GregorianDate) int {
	switch {
	case g.Year != o.Year:
		return sign(g.Year - o.Year)
	case g.Month != o.Month:
		return sign(int(g.Month) - int(o.Month))
	default:
		return sign(g.Day - o.Day)
	}
}

// Before reports whether g is strictly earlier than o.
func (g GregorianDate) Before(o GregorianDate) bool { return g.Compare(o) < 0 }

// After reports whether g is strictly later than o.
func (g GregorianDate) After(o GregorianDate) bool { return g.Compare(o) > 0 }

// Weekday returns the day of the week. The date must be valid.
func (g GregorianDate) Weekday() time.Weekday {
	return weekdayOfJDN(gregorianToJDN(g.Year, int(g.Month), g.Day))
}

// String formats the date as "15 Tishrei 5785", with "Adar I" in leap years.
func (h HebrewDate) String() string {
	return fmt.Sprintf("%d %s %d", h.Day, h.Month.Name(IsLeapYear(h.Year)), h.Year)
}

// Compare orders Hebrew dates chronologically, honouring the Tishrei year
// start.
func (h HebrewDate) Compare(o HebrewDate) int {
	switch {
	case h.Year != o.Year:
		return sign(h.Year - o.Year)
	case h.Month != o.Month:
		return sign(monthIndex(h.Month, h.Year) - monthIndex(o.Month, o.Year))
	default:
		return sign(h.Day - o.Day)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
