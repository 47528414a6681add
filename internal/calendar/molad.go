package calendar

import (
	"fmt"
	"time"
)

// Time in the fixed calendar is counted in parts (chalakim): 1080 per hour.
const (
	partsPerHour = 1080
	partsPerDay  = 24 * partsPerHour

	// lunarMonthParts is the mean synodic month, 29d 12h 793p.
	lunarMonthParts = 29*partsPerDay + 12*partsPerHour + 793

	// moladEpochParts places the molad of Tishrei AM 1 (BaHaRaD: Monday,
	// 5h 204p after 6pm Sunday) relative to day zero of the count below.
	moladEpochParts = 5*partsPerHour + 204

	// hebrewEpochJDN is the Julian Day Number of day zero of the count.
	hebrewEpochJDN = 347998

	moladZakenParts  = 18 * partsPerHour
	gataradParts     = 9*partsPerHour + 204
	betutakpatParts  = 15*partsPerHour + 589
	cycleYears       = 19
	cycleLeapYears   = 7
	monthsPerCycle   = 235
	averageYearNum   = 35975351 // mean year length is averageYearNum/averageYearDen days
	averageYearDen   = 98496
	commonYearMonths = 12
)

// IsLeapYear reports whether the Hebrew year has thirteen months. Leap years
// occupy positions 3, 6, 8, 11, 14, 17 and 19 of the Metonic cycle.
func IsLeapYear(year int) bool {
	return mod(7*year+1, cycleYears) < cycleLeapYears
}

// MonthsInYear returns 13 for leap years and 12 otherwise.
func MonthsInYear(year int) int {
	if IsLeapYear(year) {
		return commonYearMonths + 1
	}
	return commonYearMonths
}

// monthsBefore counts the lunar months from the epoch to Tishrei of year.
func monthsBefore(year int) int64 {
	return floorDiv(int64(monthsPerCycle)*int64(year)-(monthsPerCycle-1), cycleYears)
}

// molad returns the day number and the parts elapsed in that day (counted from
// 6pm the previous evening) of the molad of Tishrei for year.
func molad(year int) (day int64, parts int64) {
	total := moladEpochParts + monthsBefore(year)*lunarMonthParts
	return floorDiv(total, partsPerDay), mod64(total, partsPerDay)
}

// newYearDay returns the day number of 1 Tishrei of year, after applying the
// four postponements (dechiyot).
func newYearDay(year int) int64 {
	day, parts := molad(year)
	switch wd := dayWeekday(day); {
	case parts >= moladZakenParts:
		// Molad zaken: a molad at or after noon moves to the next day.
		day++
	case !IsLeapYear(year) && wd == time.Tuesday && parts >= gataradParts:
		// GaTaRaD: skips Wednesday, which lo ADU would forbid anyway.
		return day + 2
	case IsLeapYear(year-1) && wd == time.Monday && parts >= betutakpatParts:
		// BeTUTaKPaT: the year after a leap year would otherwise be 382 days.
		return day + 1
	}
	// Lo ADU Rosh: Rosh Hashanah never falls on Sunday, Wednesday or Friday.
	switch dayWeekday(day) {
	case time.Sunday, time.Wednesday, time.Friday:
		day++
	}
	return day
}

// dayWeekday converts a day number of the Hebrew count to a weekday.
func dayWeekday(day int64) time.Weekday {
	return weekdayOfJDN(hebrewEpochJDN + day)
}

// YearLength returns the number of days in the Hebrew year.
func YearLength(year int) int {
	return int(newYearDay(year+1) - newYearDay(year))
}

// YearTypeOf classifies the year as deficient, regular or complete.
func YearTypeOf(year int) YearType {
	switch YearLength(year) % 10 {
	case 3:
		return Deficient
	case 5:
		return Complete
	default:
		return Regular
	}
}

// MonthLength returns the number of days in month m of the Hebrew year.
// AdarII is rejected for common years.
func MonthLength(year int, m Month) (int, error) {
	if !m.Valid() {
		return 0, &InvalidDateError{Value: fmt.Sprintf("%s of %d", m, year), Reason: "unknown month"}
	}
	if m == AdarII && !IsLeapYear(year) {
		return 0, &InvalidDateError{Value: fmt.Sprintf("%s of %d", m, year), Reason: "Adar II exists only in leap years"}
	}
	return monthLength(year, m), nil
}

func monthLength(year int, m Month) int {
	switch m {
	case Iyar, Tammuz, Elul, Tevet, AdarII:
		return 29
	case Cheshvan:
		if YearTypeOf(year) == Complete {
			return 30
		}
		return 29
	case Kislev:
		if YearTypeOf(year) == Deficient {
			return 29
		}
		return 30
	case Adar:
		if IsLeapYear(year) {
			return 30
		}
		return 29
	default:
		return 30
	}
}

// Months lists the months of the year in calendar order, Tishrei first.
func Months(year int) []Month {
	months := []Month{Tishrei, Cheshvan, Kislev, Tevet, Shevat, Adar}
	if IsLeapYear(year) {
		months = append(months, AdarII)
	}
	return append(months, Nisan, Iyar, Sivan, Tammuz, Av, Elul)
}

// monthIndex returns the zero-based position of m within its year.
func monthIndex(m Month, year int) int {
	if m >= Tishrei {
		return int(m - Tishrei)
	}
	return MonthsInYear(year) - int(Elul) + int(m) - 1
}

// NextMonth returns the month that follows m and whether it still lies in the
// same Hebrew year.
func NextMonth(year int, m Month) (Month, bool) {
	switch m {
	case Elul:
		return Tishrei, false
	case Adar:
		if IsLeapYear(year) {
			return AdarII, true
		}
		return Nisan, true
	case AdarII:
		return Nisan, true
	default:
		return m + 1, true
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod64(a, b int64) int64 {
	return a - b*floorDiv(a, b)
}

func mod(a, b int) int {
	return int(mod64(int64(a), int64(b)))
}
