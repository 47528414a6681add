package calendar

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrOutOfRange  = errors.New("date outside supported calendar range")
	ErrInvalidDate = errors.New("invalid calendar date")
)

// RangeError reports an input outside MinGregorian..MaxGregorian, or the
// Hebrew dates that map into that span.
type RangeError struct {
	Value string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %s (supported %s to %s)", ErrOutOfRange, e.Value, MinGregorian, MaxGregorian)
}

func (e *RangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// InvalidDateError reports a month/day combination that does not exist in
// the given year, such as 30 Iyar or 29 February 2023.
type InvalidDateError struct {
	Value  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidDate, e.Value, e.Reason)
}

func (e *InvalidDateError) Is(target error) bool {
	return target == ErrInvalidDate
}
