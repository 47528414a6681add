package yahrzeit

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
)

// ErrAdarPolicyRequired is matched by every ConfigurationError.
var ErrAdarPolicyRequired = errors.New("adar policy required")

// ConfigurationError reports a lookup that cannot be answered without an
// explicit AdarPolicy: a death in Adar of a common year observed in a leap
// year.
type ConfigurationError struct {
	Month calendar.Month
	Day   int
	// Year is the leap target year that made the lookup ambiguous.
	Year int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %d %s observed in leap year %d could fall in Adar I or Adar II",
		ErrAdarPolicyRequired, e.Day, e.Month, e.Year)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrAdarPolicyRequired
}
