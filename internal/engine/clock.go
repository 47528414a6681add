package engine

import "time"

// Clock abstracts time.Now() so tests can pin "today". The Generator reads
// it once per sync and converts the instant to the site timezone.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current instant.
func (RealClock) Now() time.Time {
	return time.Now()
}
