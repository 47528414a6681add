package engine

import (
	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/yahrzeit"
)

// YahrzeitEntry is a lightweight view of one remembered person, built from a
// vCard and ready for listing.
type YahrzeitEntry struct {
	// UID is a unique identifier (hash) used for stability in lists.
	UID string

	// Name is the display name (Formatted Name or Structured Name).
	Name string

	// DateOfDeath is the civil date as recorded on the card.
	DateOfDeath calendar.GregorianDate

	// HebrewDate is the anchor the observances are computed from. Year is 0
	// when a stored anchor carried no year.
	HebrewDate calendar.HebrewDate

	// Policy is the Adar policy that applies to this record.
	Policy yahrzeit.AdarPolicy

	// NextOccurrence is the first observance on or after today.
	// This is the primary sorting key for the upcoming list.
	NextOccurrence calendar.GregorianDate

	// YearsNext counts the anniversaries at NextOccurrence, 0 if unknown.
	YearsNext int

	// Record is the resolved record, for month and window queries.
	Record yahrzeit.Record
}
