package yahrzeit

import (
	"fmt"
	"strings"
)

// AdarPolicy chooses the month in which a death that occurred in Adar of a
// common year is observed when the yahrzeit falls in a leap year. Both
// customs are followed in practice, so the engine never picks one itself.
type AdarPolicy int

const (
	// PolicyUnspecified is the zero value. Ambiguous lookups fail with a
	// ConfigurationError.
	PolicyUnspecified AdarPolicy = iota
	// ObserveInAdarI follows the Rema on Orach Chaim 568:7, the usual
	// Ashkenazi ruling: the yahrzeit is kept in the first Adar, the nearest
	// anniversary of the death.
	ObserveInAdarI
	// ObserveInAdarII follows the Shulchan Aruch on the same paragraph, the
	// usual Sephardi ruling: Adar II, the month of Purim, counts as Adar.
	ObserveInAdarII
)

func (p AdarPolicy) String() string {
	switch p {
	case PolicyUnspecified:
		return ""
	case ObserveInAdarI:
		return "adar1"
	case ObserveInAdarII:
		return "adar2"
	default:
		return fmt.Sprintf("AdarPolicy(%d)", int(p))
	}
}

// Valid reports whether p is one of the declared policies, including
// PolicyUnspecified.
func (p AdarPolicy) Valid() bool {
	return p >= PolicyUnspecified && p <= ObserveInAdarII
}

// ParseAdarPolicy reads the values used in settings and vCard extensions.
// An empty string yields PolicyUnspecified.
func ParseAdarPolicy(s string) (AdarPolicy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "", "none", "unspecified":
		return PolicyUnspecified, nil
	case "adar1", "adari", "1", "first", "rishon":
		return ObserveInAdarI, nil
	case "adar2", "adarii", "2", "second", "sheni":
		return ObserveInAdarII, nil
	default:
		return PolicyUnspecified, fmt.Errorf("unknown adar policy %q (want adar1 or adar2)", s)
	}
}
