package locale_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-yahrzeit/internal/config"
)

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in each locale file.
func TestI18nIntegrity(t *testing.T) {
	definedKeys := map[string]bool{
		config.TKeyEvtSummary:      true,
		config.TKeyEvtSummaryYears: true,
		config.TKeyEvtDescription:  true,
		config.TKeyTodayStatus:     true,
		config.TKeyTodayStatusZero: true,
		config.TKeyLblSunset:       true,
		config.TKeyLblCandles:      true,
		config.TKeyLblHavdalah:     true,
		config.TKeyLblLeapYear:     true,
		config.TKeyLblCommonYear:   true,
		config.TKeyMonthAdarI:      true,
	}
	for m := 1; m <= 13; m++ {
		definedKeys[config.TKeyMonthPrefix+strconv.Itoa(m)] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
			require.NoError(t, err, "Must load active.%s.json", lang)

			var jsonMap map[string]any
			require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")

			for key := range definedKeys {
				_, exists := jsonMap[key]
				assert.Truef(t, exists, "Key '%s' defined in config.go is missing in active.%s.json", key, lang)
			}

			// Orphan keys are only reported.
			for jsonKey := range jsonMap {
				if strings.HasPrefix(jsonKey, "_") {
					continue
				}
				if !definedKeys[jsonKey] {
					t.Logf("Warning: Key '%s' exists in JSON but is not checked in the test suite (might be unused)", jsonKey)
				}
			}
		})
	}
}
