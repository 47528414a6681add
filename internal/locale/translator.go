// Package locale renders user-facing text (event summaries, month names,
// status lines) from the embedded message catalogs.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
)

//go:embed locales/*.json
var localeFS embed.FS

// loadBundle reads every embedded catalog once.
var loadBundle = sync.OnceValues(func() (*i18n.Bundle, []string) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return bundle, nil
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
			config.LogKeyFile, name,
		)
	}

	return bundle, detectedLangs
})

// Languages lists the language codes of the embedded catalogs.
func Languages() []string {
	_, langs := loadBundle()
	return langs
}

// Translator localizes messages for one language. Unknown languages fall
// back to English, and missing keys fall back to fixed English templates.
type Translator struct {
	lang      string
	localizer *i18n.Localizer
}

// New returns a Translator for lang (an ISO 639-1 code such as "he").
func New(lang string) *Translator {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	bundle, _ := loadBundle()
	return &Translator{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang),
	}
}

// Lang returns the requested language code.
func (t *Translator) Lang() string { return t.lang }

// Msg translates a key safely. A missing key is returned as is.
func (t *Translator) Msg(key string) string {
	msg, err := t.localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return key
	}
	return msg
}

// MonthName returns the localized month name. leap selects "Adar I" for
// month 12.
func (t *Translator) MonthName(m calendar.Month, leap bool) string {
	key := config.TKeyMonthPrefix + strconv.Itoa(int(m))
	if leap && m == calendar.AdarI {
		key = config.TKeyMonthAdarI
	}
	msg, err := t.localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return m.Name(leap)
	}
	return msg
}

// HebrewDate formats h as "day month year" with a localized month.
func (t *Translator) HebrewDate(h calendar.HebrewDate) string {
	return fmt.Sprintf("%d %s %d", h.Day, t.MonthName(h.Month, calendar.IsLeapYear(h.Year)), h.Year)
}

// Summary is the event title. years is the count of anniversaries, 0 when
// the year of death is unknown.
func (t *Translator) Summary(name string, years int) string {
	if years <= 0 {
		msg, err := t.localize(&i18n.LocalizeConfig{
			MessageID:    config.TKeyEvtSummary,
			TemplateData: map[string]any{"Name": name},
		})
		if err != nil {
			return fmt.Sprintf(config.FallbackSummary, name)
		}
		return msg
	}

	msg, err := t.localize(&i18n.LocalizeConfig{
		MessageID:    config.TKeyEvtSummaryYears,
		TemplateData: map[string]any{"Name": name, "Years": years},
		PluralCount:  years,
	})
	if err != nil {
		return fmt.Sprintf(config.FallbackSummaryYears, name, years)
	}
	return msg
}

// Description is the event body: the Hebrew date of the observance and the
// civil date of death.
func (t *Translator) Description(h calendar.HebrewDate, dateOfDeath calendar.GregorianDate) string {
	hebrew := t.HebrewDate(h)
	msg, err := t.localize(&i18n.LocalizeConfig{
		MessageID: config.TKeyEvtDescription,
		TemplateData: map[string]any{
			"HebrewDate":  hebrew,
			"DateOfDeath": dateOfDeath.String(),
		},
	})
	if err != nil {
		return fmt.Sprintf(config.FallbackDescription, hebrew, dateOfDeath)
	}
	return msg
}

// TodayStatus summarizes how many yahrzeits fall today.
func (t *Translator) TodayStatus(count int) string {
	if count == 0 {
		msg, err := t.localize(&i18n.LocalizeConfig{MessageID: config.TKeyTodayStatusZero})
		if err != nil {
			return fmt.Sprintf(config.FallbackTodayStatus, 0)
		}
		return msg
	}

	msg, err := t.localize(&i18n.LocalizeConfig{
		MessageID:    config.TKeyTodayStatus,
		TemplateData: map[string]any{"Count": count},
		PluralCount:  count,
	})
	if err != nil {
		return fmt.Sprintf(config.FallbackTodayStatus, count)
	}
	return msg
}

func (t *Translator) localize(lc *i18n.LocalizeConfig) (string, error) {
	msg, err := t.localizer.Localize(lc)
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, lc.MessageID,
			config.LogKeyLang, t.lang,
			config.LogKeyError, err,
		)
		return "", err
	}
	return msg, nil
}
