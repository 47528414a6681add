package engine

import (
	"bytes"
	"cmp"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/yahrzeit"
)

// SyncConfig contains all parameters required to perform a synchronization.
type SyncConfig struct {
	Mode            string // config.SourceModeLocal or config.SourceModeWeb
	LocalPath       string // Absolute path to the .vcf file
	WebURL          string // CardDAV or WebDAV URL
	WebUser         string // HTTP Basic Auth Username
	WebPass         string // HTTP Basic Auth Password
	ReminderTrigger string // ISO8601 duration string (e.g., "-P1D")

	// Location is the site timezone in which "today" is read. Nil means UTC.
	Location *time.Location
	// DefaultPolicy applies to Adar deaths whose card sets no X-ADAR-POLICY.
	DefaultPolicy yahrzeit.AdarPolicy
}

// Generator is the core service responsible for fetching and converting data.
type Generator struct {
	Clock   Clock        // Interface for time mocking.
	Fetcher VCardFetcher // Interface for network abstraction.

	// FormatSummary injects localized event titles. years is 0 when the year
	// of death is unknown.
	FormatSummary func(name string, years int) string
	// FormatDescription injects the localized event body. Optional.
	FormatDescription func(observed calendar.HebrewDate, dateOfDeath calendar.GregorianDate) string
}

type syncStats struct {
	processed, withDeath, skipped, today int
}

// RunSync executes the fetching, parsing, and generation pipeline.
// It returns the ICS data, the list of entries, the count of yahrzeits today, and any error.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) ([]byte, []YahrzeitEntry, int, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return nil, nil, 0, err
	}

	ics, entries, count, err := g.generateCalendar(ctx, reader, cfg)
	if err == nil {
		log.Debug(config.MsgSyncDone, config.LogKeyDuration, time.Since(start).Milliseconds())
	}
	return ics, entries, count, err
}

// acquireStream opens the appropriate data source based on configuration.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, cfg.WebURL, cfg.WebUser, cfg.WebPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// generateCalendar parses the vCard stream and constructs the iCalendar object.
// It also builds the YahrzeitEntry list, sorted by next observance.
func (g *Generator) generateCalendar(ctx context.Context, r io.Reader, cfg SyncConfig) ([]byte, []YahrzeitEntry, int, error) {
	cal := ical.NewCalendar()

	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	setRawProp(cal.Props, config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986 refresh hint.
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// The civil day is read in the site timezone; only DTSTAMP is UTC.
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	today := calendar.FromTime(now.In(loc))
	todayHebrew, err := calendar.GregorianToHebrew(today)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrToday, err)
	}

	decoder := vcard.NewDecoder(r)
	var stats syncStats
	var entries []YahrzeitEntry

	for {
		if ctx.Err() != nil {
			return nil, nil, 0, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep going; one broken card must not hide the others.
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		death := card.Get(config.VCardDeathDate)
		if death == nil || death.Value == "" {
			continue
		}

		dateOfDeath, err := parseDate(death.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, death.Value)
			continue
		}
		stats.withDeath++

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil {
			name = n.Value
		}

		rec, err := recordFromCard(card, name, dateOfDeath)
		if err != nil {
			stats.skipped++
			slog.Warn(config.MsgSkippedRecord,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyDOD, dateOfDeath.String(),
				config.LogKeyError, err)
			continue
		}

		// Deterministic UID generation for stability across refreshes
		input := fmt.Sprintf(config.FormatHashInput, name, dateOfDeath.String(), config.UIDSalt)
		hash := sha256.Sum256([]byte(input))
		uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

		entry, events, isToday, err := g.resolveRecord(rec, uidBase, today, todayHebrew.Year, cfg)
		if err != nil {
			stats.skipped++
			msg := config.MsgSkippedRecord
			if errors.Is(err, yahrzeit.ErrAdarPolicyRequired) {
				msg = config.MsgSkippedPolicy
			}
			slog.Warn(msg,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyHebrew, rec.HebrewDateOfDeath().String(),
				config.LogKeyError, err)
			continue
		}
		entries = append(entries, entry)

		if isToday {
			stats.today++
			slog.Info(config.MsgYahrzeitToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name,
				config.LogKeyDOD, dateOfDeath.String())
		}

		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	slices.SortStableFunc(entries, func(a, b YahrzeitEntry) int {
		if c := a.NextOccurrence.Compare(b.NextOccurrence); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	// An empty feed is still a valid VCALENDAR.
	if len(cal.Children) == 0 {
		var buf bytes.Buffer
		buf.WriteString(config.StubVCalendar)

		g.logSuccess(stats)
		return buf.Bytes(), entries, 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	g.logSuccess(stats)
	return buf.Bytes(), entries, stats.today, nil
}

// logSuccess logs the final statistics of the generation process.
func (g *Generator) logSuccess(stats syncStats) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withDeath),
			slog.Int(config.LogKeySkipped, stats.skipped),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
}

// recordFromCard builds the record from the card's death fields. A stored
// X-HEBREW-DEATHDATE wins over conversion of DEATHDATE.
func recordFromCard(card vcard.Card, name string, dateOfDeath calendar.GregorianDate) (yahrzeit.Record, error) {
	afterSunset := strings.EqualFold(strings.TrimSpace(card.Value(config.VCardAfterSunset)), "true")

	var rec yahrzeit.Record
	var err error
	if anchor := strings.TrimSpace(card.Value(config.VCardHebrewDeath)); anchor != "" {
		month, day, year, perr := parseHebrewAnchor(anchor)
		if perr != nil {
			return yahrzeit.Record{}, perr
		}
		rec, err = yahrzeit.RecordFromAnchor(name, dateOfDeath, month, day, year)
		if err != nil {
			return yahrzeit.Record{}, fmt.Errorf("%s %q: %w", config.ErrHebrewAnchor, anchor, err)
		}
		rec.AfterSunset = afterSunset
	} else {
		rec, err = yahrzeit.NewRecord(name, dateOfDeath, afterSunset)
		if err != nil {
			return yahrzeit.Record{}, err
		}
	}

	policy, err := yahrzeit.ParseAdarPolicy(card.Value(config.VCardAdarPolicy))
	if err != nil {
		return yahrzeit.Record{}, err
	}
	rec.Policy = policy
	return rec, nil
}

// resolveRecord computes the entry and the events for the previous, current
// and next Hebrew year. No event is created on or before the death itself.
func (g *Generator) resolveRecord(rec yahrzeit.Record, uidBase string, today calendar.GregorianDate, hebrewYear int, cfg SyncConfig) (YahrzeitEntry, []*ical.Event, bool, error) {
	yesterday, err := calendar.AddDays(today, -1)
	if err != nil {
		return YahrzeitEntry{}, nil, false, err
	}
	next, err := rec.Next(yesterday, cfg.DefaultPolicy)
	if err != nil {
		return YahrzeitEntry{}, nil, false, err
	}
	nextHebrew, err := calendar.GregorianToHebrew(next)
	if err != nil {
		return YahrzeitEntry{}, nil, false, err
	}

	entry := YahrzeitEntry{
		UID:            uidBase,
		Name:           rec.Name,
		DateOfDeath:    rec.DateOfDeath,
		HebrewDate:     rec.HebrewDateOfDeath(),
		Policy:         rec.EffectivePolicy(cfg.DefaultPolicy),
		NextOccurrence: next,
		Record:         rec,
	}
	if rec.HebrewYear() != 0 {
		entry.YearsNext = nextHebrew.Year - rec.HebrewYear()
	}

	var events []*ical.Event
	isToday := false
	for _, y := range []int{hebrewYear - 1, hebrewYear, hebrewYear + 1} {
		if rec.HebrewYear() != 0 && y <= rec.HebrewYear() {
			continue
		}
		o, err := rec.ObservanceIn(y, cfg.DefaultPolicy)
		if err != nil {
			if errors.Is(err, calendar.ErrOutOfRange) {
				continue
			}
			return YahrzeitEntry{}, nil, false, err
		}
		if !o.Date.After(rec.DateOfDeath) {
			continue
		}
		if o.Date == today {
			isToday = true
		}
		events = append(events, g.createEvent(o, uidBase, cfg.ReminderTrigger))
	}
	return entry, events, isToday, nil
}

// createEvent renders one observance as an all-day event.
func (g *Generator) createEvent(o yahrzeit.Observance, uidBase, reminderTrigger string) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, o.Hebrew.Year, config.ICalDomain))

	summary := fmt.Sprintf(config.FallbackSummary, o.Record.Name)
	if o.Years > 0 {
		summary = fmt.Sprintf(config.FallbackSummaryYears, o.Record.Name, o.Years)
	}
	if g.FormatSummary != nil {
		summary = g.FormatSummary(o.Record.Name, o.Years)
	}
	event.Props.SetText(config.PropSummary, summary)

	description := fmt.Sprintf(config.FallbackDescription, o.Hebrew, o.Record.DateOfDeath)
	if g.FormatDescription != nil {
		description = g.FormatDescription(o.Hebrew, o.Record.DateOfDeath)
	}
	event.Props.SetText(config.PropDescription, description)

	dtStartProp := ical.NewProp(config.PropDTStart)
	dtStartProp.SetDate(o.Date.Time(time.UTC))
	event.Props.Set(dtStartProp)

	event.Props.SetText(config.PropCategories, config.ICalCategory)
	event.Props.SetText(config.PropTransp, config.ICalTransp)
	setRawProp(event.Props, config.ICalHebrewProp, o.Hebrew.String())

	if reminderTrigger != "" {
		addAlarm(event, reminderTrigger, summary)
	}
	return event
}

// addAlarm appends a DISPLAY alarm (notification) to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	setRawProp(alarm.Props, config.PropTrigger, trigger)

	event.Children = append(event.Children, alarm)
}

// setRawProp stores value without a VALUE parameter. Props.SetText adds
// VALUE=TEXT to properties whose default type go-ical does not know.
func setRawProp(props ical.Props, name, value string) {
	prop := ical.NewProp(name)
	prop.Value = value
	props.Set(prop)
}

// parseDate handles the vCard date forms that carry a year. A death date
// without a year cannot be converted and is rejected.
func parseDate(value string) (calendar.GregorianDate, error) {
	formats := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formats {
		if t, err := time.Parse(f, value); err == nil {
			return calendar.FromTime(t), nil
		}
	}
	return calendar.GregorianDate{}, errors.New(config.ErrDateParse)
}

// parseHebrewAnchor reads X-HEBREW-DEATHDATE: "YYYY-MM-DD" with the numeric
// month id (Nisan is 1), or "--MM-DD" when the year is unknown.
func parseHebrewAnchor(value string) (month calendar.Month, day, year int, err error) {
	bad := fmt.Errorf("%s: %q", config.ErrHebrewAnchor, value)

	rest, noYear := strings.CutPrefix(value, "--")
	if !noYear {
		y, r, ok := strings.Cut(value, "-")
		if !ok {
			return 0, 0, 0, bad
		}
		if year, err = strconv.Atoi(y); err != nil || year < 1 {
			return 0, 0, 0, bad
		}
		rest = r
	}

	m, d, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, 0, 0, bad
	}
	mi, err := strconv.Atoi(m)
	if err != nil {
		return 0, 0, 0, bad
	}
	if day, err = strconv.Atoi(d); err != nil {
		return 0, 0, 0, bad
	}
	return calendar.Month(mi), day, year, nil
}
