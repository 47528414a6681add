package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Yahrzeit/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Yahrzeit"
	BinaryName        = "yahrzeit"
	AppID             = "com.github.tartampluch.go-yahrzeit"
	KeyringService    = "com.github.tartampluch.go-yahrzeit"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "yahrzeit.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating secure cache directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagConfig      = "config"
	FlagDebug       = "debug"
	FlagPolicy      = "adar-policy"
	FlagAfterSunset = "after-sunset"
	FlagCount       = "count"
	FlagFrom        = "from"
	FlagDays        = "days"

	FlagDescConfig      = "Path to a YAML settings file (environment variables override it)"
	FlagDescDebug       = "Enable debug logging to stdout"
	FlagDescPolicy      = "Month for Adar deaths in leap years: adar1 or adar2"
	FlagDescAfterSunset = "The death occurred after sunset"
	FlagDescCount       = "Number of observances to list"
	FlagDescFrom        = "Start date (YYYY-MM-DD), defaults to today in the site timezone"
	FlagDescDays        = "Number of days to look ahead"

	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"

	DefaultOccurrences = 5
	DefaultWindowDays  = 30
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyEvtSummary      = "event_summary"       // Requires Name
	TKeyEvtSummaryYears = "event_summary_years" // Requires Name, Years
	TKeyEvtDescription  = "event_description"   // Requires HebrewDate, DateOfDeath
	TKeyTodayStatus     = "today_status"        // Requires Count > 0
	TKeyTodayStatusZero = "today_status_zero"   // Explicit key for 0
	TKeyLblSunset       = "lbl_sunset"
	TKeyLblCandles      = "lbl_candle_lighting"
	TKeyLblHavdalah     = "lbl_havdalah"
	TKeyLblLeapYear     = "lbl_leap_year"
	TKeyLblCommonYear   = "lbl_common_year"

	// TKeyMonthPrefix is followed by the numeric month identifier, e.g.
	// "month_7" for Tishrei. Adar of a leap year uses TKeyMonthAdarI.
	TKeyMonthPrefix = "month_"
	TKeyMonthAdarI  = "month_12_leap"
)

// SupportedLanguages lists the embedded locales (ISO 639-1).
var SupportedLanguages = []string{"en", "he"}

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb       = "web"
	SourceModeLocal     = "local"
	DefaultPort         = "18080"
	DefaultRefreshMin   = 60
	DefaultLanguage     = "en"
	DefaultTimezone     = "UTC"
	DefaultLocationMode = "diaspora"
	DefaultTorahCycle   = "annual"
	LogFormatJSON       = "json"
	LogFormatText       = "text"
	UIDSalt             = "go-yahrzeit-v1-" // Salt for deterministic UID generation
	DisabledInterval    = 0

	// Feed window: events are generated for the previous, current and next
	// Hebrew years.
	FeedYearsBefore = 1
	FeedYearsAfter  = 1
)

// TorahCycles are the accepted TORAH_READING_CYCLE values.
var TorahCycles = []string{"annual", "triennial"}

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTimePrefix     = "T"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion    = "2.0"
	ICalProdid     = "-//Go Yahrzeit//Engine//EN"
	ICalCalName    = "Yahrzeits"
	ICalMethod     = "PUBLISH"
	ICalScale      = "GREGORIAN"
	ICalComponent  = "VALARM"
	ICalAction     = "DISPLAY"
	ICalDomain     = "goyahrzeit"
	ICalCategory   = "Yahrzeit"
	ICalTransp     = "TRANSPARENT"
	ICalHebrewProp = "X-HEBREW-DATE"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"
	PropCategories  = "CATEGORIES"
	PropTransp      = "TRANSP"

	// DEATHDATE is defined by RFC 6474. The X- properties carry the
	// persisted Hebrew anchor and per-record settings.
	VCardDeathDate   = "DEATHDATE"
	VCardHebrewDeath = "X-HEBREW-DEATHDATE"
	VCardAdarPolicy  = "X-ADAR-POLICY"
	VCardAfterSunset = "X-DEATH-AFTER-SUNSET"
	VCardFN          = "FN"
	VCardN           = "N"

	DefaultICalRefresh = 12 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard DEATHDATE fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"

	// Time layout for service times in text output
	TimeFormatClock = "15:04"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteRoot   = "/"
	RouteFeed   = "/yahrzeits.ics"
	RouteToday  = "/today"
	RouteTimes  = "/times"
	// RouteTimesDate is a gorilla/mux template; the variable is QueryDate.
	RouteTimesDate = "/times/{date}"
	QueryDate   = "date"
	FeedFileExt = ".ics"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAccept          = "Accept"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeVCard           = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrWebURLEmpty     = "configuration error: web URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrModeUnsupport   = "configuration error: unsupported source mode"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrInvalidURL      = "invalid URL structure"
	ErrFetchRequest    = "failed to create request"
	ErrFetchNetwork    = "network error during fetch"
	ErrFetchStatus     = "server returned unexpected status"
	ErrFetchTooLarge   = "address book exceeds the size limit"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrDateParse       = "unable to parse date"
	ErrHebrewAnchor    = "invalid Hebrew date of death"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrSettingsLoad    = "could not read settings"
	ErrSettingsInvalid = "invalid settings"
	ErrTimezone        = "unknown site timezone"
	ErrLanguage        = "unsupported language"
	ErrTorahCycle      = "torah reading cycle must be annual or triennial"
	ErrInterval        = "refresh interval must not be negative"
	ErrReminderUnit    = "reminder unit must be d, h or m"
	ErrReminderDir     = "reminder direction must be before or after"
	ErrToday           = "could not resolve today's Hebrew date"
	ErrServiceTimes    = "could not compute service times"
	ErrLogFormat       = "log format must be json or text"
	ErrHebrewYear      = "hebrew year must be a number"
	ErrHebrewDay       = "hebrew day must be a number"
	ErrNoSource        = "no vCard source configured"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgBadDate      = "date must be YYYY-MM-DD within 0001-01-01..9999-12-31"
	HTTPMsgNoSunset     = "The sun does not set at this location on that date."
	HTTPMsgNotFound     = "Not Found"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Yahrzeit: %s"
	FallbackSummaryYears = "Yahrzeit: %s (%d)"
	FallbackDescription  = "%s (died %s)"
	FallbackTodayStatus  = "%d yahrzeit(s) today"
	FallbackName         = "Unknown"
	FallbackSyncError    = "Sync error"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	// Using a constant avoids hardcoded magic strings in the engine logic.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted    = "Synchronization started..."
	MsgSyncFailed     = "Synchronization failed. Check logs."
	MsgSyncDone       = "Synchronization finished"
	MsgSyncReq        = "Sync requested"
	MsgWorkerStart    = "Background worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgAppStop        = "Application stopped gracefully"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date of death"
	MsgSkippedAnchor  = "Skipping invalid Hebrew date of death"
	MsgSkippedPolicy  = "Skipping record: Adar policy required"
	MsgSkippedRecord  = "Skipping unresolvable record"
	MsgGenSuccess     = "Calendar generation successful"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgYahrzeitToday  = "Yahrzeit observed today"
	MsgSettingsLoaded = "Settings loaded"
	MsgRequestFailed  = "Request failed"
	MsgFetchStart     = "Initiating vCard download"
	MsgFetchStatus    = "Server returned error status"
	MsgFetchOK        = "vCards downloading"
	MsgStatusUpdated  = "Status updated"
	MsgResyncSignal   = "Resync requested by signal"
)

// -----------------------------------------------------------------------------
// Reminder Units & Directions
// -----------------------------------------------------------------------------

const (
	UnitDays    = "d"
	UnitHours   = "h"
	UnitMinutes = "m"
	DirBefore   = "before"
	DirAfter    = "after"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent  = "component"
	LogKeyError      = "error"
	LogKeyURL        = "url"
	LogKeyStatus     = "status_code"
	LogKeyFile       = "file"
	LogKeyLang       = "lang"
	LogKeyKey        = "key"
	LogKeyPort       = "port"
	LogKeyMode       = "mode"
	LogKeyInterval   = "interval"
	LogKeyUser       = "user"
	LogKeyTotal      = "total_cards"
	LogKeyFound      = "yahrzeits_found"
	LogKeySkipped    = "skipped"
	LogKeyToday      = "yahrzeits_today"
	LogKeySizeBytes  = "size_bytes"
	LogKeyETag       = "etag"
	LogKeyManual     = "manual"
	LogKeyValue      = "value"
	LogKeyStats      = "stats"
	LogKeyCount      = "count"
	LogKeyName       = "name"
	LogKeyDOD        = "date_of_death"
	LogKeyHebrew     = "hebrew_date"
	LogKeyDuration   = "duration_ms"
	LogKeyTimezone   = "timezone"
	LogKeyLocation   = "calendar_location"
	LogKeyPolicy     = "adar_policy"
	LogKeyPath       = "path"
	LogKeyMethod     = "method"
	LogKeyConfigFile = "config_file"
	LogKeyState      = "status"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompApp      = "app"
	CompEngine   = "engine"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompSettings = "settings"
	CompCLI      = "cli"
)
