package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/tartampluch/go-yahrzeit/internal/calendar"
	"github.com/tartampluch/go-yahrzeit/internal/config"
	"github.com/tartampluch/go-yahrzeit/internal/today"
	"github.com/tartampluch/go-yahrzeit/internal/zmanim"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
}

// CalendarServer serves the yahrzeit feed and the date endpoints.
type CalendarServer struct {
	// cache uses atomic.Pointer for lock-free reads: the feed is read often
	// and replaced only on sync.
	cache atomic.Pointer[cacheItem]
	Port  string

	// Location is the site timezone used to read "today". Nil means UTC.
	Location *time.Location
	// Zmanim configures /times.
	Zmanim zmanim.LocationContext
	// Sunset backs /times. When nil the route answers 404.
	Sunset zmanim.SunsetProvider
	// Now returns the current instant. Nil means time.Now.
	Now func() time.Time
}

// NewCalendarServer creates a new instance of the server.
func NewCalendarServer(port string) *CalendarServer {
	return &CalendarServer{
		Port: port,
	}
}

// Handler returns the router with every route registered.
func (s *CalendarServer) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc(config.RouteRoot, s.handleCalendarRequest)
	router.HandleFunc(config.RouteFeed, s.handleCalendarRequest)
	router.HandleFunc(config.RouteToday, s.handleToday)
	router.HandleFunc(config.RouteTimes, s.handleTimes)
	router.HandleFunc(config.RouteTimesDate, s.handleTimes)
	return router
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update atomically replaces the served feed.
func (s *CalendarServer) Update(data []byte) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
}

// readOnly rejects anything but GET and HEAD.
func readOnly(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set(config.HeaderAllow, config.AllowedMethods)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	return false
}

// handleCalendarRequest serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}

	item := s.cache.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set(config.HeaderContentType, config.MimeTextCalendar)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, item.etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompServer,
				config.LogKeyError, err,
			)
		}
	}
}

// todayResponse is the JSON body of /today.
type todayResponse struct {
	Gregorian   string `json:"gregorian"`
	HebrewYear  int    `json:"hebrewYear"`
	HebrewMonth int    `json:"hebrewMonth"`
	HebrewDay   int    `json:"hebrewDay"`
	MonthName   string `json:"monthName"`
	IsLeapYear  bool   `json:"isLeapYear"`
	Hebrew      string `json:"hebrew"`
}

// handleToday reports the Hebrew date for today in the site timezone.
func (s *CalendarServer) handleToday(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}

	c, err := today.Current(s.today())
	if err != nil {
		s.fail(w, r, err, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, r, todayResponse{
		Gregorian:   c.Gregorian.String(),
		HebrewYear:  c.HebrewDate.Year,
		HebrewMonth: int(c.HebrewDate.Month),
		HebrewDay:   c.HebrewDate.Day,
		MonthName:   c.MonthName,
		IsLeapYear:  c.IsLeapYear,
		Hebrew:      fmt.Sprintf("%d %s %d", c.HebrewDate.Day, c.MonthName, c.HebrewDate.Year),
	})
}

// timesResponse is the JSON body of /times.
type timesResponse struct {
	Date           string    `json:"date"`
	Mode           string    `json:"mode"`
	Sunset         time.Time `json:"sunset"`
	CandleLighting time.Time `json:"candleLighting"`
	Havdalah       time.Time `json:"havdalah"`
}

// handleTimes returns candle lighting and havdalah for ?date= or /times/{date},
// defaulting to today. Times are rendered in the site timezone.
func (s *CalendarServer) handleTimes(w http.ResponseWriter, r *http.Request) {
	if !readOnly(w, r) {
		return
	}
	if s.Sunset == nil {
		http.Error(w, config.HTTPMsgNotFound, http.StatusNotFound)
		return
	}

	date := s.today()
	raw := mux.Vars(r)[config.QueryDate]
	if raw == "" {
		raw = r.URL.Query().Get(config.QueryDate)
	}
	if raw != "" {
		d, err := calendar.ParseGregorian(raw)
		if err != nil {
			http.Error(w, config.HTTPMsgBadDate, http.StatusBadRequest)
			return
		}
		date = d
	}

	times, err := zmanim.ServiceTimes(date, s.Zmanim, s.Sunset)
	switch {
	case errors.Is(err, zmanim.ErrNoSunset):
		http.Error(w, config.HTTPMsgNoSunset, http.StatusUnprocessableEntity)
		return
	case errors.Is(err, calendar.ErrOutOfRange):
		http.Error(w, config.HTTPMsgBadDate, http.StatusBadRequest)
		return
	case err != nil:
		s.fail(w, r, err, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	loc := s.location()
	s.writeJSON(w, r, timesResponse{
		Date:           times.Date.String(),
		Mode:           times.Mode.String(),
		Sunset:         times.Sunset.In(loc),
		CandleLighting: times.CandleLighting.In(loc),
		Havdalah:       times.Havdalah.In(loc),
	})
}

func (s *CalendarServer) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// today is the civil date in the site timezone.
func (s *CalendarServer) today() calendar.GregorianDate {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return calendar.FromTime(now().In(s.location()))
}

func (s *CalendarServer) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set(config.HeaderContentType, config.MimeJSON)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	if r.Method == http.MethodHead {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}

func (s *CalendarServer) fail(w http.ResponseWriter, r *http.Request, err error, msg string, code int) {
	slog.Error(config.MsgRequestFailed,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyPath, r.URL.Path,
		config.LogKeyMethod, r.Method,
		config.LogKeyError, err,
	)
	http.Error(w, msg, code)
}
