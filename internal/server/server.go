// Package server publishes the agenda and birthday calendars over HTTP.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/tartampluch/ieq-connect/internal/config"
)

// ErrNoSuchFeed is returned by Update for a feed name that is not served.
var ErrNoSuchFeed = errors.New(config.ErrNoSuchFeed)

// cacheItem is one rendered calendar with its HTTP validators.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // http.TimeFormat
}

// FeedServer serves the calendar feeds from memory.
// Reads are lock-free; the refresh worker swaps whole items.
type FeedServer struct {
	Port string

	feeds map[string]*atomic.Pointer[cacheItem]
}

// NewFeedServer returns a server with the agenda and birthday feeds, both
// answering 503 until their first Update.
func NewFeedServer(port string) *FeedServer {
	return &FeedServer{
		Port: port,
		feeds: map[string]*atomic.Pointer[cacheItem]{
			config.FeedAgenda:    {},
			config.FeedBirthdays: {},
		},
	}
}

// Router maps each feed to its route. Only GET and HEAD are accepted.
func (s *FeedServer) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(config.RouteAgenda, s.handleFeed(config.FeedAgenda)).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(config.RouteBirthdays, s.handleFeed(config.FeedBirthdays)).Methods(http.MethodGet, http.MethodHead)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	})
	return r
}

// Start listens on localhost and blocks until ctx is cancelled.
func (s *FeedServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Router(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port)
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

// Update replaces the content of one feed.
func (s *FeedServer) Update(feed string, data []byte) error {
	slot, ok := s.feeds[feed]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoSuchFeed, feed)
	}

	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	// Unchanged content keeps its Last-Modified so clients get 304s.
	if old := slot.Load(); old != nil && old.etag == etag {
		return nil
	}

	slot.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
	})
	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyFeed, feed,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag)
	return nil
}

func (s *FeedServer) handleFeed(feed string) http.HandlerFunc {
	slot := s.feeds[feed]
	return func(w http.ResponseWriter, r *http.Request) {
		item := slot.Load()
		if item == nil {
			w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
			http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
			return
		}

		h := w.Header()
		h.Set(config.HeaderContentType, config.MimeTextCalendar)
		h.Set(config.HeaderXContentType, config.MimeNoSniff)
		h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
		h.Set(config.HeaderETag, item.etag)
		h.Set(config.HeaderLastModified, item.lastModified)

		if notModified(r, item) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		if r.Method == http.MethodGet {
			if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
				slog.Error(config.ErrWriteResp,
					config.LogKeyComponent, config.CompServer,
					config.LogKeyFeed, feed,
					config.LogKeyError, err)
			}
		}
	}
}

// notModified applies If-None-Match, then If-Modified-Since.
func notModified(r *http.Request, item *cacheItem) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == item.etag
	}
	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, item.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
