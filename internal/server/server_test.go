package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/ieq-connect/internal/config"
)

const sampleICS = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nEND:VCALENDAR\r\n"

func serve(h http.Handler, method, path string, header http.Header) *http.Response {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Result()
}

// TestFeed_ServesContent checks headers and body on both routes.
func TestFeed_ServesContent(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Update(config.FeedAgenda, []byte(sampleICS)))
	require.NoError(t, srv.Update(config.FeedBirthdays, []byte(sampleICS+"X")))
	h := srv.Router()

	for route, want := range map[string]string{
		config.RouteAgenda:    sampleICS,
		config.RouteBirthdays: sampleICS + "X",
	} {
		resp := serve(h, http.MethodGet, route, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, route)
		assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))
		assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
		assert.Contains(t, resp.Header.Get(config.HeaderCacheControl), "no-cache")
		assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
		assert.NotEmpty(t, resp.Header.Get(config.HeaderLastModified))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, want, string(body))
	}
}

func TestFeed_Head(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Update(config.FeedAgenda, []byte(sampleICS)))

	resp := serve(srv.Router(), http.MethodHead, config.RouteAgenda, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)
}

func TestFeed_ConditionalRequests(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Update(config.FeedBirthdays, []byte(sampleICS)))
	h := srv.Router()

	first := serve(h, http.MethodGet, config.RouteBirthdays, nil)
	_ = first.Body.Close()
	etag := first.Header.Get(config.HeaderETag)
	lastMod := first.Header.Get(config.HeaderLastModified)

	resp := serve(h, http.MethodGet, config.RouteBirthdays, http.Header{config.HeaderIfNoneMatch: {etag}})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Empty(t, body)

	resp = serve(h, http.MethodGet, config.RouteBirthdays, http.Header{config.HeaderIfNoneMatch: {`"stale"`}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = serve(h, http.MethodGet, config.RouteBirthdays, http.Header{config.HeaderIfModifiedSince: {lastMod}})
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	old := time.Now().Add(-time.Hour).UTC().Format(http.TimeFormat)
	resp = serve(h, http.MethodGet, config.RouteBirthdays, http.Header{config.HeaderIfModifiedSince: {old}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestFeed_SameContentKeepsValidators lets clients keep their cache across
// refreshes that change nothing.
func TestFeed_SameContentKeepsValidators(t *testing.T) {
	srv := NewFeedServer("0")
	require.NoError(t, srv.Update(config.FeedAgenda, []byte(sampleICS)))
	before := srv.feeds[config.FeedAgenda].Load()

	require.NoError(t, srv.Update(config.FeedAgenda, []byte(sampleICS)))
	assert.Same(t, before, srv.feeds[config.FeedAgenda].Load())

	require.NoError(t, srv.Update(config.FeedAgenda, []byte(sampleICS+"changed")))
	assert.NotEqual(t, before.etag, srv.feeds[config.FeedAgenda].Load().etag)
}

func TestFeed_Rejections(t *testing.T) {
	srv := NewFeedServer("0")
	h := srv.Router()

	resp := serve(h, http.MethodGet, config.RouteAgenda, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, config.RetryAfterSeconds, resp.Header.Get(config.HeaderRetryAfter))

	resp = serve(h, http.MethodPost, config.RouteAgenda, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow))

	resp = serve(h, http.MethodGet, "/members.json", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.ErrorIs(t, srv.Update("rota", []byte(sampleICS)), ErrNoSuchFeed)
}

// TestFeed_ConcurrentUpdates runs writers and readers together; meant for -race.
func TestFeed_ConcurrentUpdates(t *testing.T) {
	srv := NewFeedServer("0")
	h := srv.Router()
	var wg sync.WaitGroup
	end := time.Now().Add(300 * time.Millisecond)

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; time.Now().Before(end); i++ {
				_ = srv.Update(config.FeedAgenda, []byte(fmt.Sprintf("VERSION:%d-%d", id, i)))
				time.Sleep(time.Microsecond)
			}
		}(w)
	}
	for r := 0; r < 16; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) {
				resp := serve(h, http.MethodGet, config.RouteAgenda, nil)
				if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
					t.Errorf("unexpected status %d", resp.StatusCode)
				}
			}
		}()
	}
	wg.Wait()
}

// TestFeedServer_Lifecycle binds a real port and shuts down on cancel.
func TestFeedServer_Lifecycle(t *testing.T) {
	const port = "18098"
	srv := NewFeedServer(port)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() { errChan <- srv.Start(ctx) }()

	url := "http://127.0.0.1:" + port + config.RouteAgenda
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond)

	resp, err := http.Get(url)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()

	require.NoError(t, srv.Update(config.FeedAgenda, []byte(sampleICS)))
	resp, err = http.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, sampleICS, string(body))

	cancel()
	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown timed out")
	}
}

func TestFeedServer_RequiresPort(t *testing.T) {
	err := NewFeedServer("").Start(context.Background())
	assert.EqualError(t, err, config.ErrPortRequired)
}
