package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/ieq-connect/internal/config"
	"github.com/tartampluch/ieq-connect/internal/engine"
)

const sampleCard = "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:Maria Silva\r\nBDAY:19900315\r\nEND:VCARD\r\n"

// TestHTTPFetcher_Download checks credentials, User-Agent and body on a 200.
func TestHTTPFetcher_Download(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "secretaria", user)
		assert.Equal(t, "s3nha", pass)
		assert.Equal(t, config.UserAgent, r.Header.Get(config.HeaderUserAgent))
		_, _ = w.Write([]byte(sampleCard))
	}))
	defer ts.Close()

	rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "secretaria", "s3nha")
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleCard, string(body))
}

func TestHTTPFetcher_Rejections(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusInternalServerError} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(code)
			}))
			defer ts.Close()

			rc, err := engine.NewHTTPFetcher().Fetch(context.Background(), ts.URL, "", "")
			require.Error(t, err)
			assert.Nil(t, rc)
			assert.Contains(t, err.Error(), http.StatusText(code))
		})
	}

	t.Run("bad url", func(t *testing.T) {
		_, err := engine.NewHTTPFetcher().Fetch(context.Background(), string([]byte{0x7f}), "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrInvalidURL)
	})

	t.Run("ftp", func(t *testing.T) {
		_, err := engine.NewHTTPFetcher().Fetch(context.Background(), "ftp://example.com/membros.vcf", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrProtocol)
	})
}

func TestHTTPFetcher_ContextDeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := engine.NewHTTPFetcher().Fetch(ctx, ts.URL, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestOpenSource_URLCredentials moves user info out of the URL into basic auth.
func TestOpenSource_URLCredentials(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ana", user)
		assert.Equal(t, "pw", pass)
		_, _ = w.Write([]byte(sampleCard))
	}))
	defer ts.Close()

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	u.User = url.UserPassword("ana", "pw")
	u.Path = "/contatos.vcf"

	rc, err := engine.OpenSource(context.Background(), engine.NewHTTPFetcher(), u.String())
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleCard, string(body))
}

func TestOpenSource_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "membros.vcf")
	require.NoError(t, os.WriteFile(path, []byte(sampleCard), 0o600))

	rc, err := engine.OpenSource(context.Background(), nil, path)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, sampleCard, string(body))
}

func TestOpenSource_Errors(t *testing.T) {
	_, err := engine.OpenSource(context.Background(), nil, "  ")
	assert.EqualError(t, err, config.ErrLocalPathEmpty)

	_, err = engine.OpenSource(context.Background(), nil, "https://example.com/a.vcf")
	assert.EqualError(t, err, config.ErrFetcherMissing)

	_, err = engine.OpenSource(context.Background(), nil, filepath.Join(t.TempDir(), "missing.vcf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
