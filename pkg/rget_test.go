package rget_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rget "github.com/rget/rget/pkg"
	"github.com/rget/rget/pkg/client"
	"github.com/rget/rget/pkg/download"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

func makeGetter() *rget.Getter {
	return &rget.Getter{
		Executor: &download.Executor{
			Client: client.NewClient(client.Options{
				UserAgent:       "rget-test",
				FollowRedirects: true,
			}),
		},
	}
}

func makeOptions(url, dest string) download.Options {
	return download.Options{
		URL:             url,
		Dest:            dest,
		MaxAttempts:     3,
		Timeout:         5 * time.Second,
		FollowRedirects: true,
		Quiet:           true,
		Backoff:         download.Backoff{Base: 10 * time.Millisecond, Max: time.Second},
	}
}

func TestDownloadFileEndToEnd(t *testing.T) {
	content := bytes.Repeat([]byte("r"), 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(content)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out", "report.pdf")
	size, elapsed, err := makeGetter().DownloadFile(context.Background(), makeOptions(server.URL+"/report.pdf", dest))

	require.NoError(t, err)
	assert.Equal(t, int64(1024), size)
	assert.Greater(t, elapsed, time.Duration(0))

	fi, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), fi.Size())
}

func TestDownloadFileRateLimitedThenSuccess(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("finally"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	start := time.Now()
	size, _, err := makeGetter().DownloadFile(context.Background(), makeOptions(server.URL, dest))

	require.NoError(t, err)
	assert.Equal(t, int64(len("finally")), size)
	assert.EqualValues(t, 2, requests.Load())
	assert.GreaterOrEqual(t, time.Since(start), time.Second, "the Retry-After hint dictates the wait")
}

func TestDownloadFileNotFound(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	_, _, err := makeGetter().DownloadFile(context.Background(), makeOptions(server.URL, dest))

	require.Error(t, err)
	assert.EqualValues(t, 1, requests.Load(), "a 404 is never retried")

	derr := download.AsError(err)
	require.NotNil(t, derr)
	assert.Equal(t, download.KindClientError, derr.Kind)
	assert.Equal(t, http.StatusNotFound, derr.StatusCode)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no partial file may remain")
}

func TestDownloadFileRejectsBadURLBeforeNetwork(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.bin")

	for _, url := range []string{"ftp://example.com/file", "example.com/file", "file:///etc/passwd"} {
		_, _, err := makeGetter().DownloadFile(context.Background(), makeOptions(url, dest))
		require.Error(t, err, "url %s", url)
		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr), "validation failures must not touch the filesystem")
	}
}

func TestDownloadFileSanitizesDestination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	dir := t.TempDir()
	_, _, err := makeGetter().DownloadFile(context.Background(), makeOptions(server.URL, filepath.Join(dir, `bad:name?.txt`)))
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(dir, "bad_name_.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), written)
}

func TestDownloadFileResumesPartial(t *testing.T) {
	full := []byte("0123456789abcdef")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") == "bytes=8-" {
			w.Header().Set("Content-Range", "bytes 8-15/16")
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write(full[8:])
			return
		}
		_, _ = w.Write(full)
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "out.bin")
	require.NoError(t, os.WriteFile(dest, full[:8], 0o644))

	opts := makeOptions(server.URL, dest)
	opts.Resume = true
	size, _, err := makeGetter().DownloadFile(context.Background(), opts)

	require.NoError(t, err)
	assert.Equal(t, int64(len(full)), size)

	written, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, full, written)
}
