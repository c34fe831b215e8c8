package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/freshen/pkg/errors"
	freshenhttp "github.com/glorpus-work/freshen/pkg/http"
	"github.com/glorpus-work/freshen/test/testutil"
)

func newFetcher(t *testing.T, enabled bool) (*Fetcher, *Cache) {
	t.Helper()
	cache, err := NewCache(filepath.Join(t.TempDir(), "artifacts"), enabled)
	require.NoError(t, err)
	return NewFetcher(freshenhttp.NewHTTPClient(5*time.Second, "freshen-test"), cache), cache
}

type progressRecorder struct {
	values []float64
}

func (p *progressRecorder) record(f float64) {
	p.values = append(p.values, f)
}

func TestFetch_Downloads(t *testing.T) {
	payload := strings.Repeat("x", 64*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	fetcher, cache := newFetcher(t, true)
	progress := &progressRecorder{}

	path, err := fetcher.Fetch(context.Background(), Request{
		ID: "com.example.app", Version: "1.3.0", Ext: "dmg", URL: server.URL + "/Example-1.3.0.dmg",
	}, progress.record)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cache.Dir(), "com.example.app-1.3.0.dmg"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))

	require.NotEmpty(t, progress.values)
	assert.Equal(t, 1.0, progress.values[len(progress.values)-1])
	for i := 1; i < len(progress.values); i++ {
		assert.GreaterOrEqual(t, progress.values[i], progress.values[i-1], "progress must not decrease")
	}
	for _, v := range progress.values {
		assert.True(t, v >= 0 && v <= 1)
	}

	leftovers, _ := filepath.Glob(filepath.Join(cache.Dir(), "dl-*.tmp"))
	assert.Empty(t, leftovers)
}

func TestFetch_UnknownLengthReportsCompletionOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.(http.Flusher).Flush()
		_, _ = w.Write([]byte("chunked body"))
	}))
	defer server.Close()

	fetcher, _ := newFetcher(t, true)
	progress := &progressRecorder{}

	_, err := fetcher.Fetch(context.Background(), Request{ID: "app", Version: "1", Ext: "zip", URL: server.URL}, progress.record)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, progress.values)
}

func TestFetch_CacheHitSkipsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("cached artifact must not be requested")
	}))
	defer server.Close()

	fetcher, cache := newFetcher(t, true)
	cached := cache.Path("com.example.app", "1.3.0", "dmg")
	require.NoError(t, os.MkdirAll(filepath.Dir(cached), 0o755))
	require.NoError(t, os.WriteFile(cached, []byte("cached"), 0o644))

	progress := &progressRecorder{}
	path, err := fetcher.Fetch(context.Background(), Request{
		ID: "com.example.app", Version: "1.3.0", Ext: "dmg", URL: server.URL,
	}, progress.record)
	require.NoError(t, err)
	assert.Equal(t, cached, path)
	assert.Equal(t, []float64{1}, progress.values)
}

func TestFetch_DisabledCacheDownloadsAgain(t *testing.T) {
	server := testutil.NewArtifactServer(t, map[string][]byte{"/App-1.0.0.zip": []byte("fresh")})

	fetcher, cache := newFetcher(t, false)
	cached := cache.Path("app", "1.0.0", "zip")
	require.NoError(t, os.MkdirAll(filepath.Dir(cached), 0o755))
	require.NoError(t, os.WriteFile(cached, []byte("stale"), 0o644))

	path, err := fetcher.Fetch(context.Background(), Request{ID: "app", Version: "1.0.0", Ext: "zip", URL: server.URL + "/App-1.0.0.zip"}, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
	assert.Equal(t, int32(1), server.Hits())
}

func TestFetch_HTTPErrorLeavesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher, cache := newFetcher(t, true)
	_, err := fetcher.Fetch(context.Background(), Request{ID: "app", Version: "1.0.0", Ext: "dmg", URL: server.URL}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)
	assert.ErrorIs(t, err, errors.ErrHTTPStatus)
	assert.NoFileExists(t, cache.Path("app", "1.0.0", "dmg"))
}

func TestFetch_TruncatedBodyLeavesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("only a little"))
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}))
	defer server.Close()

	fetcher, cache := newFetcher(t, true)
	_, err := fetcher.Fetch(context.Background(), Request{ID: "app", Version: "1.0.0", Ext: "dmg", URL: server.URL}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)
	assert.NoFileExists(t, cache.Path("app", "1.0.0", "dmg"))

	leftovers, _ := filepath.Glob(filepath.Join(cache.Dir(), "dl-*.tmp"))
	assert.Empty(t, leftovers)
}

func TestFetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("never"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher, _ := newFetcher(t, true)
	_, err := fetcher.Fetch(ctx, Request{ID: "app", Version: "1.0.0", Ext: "dmg", URL: server.URL}, nil)
	assert.ErrorIs(t, err, errors.ErrDownloadFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCache(t *testing.T) {
	_, err := NewCache("relative/dir", true)
	assert.ErrorIs(t, err, errors.ErrInvalidPath)

	dir := t.TempDir()
	cache, err := NewCache(dir, true)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "com.example.app-1.2.0.tar.gz"), cache.Path("com.example.app", "1.2.0", "tar.gz"))
	assert.Equal(t, filepath.Join(dir, "_evil-1.0"), cache.Path("../evil", "1.0", ""))

	_, ok := cache.Lookup("com.example.app", "1.2.0", "tar.gz")
	assert.False(t, ok)

	empty := cache.Path("com.example.app", "1.2.0", "zip")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, ok = cache.Lookup("com.example.app", "1.2.0", "zip")
	assert.False(t, ok, "empty files are not cache hits")
}

func TestCleanTemp(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dl-123.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app-1.0.dmg"), []byte("x"), 0o644))

	removed, err := CleanTemp(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.FileExists(t, filepath.Join(dir, "app-1.0.dmg"))
}
