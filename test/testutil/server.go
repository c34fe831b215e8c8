// Package testutil holds helpers shared by freshen's tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// ArtifactServer serves fixed payloads by URL path and counts the requests
// that found one.
type ArtifactServer struct {
	URL string

	files map[string][]byte
	hits  atomic.Int32
}

// NewArtifactServer starts a server for files, keyed by URL path such as
// "/Tool-1.0.zip". Unknown paths answer 404. The server stops when the test
// ends.
func NewArtifactServer(t *testing.T, files map[string][]byte) *ArtifactServer {
	t.Helper()
	s := &ArtifactServer{files: files}
	server := httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(server.Close)
	s.URL = server.URL
	return s
}

func (s *ArtifactServer) serve(w http.ResponseWriter, r *http.Request) {
	payload, ok := s.files[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.hits.Add(1)
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	_, _ = w.Write(payload)
}

// Hits returns how many artifacts were served.
func (s *ArtifactServer) Hits() int32 {
	return s.hits.Load()
}

// WriteConfig writes contents to dir/name and returns the path.
func WriteConfig(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
