package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/fsutil"
	freshenhttp "github.com/glorpus-work/freshen/pkg/http"
)

// progressStep is the smallest change in fraction worth reporting.
const progressStep = 0.01

// Fetcher downloads artifacts into a Cache. It never retries.
type Fetcher struct {
	client freshenhttp.Client
	cache  *Cache
}

var _ Manager = (*Fetcher)(nil)

// NewFetcher returns a Fetcher writing into cache.
func NewFetcher(client freshenhttp.Client, cache *Cache) *Fetcher {
	return &Fetcher{client: client, cache: cache}
}

// Fetch implements Manager. The artifact is streamed to a temporary file in
// the cache directory and moved into place only once complete; on failure
// the temporary file is removed and the error wraps ErrDownloadFailed.
func (f *Fetcher) Fetch(ctx context.Context, req Request, progress ProgressFunc) (string, error) {
	report := func(fraction float64) {
		if progress != nil {
			progress(fraction)
		}
	}

	if path, ok := f.cache.Lookup(req.ID, req.Version, req.Ext); ok {
		logger.Debug("Artifact served from cache", logger.Fields{"app": req.ID, "path": path})
		report(1)
		return path, nil
	}

	absPath := f.cache.Path(req.ID, req.Version, req.Ext)
	if err := os.MkdirAll(f.cache.Dir(), fsutil.DirModeSecure); err != nil {
		return "", downloadError(req.URL, errors.Wrap(err, "could not create download dir"))
	}

	logger.Info("Downloading artifact", logger.Fields{"app": req.ID, "version": req.Version, "url": req.URL})
	resp, err := f.client.Open(ctx, req.URL)
	if err != nil {
		return "", downloadError(req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := &progressReader{reader: resp.Body, total: resp.ContentLength, report: report}
	tmpPath, err := writeBodyToTemp(body, f.cache.Dir())
	if err != nil {
		return "", downloadError(req.URL, err)
	}
	if err := finalizeFile(tmpPath, absPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", downloadError(req.URL, err)
	}

	if body.reported < 1 {
		report(1)
	}
	return absPath, nil
}

func downloadError(url string, err error) error {
	return fmt.Errorf("%s: %w: %w", url, errors.ErrDownloadFailed, err)
}

// writeBodyToTemp streams r into a new temp file in dir. The temp file is
// removed on any error.
func writeBodyToTemp(r io.Reader, dir string) (string, error) {
	tmp, err := os.CreateTemp(dir, "dl-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	fail := func(err error, msg string) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, msg)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		return fail(err, "could not write file")
	}
	if err := tmp.Sync(); err != nil {
		return fail(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", errors.Wrap(err, "could not close file")
	}
	return tmpPath, nil
}

func finalizeFile(tmpPath, absPath string) error {
	if err := os.Chmod(tmpPath, fsutil.FileModeSecure); err != nil {
		return errors.Wrap(err, "could not set permissions")
	}
	if err := fsutil.Move(tmpPath, absPath); err != nil {
		return errors.Wrap(err, "could not finalize file")
	}
	return nil
}

// progressReader reports the fraction read so far. With an unknown total
// nothing is reported until the caller reports completion.
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	reported float64
	report   func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.reader.Read(b)
	p.read += int64(n)
	if p.total > 0 && n > 0 {
		fraction := float64(p.read) / float64(p.total)
		if fraction > 1 {
			fraction = 1
		}
		if fraction-p.reported >= progressStep || (fraction == 1 && p.reported < 1) {
			p.reported = fraction
			p.report(fraction)
		}
	}
	return n, err
}

// CleanTemp removes leftover dl-*.tmp files from interrupted runs.
func CleanTemp(dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "dl-*.tmp"))
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err == nil {
			removed++
		}
	}
	return removed, nil
}
