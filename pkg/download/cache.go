// Package download implements the on-disk artifact cache and the fetcher
// that fills it.
package download

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/model"
)

// Cache maps (id, version, ext) to a file under its directory. Cached
// artifacts are immutable; only the cache clean command removes them.
type Cache struct {
	dir     string
	enabled bool
}

// NewCache returns a cache rooted at dir, which must be absolute. A
// disabled cache still names destination paths but never reports a hit.
func NewCache(dir string, enabled bool) (*Cache, error) {
	if dir == "" || !filepath.IsAbs(dir) {
		return nil, fmt.Errorf("download dir must be absolute: %s: %w", dir, errors.ErrInvalidPath)
	}
	return &Cache{dir: filepath.Clean(dir), enabled: enabled}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the cache location for an artifact.
func (c *Cache) Path(id, version, ext string) string {
	name := fmt.Sprintf("%s-%s", model.SanitizeID(id), model.SanitizeID(version))
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(c.dir, name)
}

// Lookup returns the cached artifact path when caching is enabled and a
// non-empty regular file is present.
func (c *Cache) Lookup(id, version, ext string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	path := c.Path(id, version, ext)
	st, err := os.Stat(path)
	if err != nil || !st.Mode().IsRegular() || st.Size() == 0 {
		return "", false
	}
	return path, true
}
