package cache

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/glorpus-work/freshen/internal/logger"
)

// CacheOperation renders cache management results for the command line.
type CacheOperation struct {
	manager *Manager
}

// NewCacheOperation creates a new cache operation instance.
func NewCacheOperation(manager *Manager) *CacheOperation {
	return &CacheOperation{
		manager: manager,
	}
}

// Clean cleans the cache and describes what was removed.
func (op *CacheOperation) Clean(options CleanOptions) (string, error) {
	logger.Debug("Cleaning cache", logger.Fields{
		"all":       options.All,
		"versions":  options.Versions,
		"artifacts": options.Artifacts,
		"staging":   options.Staging,
	})

	result, err := op.manager.Clean(options)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCacheClean, err)
	}

	if result.TotalFreed == 0 && result.VersionsCleared == 0 {
		return "No files were removed from the cache.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Successfully cleaned cache. Freed %s of disk space.", humanize.IBytes(uint64(result.TotalFreed)))
	if result.ArtifactFreed > 0 {
		fmt.Fprintf(&b, "\n- Artifacts: %s", humanize.IBytes(uint64(result.ArtifactFreed)))
	}
	if result.StagingFreed > 0 {
		fmt.Fprintf(&b, "\n- Staging:   %s", humanize.IBytes(uint64(result.StagingFreed)))
	}
	if result.VersionsCleared > 0 {
		fmt.Fprintf(&b, "\n- Versions:  %d cached %s", result.VersionsCleared, plural(result.VersionsCleared, "entry", "entries"))
	}
	return b.String(), nil
}

// GetInfo describes the cache contents.
func (op *CacheOperation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCacheInfo, err)
	}

	return fmt.Sprintf(`Cache Information:
  Directory:    %s
  Total Size:   %s
  Artifacts:    %s (%d files)
  Staging:      %s (%d files)
  Versions:     %d entries (%d stale)
  Version File: %s`,
		info.Directory,
		humanize.IBytes(uint64(info.TotalSize)),
		humanize.IBytes(uint64(info.ArtifactSize)),
		info.ArtifactFiles,
		humanize.IBytes(uint64(info.StagingSize)),
		info.StagingFiles,
		info.VersionEntries,
		info.StaleEntries,
		info.VersionFile,
	), nil
}

// GetDirectory returns the cache directory path.
func (op *CacheOperation) GetDirectory() string {
	return op.manager.GetDirectory()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
