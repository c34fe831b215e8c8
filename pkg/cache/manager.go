package cache

import (
	"os"
	"path/filepath"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/download"
	"github.com/glorpus-work/freshen/pkg/errors"
)

// Manager inspects and cleans the artifact cache, the staging area and the
// version store.
type Manager struct {
	directory string
	versions  VersionStore
}

// NewManager creates a cache manager for directory.
func NewManager(directory string, versions VersionStore) *Manager {
	return &Manager{
		directory: directory,
		versions:  versions,
	}
}

// ArtifactDir returns the directory holding downloaded artifacts.
func (cm *Manager) ArtifactDir() string {
	return filepath.Join(cm.directory, ArtifactsDir)
}

// StagingDir returns the directory holding extracted bundles.
func (cm *Manager) StagingDir() string {
	return filepath.Join(cm.directory, StagingDir)
}

// Clean removes cached data according to options.
func (cm *Manager) Clean(options CleanOptions) (*CleanResult, error) {
	result := &CleanResult{}

	if !options.Versions && !options.Artifacts && !options.Staging {
		options.All = true
	}

	if options.All || options.Artifacts {
		size, err := cleanDirectory(cm.ArtifactDir())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to clean artifact cache")
		}
		result.ArtifactFreed = size
		result.TotalFreed += size
	}

	if options.All || options.Staging {
		size, err := cleanDirectory(cm.StagingDir())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to clean staging area")
		}
		result.StagingFreed = size
		result.TotalFreed += size
	}

	if (options.All || options.Versions) && cm.versions != nil {
		result.VersionsCleared = len(cm.versions.Entries())
		if err := cm.versions.Clear(); err != nil {
			return nil, errors.Wrapf(err, "failed to clear version cache")
		}
	}

	logger.Debug("Cache cleaned", logger.Fields{
		"freed":    result.TotalFreed,
		"versions": result.VersionsCleared,
	})
	return result, nil
}

// CleanTemp removes partial downloads left by interrupted runs.
func (cm *Manager) CleanTemp() (int, error) {
	if _, err := os.Stat(cm.ArtifactDir()); os.IsNotExist(err) {
		return 0, nil
	}
	return download.CleanTemp(cm.ArtifactDir())
}

// GetInfo returns information about the cache.
func (cm *Manager) GetInfo() (*Info, error) {
	info := &Info{Directory: cm.directory}

	size, files, err := getDirSizeAndFiles(cm.ArtifactDir())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get artifact cache info")
	}
	info.ArtifactSize = size
	info.ArtifactFiles = files

	size, files, err = getDirSizeAndFiles(cm.StagingDir())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get staging info")
	}
	info.StagingSize = size
	info.StagingFiles = files

	if cm.versions != nil {
		info.VersionFile = cm.versions.Path()
		for _, entry := range cm.versions.Entries() {
			info.VersionEntries++
			if cm.versions.IsStale(entry) {
				info.StaleEntries++
			}
		}
	}

	info.TotalSize = info.ArtifactSize + info.StagingSize
	return info, nil
}

// GetDirectory returns the cache directory path.
func (cm *Manager) GetDirectory() string {
	return cm.directory
}

// cleanDirectory removes a directory and returns bytes freed.
func cleanDirectory(dir string) (int64, error) {
	size, _, err := getDirSizeAndFiles(dir)
	if err != nil {
		return 0, err
	}
	if _, statErr := os.Lstat(dir); os.IsNotExist(statErr) {
		return 0, nil
	}

	if err := os.RemoveAll(dir); err != nil {
		return 0, errors.Wrapf(err, "failed to remove directory %s", dir)
	}

	// Recreate empty directory with cache-specific permissions
	if err := os.MkdirAll(dir, os.FileMode(CacheDirPerm)); err != nil {
		return size, errors.Wrapf(err, "failed to recreate directory %s", dir)
	}

	return size, nil
}

// getDirSizeAndFiles calculates directory size and file count. A missing
// directory is empty.
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.Mode().IsRegular() {
			size += info.Size()
			count++
		}
		return nil
	})
	if err != nil {
		err = errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
