// Package installer replaces an installed application bundle with a staged
// one.
package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/fsutil"
	"github.com/glorpus-work/freshen/pkg/model"
)

// Installer moves staged bundles into their install paths.
type Installer struct {
	moveFn      func(src, dst string) error
	stagingRoot string
}

// New creates an Installer using fsutil.Move, which renames and falls back
// to a copy across filesystems.
func New() *Installer {
	return &Installer{moveFn: fsutil.Move}
}

// WithStagingRoot makes Install remove the whole per-application staging
// directory under root, not just the staged bundle.
func (i *Installer) WithStagingRoot(root string) *Installer {
	i.stagingRoot = root
	return i
}

// stagingPath returns what to remove once stagedBundlePath is consumed: the
// first directory below the staging root that contains it, or the bundle
// itself when it is not under the root.
func (i *Installer) stagingPath(stagedBundlePath string) string {
	if i.stagingRoot == "" {
		return stagedBundlePath
	}
	rel, err := filepath.Rel(i.stagingRoot, stagedBundlePath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return stagedBundlePath
	}
	return filepath.Join(i.stagingRoot, strings.SplitN(rel, string(filepath.Separator), 2)[0])
}

// Install removes whatever exists at installPath and only then moves the
// staged bundle there. The staged bundle, or its staging directory, is
// removed regardless of the outcome. There is no rollback: a failure after
// removal leaves the application uninstalled.
func (i *Installer) Install(ctx context.Context, stagedBundlePath, installPath string) (model.UpdateState, error) {
	defer func() {
		staging := i.stagingPath(stagedBundlePath)
		if err := os.RemoveAll(staging); err != nil {
			logger.Warn("Failed to clean staging", logger.Fields{"path": staging, "error": err.Error()})
		}
	}()

	if installPath == "" || !filepath.IsAbs(installPath) {
		return model.StateFailed, fmt.Errorf("%w: %w: %q", errors.ErrInstallFailed, errors.ErrInvalidPath, installPath)
	}
	if !fsutil.Exists(stagedBundlePath) {
		return model.StateFailed, fmt.Errorf("%w: staged bundle %s: %w", errors.ErrInstallFailed, stagedBundlePath, errors.ErrNotFound)
	}
	if err := ctx.Err(); err != nil {
		return model.StateFailed, fmt.Errorf("%w: %w", errors.ErrInstallFailed, err)
	}

	if fsutil.Exists(installPath) {
		if err := os.RemoveAll(installPath); err != nil {
			return model.StateFailed, fmt.Errorf("%w: remove %s: %w", errors.ErrInstallFailed, installPath, err)
		}
		logger.Debug("Removed previous bundle", logger.Fields{"path": installPath})
	}

	if err := fsutil.EnsureFileDir(installPath); err != nil {
		return model.StateFailed, fmt.Errorf("%w: %w", errors.ErrInstallFailed, err)
	}
	if err := i.moveFn(stagedBundlePath, installPath); err != nil {
		return model.StateFailed, fmt.Errorf("%w: move %s to %s: %w", errors.ErrInstallFailed, stagedBundlePath, installPath, err)
	}

	logger.Debug("Installed bundle", logger.Fields{"path": installPath})
	return model.StateUpdated, nil
}
