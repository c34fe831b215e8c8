// Package extract turns a downloaded artifact into a staged application
// bundle ready for installation.
package extract

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
	"github.com/glorpus-work/freshen/pkg/mount"
)

const (
	unpackDirName = "unpack"
	// MaxBundleDepth bounds the walk that locates a bundle in an unpacked
	// archive.
	MaxBundleDepth = 3
	macOSMetadata  = "__MACOSX"
)

// Unpacker expands an archive into a directory.
type Unpacker interface {
	ExtractAll(ctx context.Context, archivePath, destDir string) error
}

// Extractor stages bundles from disk images and archives.
type Extractor struct {
	stagingDir string
	mountDir   string
	mounter    mount.Mounter
	unpacker   Unpacker
}

// NewExtractor creates an Extractor staging bundles below stagingDir and
// mounting disk images below mountDir.
func NewExtractor(stagingDir, mountDir string, mounter mount.Mounter, unpacker Unpacker) *Extractor {
	return &Extractor{
		stagingDir: stagingDir,
		mountDir:   mountDir,
		mounter:    mounter,
		unpacker:   unpacker,
	}
}

// StagingDir returns the per-application staging directory.
func (e *Extractor) StagingDir(app *model.Application) string {
	return filepath.Join(e.stagingDir, app.SafeID())
}

// MountPoint returns the per-application disk image mount point.
func (e *Extractor) MountPoint(app *model.Application) string {
	return filepath.Join(e.mountDir, app.SafeID())
}

// Extract stages the bundle contained in artifactPath and returns its path.
// Unknown artifact types fail with ErrUnsupportedFormat before anything is
// written.
func (e *Extractor) Extract(ctx context.Context, app *model.Application, artifactPath string) (string, error) {
	ext := model.ArtifactExtension(filepath.Base(artifactPath))
	kind := model.ClassifyExtension(ext)
	if kind == model.ArtifactUnsupported && app.ArtifactExt != "" {
		ext = app.ArtifactExtension("")
		kind = model.ClassifyExtension(ext)
	}
	if kind == model.ArtifactUnsupported {
		return "", fmt.Errorf("%s: extension %q: %w", filepath.Base(artifactPath), ext, errors.ErrUnsupportedFormat)
	}

	stageDir := e.StagingDir(app)
	if err := fsutil.ResetDir(stageDir, fsutil.DirModeSecure); err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrExtractionFailed, err)
	}

	logger.Debug("Extracting artifact", logger.Fields{"app": app.ID, "artifact": artifactPath, "kind": kind.String()})

	var (
		staged string
		err    error
	)
	switch kind {
	case model.ArtifactDiskImage:
		staged, err = e.extractDiskImage(ctx, app, artifactPath, stageDir)
	default:
		staged, err = e.extractArchive(ctx, app, artifactPath, stageDir)
	}
	if err != nil {
		_ = os.RemoveAll(stageDir)
		return "", fmt.Errorf("%w: %w", errors.ErrExtractionFailed, err)
	}
	return staged, nil
}

func (e *Extractor) extractDiskImage(ctx context.Context, app *model.Application, image, stageDir string) (staged string, err error) {
	if err := fsutil.EnsureDir(e.mountDir); err != nil {
		return "", err
	}
	mountPoint := e.MountPoint(app)
	if err := e.mounter.Mount(ctx, image, mountPoint); err != nil {
		return "", err
	}
	defer func() {
		// detach even when ctx is already canceled
		unmountErr := e.mounter.Unmount(context.WithoutCancel(ctx), mountPoint)
		if unmountErr != nil {
			logger.Warn("Failed to unmount disk image", logger.Fields{"mount_point": mountPoint, "error": unmountErr.Error()})
			if err == nil {
				staged, err = "", unmountErr
			}
		}
	}()

	name, err := topLevelBundle(mountPoint, app.Suffix())
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	staged = filepath.Join(stageDir, name)
	if err := fsutil.CopyDir(filepath.Join(mountPoint, name), staged); err != nil {
		return "", err
	}
	return staged, nil
}

func topLevelBundle(dir, suffix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasSuffix(entry.Name(), suffix) {
			return entry.Name(), nil
		}
	}
	return "", fmt.Errorf("no %s bundle at top level of %s: %w", suffix, dir, errors.ErrNotFound)
}

func (e *Extractor) extractArchive(ctx context.Context, app *model.Application, archivePath, stageDir string) (string, error) {
	unpackDir := filepath.Join(stageDir, unpackDirName)
	if err := e.unpacker.ExtractAll(ctx, archivePath, unpackDir); err != nil {
		return "", err
	}
	return FindBundle(unpackDir, app.Suffix(), MaxBundleDepth)
}

// FindBundle walks root breadth-first in lexical order up to maxDepth levels
// and returns the first directory whose name ends in suffix.
func FindBundle(root, suffix string, maxDepth int) (string, error) {
	level := []string{root}
	for depth := 0; depth < maxDepth && len(level) > 0; depth++ {
		var next []string
		for _, dir := range level {
			entries, err := os.ReadDir(dir)
			if err != nil {
				return "", err
			}
			for _, entry := range entries {
				if !entry.IsDir() || entry.Name() == macOSMetadata {
					continue
				}
				path := filepath.Join(dir, entry.Name())
				if strings.HasSuffix(entry.Name(), suffix) {
					return path, nil
				}
				next = append(next, path)
			}
		}
		level = next
	}
	return "", fmt.Errorf("no %s bundle in %s: %w", suffix, root, errors.ErrNotFound)
}
