// Package mount attaches and detaches disk images with hdiutil.
package mount

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"howett.net/plist"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/runner"
)

// Mounter attaches a disk image at a mount point and detaches it again.
type Mounter interface {
	Mount(ctx context.Context, image, mountPoint string) error
	Unmount(ctx context.Context, mountPoint string) error
}

// Hdiutil implements Mounter with macOS hdiutil.
type Hdiutil struct {
	runner runner.Runner
	binary string
}

var _ Mounter = (*Hdiutil)(nil)

// NewHdiutil returns a Mounter running hdiutil through r.
func NewHdiutil(r runner.Runner) *Hdiutil {
	if r == nil {
		r = runner.CmdRunner{}
	}
	return &Hdiutil{runner: r, binary: "hdiutil"}
}

// Mount attaches image read-only at mountPoint without showing it in the
// Finder. A volume left attached at mountPoint by an interrupted run is
// detached first; leftover files that are not a volume are removed.
func (h *Hdiutil) Mount(ctx context.Context, image, mountPoint string) error {
	if entries, err := os.ReadDir(mountPoint); err == nil && len(entries) > 0 {
		if err := h.clearMountPoint(ctx, mountPoint); err != nil {
			return err
		}
	}

	// agree to embedded license prompts
	res, err := h.runner.Run(ctx, h.binary, []string{
		"attach", "-nobrowse", "-noautoopen", "-noverify", "-readonly",
		"-mountpoint", mountPoint, image,
	}, runner.RunOptions{Stdin: strings.NewReader("Y\n")})
	if err != nil {
		return fmt.Errorf("hdiutil attach %s: %s", image, runner.Describe(err, res))
	}
	logger.Debug("Disk image attached", logger.Fields{"image": image, "mount_point": mountPoint})
	return nil
}

// Unmount detaches mountPoint, forcing the detach when a plain one fails.
func (h *Hdiutil) Unmount(ctx context.Context, mountPoint string) error {
	if err := h.detach(ctx, mountPoint, false); err == nil {
		return nil
	}
	return h.detach(ctx, mountPoint, true)
}

func (h *Hdiutil) detach(ctx context.Context, mountPoint string, force bool) error {
	args := []string{"detach", mountPoint, "-quiet"}
	if force {
		args = append(args, "-force")
	}
	res, err := h.runner.Run(ctx, h.binary, args, runner.RunOptions{})
	if err != nil {
		return fmt.Errorf("hdiutil detach %s: %s", mountPoint, runner.Describe(err, res))
	}
	logger.Debug("Disk image detached", logger.Fields{"mount_point": mountPoint, "force": force})
	return nil
}

func (h *Hdiutil) clearMountPoint(ctx context.Context, mountPoint string) error {
	attached, err := h.Attached(ctx)
	if err != nil {
		return fmt.Errorf("mount point %s is not empty: %w", mountPoint, err)
	}
	if slices.Contains(attached, filepath.Clean(mountPoint)) {
		logger.Warn("Detaching stale volume", logger.Fields{"mount_point": mountPoint})
		if err := h.detach(ctx, mountPoint, true); err != nil {
			return fmt.Errorf("stale volume at %s: %w", mountPoint, err)
		}
		return nil
	}

	logger.Warn("Removing leftover files at mount point", logger.Fields{"mount_point": mountPoint})
	if err := os.RemoveAll(mountPoint); err != nil {
		return fmt.Errorf("clear mount point %s: %w", mountPoint, err)
	}
	return nil
}

// hdiutilInfo is the subset of `hdiutil info -plist` freshen reads.
type hdiutilInfo struct {
	Images []struct {
		ImagePath      string `plist:"image-path"`
		SystemEntities []struct {
			MountPoint string `plist:"mount-point"`
		} `plist:"system-entities"`
	} `plist:"images"`
}

// Attached returns the mount points of all attached disk images.
func (h *Hdiutil) Attached(ctx context.Context) ([]string, error) {
	res, err := h.runner.Run(ctx, h.binary, []string{"info", "-plist"}, runner.RunOptions{})
	if err != nil {
		return nil, fmt.Errorf("hdiutil info: %s", runner.Describe(err, res))
	}
	var info hdiutilInfo
	if _, err := plist.Unmarshal(res.Stdout, &info); err != nil {
		return nil, fmt.Errorf("hdiutil info: %w", err)
	}
	var points []string
	for _, img := range info.Images {
		for _, entity := range img.SystemEntities {
			if entity.MountPoint != "" {
				points = append(points, filepath.Clean(entity.MountPoint))
			}
		}
	}
	return points, nil
}
