// Package archive unpacks and creates zip and (compressed) tar archives.
package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"

	"github.com/glorpus-work/freshen/pkg/fsutil"
)

// Manager handles archive extraction and creation operations.
type Manager struct{}

// NewManager creates a new Manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// ExtractAll extracts all entries of the archive at archivePath into
// destDir. The format is identified from the file name and contents.
// Entries and link targets that would land outside destDir are rejected.
func (am *Manager) ExtractAll(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer func() { _ = file.Close() }()

	format, stream, err := archives.Identify(ctx, archivePath, file)
	if err != nil {
		return fmt.Errorf("failed to identify archive %s: %w", filepath.Base(archivePath), err)
	}
	extractor, ok := format.(archives.Extractor)
	if !ok {
		return fmt.Errorf("format %s cannot be extracted", format.Extension())
	}

	if err := os.MkdirAll(destDir, fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	root, err := filepath.Abs(destDir)
	if err != nil {
		return fmt.Errorf("failed to resolve destination directory: %w", err)
	}

	return extractor.Extract(ctx, stream, func(ctx context.Context, f archives.FileInfo) error {
		return am.extractEntry(root, f)
	})
}

// extractEntry processes a single archive entry and writes it below root.
func (am *Manager) extractEntry(root string, f archives.FileInfo) error {
	name := path.Clean(strings.TrimPrefix(filepath.ToSlash(f.NameInArchive), "/"))
	if name == "." {
		return nil
	}
	targetPath, err := within(root, filepath.FromSlash(name))
	if err != nil {
		return err
	}

	switch {
	case f.IsDir():
		return os.MkdirAll(targetPath, f.Mode().Perm()|0o700)
	case f.Mode()&fs.ModeSymlink != 0:
		return am.writeSymlink(root, f, targetPath)
	case f.LinkTarget != "":
		return am.writeHardlink(root, f, targetPath)
	case f.Mode().IsRegular():
		return am.writeRegularFile(f, targetPath)
	default:
		return nil
	}
}

// within joins rel onto root and fails when the result escapes root.
func within(root, rel string) (string, error) {
	target := filepath.Join(root, rel)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %s escapes destination", rel)
	}
	return target, nil
}

// writeSymlink recreates a symlink entry. Formats that store the link
// target as file content are read through Open.
func (am *Manager) writeSymlink(root string, f archives.FileInfo, targetPath string) error {
	linkTarget := f.LinkTarget
	if linkTarget == "" {
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to read symlink %s: %w", f.NameInArchive, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("failed to read symlink target %s: %w", f.NameInArchive, err)
		}
		linkTarget = string(data)
	}

	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("symlink %s has absolute target %s", f.NameInArchive, linkTarget)
	}
	rel, err := filepath.Rel(root, filepath.Join(filepath.Dir(targetPath), linkTarget))
	if err != nil {
		return err
	}
	if _, err := within(root, rel); err != nil {
		return fmt.Errorf("symlink %s: %w", f.NameInArchive, err)
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for symlink %s: %w", f.NameInArchive, err)
	}
	_ = os.Remove(targetPath)
	return os.Symlink(linkTarget, targetPath)
}

func (am *Manager) writeHardlink(root string, f archives.FileInfo, targetPath string) error {
	source, err := within(root, filepath.FromSlash(path.Clean(f.LinkTarget)))
	if err != nil {
		return fmt.Errorf("hard link %s: %w", f.NameInArchive, err)
	}
	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", f.NameInArchive, err)
	}
	_ = os.Remove(targetPath)
	return os.Link(source, targetPath)
}

// writeRegularFile writes a regular file entry and preserves its mode and
// modification time.
func (am *Manager) writeRegularFile(f archives.FileInfo, targetPath string) error {
	srcFile, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", f.NameInArchive, err)
	}
	defer func() { _ = srcFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(targetPath), fsutil.DirModeDefault); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", f.NameInArchive, err)
	}

	dstFile, err := fsutil.CreateFilePerm(targetPath, f.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", targetPath, err)
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("failed to copy file %s: %w", f.NameInArchive, err)
	}
	if err := dstFile.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", targetPath, err)
	}

	if err := os.Chmod(targetPath, f.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set permissions for %s: %w", targetPath, err)
	}
	if err := os.Chtimes(targetPath, f.ModTime(), f.ModTime()); err != nil {
		return fmt.Errorf("failed to set modification time for %s: %w", targetPath, err)
	}
	return nil
}

// Create writes the contents of sourceDir into a new archive at
// archivePath. The format follows the archive file name (zip, tar, tar.gz
// and the other supported tar compressions).
func (am *Manager) Create(ctx context.Context, sourceDir, archivePath string) error {
	format, _, err := archives.Identify(ctx, archivePath, nil)
	if err != nil {
		return fmt.Errorf("failed to determine archive format for %s: %w", filepath.Base(archivePath), err)
	}
	archiver, ok := format.(archives.Archiver)
	if !ok {
		return fmt.Errorf("format %s cannot create archives", format.Extension())
	}

	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for source directory: %w", err)
	}

	// trailing separator: archive the contents, not the directory itself
	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return fmt.Errorf("failed to read files from disk: %w", err)
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", archivePath, err)
	}
	defer func() { _ = file.Close() }()

	if err := archiver.Archive(ctx, file, archiveFiles); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	return file.Sync()
}
