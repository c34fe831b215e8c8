// Package fsutil provides filesystem helpers shared by the download cache,
// the extractor and the installer.
package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all parents with DirModeDefault.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// Exists reports whether anything (file, directory or symlink) exists at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// ResetDir removes path and recreates it empty with the given mode.
func ResetDir(path string, mode os.FileMode) error {
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	return os.MkdirAll(path, mode)
}
