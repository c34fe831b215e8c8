// Package bundle reads metadata from installed application bundles.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"

	"github.com/glorpus-work/freshen/pkg/errors"
)

const (
	// InfoPlistPath is the location of the metadata plist inside a bundle.
	InfoPlistPath = "Contents/Info.plist"
	// ReceiptPath is where the Mac App Store leaves its purchase receipt.
	ReceiptPath = "Contents/_MASReceipt/receipt"
)

type infoPlist struct {
	ShortVersion string `plist:"CFBundleShortVersionString"`
	BuildVersion string `plist:"CFBundleVersion"`
	Identifier   string `plist:"CFBundleIdentifier"`
}

// Inspector reads bundle versions from Info.plist.
type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

// Version returns CFBundleShortVersionString, falling back to
// CFBundleVersion. A missing bundle or plist yields ErrNotFound.
func (i *Inspector) Version(bundlePath string) (string, error) {
	info, err := readInfo(bundlePath)
	if err != nil {
		return "", err
	}
	if v := strings.TrimSpace(info.ShortVersion); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(info.BuildVersion); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%s: no version keys: %w", bundlePath, errors.ErrNotFound)
}

// Identifier returns CFBundleIdentifier.
func (i *Inspector) Identifier(bundlePath string) (string, error) {
	info, err := readInfo(bundlePath)
	if err != nil {
		return "", err
	}
	return info.Identifier, nil
}

// FromAppStore reports whether the bundle carries a Mac App Store receipt.
// Such bundles are updated by the App Store.
func (i *Inspector) FromAppStore(bundlePath string) bool {
	info, err := os.Stat(filepath.Join(bundlePath, filepath.FromSlash(ReceiptPath)))
	return err == nil && info.Mode().IsRegular()
}

func readInfo(bundlePath string) (*infoPlist, error) {
	path := filepath.Join(bundlePath, filepath.FromSlash(InfoPlistPath))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, errors.ErrNotFound)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var info infoPlist
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &info, nil
}
