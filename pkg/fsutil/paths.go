package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used below the user cache/config/data dirs.
const AppName = "freshen"

// GetCacheDir returns the platform-specific cache directory.
// On Linux: ~/.cache/freshen/
// On macOS: ~/Library/Caches/freshen/
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetConfigDir returns the platform-specific configuration directory.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetStateDir returns the directory holding persistent state such as the
// version store.
// On Linux: $XDG_STATE_HOME/freshen or ~/.local/state/freshen
// On macOS: ~/Library/Application Support/freshen
func GetStateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Application Support", AppName), nil
	}
	return filepath.Join(home, ".local", "state", AppName), nil
}

// GetMountDir returns the default root for disk image mount points.
func GetMountDir() string {
	if runtime.GOOS == "darwin" {
		return "/Volumes"
	}
	return filepath.Join(os.TempDir(), AppName, "mnt")
}
