// Package errors defines the error taxonomy shared by the freshen packages.
// Components wrap these sentinels with %w so the update engine can map a
// failure to a terminal state with errors.Is.
package errors

import "fmt"

// Update pipeline errors.
var (
	// ErrResolutionFailed is returned when a resolver cannot determine the latest version.
	ErrResolutionFailed = fmt.Errorf("version resolution failed")

	// ErrDownloadFailed is returned when an artifact cannot be fetched or stored.
	ErrDownloadFailed = fmt.Errorf("download failed")

	// ErrUnsupportedFormat is returned when an artifact extension is not recognized.
	ErrUnsupportedFormat = fmt.Errorf("unsupported artifact format")

	// ErrExtractionFailed is returned when mounting, unpacking or unmounting fails.
	ErrExtractionFailed = fmt.Errorf("extraction failed")

	// ErrInstallFailed is returned when the install path cannot be replaced.
	ErrInstallFailed = fmt.Errorf("install failed")

	// ErrNotFound is returned when a cache lookup has no entry.
	ErrNotFound = fmt.Errorf("not found")

	// ErrInvalidPath is returned when a path argument is empty or not absolute.
	ErrInvalidPath = fmt.Errorf("invalid path")

	// ErrAppNotFound is returned when an application id is not registered.
	ErrAppNotFound = fmt.Errorf("application not found")

	// ErrUpdatesFailed is returned by batch commands when at least one update failed.
	ErrUpdatesFailed = fmt.Errorf("one or more updates failed")

	// ErrNoAppsSpecified is returned when a command needs application ids or --all.
	ErrNoAppsSpecified = fmt.Errorf("no applications specified")

	// ErrHTTPStatus is returned for any non-200 response.
	ErrHTTPStatus = fmt.Errorf("unexpected HTTP status")
)

// Config errors.
var (
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")

	ErrEmptyAppID           = fmt.Errorf("application id cannot be empty")
	ErrDuplicateAppID       = fmt.Errorf("duplicate application id")
	ErrEmptyInstallPath     = fmt.Errorf("install_path cannot be empty")
	ErrEmptyDownloadURL     = fmt.Errorf("download_url cannot be empty")
	ErrUnknownResolver      = fmt.Errorf("unknown resolver type")
	ErrResolverParameter    = fmt.Errorf("missing resolver parameter")
	ErrHTTPTimeoutNegative  = fmt.Errorf("http_timeout cannot be negative")
	ErrVersionTTLNegative   = fmt.Errorf("version_ttl cannot be negative")
	ErrMaxConcurrentInvalid = fmt.Errorf("max_concurrent must be at least 1")
	ErrInvalidLogLevel      = fmt.Errorf("invalid log level")
	ErrInvalidLogFormat     = fmt.Errorf("invalid log format, must be text or json")
	ErrInvalidArch          = fmt.Errorf("invalid architecture, must be amd64 or arm64")
	ErrInvalidAuth          = fmt.Errorf("auth entry must set exactly one of basic, header or bearer")
	ErrConfigFormat         = fmt.Errorf("unsupported config format")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// AppError attaches an application id to a wrapped error.
func AppError(id string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("app '%s': %w", id, err)
}

// ErrInvalidLogLevelWithDetails creates an error naming the invalid level and the valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}
