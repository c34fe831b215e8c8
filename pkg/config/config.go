// Package config loads, validates and saves the freshen configuration: the
// list of managed applications and the settings shared by every engine.
// Files are YAML unless the path ends in .toml.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/cache"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/fsutil"
	"github.com/glorpus-work/freshen/pkg/model"
	"github.com/glorpus-work/freshen/pkg/platform"
	"github.com/glorpus-work/freshen/pkg/resolver"
	"github.com/glorpus-work/freshen/pkg/versioncache"
)

// AppConfig describes one managed application.
type AppConfig = model.Application

// Config represents the application configuration.
type Config struct {
	Apps     []*AppConfig `yaml:"apps" toml:"apps"`
	Settings Settings     `yaml:"settings" toml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	CacheDir string `yaml:"cache_dir,omitempty" toml:"cache_dir,omitempty"`
	StateDir string `yaml:"state_dir,omitempty" toml:"state_dir,omitempty"`
	MountDir string `yaml:"mount_dir,omitempty" toml:"mount_dir,omitempty"`

	// VersionTTL marks resolved versions stale after this long. Zero keeps
	// them until an explicit refresh.
	VersionTTL  Duration `yaml:"version_ttl" toml:"version_ttl"`
	HTTPTimeout Duration `yaml:"http_timeout" toml:"http_timeout"`
	UserAgent   string   `yaml:"user_agent,omitempty" toml:"user_agent,omitempty"`

	// Arch overrides the host architecture substituted for {arch} in
	// download URLs, e.g. amd64 to keep Intel builds under Rosetta.
	Arch string `yaml:"arch,omitempty" toml:"arch,omitempty"`

	MaxConcurrent    int  `yaml:"max_concurrent" toml:"max_concurrent"`
	UseDownloadCache bool `yaml:"use_download_cache" toml:"use_download_cache"`
	InstallMissing   bool `yaml:"install_missing" toml:"install_missing"`
	// RecentOnly limits check and update runs over all applications to
	// those launched in the last week.
	RecentOnly bool `yaml:"recent_only" toml:"recent_only"`

	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`

	// Auth holds credentials keyed by host name.
	Auth map[string]*AuthConfig `yaml:"auth,omitempty" toml:"auth,omitempty"`
}

// Default configuration values.
const (
	DefaultVersionTTL    = 24 * time.Hour
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultMaxConcurrent = 4
	DefaultLogLevel      = "info"
	DefaultLogFormat     = string(logger.FormatText)

	// ConfigFileName is the file looked up in the user config directory.
	ConfigFileName = "config.yaml"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the syntax from the file extension. Anything that is
// not .toml is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Duration is a time.Duration written as a Go duration string ("24h", "90s").
type Duration time.Duration

// D returns the standard library duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		cacheDir = filepath.Join(os.TempDir(), fsutil.AppName, "cache")
	}
	stateDir, err := fsutil.GetStateDir()
	if err != nil {
		stateDir = filepath.Join(os.TempDir(), fsutil.AppName, "state")
	}

	return &Config{
		Apps: []*AppConfig{},
		Settings: Settings{
			CacheDir:         cacheDir,
			StateDir:         stateDir,
			MountDir:         fsutil.GetMountDir(),
			VersionTTL:       Duration(DefaultVersionTTL),
			HTTPTimeout:      Duration(DefaultHTTPTimeout),
			MaxConcurrent:    DefaultMaxConcurrent,
			UseDownloadCache: true,
			LogLevel:         DefaultLogLevel,
			LogFormat:        DefaultLogFormat,
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults with no applications.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("config file not found, using defaults", logger.Fields{"path": absPath})
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file, FormatFromPath(absPath))
}

// LoadConfigFromReader decodes, completes and validates a configuration.
// Keys absent from the input keep their default values.
func LoadConfigFromReader(reader io.Reader, format Format) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := DefaultConfig()
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, config)
	case FormatYAML:
		err = yaml.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrConfigFormat, format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}
	return config, nil
}

// Marshal encodes the configuration in the given syntax.
func (c *Config) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		data, err := toml.Marshal(c)
		if err != nil {
			return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
		}
		return data, nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(YAMLIndent)
		if err := enc.Encode(c); err != nil {
			return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", errors.ErrConfigFormat, format)
	}
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	return c.Marshal(FormatYAML)
}

// SaveConfig writes the configuration atomically, in the syntax implied by
// the path.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	data, err := c.Marshal(FormatFromPath(absPath))
	if err != nil {
		return err
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}
	if err := atomic.WriteFile(absPath, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", absPath)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateApps(c.Apps); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateApps(apps []*AppConfig) error {
	seen := make(map[string]bool, len(apps))
	for i, app := range apps {
		if app == nil || strings.TrimSpace(app.ID) == "" {
			return fmt.Errorf("%w (app #%d)", errors.ErrEmptyAppID, i+1)
		}
		if seen[app.ID] {
			return fmt.Errorf("%w: %s", errors.ErrDuplicateAppID, app.ID)
		}
		seen[app.ID] = true

		if app.InstallPath == "" {
			return errors.AppError(app.ID, errors.ErrEmptyInstallPath)
		}
		if !filepath.IsAbs(app.InstallPath) {
			return errors.AppError(app.ID, fmt.Errorf("%w: install_path must be absolute: %s", errors.ErrInvalidPath, app.InstallPath))
		}
		if app.DownloadURL == "" {
			return errors.AppError(app.ID, errors.ErrEmptyDownloadURL)
		}
		if err := resolver.Validate(app.Resolver); err != nil {
			return errors.AppError(app.ID, err)
		}
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.VersionTTL < 0 {
		return errors.ErrVersionTTLNegative
	}
	if s.MaxConcurrent < 1 {
		return errors.ErrMaxConcurrentInvalid
	}
	if _, ok := logger.ParseLevel(s.LogLevel); !ok {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	switch logger.OutputFormat(strings.ToLower(s.LogFormat)) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: '%s'", errors.ErrInvalidLogFormat, s.LogFormat)
	}
	switch platform.NormalizeArch(s.Arch) {
	case "", platform.ArchAMD64, platform.ArchARM64:
	default:
		return fmt.Errorf("%w: '%s'", errors.ErrInvalidArch, s.Arch)
	}
	for host, a := range s.Auth {
		if err := a.validate(); err != nil {
			return fmt.Errorf("auth for %s: %w", host, err)
		}
	}
	return nil
}

// applyDefaults fills settings left empty by the file and expands ~ in
// paths.
func (c *Config) applyDefaults() error {
	defaults := DefaultConfig()

	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	}
	if c.Settings.StateDir == "" {
		c.Settings.StateDir = defaults.Settings.StateDir
	}
	if c.Settings.MountDir == "" {
		c.Settings.MountDir = defaults.Settings.MountDir
	}
	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
	c.Settings.Arch = platform.NormalizeArch(c.Settings.Arch)

	for _, dir := range []*string{&c.Settings.CacheDir, &c.Settings.StateDir, &c.Settings.MountDir} {
		expanded, err := ExpandHome(*dir)
		if err != nil {
			return err
		}
		*dir = expanded
	}
	for _, app := range c.Apps {
		if app == nil {
			continue
		}
		expanded, err := ExpandHome(app.InstallPath)
		if err != nil {
			return errors.AppError(app.ID, err)
		}
		app.InstallPath = expanded
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to expand home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// App returns the application with the given id.
func (c *Config) App(id string) (*AppConfig, error) {
	for _, app := range c.Apps {
		if app.ID == id {
			return app, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", errors.ErrAppNotFound, id)
}

// ArtifactDir is the download cache directory.
func (c *Config) ArtifactDir() string {
	return filepath.Join(c.Settings.CacheDir, cache.ArtifactsDir)
}

// StagingDir holds per-application extraction directories.
func (c *Config) StagingDir() string {
	return filepath.Join(c.Settings.CacheDir, cache.StagingDir)
}

// VersionFile is the persisted version store.
func (c *Config) VersionFile() string {
	return filepath.Join(c.Settings.StateDir, versioncache.FileName)
}
