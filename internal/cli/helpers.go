package cli

import (
	"fmt"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/archive"
	"github.com/glorpus-work/freshen/pkg/bundle"
	"github.com/glorpus-work/freshen/pkg/cache"
	"github.com/glorpus-work/freshen/pkg/config"
	"github.com/glorpus-work/freshen/pkg/download"
	"github.com/glorpus-work/freshen/pkg/engine"
	"github.com/glorpus-work/freshen/pkg/extract"
	"github.com/glorpus-work/freshen/pkg/hooks"
	freshenhttp "github.com/glorpus-work/freshen/pkg/http"
	"github.com/glorpus-work/freshen/pkg/installer"
	"github.com/glorpus-work/freshen/pkg/model"
	"github.com/glorpus-work/freshen/pkg/mount"
	"github.com/glorpus-work/freshen/pkg/platform"
	"github.com/glorpus-work/freshen/pkg/process"
	"github.com/glorpus-work/freshen/pkg/resolver"
	"github.com/glorpus-work/freshen/pkg/runner"
	"github.com/glorpus-work/freshen/pkg/versioncache"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	NoColor    *bool
)

// environment is everything a command needs once the configuration is
// loaded.
type environment struct {
	cfg      *config.Config
	versions *versioncache.Store
	registry *engine.Registry
}

func getConfigPath() (string, error) {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath, nil
	}
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get default config path: %w", err)
	}
	return path, nil
}

// loadConfig loads the configuration and initializes logging from it.
func loadConfig() (*config.Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	logger.InitLogger(level, logger.OutputFormat(cfg.Settings.LogFormat))
	logger.Debug("Configuration loaded", logger.Fields{"path": path, "apps": len(cfg.Apps)})
	return cfg, nil
}

// loadEnvironment loads the configuration and builds one engine per
// configured application. events receives the events of every engine.
func loadEnvironment(events engine.Hooks) (*environment, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	versions, err := versioncache.Open(cfg.VersionFile(), cfg.Settings.VersionTTL.D())
	if err != nil {
		return nil, fmt.Errorf("failed to open version cache: %w", err)
	}

	registry, err := newRegistry(cfg, versions, events)
	if err != nil {
		return nil, err
	}
	return &environment{cfg: cfg, versions: versions, registry: registry}, nil
}

func newRegistry(cfg *config.Config, versions *versioncache.Store, events engine.Hooks) (*engine.Registry, error) {
	userAgent := cfg.Settings.UserAgent
	if userAgent == "" {
		userAgent = fmt.Sprintf("freshen/%s (%s)", Version, platform.Current())
	}
	client := freshenhttp.NewHTTPClient(cfg.Settings.HTTPTimeout.D(), userAgent).WithAuth(cfg.AuthHosts())

	artifacts, err := download.NewCache(cfg.ArtifactDir(), cfg.Settings.UseDownloadCache)
	if err != nil {
		return nil, fmt.Errorf("failed to open download cache: %w", err)
	}

	run := runner.CmdRunner{}
	deps := engine.Deps{
		Versions:  versions,
		Downloads: download.NewFetcher(client, artifacts),
		Extractor: extract.NewExtractor(cfg.StagingDir(), cfg.Settings.MountDir, mount.NewHdiutil(run), archive.NewManager()),
		Processes: process.NewController(run),
		Installer: installer.New().WithStagingRoot(cfg.StagingDir()),
		Bundles:   bundle.NewInspector(),
		Scripts:   hooks.NewTengoExecutor(nil),
		Usage:     bundle.NewUsage(run),
	}
	newResolver := func(app *model.Application) (resolver.Resolver, error) {
		return resolver.New(app.Resolver, client)
	}

	registry, err := engine.NewRegistry(cfg.Apps, deps, newResolver, engine.RegistryOptions{
		MaxConcurrent:  cfg.Settings.MaxConcurrent,
		InstallMissing: cfg.Settings.InstallMissing,
		Hooks:          events,
		Arch:           cfg.Settings.Arch,
		RecentOnly:     cfg.Settings.RecentOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build update engines: %w", err)
	}
	return registry, nil
}

func (env *environment) cacheManager() *cache.Manager {
	return cache.NewManager(env.cfg.Settings.CacheDir, env.versions)
}

func noColor() bool {
	return NoColor != nil && *NoColor
}
