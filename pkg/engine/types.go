//go:generate mockgen -destination=./mocks/engine.go -package=mocks . VersionCache,Extractor,ProcessController,Installer,BundleInspector,UsageReader,HookRunner

package engine

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/glorpus-work/freshen/pkg/download"
	"github.com/glorpus-work/freshen/pkg/hooks"
	"github.com/glorpus-work/freshen/pkg/model"
	"github.com/glorpus-work/freshen/pkg/resolver"
	"github.com/glorpus-work/freshen/pkg/versioncache"
)

// VersionCache is the subset of the version store used by the engine.
type VersionCache interface {
	Get(id string) (versioncache.Entry, error)
	Put(id, version string) error
	Invalidate(id string) error
}

// Extractor stages the bundle contained in a downloaded artifact.
type Extractor interface {
	Extract(ctx context.Context, app *model.Application, artifactPath string) (string, error)
}

// ProcessController terminates and relaunches running instances.
type ProcessController interface {
	TerminateRunning(ctx context.Context, app *model.Application) (bool, error)
	Relaunch(ctx context.Context, installPath string) error
}

// Installer replaces the bundle at installPath with a staged bundle.
type Installer interface {
	Install(ctx context.Context, stagedBundlePath, installPath string) (model.UpdateState, error)
}

// BundleInspector reads metadata of an installed bundle.
type BundleInspector interface {
	Version(bundlePath string) (string, error)
	FromAppStore(bundlePath string) bool
}

// UsageReader reports when a bundle was last launched.
type UsageReader interface {
	LastUsed(ctx context.Context, bundlePath string) (time.Time, error)
}

// HookRunner runs the scripts an application configures around the
// install step.
type HookRunner interface {
	Run(ctx context.Context, app *model.Application, hookType hooks.HookType, hctx hooks.HookContext) error
}

// Deps are the collaborators of an Engine. Everything except Resolver is
// shared across engines.
type Deps struct {
	Resolver  resolver.Resolver
	Versions  VersionCache
	Downloads download.Manager
	Extractor Extractor
	Processes ProcessController
	Installer Installer
	Bundles   BundleInspector
	// Scripts is optional; without it configured hooks are ignored.
	Scripts HookRunner
	// Usage is optional; without it every application counts as recently
	// used.
	Usage UsageReader
	// Flight deduplicates concurrent resolutions by application id. A nil
	// Flight gives the engine a group of its own.
	Flight *singleflight.Group
}

// Options tune engine policy.
type Options struct {
	// InstallMissing makes a missing application with a known latest version
	// count as updatable.
	InstallMissing bool
	Hooks          Hooks
	// Arch expands {arch} in download URLs. Defaults to the host.
	Arch string
}

// Event is a state or progress notification from one engine.
type Event struct {
	AppID    string
	State    model.UpdateState
	Progress float64
	Msg      string
}

// Hooks carries callbacks for engine events. Events of one engine are
// delivered serially and in order; a Hooks value shared by several engines
// must tolerate concurrent calls.
type Hooks struct {
	OnEvent func(Event)
}

// Status is a point-in-time snapshot of an engine.
type Status struct {
	AppID       string
	State       model.UpdateState
	Progress    float64
	Updatable   bool
	IsInstalled bool
	// FromAppStore marks bundles the App Store keeps up to date; they never
	// report an update.
	FromAppStore bool
	Installed    model.Version
	Latest       model.Version
}

// Result is the terminal state of one update in a batch.
type Result struct {
	AppID string
	State model.UpdateState
}
