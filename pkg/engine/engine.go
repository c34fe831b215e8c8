// Package engine drives the per-application update state machine: version
// resolution, download, extraction, process handling and installation.
package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/download"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/fsutil"
	"github.com/glorpus-work/freshen/pkg/hooks"
	"github.com/glorpus-work/freshen/pkg/model"
	"github.com/glorpus-work/freshen/pkg/platform"
)

// Engine owns the update state of a single application. At most one update
// attempt is live at a time; starting a new one supersedes the previous.
type Engine struct {
	app            *model.Application
	deps           Deps
	flight         *singleflight.Group
	installMissing bool
	hooks          Hooks
	arch           string

	mu         sync.Mutex
	state      model.UpdateState
	progress   float64
	updatable  bool
	latest     model.Version
	generation uint64
	cancel     context.CancelFunc

	// serializes the filesystem phase of attempts
	installMu sync.Mutex
	// serializes event delivery
	eventMu sync.Mutex
	// attempts not yet finished, guarded by mu; idle is signaled at zero
	running int
	idle    *sync.Cond
}

// New creates an engine for app.
func New(app *model.Application, deps Deps, opts Options) *Engine {
	flight := deps.Flight
	if flight == nil {
		flight = &singleflight.Group{}
	}
	arch := opts.Arch
	if arch == "" {
		arch = platform.Current().Arch
	}
	e := &Engine{
		app:            app,
		deps:           deps,
		flight:         flight,
		installMissing: opts.InstallMissing,
		hooks:          opts.Hooks,
		arch:           arch,
		state:          model.StateIdle,
	}
	e.idle = sync.NewCond(&e.mu)
	return e
}

// App returns the application this engine manages.
func (e *Engine) App() *model.Application {
	return e.app
}

// LatestVersion returns the cached latest version or resolves it. Concurrent
// resolutions for the same application share one resolver call, which is not
// canceled with the caller that started it. Failures and a canceled ctx yield
// ZeroVersion and are not cached.
func (e *Engine) LatestVersion(ctx context.Context) model.Version {
	if entry, err := e.deps.Versions.Get(e.app.ID); err == nil {
		v := model.ParseVersion(entry.Version)
		e.setLatest(v)
		return v
	}

	// The shared resolution outlives any single caller; each caller stops
	// waiting when its own ctx ends.
	ch := e.flight.DoChan(e.app.ID, func() (interface{}, error) {
		return e.resolve(context.WithoutCancel(ctx))
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		logger.Debug("Stopped waiting for version resolution", logger.Fields{"app": e.app.ID, "error": ctx.Err().Error()})
		return model.ZeroVersion
	}
	if res.Err != nil {
		logger.Warn("Version resolution failed", logger.Fields{"app": e.app.ID, "error": res.Err.Error()})
		e.setLatest(model.ZeroVersion)
		return model.ZeroVersion
	}
	v := res.Val.(model.Version)
	e.setLatest(v)
	return v
}

func (e *Engine) resolve(ctx context.Context) (model.Version, error) {
	if e.deps.Resolver == nil {
		return model.ZeroVersion, fmt.Errorf("no resolver configured: %w", errors.ErrResolutionFailed)
	}
	raw, err := e.deps.Resolver.LatestVersion(ctx)
	if err != nil {
		if stderrors.Is(err, errors.ErrResolutionFailed) {
			return model.ZeroVersion, err
		}
		return model.ZeroVersion, fmt.Errorf("%w: %w", errors.ErrResolutionFailed, err)
	}
	v := model.ParseVersion(raw)
	if v.IsZero() {
		return model.ZeroVersion, fmt.Errorf("malformed version %q: %w", raw, errors.ErrResolutionFailed)
	}
	if err := e.deps.Versions.Put(e.app.ID, v.String()); err != nil {
		logger.Warn("Failed to cache version", logger.Fields{"app": e.app.ID, "error": err.Error()})
	}
	logger.Debug("Resolved latest version", logger.Fields{"app": e.app.ID, "version": v.String()})
	return v, nil
}

// Refresh drops the cached version and resolves it again.
func (e *Engine) Refresh(ctx context.Context) model.Version {
	if err := e.deps.Versions.Invalidate(e.app.ID); err != nil {
		logger.Warn("Failed to invalidate cached version", logger.Fields{"app": e.app.ID, "error": err.Error()})
	}
	return e.LatestVersion(ctx)
}

// InstalledVersion returns the version of the installed bundle and whether
// anything is installed. An installed bundle without a readable version
// reports ZeroVersion.
func (e *Engine) InstalledVersion() (model.Version, bool) {
	if e.app.InstallPath == "" || !fsutil.Exists(e.app.InstallPath) {
		return model.ZeroVersion, false
	}
	raw, err := e.deps.Bundles.Version(e.app.InstallPath)
	if err != nil {
		logger.Debug("Failed to read installed version", logger.Fields{"app": e.app.ID, "error": err.Error()})
		return model.ZeroVersion, true
	}
	return model.ParseVersion(raw), true
}

// FromAppStore reports whether the installed bundle came from the App Store.
func (e *Engine) FromAppStore() bool {
	if e.app.InstallPath == "" || !fsutil.Exists(e.app.InstallPath) {
		return false
	}
	return e.deps.Bundles.FromAppStore(e.app.InstallPath)
}

// UsedSince reports whether the application was launched at or after since.
// Applications that are not installed count as used; installed ones Spotlight
// never saw launched do not. Without a UsageReader everything counts as used.
func (e *Engine) UsedSince(ctx context.Context, since time.Time) bool {
	if e.deps.Usage == nil || e.app.InstallPath == "" || !fsutil.Exists(e.app.InstallPath) {
		return true
	}
	last, err := e.deps.Usage.LastUsed(ctx, e.app.InstallPath)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return false
		}
		logger.Warn("Failed to read last use", logger.Fields{"app": e.app.ID, "error": err.Error()})
		return true
	}
	return !last.Before(since)
}

// HasUpdate reports whether the latest version is strictly greater than the
// installed one. App Store bundles never have an update.
func (e *Engine) HasUpdate(ctx context.Context) bool {
	latest := e.LatestVersion(ctx)
	installed, ok := e.InstalledVersion()
	has := e.isUpdate(latest, installed, ok)
	if has && ok && e.FromAppStore() {
		logger.Debug("Skipping App Store bundle", logger.Fields{"app": e.app.ID})
		has = false
	}

	e.mu.Lock()
	e.updatable = has
	e.mu.Unlock()
	return has
}

func (e *Engine) isUpdate(latest, installed model.Version, isInstalled bool) bool {
	if latest.IsZero() {
		return false
	}
	if !isInstalled {
		return e.installMissing
	}
	return latest.GreaterThan(installed)
}

// Status returns a snapshot of the engine.
func (e *Engine) Status() Status {
	installed, ok := e.InstalledVersion()
	fromAppStore := ok && e.FromAppStore()

	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		AppID:        e.app.ID,
		State:        e.state,
		Progress:     e.progress,
		Updatable:    e.updatable,
		IsInstalled:  ok,
		FromAppStore: fromAppStore,
		Installed:    installed,
		Latest:       e.latest,
	}
}

// Update runs a full attempt synchronously and returns its terminal state.
// It does not consult HasUpdate; an installed bundle already at the latest
// version ends the attempt Updated without touching it. The engine is back in
// Idle when Update returns.
func (e *Engine) Update(ctx context.Context) model.UpdateState {
	ctx, gen, done := e.begin(ctx)
	defer done()

	state := e.run(ctx, gen, false)
	e.settle(gen)
	return state
}

// Reinstall is Update without the shortcut that ends the attempt when the
// installed bundle is already at the latest version.
func (e *Engine) Reinstall(ctx context.Context) model.UpdateState {
	ctx, gen, done := e.begin(ctx)
	defer done()

	state := e.run(ctx, gen, true)
	e.settle(gen)
	return state
}

// UpdateApp starts an attempt on a new goroutine, superseding any attempt in
// flight. completion receives the terminal state unless the attempt is
// itself superseded first.
func (e *Engine) UpdateApp(ctx context.Context, completion func(model.UpdateState)) {
	ctx, gen, done := e.begin(ctx)
	go func() {
		defer done()
		state := e.run(ctx, gen, false)
		if completion != nil && e.current(gen) {
			completion(state)
		}
		e.settle(gen)
	}()
}

// Wait blocks until no attempt is running. Attempts started while Wait
// blocks are waited for too.
func (e *Engine) Wait() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.running > 0 {
		e.idle.Wait()
	}
}

// Install installs an already downloaded artifact, driving InstallingUpdate
// to a terminal state.
func (e *Engine) Install(ctx context.Context, artifactPath string) model.UpdateState {
	ctx, gen, done := e.begin(ctx)
	defer done()

	state := e.install(ctx, gen, artifactPath, model.ZeroVersion, true)
	e.settle(gen)
	return state
}

func (e *Engine) run(ctx context.Context, gen uint64, always bool) model.UpdateState {
	e.transition(gen, model.StateGatheringInfo, "")

	latest := e.LatestVersion(ctx)
	if latest.IsZero() {
		return e.finish(gen, fmt.Errorf("latest version unknown: %w", errors.ErrResolutionFailed))
	}

	url := e.app.ArtifactURL(latest, e.arch)
	ext := e.app.ArtifactExtension(url)
	if model.ClassifyExtension(ext) == model.ArtifactUnsupported {
		return e.finish(gen, fmt.Errorf("%s: extension %q: %w", url, ext, errors.ErrUnsupportedFormat))
	}

	e.transition(gen, model.StateDownloadingUpdate, latest.String())
	artifactPath, err := e.deps.Downloads.Fetch(ctx, download.Request{
		ID:      e.app.ID,
		Version: latest.String(),
		Ext:     ext,
		URL:     url,
	}, func(fraction float64) {
		e.reportProgress(gen, fraction)
	})
	if err != nil {
		return e.finish(gen, err)
	}

	return e.install(ctx, gen, artifactPath, latest, always)
}

// install runs the filesystem phase. Unless always is set, the install is
// skipped when the installed bundle already has target.
func (e *Engine) install(ctx context.Context, gen uint64, artifactPath string, target model.Version, always bool) model.UpdateState {
	e.installMu.Lock()
	defer e.installMu.Unlock()

	if err := ctx.Err(); err != nil {
		return e.finish(gen, err)
	}
	if !always && !target.IsZero() {
		if installed, ok := e.InstalledVersion(); ok && !target.GreaterThan(installed) {
			logger.Info("Already at target version", logger.Fields{"app": e.app.ID, "version": installed.String()})
			return e.finishState(gen, model.StateUpdated, "already at "+installed.String())
		}
	}

	e.transition(gen, model.StateInstallingUpdate, "")

	wasRunning, err := e.deps.Processes.TerminateRunning(ctx, e.app)
	if err != nil {
		logger.Warn("Failed to terminate running instances", logger.Fields{"app": e.app.ID, "error": err.Error()})
	}

	staged, err := e.deps.Extractor.Extract(ctx, e.app, artifactPath)
	if err != nil {
		return e.finish(gen, err)
	}

	hctx := hooks.HookContext{AppID: e.app.ID, StagedPath: staged, InstallPath: e.app.InstallPath}
	if !target.IsZero() {
		hctx.Version = target.String()
	}
	if err := e.runHook(ctx, hooks.PreInstall, hctx); err != nil {
		_ = os.RemoveAll(staged)
		return e.finish(gen, fmt.Errorf("%w: %w", errors.ErrInstallFailed, err))
	}

	if _, err := e.deps.Installer.Install(ctx, staged, e.app.InstallPath); err != nil {
		return e.finish(gen, err)
	}

	if err := e.runHook(ctx, hooks.PostInstall, hctx); err != nil {
		logger.Warn("Post-install hook failed", logger.Fields{"app": e.app.ID, "error": err.Error()})
	}

	if wasRunning {
		if err := e.deps.Processes.Relaunch(ctx, e.app.InstallPath); err != nil {
			logger.Warn("Failed to relaunch application", logger.Fields{"app": e.app.ID, "error": err.Error()})
		}
	}

	logger.Success("Application updated", logger.Fields{"app": e.app.ID, "path": e.app.InstallPath})
	return e.finishState(gen, model.StateUpdated, "")
}

func (e *Engine) runHook(ctx context.Context, hookType hooks.HookType, hctx hooks.HookContext) error {
	if e.deps.Scripts == nil {
		return nil
	}
	return e.deps.Scripts.Run(ctx, e.app, hookType, hctx)
}

// StateForError maps a pipeline error to its terminal state.
func StateForError(err error) model.UpdateState {
	if stderrors.Is(err, errors.ErrUnsupportedFormat) {
		return model.StateUnsupported
	}
	return model.StateFailed
}

func (e *Engine) finish(gen uint64, err error) model.UpdateState {
	state := StateForError(err)
	if e.current(gen) {
		logger.Error("Update failed", logger.Fields{"app": e.app.ID, "state": state.String(), "error": err.Error()})
	}
	return e.finishState(gen, state, err.Error())
}

func (e *Engine) finishState(gen uint64, state model.UpdateState, msg string) model.UpdateState {
	e.transition(gen, state, msg)
	return state
}

// begin starts a new attempt, canceling the previous one.
func (e *Engine) begin(parent context.Context) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(parent)

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.generation++
	gen := e.generation
	e.cancel = cancel
	e.progress = 0
	e.running++
	e.mu.Unlock()

	return ctx, gen, func() {
		cancel()
		e.mu.Lock()
		if e.generation == gen {
			e.cancel = nil
		}
		e.running--
		if e.running == 0 {
			e.idle.Broadcast()
		}
		e.mu.Unlock()
	}
}

func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}

// settle resets a finished attempt to Idle.
func (e *Engine) settle(gen uint64) {
	e.update(gen, func() bool {
		e.state = model.StateIdle
		e.progress = 0
		e.updatable = false
		return true
	}, "")
}

func (e *Engine) transition(gen uint64, state model.UpdateState, msg string) {
	e.update(gen, func() bool {
		e.state = state
		e.progress = 0
		return true
	}, msg)
}

func (e *Engine) reportProgress(gen uint64, fraction float64) {
	fraction = min(max(fraction, 0), 1)
	e.update(gen, func() bool {
		if e.state != model.StateDownloadingUpdate || fraction <= e.progress {
			return false
		}
		e.progress = fraction
		return true
	}, "")
}

// update applies mutate for the attempt gen and emits the resulting event.
// Attempts that have been superseded change nothing.
func (e *Engine) update(gen uint64, mutate func() bool, msg string) {
	e.eventMu.Lock()
	defer e.eventMu.Unlock()

	e.mu.Lock()
	if e.generation != gen || !mutate() {
		e.mu.Unlock()
		return
	}
	ev := Event{AppID: e.app.ID, State: e.state, Progress: e.progress, Msg: msg}
	e.mu.Unlock()

	if e.hooks.OnEvent != nil {
		e.hooks.OnEvent(ev)
	}
}

func (e *Engine) setLatest(v model.Version) {
	e.mu.Lock()
	e.latest = v
	e.mu.Unlock()
}
