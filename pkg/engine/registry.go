package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/model"
	"github.com/glorpus-work/freshen/pkg/resolver"
)

const (
	// DefaultMaxConcurrent bounds CheckAll and UpdateAll when no limit is given.
	DefaultMaxConcurrent = 4
	// DefaultRecentWindow is how far back a launch counts as recent use.
	DefaultRecentWindow = 7 * 24 * time.Hour
)

// ResolverFactory builds the resolver of one application.
type ResolverFactory func(app *model.Application) (resolver.Resolver, error)

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	MaxConcurrent  int
	InstallMissing bool
	Hooks          Hooks
	Arch           string
	// RecentOnly limits batches without explicit ids to applications
	// launched within RecentWindow.
	RecentOnly   bool
	RecentWindow time.Duration
}

// Registry holds one engine per configured application, in configuration
// order.
type Registry struct {
	engines       []*Engine
	byID          map[string]*Engine
	maxConcurrent int
	recentOnly    bool
	recentWindow  time.Duration
	now           func() time.Time
}

// NewRegistry builds an engine for every application. shared supplies the
// collaborators common to all engines; its Resolver is ignored in favor of
// newResolver.
func NewRegistry(apps []*model.Application, shared Deps, newResolver ResolverFactory, opts RegistryOptions) (*Registry, error) {
	if shared.Flight == nil {
		shared.Flight = &singleflight.Group{}
	}
	limit := opts.MaxConcurrent
	if limit < 1 {
		limit = DefaultMaxConcurrent
	}

	window := opts.RecentWindow
	if window <= 0 {
		window = DefaultRecentWindow
	}

	r := &Registry{
		engines:       make([]*Engine, 0, len(apps)),
		byID:          make(map[string]*Engine, len(apps)),
		maxConcurrent: limit,
		recentOnly:    opts.RecentOnly,
		recentWindow:  window,
		now:           time.Now,
	}
	for _, app := range apps {
		if app == nil {
			continue
		}
		if app.ID == "" {
			return nil, errors.ErrEmptyAppID
		}
		if _, dup := r.byID[app.ID]; dup {
			return nil, fmt.Errorf("%w: %s", errors.ErrDuplicateAppID, app.ID)
		}
		deps := shared
		res, err := newResolver(app)
		if err != nil {
			return nil, errors.AppError(app.ID, err)
		}
		deps.Resolver = res

		e := New(app, deps, Options{InstallMissing: opts.InstallMissing, Hooks: opts.Hooks, Arch: opts.Arch})
		r.engines = append(r.engines, e)
		r.byID[app.ID] = e
	}
	return r, nil
}

// Get returns the engine for id.
func (r *Registry) Get(id string) (*Engine, error) {
	e, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrAppNotFound, id)
	}
	return e, nil
}

// Engines returns all engines in configuration order.
func (r *Registry) Engines() []*Engine {
	out := make([]*Engine, len(r.engines))
	copy(out, r.engines)
	return out
}

// Select returns the engines for ids, or all engines when ids is empty.
func (r *Registry) Select(ids []string) ([]*Engine, error) {
	if len(ids) == 0 {
		return r.Engines(), nil
	}
	out := make([]*Engine, 0, len(ids))
	for _, id := range ids {
		e, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// batch selects the engines a batch operation runs on. Explicit ids are
// taken as given; otherwise RecentOnly drops applications not launched
// recently.
func (r *Registry) batch(ctx context.Context, ids []string) ([]*Engine, error) {
	engines, err := r.Select(ids)
	if err != nil || len(ids) > 0 || !r.recentOnly {
		return engines, err
	}
	return r.Recent(ctx, engines), nil
}

// Recent returns the engines whose application was used within the recent
// window, keeping their order.
func (r *Registry) Recent(ctx context.Context, engines []*Engine) []*Engine {
	since := r.now().Add(-r.recentWindow)
	recent := make([]bool, len(engines))
	g := &errgroup.Group{}
	g.SetLimit(r.maxConcurrent)
	for i, e := range engines {
		g.Go(func() error {
			recent[i] = e.UsedSince(ctx, since)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*Engine, 0, len(engines))
	for i, e := range engines {
		if recent[i] {
			out = append(out, e)
		} else {
			logger.Debug("Skipping application not used recently", logger.Fields{"app": e.App().ID})
		}
	}
	return out
}

// CheckAll computes HasUpdate for the selected engines concurrently and
// returns their status in selection order. With refresh set, cached versions
// are resolved again.
func (r *Registry) CheckAll(ctx context.Context, ids []string, refresh bool) ([]Status, error) {
	engines, err := r.batch(ctx, ids)
	if err != nil {
		return nil, err
	}

	statuses := make([]Status, len(engines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)
	for i, e := range engines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if refresh {
				e.Refresh(gctx)
			}
			e.HasUpdate(gctx)
			statuses[i] = e.Status()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return statuses, nil
}

// UpdateAll runs Update on the selected engines concurrently. Failed updates
// do not stop the others; their state is reported in the results.
func (r *Registry) UpdateAll(ctx context.Context, ids []string) ([]Result, error) {
	return r.each(ctx, ids, (*Engine).Update)
}

// ReinstallAll is UpdateAll with Reinstall.
func (r *Registry) ReinstallAll(ctx context.Context, ids []string) ([]Result, error) {
	return r.each(ctx, ids, (*Engine).Reinstall)
}

func (r *Registry) each(ctx context.Context, ids []string, attempt func(*Engine, context.Context) model.UpdateState) ([]Result, error) {
	engines, err := r.batch(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(engines))
	g := &errgroup.Group{}
	g.SetLimit(r.maxConcurrent)
	for i, e := range engines {
		g.Go(func() error {
			results[i] = Result{AppID: e.App().ID, State: attempt(e, ctx)}
			return nil
		})
	}
	_ = g.Wait()
	return results, ctx.Err()
}
