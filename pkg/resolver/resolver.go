// Package resolver implements the strategies that determine the latest
// available version of an application. Resolvers are untrusted: the engine
// normalizes whatever they return and treats errors as an unknown version.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/model"
)

// Resolver type names accepted in ResolverSpec.Type.
const (
	TypeRegex   = "regex"
	TypeSparkle = "sparkle"
	TypeGitHub  = "github"
	TypeScript  = "script"
	TypeStatic  = "static"
)

// Types lists the supported resolver types.
var Types = []string{TypeRegex, TypeSparkle, TypeGitHub, TypeScript, TypeStatic}

// Resolver produces the latest version string for one application.
type Resolver interface {
	LatestVersion(ctx context.Context) (string, error)
}

// BodyFetcher is the subset of the HTTP client resolvers need.
type BodyFetcher interface {
	GetBody(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error)
}

// Func adapts a function to Resolver.
type Func func(ctx context.Context) (string, error)

// LatestVersion implements Resolver.
func (f Func) LatestVersion(ctx context.Context) (string, error) {
	return f(ctx)
}

// New builds the resolver described by spec.
func New(spec model.ResolverSpec, client BodyFetcher) (Resolver, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}

	switch strings.ToLower(spec.Type) {
	case TypeRegex:
		return NewRegex(client, spec.URL, spec.Pattern, spec.Headers)
	case TypeSparkle:
		return NewSparkle(client, spec.URL, spec.IncludePrereleases, spec.Headers), nil
	case TypeGitHub:
		return NewGitHub(client, spec.Repository, spec.URL, spec.IncludePrereleases, spec.Headers), nil
	case TypeScript:
		return NewScript(client, spec.Script, spec.URL, spec.Headers), nil
	default:
		return Static(spec.Version), nil
	}
}

// Validate checks that spec names a known type and carries its required
// parameters.
func Validate(spec model.ResolverSpec) error {
	missing := func(param string) error {
		return fmt.Errorf("%w: %s resolver requires %s", errors.ErrResolverParameter, spec.Type, param)
	}

	switch strings.ToLower(spec.Type) {
	case TypeRegex:
		if spec.URL == "" {
			return missing("url")
		}
		if spec.Pattern == "" {
			return missing("pattern")
		}
	case TypeSparkle:
		if spec.URL == "" {
			return missing("url")
		}
	case TypeGitHub:
		if spec.Repository == "" || !strings.Contains(spec.Repository, "/") {
			return missing("repository in owner/name form")
		}
	case TypeScript:
		if spec.Script == "" {
			return missing("script")
		}
	case TypeStatic:
		if spec.Version == "" {
			return missing("version")
		}
	default:
		return fmt.Errorf("%w: '%s', must be one of: %s", errors.ErrUnknownResolver, spec.Type, strings.Join(Types, ", "))
	}
	return nil
}

func resolutionError(source string, err error) error {
	return fmt.Errorf("%s: %w: %w", source, errors.ErrResolutionFailed, err)
}

func noVersion(source string) error {
	return fmt.Errorf("%s: %w: no version found", source, errors.ErrResolutionFailed)
}
