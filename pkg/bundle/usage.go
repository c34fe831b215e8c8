package bundle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/runner"
)

const (
	lastUsedAttribute = "kMDItemLastUsedDate"
	// mdls prints dates in UTC with a numeric zone
	mdlsDateLayout = "2006-01-02 15:04:05 -0700"
	mdlsNull       = "(null)"
)

// Usage reads Spotlight launch metadata of bundles with mdls.
type Usage struct {
	runner runner.Runner
	binary string
}

func NewUsage(r runner.Runner) *Usage {
	if r == nil {
		r = runner.CmdRunner{}
	}
	return &Usage{runner: r, binary: "mdls"}
}

// LastUsed returns when the bundle was last launched. A bundle Spotlight has
// never seen launched yields ErrNotFound.
func (u *Usage) LastUsed(ctx context.Context, bundlePath string) (time.Time, error) {
	res, err := u.runner.Run(ctx, u.binary, []string{"-raw", "-name", lastUsedAttribute, bundlePath}, runner.RunOptions{})
	if err != nil {
		return time.Time{}, fmt.Errorf("mdls %s: %s", bundlePath, runner.Describe(err, res))
	}

	raw := strings.TrimSpace(string(res.Stdout))
	if raw == "" || raw == mdlsNull {
		return time.Time{}, fmt.Errorf("%s: no %s: %w", bundlePath, lastUsedAttribute, errors.ErrNotFound)
	}
	t, err := time.Parse(mdlsDateLayout, raw)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "failed to parse %s of %s", lastUsedAttribute, bundlePath)
	}
	return t, nil
}
