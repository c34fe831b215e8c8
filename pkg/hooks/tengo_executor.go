package hooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/model"
)

// scriptModules are the tengo stdlib modules a hook may import.
var scriptModules = []string{"fmt", "os", "text", "times", "json"}

// TengoExecutor runs application hooks as tengo scripts.
type TengoExecutor struct {
	vars map[string]interface{}
}

// NewTengoExecutor creates an executor. vars are added to every script.
func NewTengoExecutor(vars map[string]interface{}) *TengoExecutor {
	return &TengoExecutor{vars: vars}
}

// Run executes the hook of hookType configured for app. Applications
// without such a hook succeed immediately.
func (e *TengoExecutor) Run(ctx context.Context, app *model.Application, hookType HookType, hctx HookContext) error {
	source, err := Script(app, hookType)
	if err != nil {
		return err
	}
	if source == "" {
		return nil
	}
	logger.Debug("Running hook", logger.Fields{"app": app.ID, "hook": string(hookType)})
	return e.Execute(ctx, hookType, source, hctx)
}

// Execute runs source with the context variables predeclared. The script
// signals failure by assigning a non-empty value to err.
func (e *TengoExecutor) Execute(ctx context.Context, hookType HookType, source string, hctx HookContext) error {
	script := tengo.NewScript([]byte(source))
	script.SetImports(stdlib.GetModuleMap(scriptModules...))

	vars := map[string]interface{}{
		"appID":       hctx.AppID,
		"version":     hctx.Version,
		"stagedPath":  hctx.StagedPath,
		"installPath": hctx.InstallPath,
		"err":         "",
	}
	for k, v := range e.vars {
		vars[k] = v
	}
	for k, v := range hctx.Vars {
		vars[k] = v
	}
	for name, value := range vars {
		if err := script.Add(name, value); err != nil {
			return fmt.Errorf("failed to add variable '%s' to script: %w", name, err)
		}
	}

	compiled, err := script.RunContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", hookType, ErrHookExecution, err)
	}

	errVar := compiled.Get("err")
	switch v := errVar.Value().(type) {
	case error:
		return fmt.Errorf("%s: %w: %w", hookType, ErrHookScript, v)
	case string:
		if msg := strings.TrimSpace(v); msg != "" {
			return fmt.Errorf("%s: %w: %s", hookType, ErrHookScript, msg)
		}
	}
	return nil
}
