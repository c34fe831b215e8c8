package hooks_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/freshen/pkg/hooks"
	"github.com/glorpus-work/freshen/pkg/model"
)

func hookContext() hooks.HookContext {
	return hooks.HookContext{
		AppID:       "com.example.tool",
		Version:     "1.3.0",
		StagedPath:  "/staging/Tool.app",
		InstallPath: "/Applications/Tool.app",
		Vars:        map[string]interface{}{"customVar": "customValue"},
	}
}

func TestTengoExecutor_Execute(t *testing.T) {
	executor := hooks.NewTengoExecutor(map[string]interface{}{"dryRun": false})
	ctx := context.Background()

	tests := []struct {
		name    string
		script  string
		wantErr error
	}{
		{
			name:   "empty script",
			script: `// nothing to do`,
		},
		{
			name: "context variables",
			script: `
				text := import("text")
				if appID != "com.example.tool" || version != "1.3.0" || customVar != "customValue" || dryRun {
					err = "unexpected context"
				}
				if !text.has_suffix(installPath, ".app") || stagedPath == "" {
					err = "unexpected paths"
				}
			`,
		},
		{
			name:    "script reports failure",
			script:  `err = "bundle is not signed"`,
			wantErr: hooks.ErrHookScript,
		},
		{
			name:    "runtime error",
			script:  `non_existent_function()`,
			wantErr: hooks.ErrHookExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executor.Execute(ctx, hooks.PreInstall, tt.script, hookContext())
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTengoExecutor_ExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := hooks.NewTengoExecutor(nil).Execute(ctx, hooks.PostInstall, `for {}`, hookContext())
	assert.ErrorIs(t, err, hooks.ErrHookExecution)
}

func TestTengoExecutor_Run(t *testing.T) {
	executor := hooks.NewTengoExecutor(nil)
	app := &model.Application{ID: "com.example.tool"}

	// no hook configured
	require.NoError(t, executor.Run(context.Background(), app, hooks.PreInstall, hookContext()))

	app.Hooks.PostInstall = `err = "post failed: " + appID`
	err := executor.Run(context.Background(), app, hooks.PostInstall, hookContext())
	assert.ErrorIs(t, err, hooks.ErrHookScript)
	assert.Contains(t, err.Error(), "post failed: com.example.tool")
}

func TestScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pre.tengo")
	require.NoError(t, os.WriteFile(path, []byte(`err = ""`), 0o644))

	app := &model.Application{Hooks: model.AppHooks{PreInstall: path, PostInstall: "  x := 1  "}}

	src, err := hooks.Script(app, hooks.PreInstall)
	require.NoError(t, err)
	assert.Equal(t, `err = ""`, src)

	src, err = hooks.Script(app, hooks.PostInstall)
	require.NoError(t, err)
	assert.Equal(t, "x := 1", src)

	app.Hooks.PreInstall = filepath.Join(dir, "missing.tengo")
	_, err = hooks.Script(app, hooks.PreInstall)
	assert.ErrorIs(t, err, hooks.ErrHookLoad)

	_, err = hooks.Script(app, hooks.HookType("pre-remove"))
	assert.ErrorIs(t, err, hooks.ErrHookLoad)
}

func TestHookTemplate(t *testing.T) {
	assert.True(t, strings.HasPrefix(hooks.HookTemplate(hooks.PreInstall), "// Pre-install hook"))
	assert.Contains(t, hooks.HookTemplate(hooks.PostInstall), "xattr")
	assert.Contains(t, hooks.HookTemplate("other"), "Unknown hook type")
}
