// Package hooks runs the per-application tengo scripts configured around
// the install step, e.g. to clear quarantine attributes or to stop a helper
// daemon before its bundle is replaced.
package hooks

// HookType represents the type of hooks.
type HookType string

// Supported hooks types.
const (
	PreInstall  HookType = "pre-install"
	PostInstall HookType = "post-install"
)

// HookContext is exposed to scripts as predeclared variables.
type HookContext struct {
	AppID       string
	Version     string
	StagedPath  string
	InstallPath string
	Vars        map[string]interface{}
}
