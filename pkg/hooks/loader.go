package hooks

import (
	"fmt"
	"os"
	"strings"

	"github.com/glorpus-work/freshen/pkg/model"
)

// ScriptFileExtension marks a hook value as a path to a script file.
const ScriptFileExtension = ".tengo"

// Script returns the source configured for hookType, reading it from disk
// when the value names a .tengo file. An empty result means no hook.
func Script(app *model.Application, hookType HookType) (string, error) {
	var value string
	switch hookType {
	case PreInstall:
		value = app.Hooks.PreInstall
	case PostInstall:
		value = app.Hooks.PostInstall
	default:
		return "", fmt.Errorf("%w: unsupported hook type %q", ErrHookLoad, hookType)
	}

	value = strings.TrimSpace(value)
	if !strings.HasSuffix(value, ScriptFileExtension) || strings.ContainsAny(value, "\n;") {
		return value, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHookLoad, err)
	}
	return string(data), nil
}

// HookTemplate generates a template for a hook script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreInstall:
		return `// Pre-install hook
// Runs after the new bundle is staged and before the installed one is replaced.
// Available variables:
// - appID: string - application id
// - version: string - version being installed, empty for local artifacts
// - stagedPath: string - path of the staged bundle
// - installPath: string - path the bundle will be installed to
// Assign a message to err to abort the install.

// Example: refuse bundles without an executable
/*
if !os.stat(stagedPath + "/Contents/MacOS") {
    err = "bundle has no executable"
}
*/`

	case PostInstall:
		return `// Post-install hook
// Runs after the bundle has been replaced. Failures are logged only.
// Available variables: same as the pre-install hook

// Example: clear the quarantine attribute
/*
os.exec("/usr/bin/xattr", "-dr", "com.apple.quarantine", installPath).run()
*/`

	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
