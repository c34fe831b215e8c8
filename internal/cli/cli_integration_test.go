//go:build integration

package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/glorpus-work/freshen/internal/logger"
	"github.com/glorpus-work/freshen/pkg/archive"
	"github.com/glorpus-work/freshen/pkg/bundle"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/test/testutil"
)

type workspace struct {
	root       string
	configPath string
	installDir string
	server     *testutil.ArtifactServer
}

func writeBundle(t *testing.T, bundlePath, version string) {
	t.Helper()
	contents := filepath.Join(bundlePath, "Contents")
	require.NoError(t, os.MkdirAll(filepath.Join(contents, "MacOS"), 0o755))
	data, err := plist.Marshal(map[string]string{
		"CFBundleIdentifier":         "com.example.tool",
		"CFBundleShortVersionString": version,
	}, plist.XMLFormat)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(bundlePath, bundle.InfoPlistPath), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(contents, "MacOS", "Tool"), []byte("#!/bin/sh\n"), 0o755))
}

// newWorkspace serves Tool-1.3.0.zip and writes a config managing a Tool.app
// that starts at 1.2.0.
func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()

	src := filepath.Join(root, "src")
	writeBundle(t, filepath.Join(src, "Tool.app"), "1.3.0")
	zipPath := filepath.Join(root, "Tool-1.3.0.zip")
	require.NoError(t, archive.NewManager().Create(context.Background(), src, zipPath))
	payload, err := os.ReadFile(zipPath)
	require.NoError(t, err)

	server := testutil.NewArtifactServer(t, map[string][]byte{"/Tool-1.3.0.zip": payload})

	installDir := filepath.Join(root, "Applications")
	writeBundle(t, filepath.Join(installDir, "Tool.app"), "1.2.0")

	cfg := `apps:
  - id: com.example.tool
    name: Tool
    install_path: ` + filepath.Join(installDir, "Tool.app") + `
    download_url: ` + server.URL + `/Tool-{version}.zip
    resolver:
      type: static
      version: 1.3.0
  - id: com.example.other
    install_path: ` + filepath.Join(installDir, "Other.app") + `
    download_url: ` + server.URL + `/Other-{version}.exe
    resolver:
      type: static
      version: 0.9.0
settings:
  cache_dir: ` + filepath.Join(root, "cache") + `
  state_dir: ` + filepath.Join(root, "state") + `
  mount_dir: ` + filepath.Join(root, "mnt") + `
  http_timeout: 5s
  auth:
    api.github.com:
      bearer:
        token: ghp_secret
`
	configPath := testutil.WriteConfig(t, root, "config.yaml", cfg)

	return &workspace{root: root, configPath: configPath, installDir: installDir, server: server}
}

func (ws *workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logger.SetTestOutput(io.Discard)
	t.Cleanup(logger.UnsetTestOutput)

	path, verbose, plain := ws.configPath, false, true
	ConfigPath, Verbose, NoColor = &path, &verbose, &plain

	root := &cobra.Command{Use: "freshen", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(NewListCmd(), NewCheckCmd(), NewUpdateCmd(), NewInstallCmd(), NewCacheCmd(), NewConfigCmd(), NewVersionCmd())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func installedVersion(t *testing.T, ws *workspace) string {
	t.Helper()
	v, err := bundle.NewInspector().Version(filepath.Join(ws.installDir, "Tool.app"))
	require.NoError(t, err)
	return v
}

func TestCLI_CheckUpdateList(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.tool")
	assert.Contains(t, out, "update available")
	assert.Contains(t, out, "not installed")
	assert.Contains(t, out, "1 update available.")

	out, err = ws.run(t, "update", "--dry-run", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.tool 1.2.0 -> 1.3.0")
	assert.Equal(t, int32(0), ws.server.Hits())

	out, err = ws.run(t, "update", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.tool: updated")
	assert.Equal(t, "1.3.0", installedVersion(t, ws))
	assert.Equal(t, int32(1), ws.server.Hits())

	out, err = ws.run(t, "update", "com.example.tool")
	require.NoError(t, err)
	assert.Contains(t, out, "Everything is up to date.")

	// reinstall comes from the download cache
	out, err = ws.run(t, "update", "--force", "com.example.tool")
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.tool: updated")
	assert.Equal(t, int32(1), ws.server.Hits())

	out, err = ws.run(t, "list")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[1], "1.3.0")
	assert.Contains(t, lines[2], "-")
}

func TestCLI_UpdateUnknownApp(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "update", "com.example.missing")
	assert.ErrorIs(t, err, errors.ErrAppNotFound)
}

func TestCLI_InstallLocalArtifact(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "install", "com.example.tool", filepath.Join(ws.root, "Tool-1.3.0.zip"))
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.tool: updated")
	assert.Equal(t, "1.3.0", installedVersion(t, ws))

	_, err = ws.run(t, "install", "com.example.tool", filepath.Join(ws.root, "setup.exe"))
	assert.ErrorIs(t, err, errors.ErrUnsupportedFormat)
	assert.Equal(t, "1.3.0", installedVersion(t, ws))
}

func TestCLI_Cache(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "update", "--all")
	require.NoError(t, err)

	out, err := ws.run(t, "cache", "dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(ws.root, "cache")+"\n", out)

	out, err = ws.run(t, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "(1 files)")

	out, err = ws.run(t, "cache", "clean", "--artifacts")
	require.NoError(t, err)
	assert.Contains(t, out, "Artifacts")

	out, err = ws.run(t, "cache", "clean", "--versions")
	require.NoError(t, err)
	assert.Contains(t, out, "2 cached entries")
}

func TestCLI_Config(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, ws.configPath+"\n", out)

	out, err = ws.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.tool")
	assert.Contains(t, out, "version_ttl: 24h0m0s")
	assert.NotContains(t, out, "ghp_secret")

	_, err = ws.run(t, "config", "init")
	assert.ErrorIs(t, err, errors.ErrConfigFileExists)

	ws.configPath = filepath.Join(ws.root, "fresh", "config.toml")
	_, err = ws.run(t, "config", "init", "--minimal")
	require.NoError(t, err)
	data, err := os.ReadFile(ws.configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[settings]")

	out, err = ws.run(t, "config", "hook-template", "pre-install")
	require.NoError(t, err)
	assert.Contains(t, out, "stagedPath")

	_, err = ws.run(t, "config", "hook-template", "post-remove")
	assert.Error(t, err)
}

func TestCLI_UpdateRunsHooks(t *testing.T) {
	ws := newWorkspace(t)
	marker := filepath.Join(ws.root, "post-install.txt")
	hook := filepath.Join(ws.root, "post-install.tengo")
	require.NoError(t, os.WriteFile(hook, []byte(`os := import("os")
f := os.create(`+strconv.Quote(marker)+`)
f.write_string(appID + " " + version)
f.close()
`), 0o644))

	data, err := os.ReadFile(ws.configPath)
	require.NoError(t, err)
	cfg := strings.Replace(string(data), "    resolver:\n      type: static\n      version: 1.3.0\n",
		"    resolver:\n      type: static\n      version: 1.3.0\n    hooks:\n      pre_install: 'if appID != \"com.example.tool\" { err = \"wrong app\" }'\n      post_install: "+hook+"\n", 1)
	require.NoError(t, os.WriteFile(ws.configPath, []byte(cfg), 0o644))

	out, err := ws.run(t, "update", "com.example.tool")
	require.NoError(t, err)
	assert.Contains(t, out, "com.example.tool: updated")

	written, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "com.example.tool 1.3.0", string(written))
}

func TestCLI_Version(t *testing.T) {
	ws := newWorkspace(t)
	out, err := ws.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "freshen version "+Version)
}
