package mount

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/freshen/pkg/runner"
)

type call struct {
	command string
	args    []string
	stdin   string
}

type fakeRunner struct {
	calls []call
	fail  func(args []string) error
	info  string
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, opts runner.RunOptions) (runner.RunResult, error) {
	c := call{command: command, args: args}
	if opts.Stdin != nil {
		data, _ := io.ReadAll(opts.Stdin)
		c.stdin = string(data)
	}
	f.calls = append(f.calls, c)
	if f.fail != nil {
		if err := f.fail(args); err != nil {
			return runner.RunResult{Stderr: []byte("resource busy")}, err
		}
	}
	if len(args) > 0 && args[0] == "info" {
		return runner.RunResult{Stdout: []byte(f.info)}, nil
	}
	return runner.RunResult{}, nil
}

func infoPlist(mountPoints ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0"><dict><key>images</key><array>`)
	for _, mp := range mountPoints {
		b.WriteString(`<dict><key>image-path</key><string>/cache/other.dmg</string>` +
			`<key>system-entities</key><array>` +
			`<dict><key>content-hint</key><string>GUID_partition_scheme</string></dict>` +
			`<dict><key>mount-point</key><string>` + mp + `</string></dict>` +
			`</array></dict>`)
	}
	b.WriteString(`</array></dict></plist>`)
	return b.String()
}

func TestHdiutil_Mount(t *testing.T) {
	r := &fakeRunner{}
	h := NewHdiutil(r)
	mountPoint := filepath.Join(t.TempDir(), "com.example.app")

	require.NoError(t, h.Mount(context.Background(), "/cache/app.dmg", mountPoint))

	require.Len(t, r.calls, 1)
	assert.Equal(t, "hdiutil", r.calls[0].command)
	assert.Equal(t, []string{
		"attach", "-nobrowse", "-noautoopen", "-noverify", "-readonly",
		"-mountpoint", mountPoint, "/cache/app.dmg",
	}, r.calls[0].args)
	assert.Equal(t, "Y\n", r.calls[0].stdin)
}

func TestHdiutil_MountDetachesStaleVolume(t *testing.T) {
	mountPoint := t.TempDir()
	r := &fakeRunner{info: infoPlist("/Volumes/Other", mountPoint)}
	h := NewHdiutil(r)
	require.NoError(t, os.WriteFile(filepath.Join(mountPoint, "leftover"), nil, 0o644))

	require.NoError(t, h.Mount(context.Background(), "/cache/app.dmg", mountPoint))

	require.Len(t, r.calls, 3)
	assert.Equal(t, []string{"info", "-plist"}, r.calls[0].args)
	assert.Equal(t, []string{"detach", mountPoint, "-quiet", "-force"}, r.calls[1].args)
	assert.Equal(t, "attach", r.calls[2].args[0])
}

func TestHdiutil_MountClearsLeftoverFiles(t *testing.T) {
	mountPoint := t.TempDir()
	r := &fakeRunner{info: infoPlist("/Volumes/Other")}
	h := NewHdiutil(r)
	require.NoError(t, os.WriteFile(filepath.Join(mountPoint, "leftover"), nil, 0o644))

	require.NoError(t, h.Mount(context.Background(), "/cache/app.dmg", mountPoint))

	require.Len(t, r.calls, 2)
	assert.Equal(t, "info", r.calls[0].args[0])
	assert.Equal(t, "attach", r.calls[1].args[0])
	assert.NoFileExists(t, filepath.Join(mountPoint, "leftover"))
}

func TestHdiutil_MountStaleDetachFailure(t *testing.T) {
	mountPoint := t.TempDir()
	r := &fakeRunner{
		info: infoPlist(mountPoint),
		fail: func(args []string) error {
			if args[0] == "detach" {
				return errors.New("exit status 16")
			}
			return nil
		},
	}
	require.NoError(t, os.WriteFile(filepath.Join(mountPoint, "leftover"), nil, 0o644))

	err := NewHdiutil(r).Mount(context.Background(), "/cache/app.dmg", mountPoint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale volume")
	assert.Len(t, r.calls, 2, "attach is not attempted over a stuck volume")
	assert.FileExists(t, filepath.Join(mountPoint, "leftover"))
}

func TestHdiutil_Attached(t *testing.T) {
	r := &fakeRunner{info: infoPlist("/Volumes/One/", "/tmp/freshen/mnt/app")}
	points, err := NewHdiutil(r).Attached(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"/Volumes/One", "/tmp/freshen/mnt/app"}, points)

	_, err = NewHdiutil(&fakeRunner{info: "<plist version=\"1.0\"><dict><key>images</key>"}).Attached(context.Background())
	assert.Error(t, err)
}

func TestHdiutil_MountFailure(t *testing.T) {
	r := &fakeRunner{fail: func([]string) error { return errors.New("exit status 1") }}
	err := NewHdiutil(r).Mount(context.Background(), "/cache/app.dmg", filepath.Join(t.TempDir(), "mnt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource busy")
}

func TestHdiutil_UnmountFallsBackToForce(t *testing.T) {
	r := &fakeRunner{fail: func(args []string) error {
		if args[len(args)-1] != "-force" {
			return errors.New("exit status 16")
		}
		return nil
	}}

	require.NoError(t, NewHdiutil(r).Unmount(context.Background(), "/Volumes/app"))
	require.Len(t, r.calls, 2)
	assert.Equal(t, []string{"detach", "/Volumes/app", "-quiet"}, r.calls[0].args)
	assert.Equal(t, []string{"detach", "/Volumes/app", "-quiet", "-force"}, r.calls[1].args)
}

func TestHdiutil_UnmountFailure(t *testing.T) {
	r := &fakeRunner{fail: func([]string) error { return errors.New("exit status 16") }}
	err := NewHdiutil(r).Unmount(context.Background(), "/Volumes/app")
	require.Error(t, err)
	assert.Len(t, r.calls, 2)
}
