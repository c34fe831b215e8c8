package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/freshen/pkg/archive"
	"github.com/glorpus-work/freshen/pkg/errors"
	"github.com/glorpus-work/freshen/pkg/model"
)

type fakeMounter struct {
	// volume entries created at the mount point, relative path -> content
	files      map[string]string
	mountErr   error
	unmountErr error
	mounted    []string
	unmounted  []string
}

func (f *fakeMounter) Mount(_ context.Context, _ string, mountPoint string) error {
	f.mounted = append(f.mounted, mountPoint)
	if f.mountErr != nil {
		return f.mountErr
	}
	for rel, content := range f.files {
		path := filepath.Join(mountPoint, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMounter) Unmount(_ context.Context, mountPoint string) error {
	f.unmounted = append(f.unmounted, mountPoint)
	return f.unmountErr
}

type failingUnpacker struct{}

func (failingUnpacker) ExtractAll(context.Context, string, string) error {
	return fmt.Errorf("corrupt archive")
}

func testApp() *model.Application {
	return &model.Application{ID: "com.example.app", InstallPath: "/Applications/Example.app"}
}

func newTestExtractor(t *testing.T, m *fakeMounter) (*Extractor, string) {
	t.Helper()
	root := t.TempDir()
	return NewExtractor(filepath.Join(root, "staging"), filepath.Join(root, "mnt"), m, archive.NewManager()), root
}

func TestExtract_DiskImage(t *testing.T) {
	m := &fakeMounter{files: map[string]string{
		"Applications":                       "",
		"Example.app/Contents/Info.plist":    "plist",
		"Example.app/Contents/MacOS/Example": "binary",
		"Other.app/Contents/Info.plist":      "other",
	}}
	e, root := newTestExtractor(t, m)
	app := testApp()

	staged, err := e.Extract(context.Background(), app, filepath.Join(root, "com.example.app-1.3.0.dmg"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "staging", "com.example.app", "Example.app"), staged)
	data, err := os.ReadFile(filepath.Join(staged, "Contents", "MacOS", "Example"))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(data))

	mountPoint := filepath.Join(root, "mnt", "com.example.app")
	assert.Equal(t, []string{mountPoint}, m.mounted)
	assert.Equal(t, []string{mountPoint}, m.unmounted)
}

func TestExtract_DiskImageWithoutBundleStillUnmounts(t *testing.T) {
	m := &fakeMounter{files: map[string]string{"README.txt": "nothing here"}}
	e, root := newTestExtractor(t, m)

	_, err := e.Extract(context.Background(), testApp(), filepath.Join(root, "a.dmg"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrExtractionFailed)
	assert.Len(t, m.unmounted, 1)
	assert.NoDirExists(t, filepath.Join(root, "staging", "com.example.app"))
}

func TestExtract_DiskImageMountFailure(t *testing.T) {
	m := &fakeMounter{mountErr: fmt.Errorf("hdiutil: attach failed")}
	e, root := newTestExtractor(t, m)

	_, err := e.Extract(context.Background(), testApp(), filepath.Join(root, "a.dmg"))
	assert.ErrorIs(t, err, errors.ErrExtractionFailed)
	assert.Empty(t, m.unmounted)
}

func TestExtract_DiskImageUnmountFailure(t *testing.T) {
	m := &fakeMounter{
		files:      map[string]string{"Example.app/Contents/Info.plist": "plist"},
		unmountErr: fmt.Errorf("resource busy"),
	}
	e, root := newTestExtractor(t, m)

	staged, err := e.Extract(context.Background(), testApp(), filepath.Join(root, "a.dmg"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrExtractionFailed)
	assert.Empty(t, staged)
}

func TestExtract_DiskImageCanceled(t *testing.T) {
	m := &fakeMounter{files: map[string]string{"Example.app/Contents/Info.plist": "plist"}}
	e, root := newTestExtractor(t, m)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, testApp(), filepath.Join(root, "a.dmg"))
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, m.unmounted, 1)
}

func TestExtract_Archive(t *testing.T) {
	for _, ext := range []string{"zip", "tar.gz", "tar.xz"} {
		t.Run(ext, func(t *testing.T) {
			src := t.TempDir()
			require.NoError(t, os.MkdirAll(filepath.Join(src, "__MACOSX", "Decoy.app"), 0o755))
			require.NoError(t, os.MkdirAll(filepath.Join(src, "dist", "Example.app", "Contents"), 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(src, "dist", "Example.app", "Contents", "Info.plist"), []byte("plist"), 0o644))

			e, root := newTestExtractor(t, &fakeMounter{})
			artifact := filepath.Join(root, "com.example.app-1.3.0."+ext)
			require.NoError(t, archive.NewManager().Create(context.Background(), src, artifact))

			staged, err := e.Extract(context.Background(), testApp(), artifact)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(root, "staging", "com.example.app", "unpack", "dist", "Example.app"), staged)
			assert.FileExists(t, filepath.Join(staged, "Contents", "Info.plist"))
		})
	}
}

func TestExtract_ArchiveUnpackFailure(t *testing.T) {
	root := t.TempDir()
	e := NewExtractor(filepath.Join(root, "staging"), filepath.Join(root, "mnt"), &fakeMounter{}, failingUnpacker{})

	_, err := e.Extract(context.Background(), testApp(), filepath.Join(root, "a.zip"))
	assert.ErrorIs(t, err, errors.ErrExtractionFailed)
}

func TestExtract_Unsupported(t *testing.T) {
	m := &fakeMounter{}
	e, root := newTestExtractor(t, m)

	_, err := e.Extract(context.Background(), testApp(), filepath.Join(root, "setup.exe"))
	require.ErrorIs(t, err, errors.ErrUnsupportedFormat)
	assert.NotErrorIs(t, err, errors.ErrExtractionFailed)
	assert.Empty(t, m.mounted)
	assert.NoDirExists(t, filepath.Join(root, "staging"))
	assert.NoDirExists(t, filepath.Join(root, "mnt"))
}

func TestExtract_ArtifactExtOverride(t *testing.T) {
	m := &fakeMounter{files: map[string]string{"Example.app/Contents/Info.plist": "plist"}}
	e, root := newTestExtractor(t, m)
	app := testApp()
	app.ArtifactExt = "dmg"

	_, err := e.Extract(context.Background(), app, filepath.Join(root, "download"))
	require.NoError(t, err)
	assert.Len(t, m.mounted, 1)
}

func TestFindBundle(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b", "c", "Deep.app"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "z", "Shallow.app"), 0o755))

	found, err := FindBundle(root, ".app", MaxBundleDepth)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "z", "Shallow.app"), found)

	_, err = FindBundle(filepath.Join(root, "a"), ".app", 2)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}
