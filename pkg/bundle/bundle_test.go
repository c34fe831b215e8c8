package bundle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/glorpus-work/freshen/pkg/errors"
)

func writeInfo(t *testing.T, values map[string]string, format int) string {
	t.Helper()
	bundlePath := filepath.Join(t.TempDir(), "Example.app")
	require.NoError(t, os.MkdirAll(filepath.Join(bundlePath, "Contents"), 0o755))
	data, err := plist.Marshal(values, format)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(bundlePath, "Contents", "Info.plist"), data, 0o644))
	return bundlePath
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		format int
		want   string
	}{
		{
			name:   "short version xml",
			values: map[string]string{"CFBundleShortVersionString": "1.2.0", "CFBundleVersion": "120"},
			format: plist.XMLFormat,
			want:   "1.2.0",
		},
		{
			name:   "short version binary",
			values: map[string]string{"CFBundleShortVersionString": "3.4.5"},
			format: plist.BinaryFormat,
			want:   "3.4.5",
		},
		{
			name:   "falls back to bundle version",
			values: map[string]string{"CFBundleVersion": "2024.10"},
			format: plist.XMLFormat,
			want:   "2024.10",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewInspector().Version(writeInfo(t, tt.values, tt.format))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersion_NoKeys(t *testing.T) {
	_, err := NewInspector().Version(writeInfo(t, map[string]string{"CFBundleName": "Example"}, plist.XMLFormat))
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestVersion_MissingBundle(t *testing.T) {
	_, err := NewInspector().Version(filepath.Join(t.TempDir(), "Missing.app"))
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestVersion_Corrupt(t *testing.T) {
	bundlePath := filepath.Join(t.TempDir(), "Broken.app")
	require.NoError(t, os.MkdirAll(filepath.Join(bundlePath, "Contents"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bundlePath, "Contents", "Info.plist"), []byte("bplist00\x00\x01garbage"), 0o644))

	_, err := NewInspector().Version(bundlePath)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errors.ErrNotFound)
}

func TestIdentifier(t *testing.T) {
	bundlePath := writeInfo(t, map[string]string{"CFBundleIdentifier": "com.example.app"}, plist.XMLFormat)
	id, err := NewInspector().Identifier(bundlePath)
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", id)
}

func TestFromAppStore(t *testing.T) {
	bundlePath := writeInfo(t, map[string]string{"CFBundleShortVersionString": "1.0"}, plist.XMLFormat)
	inspector := NewInspector()
	assert.False(t, inspector.FromAppStore(bundlePath))

	receipt := filepath.Join(bundlePath, filepath.FromSlash(ReceiptPath))
	require.NoError(t, os.MkdirAll(receipt, 0o755))
	assert.False(t, inspector.FromAppStore(bundlePath), "a directory is not a receipt")

	require.NoError(t, os.Remove(receipt))
	require.NoError(t, os.WriteFile(receipt, []byte("pkcs7"), 0o644))
	assert.True(t, inspector.FromAppStore(bundlePath))

	assert.False(t, inspector.FromAppStore(filepath.Join(t.TempDir(), "Missing.app")))
}
