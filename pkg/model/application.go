// Package model provides the data types shared by the update engine and its
// collaborators: application descriptors, versions, update states and
// artifact classification.
package model

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// VersionPlaceholder is replaced with the resolved latest version in
// Application.DownloadURL.
const VersionPlaceholder = "{version}"

// ArchPlaceholder is replaced with the architecture name of the host in
// Application.DownloadURL.
const ArchPlaceholder = "{arch}"

// DefaultBundleSuffix identifies an application bundle inside an artifact.
const DefaultBundleSuffix = ".app"

// ResolverSpec selects and parameterizes the strategy that produces the
// latest available version of an application.
type ResolverSpec struct {
	Type               string            `json:"type" yaml:"type" toml:"type"`
	URL                string            `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Pattern            string            `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Repository         string            `json:"repository,omitempty" yaml:"repository,omitempty" toml:"repository,omitempty"`
	IncludePrereleases bool              `json:"include_prereleases,omitempty" yaml:"include_prereleases,omitempty" toml:"include_prereleases,omitempty"`
	Script             string            `json:"script,omitempty" yaml:"script,omitempty" toml:"script,omitempty"`
	Version            string            `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Headers            map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`
}

// AppHooks holds optional tengo scripts run around the install step. A
// value ending in .tengo names a script file instead of inline source.
type AppHooks struct {
	PreInstall  string `json:"pre_install,omitempty" yaml:"pre_install,omitempty" toml:"pre_install,omitempty"`
	PostInstall string `json:"post_install,omitempty" yaml:"post_install,omitempty" toml:"post_install,omitempty"`
}

// Application describes one manageable application. ID is the stable key
// for caches, mount points and staging directories and never changes across
// versions.
type Application struct {
	ID           string `json:"id" yaml:"id" toml:"id"`
	Name         string `json:"name" yaml:"name" toml:"name"`
	InstallPath  string `json:"install_path" yaml:"install_path" toml:"install_path"`
	DownloadURL  string `json:"download_url" yaml:"download_url" toml:"download_url"`
	ArtifactExt  string `json:"artifact_ext,omitempty" yaml:"artifact_ext,omitempty" toml:"artifact_ext,omitempty"`
	BundleSuffix string `json:"bundle_suffix,omitempty" yaml:"bundle_suffix,omitempty" toml:"bundle_suffix,omitempty"`
	ProcessMatch string `json:"process_match,omitempty" yaml:"process_match,omitempty" toml:"process_match,omitempty"`
	// ArchNames maps a normalized architecture (arm64, amd64) to the name
	// the vendor uses in download URLs.
	ArchNames map[string]string `json:"arch_names,omitempty" yaml:"arch_names,omitempty" toml:"arch_names,omitempty"`
	Resolver  ResolverSpec      `json:"resolver" yaml:"resolver" toml:"resolver"`
	Hooks     AppHooks          `json:"hooks,omitempty" yaml:"hooks,omitempty" toml:"hooks,omitempty"`
}

// DisplayName returns Name, falling back to ID.
func (a *Application) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// ArtifactURL expands the download URL template for the given version and
// host architecture.
func (a *Application) ArtifactURL(v Version, arch string) string {
	if name, ok := a.ArchNames[arch]; ok {
		arch = name
	}
	return strings.NewReplacer(VersionPlaceholder, v.String(), ArchPlaceholder, arch).Replace(a.DownloadURL)
}

// ArtifactExtension returns the extension of the artifact served at rawURL.
// An explicit ArtifactExt wins over the URL.
func (a *Application) ArtifactExtension(rawURL string) string {
	if a.ArtifactExt != "" {
		return strings.ToLower(strings.TrimPrefix(a.ArtifactExt, "."))
	}
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	return ArtifactExtension(path.Base(p))
}

// Suffix returns the bundle suffix used to locate the bundle in an artifact.
func (a *Application) Suffix() string {
	if a.BundleSuffix != "" {
		return a.BundleSuffix
	}
	return DefaultBundleSuffix
}

// Matcher returns the pattern matched against running process command lines.
func (a *Application) Matcher() string {
	if a.ProcessMatch != "" {
		return a.ProcessMatch
	}
	return a.InstallPath
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeID returns ID reduced to characters that are safe as a single path
// element.
func (a *Application) SafeID() string {
	return SanitizeID(a.ID)
}

// SanitizeID maps an application identifier to a single safe path element.
func SanitizeID(id string) string {
	s := unsafeIDChars.ReplaceAllString(id, "_")
	s = strings.Trim(s, ".")
	if s == "" {
		return "_"
	}
	return s
}
