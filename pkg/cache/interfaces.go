package cache

import "github.com/glorpus-work/freshen/pkg/versioncache"

// VersionStore is the subset of the version cache managed here.
type VersionStore interface {
	Entries() map[string]versioncache.Entry
	IsStale(entry versioncache.Entry) bool
	Clear() error
	Path() string
}

// CleanOptions specifies what to clean from the cache. With no option set
// everything is cleaned.
type CleanOptions struct {
	All       bool
	Versions  bool
	Artifacts bool
	Staging   bool
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed      int64
	ArtifactFreed   int64
	StagingFreed    int64
	VersionsCleared int
}

// Info represents cache information.
type Info struct {
	Directory      string
	VersionFile    string
	TotalSize      int64
	ArtifactSize   int64
	ArtifactFiles  int
	StagingSize    int64
	StagingFiles   int
	VersionEntries int
	StaleEntries   int
}
