package cache

import "github.com/glorpus-work/freshen/pkg/fsutil"

// CacheDirPerm is the default permission mode for cache directories (rwx------).
var CacheDirPerm = fsutil.DirModePrivate

// Subdirectories of the cache directory.
const (
	ArtifactsDir = "artifacts"
	StagingDir   = "staging"
)
