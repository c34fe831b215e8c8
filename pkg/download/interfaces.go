//go:generate mockgen -destination=mocks/download.go -package=mocks . Manager

package download

import "context"

// Manager fetches installer artifacts into the download cache.
type Manager interface {
	// Fetch returns the local path of the artifact described by req,
	// downloading it unless the cache already holds it. progress receives
	// non-decreasing fractions in [0,1] and may be nil.
	Fetch(ctx context.Context, req Request, progress ProgressFunc) (string, error)
}

// Request identifies one artifact. ID, Version and Ext form the cache key.
type Request struct {
	ID      string
	Version string
	Ext     string
	URL     string
}

// ProgressFunc receives download progress as a fraction.
type ProgressFunc func(fraction float64)
