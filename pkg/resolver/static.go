package resolver

import "context"

// Static always returns the configured version. Useful for pinning and
// for applications without a machine-readable release source.
type Static string

// LatestVersion implements Resolver.
func (s Static) LatestVersion(context.Context) (string, error) {
	return string(s), nil
}
