package model

import (
	"strings"

	"github.com/hashicorp/go-version"
)

var zeroVersion = version.Must(version.NewVersion("0.0.0"))

// ZeroVersion is the sentinel for an unknown or missing version. It is never
// a real release.
var ZeroVersion = Version{v: zeroVersion, raw: "0.0.0"}

// Version is a comparable semantic version. The zero value equals
// ZeroVersion.
type Version struct {
	v   *version.Version
	raw string
}

// ParseVersion parses s, normalizing anything unparsable to ZeroVersion.
func ParseVersion(s string) Version {
	s = strings.ToLower(strings.TrimSpace(s))
	parsed, err := version.NewVersion(s)
	if err != nil {
		return ZeroVersion
	}
	return Version{v: parsed, raw: strings.TrimPrefix(s, "v")}
}

func (v Version) inner() *version.Version {
	if v.v == nil {
		return zeroVersion
	}
	return v.v
}

// String returns the version as it was written, without a leading "v".
func (v Version) String() string {
	if v.v == nil {
		return ZeroVersion.raw
	}
	return v.raw
}

// Compare returns -1, 0 or 1 when v is lower than, equal to or greater than o.
func (v Version) Compare(o Version) int {
	return v.inner().Compare(o.inner())
}

// GreaterThan reports whether v is strictly greater than o.
func (v Version) GreaterThan(o Version) bool {
	return v.Compare(o) > 0
}

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// IsZero reports whether v is the unknown sentinel.
func (v Version) IsZero() bool {
	return v.inner().Equal(zeroVersion)
}
