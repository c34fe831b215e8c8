package model

import "strings"

// ArtifactKind classifies a downloaded artifact by how it is turned into a
// bundle.
type ArtifactKind int

const (
	ArtifactUnsupported ArtifactKind = iota
	ArtifactDiskImage
	ArtifactArchive
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactDiskImage:
		return "disk-image"
	case ArtifactArchive:
		return "archive"
	default:
		return "unsupported"
	}
}

var artifactKinds = map[string]ArtifactKind{
	"dmg":     ArtifactDiskImage,
	"zip":     ArtifactArchive,
	"tar":     ArtifactArchive,
	"tgz":     ArtifactArchive,
	"tar.gz":  ArtifactArchive,
	"tbz2":    ArtifactArchive,
	"tar.bz2": ArtifactArchive,
	"txz":     ArtifactArchive,
	"tar.xz":  ArtifactArchive,
}

// compound extensions are matched before the last path extension
var compoundExtensions = []string{"tar.gz", "tar.bz2", "tar.xz"}

// ArtifactExtension returns the lower-cased extension of name without the
// leading dot. Compound tar extensions such as "tar.gz" are kept whole.
func ArtifactExtension(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range compoundExtensions {
		if strings.HasSuffix(lower, "."+ext) {
			return ext
		}
	}
	idx := strings.LastIndex(lower, ".")
	if idx < 0 || idx == len(lower)-1 {
		return ""
	}
	return lower[idx+1:]
}

// ClassifyExtension maps an artifact extension to its kind.
func ClassifyExtension(ext string) ArtifactKind {
	return artifactKinds[strings.ToLower(strings.TrimPrefix(ext, "."))]
}
