// Package platform reports the operating system and CPU architecture freshen
// runs on, normalized to the names vendors use in download URLs.
package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform is an operating system and architecture pair.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// Current returns the platform of the running process.
func Current() Platform {
	return New(runtime.GOOS, runtime.GOARCH)
}

// New returns the normalized platform for goos and goarch.
func New(goos, goarch string) Platform {
	if goos == "" {
		goos = Unknown
	}
	if goarch == "" {
		goarch = Unknown
	}
	return Platform{OS: NormalizeOS(goos), Arch: NormalizeArch(goarch)}
}

// IsMacOS reports whether p is macOS.
func (p Platform) IsMacOS() bool {
	return p.OS == OSMacOS
}

// String returns "os/arch".
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// NormalizeOS maps OS aliases to a common name.
func NormalizeOS(os string) string {
	os = strings.ToLower(os)
	switch os {
	case "darwin", "macos", "osx", "macosx":
		return OSMacOS
	case "win", "windows":
		return OSWindows
	default:
		return os
	}
}

// NormalizeArch maps architecture aliases to the Go names.
func NormalizeArch(arch string) string {
	arch = strings.ToLower(arch)
	switch arch {
	case "x86_64", "x64", "intel":
		return ArchAMD64
	case "aarch64", "apple":
		return ArchARM64
	default:
		return arch
	}
}
