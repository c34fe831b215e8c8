package platform

const (
	// OSMacOS is the normalized name of darwin.
	OSMacOS = "macos"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"

	// ArchAMD64 represents Intel Macs.
	ArchAMD64 = "amd64"
	// ArchARM64 represents Apple silicon.
	ArchARM64 = "arm64"

	// Unknown stands in for an empty OS or architecture.
	Unknown = "unknown"
)
