package api

// Platform represents a platform identifier used as a key in UpdateRecord.Platforms.
// Any string is accepted as a key, the constants below are the ones offered by the UI.
type Platform string

const (
	// PlatformLinuxX86 represents a 64-bit x86 Linux system.
	PlatformLinuxX86 Platform = "linux-x86_64"

	// PlatformWindowsX86 represents a 64-bit x86 Windows system.
	PlatformWindowsX86 Platform = "windows-x86_64"

	// PlatformDarwinX86 represents an Intel macOS system.
	PlatformDarwinX86 Platform = "darwin-x86_64"

	// PlatformDarwinARM represents an Apple Silicon macOS system.
	PlatformDarwinARM Platform = "darwin-aarch64"
)

// WellKnownPlatforms lists the platforms edited by the UI, in display order.
var WellKnownPlatforms = []Platform{
	PlatformLinuxX86,
	PlatformWindowsX86,
	PlatformDarwinX86,
	PlatformDarwinARM,
}

func (p Platform) String() string {
	return string(p)
}
