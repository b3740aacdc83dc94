package probe

import "runtime"

// Platform selects which secondary directory the probe script asks R for.
type Platform int

const (
	Unix Platform = iota
	Windows
)

// Current is the platform this binary was compiled for.
var Current = PlatformFor(runtime.GOOS)

// PlatformFor maps a GOOS value to a Platform.
func PlatformFor(goos string) Platform {
	if goos == "windows" {
		return Windows
	}
	return Unix
}

// Script returns the R expression that prints the home directory followed by
// the directory holding the shared library. On Windows the DLL lives in bin.
func (p Platform) Script() string {
	switch p {
	case Windows:
		return `cat(R.home(), R.home('bin'), sep = '\n')`
	default:
		return `cat(R.home(), R.home('lib'), sep = '\n')`
	}
}

func (p Platform) String() string {
	switch p {
	case Windows:
		return "windows"
	default:
		return "unix"
	}
}
