package types

import "runtime"

// PlatformInfo describes the host platform using the naming conventions of the
// game's metadata format. It is computed once at startup and passed by value to
// every component that evaluates platform rules, so there is no hidden global
// platform state to reset in tests.
type PlatformInfo struct {
	// OS is the rule-facing OS name: "linux", "windows" or "osx".
	OS string
	// Arch is the rule-facing architecture name: "x86", "x86_64", "arm64" or "arm32".
	Arch string
	// OSVersion is matched against rule OS-version regular expressions. It may be
	// empty when the kernel version cannot be determined.
	OSVersion string
	// ArchBits is the pointer width in bits, substituted into "${arch}"
	// placeholders of native classifiers. Zero when unknown.
	ArchBits int
	// RuntimeOS is the OS/arch key used by the managed runtime index, for example
	// "linux", "windows-x64" or "mac-os-arm64". Empty when the platform has no
	// official runtime distribution.
	RuntimeOS string
}

// CurrentPlatform computes the platform descriptor for the running process.
func CurrentPlatform() PlatformInfo {
	info := PlatformInfo{
		OS:   platformOSNames[runtime.GOOS],
		Arch: platformArchNames[runtime.GOARCH],
	}
	info.ArchBits = platformArchBits[runtime.GOARCH]
	if byOS, ok := runtimeOSNames[runtime.GOOS]; ok {
		info.RuntimeOS = byOS[info.Arch]
	}
	return info
}

var platformOSNames = map[string]string{
	"linux":   "linux",
	"windows": "windows",
	"darwin":  "osx",
	"freebsd": "freebsd",
}

var platformArchNames = map[string]string{
	"386":   "x86",
	"amd64": "x86_64",
	"arm64": "arm64",
	"arm":   "arm32",
}

var platformArchBits = map[string]int{
	"386":   32,
	"amd64": 64,
	"arm64": 64,
	"arm":   32,
}

var runtimeOSNames = map[string]map[string]string{
	"darwin":  {"x86_64": "mac-os", "arm64": "mac-os-arm64"},
	"linux":   {"x86": "linux-i386", "x86_64": "linux"},
	"windows": {"x86": "windows-x86", "x86_64": "windows-x64"},
}

// RuntimeBinName returns the executable file name of the managed runtime for
// the given rule-facing OS name.
func RuntimeBinName(os string) string {
	if os == "windows" {
		return "javaw.exe"
	}
	return "java"
}
