package vfs

import (
	"fmt"
	"runtime"
)

// Platform selects which path dialect the validator applies. It is injected
// by the caller instead of read from the host so behavior stays testable
// under both regimes.
type Platform string

const (
	PlatformPOSIX   Platform = "posix"
	PlatformWindows Platform = "windows"
)

func (p Platform) String() string {
	return string(p)
}

// HostPlatform returns the platform of the executing host.
func HostPlatform() Platform {
	if runtime.GOOS == "windows" {
		return PlatformWindows
	}
	return PlatformPOSIX
}

// ParsePlatform maps a configured platform name to a Platform. An empty
// value selects the host platform.
func ParsePlatform(value string) (Platform, error) {
	switch Platform(value) {
	case PlatformPOSIX, PlatformWindows:
		return Platform(value), nil
	case "":
		return HostPlatform(), nil
	default:
		return "", fmt.Errorf("unknown platform: %q", value)
	}
}
