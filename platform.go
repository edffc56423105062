package libbuild

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform identifies the operating system the shared library is built for.
//
// Only three platforms are recognized. Every other operating system is
// rejected by [ParsePlatform] with [ErrUnsupportedPlatform].
type Platform string

// Platform constants
const (
	PlatformDarwin  Platform = "darwin"
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "windows"
)

// ParsePlatform returns the [Platform] for an operating system name.
//
// Both the Go spelling (GOOS, e.g. "darwin") and the Cargo spelling
// (CARGO_CFG_TARGET_OS, e.g. "macos") are accepted.
func ParsePlatform(os string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(os)) {
	case "darwin", "macos":
		return PlatformDarwin, nil
	case "linux":
		return PlatformLinux, nil
	case "windows":
		return PlatformWindows, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, os)
	}
}

// hostOS is the operating system the library is built on and for. The go
// tool builds for the host unless GOOS is set, and GoBuilder never sets it.
var hostOS = runtime.GOOS

// HostPlatform returns the platform of the running process.
func HostPlatform() (Platform, error) {
	return ParsePlatform(hostOS)
}

// Validate returns [ErrUnsupportedPlatform] if p is not a known platform.
func (p Platform) Validate() error {
	_, err := ParsePlatform(string(p))
	return err
}

// LibraryPrefix returns the file name prefix shared by the library and its
// companion files, e.g. "libfoo" on linux and "foo" on windows.
func (p Platform) LibraryPrefix(name string) string {
	if p == PlatformWindows {
		return name
	}
	return "lib" + name
}

// LibraryFilename returns the platform conventional shared library file name:
//
//	darwin:  lib<name>.dylib
//	linux:   lib<name>.so
//	windows: <name>.dll
func (p Platform) LibraryFilename(name string) (string, error) {
	switch p {
	case PlatformDarwin:
		return p.LibraryPrefix(name) + ".dylib", nil
	case PlatformLinux:
		return p.LibraryPrefix(name) + ".so", nil
	case PlatformWindows:
		return p.LibraryPrefix(name) + ".dll", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, string(p))
	}
}

// HeaderFilename returns the name of the C header go build writes next to a
// c-shared library: the library file name with its extension replaced by ".h".
func (p Platform) HeaderFilename(name string) string {
	return p.LibraryPrefix(name) + ".h"
}
