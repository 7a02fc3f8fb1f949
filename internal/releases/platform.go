// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package releases

import "runtime"

// Platform represents a target platform that a release build is or might
// be available for, in the (os, arch) vocabulary used by the release
// index itself.
type Platform struct {
	OS, Arch string
}

func (p Platform) String() string {
	return p.OS + "_" + p.Arch
}

// NativeDarwinARM64 controls whether MapPlatform may resolve
// (darwin, arm64) to a native build. While false, that platform is
// mapped to (darwin, amd64) and the binary runs under the macOS
// translation layer. This is a temporary downgrade pending a native
// build channel, at which point the switch flips and eventually goes
// away entirely.
var NativeDarwinARM64 = false

// MapPlatform translates a raw operating system and architecture name,
// as reported by a host runtime, into the naming convention used by the
// release index. It is total: names with no special mapping pass through
// verbatim, leaving any mismatch to surface later as a missing build.
func MapPlatform(rawOS, rawArch string) Platform {
	os := rawOS
	switch rawOS {
	case "win32":
		os = "windows"
	case "sunos":
		os = "solaris"
	}

	arch := rawArch
	switch rawArch {
	case "ia32":
		arch = "386"
	case "x64":
		arch = "amd64"
	}

	if os == "darwin" && rawArch == "arm64" && !NativeDarwinARM64 {
		arch = "amd64"
	}

	return Platform{OS: os, Arch: arch}
}

// CurrentPlatform is the mapped platform of the host this program is
// running on.
var CurrentPlatform = MapPlatform(runtime.GOOS, runtime.GOARCH)
