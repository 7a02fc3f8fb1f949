// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package releases implements a client for the HashiCorp releases index,
// answering the question "which published build of this product best
// satisfies a given version constraint, and where do I download it?".
package releases

import (
	"fmt"

	version "github.com/hashicorp/go-version"
)

// Release describes a single published version of a product, including
// the per-platform build artifacts it was released with. A Release is
// constructed by Client.Resolve and must not be modified afterwards.
type Release struct {
	Product string
	Version *version.Version
	Builds  []Build

	// ChecksumsURL locates the SHA256SUMS document covering the build
	// artifacts of this release.
	ChecksumsURL string
}

// Build describes one (os, arch) variant of a release artifact.
//
// The release index publishes at most one build per platform within a
// release; BuildForPlatform relies on that invariant and returns the
// first match.
type Build struct {
	OS       string
	Arch     string
	Filename string
	URL      string
}

// BuildForPlatform returns the build of this release matching the given
// platform, or ErrNoMatchingBuild if the release was not published for
// that platform.
func (r *Release) BuildForPlatform(p Platform) (Build, error) {
	for _, b := range r.Builds {
		if b.OS == p.OS && b.Arch == p.Arch {
			return b, nil
		}
	}
	return Build{}, &ErrNoMatchingBuild{
		Product:  r.Product,
		Version:  r.Version,
		Platform: p,
	}
}

// ErrNoMatchingBuild indicates that a release exists but was not
// published for the requested platform.
type ErrNoMatchingBuild struct {
	Product  string
	Version  *version.Version
	Platform Platform
}

func (e *ErrNoMatchingBuild) Error() string {
	return fmt.Sprintf(
		"%s v%s is not available for %s",
		e.Product, e.Version, e.Platform,
	)
}

// ResolutionError indicates that the release index could not be queried
// or that no published release satisfies the requested constraint.
// Callers are expected to treat this as recoverable: whatever binary is
// already installed remains usable.
type ResolutionError struct {
	Product string
	Wanted  string
	Inner   error
}

func (e *ResolutionError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("failed to resolve a release of %s matching %q: %s", e.Product, e.Wanted, e.Inner)
	}
	return fmt.Sprintf("no release of %s matches %q", e.Product, e.Wanted)
}

func (e *ResolutionError) Unwrap() error {
	return e.Inner
}
