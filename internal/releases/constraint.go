// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package releases

import (
	"fmt"
	"strings"

	version "github.com/hashicorp/go-version"
)

// Constraints is a validated version constraint for release resolution:
// either the special "latest" marker or a semantic version range.
type Constraints struct {
	latest bool
	ranges version.Constraints
}

// Latest returns the constraint that always selects the newest published
// version.
func Latest() Constraints {
	return Constraints{latest: true}
}

// ParseConstraint validates a user-supplied constraint string. On
// invalid input it returns both the "latest" constraint and a non-nil
// error, so that the caller can report the problem while resolution
// still proceeds with the default.
func ParseConstraint(s string) (Constraints, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "latest" {
		return Latest(), nil
	}

	ranges, err := version.NewConstraint(s)
	if err != nil {
		return Latest(), fmt.Errorf("invalid version constraint %q, using \"latest\" instead: %w", s, err)
	}
	return Constraints{ranges: ranges}, nil
}

// IsLatest reports whether this constraint is the "latest" marker.
func (c Constraints) IsLatest() bool {
	return c.latest
}

// Check reports whether the given version satisfies the constraint.
// The "latest" constraint is satisfied by every version; ordering among
// the candidates is the resolver's concern.
func (c Constraints) Check(v *version.Version) bool {
	if c.latest {
		return true
	}
	return c.ranges.Check(v)
}

func (c Constraints) String() string {
	if c.latest {
		return "latest"
	}
	return c.ranges.String()
}
