// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package lifecycle

import (
	version "github.com/hashicorp/go-version"
)

// Direction distinguishes the two version changes a user must confirm.
// A fresh install has no direction because it is never prompted for.
type Direction int

const (
	// DirectionUpgrade means the resolved target is newer than the
	// installed version.
	DirectionUpgrade Direction = iota

	// DirectionDowngrade means the resolved target is older than the
	// installed version. Deliberately a supported, prompted path: a
	// pinned constraint may legitimately point below what is installed.
	DirectionDowngrade
)

func (d Direction) String() string {
	switch d {
	case DirectionUpgrade:
		return "upgrade"
	case DirectionDowngrade:
		return "downgrade"
	default:
		return "unknown"
	}
}

// Prompter is the user-interaction boundary of the upgrade decision
// engine. Implementations present an Install/Cancel choice whose wording
// differs between the two directions, and a post-install notice.
type Prompter interface {
	// ConfirmInstall asks whether to install the target version now.
	// It returns true only on an affirmative response.
	ConfirmInstall(dir Direction, installed, target *version.Version) (bool, error)

	// ShowInstalled announces a completed install, offering the
	// changelog link for the new version.
	ShowInstalled(installed *version.Version, changelogURL string)
}
