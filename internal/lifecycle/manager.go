// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package lifecycle decides whether the managed language server binary
// needs to be installed, upgraded or downgraded, and drives the full
// install flow including user confirmation.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	version "github.com/hashicorp/go-version"

	"github.com/hashicorp/terraform-ls-manager/internal/installer"
	"github.com/hashicorp/terraform-ls-manager/internal/releases"
)

// Product is the release-index product name of the managed server.
const Product = "terraform-ls"

const changelogURLFormat = "https://github.com/hashicorp/terraform-ls/blob/v%s/CHANGELOG.md"

// ChangelogURL returns the changelog link offered after installing the
// given version.
func ChangelogURL(v *version.Version) string {
	return fmt.Sprintf(changelogURLFormat, v)
}

// Manager is the upgrade decision engine. It is an explicitly owned
// instance created at activation and disposed with its owner; nothing in
// this package holds global state.
type Manager struct {
	releases  *releases.Client
	installer *installer.Installer
	prompter  Prompter
	logger    hclog.Logger

	// probe is the installed-version prober, indirected so the decision
	// logic can be exercised without a real binary on disk.
	probe func(ctx context.Context, dir string) (*version.Version, error)
}

// NewManager wires the decision engine to its collaborators.
func NewManager(client *releases.Client, inst *installer.Installer, prompter Prompter, logger hclog.Logger) *Manager {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Manager{
		releases:  client,
		installer: inst,
		prompter:  prompter,
		logger:    logger,
		probe:     installer.InstalledVersion,
	}
}

// NeedsInstall reports whether an install should happen for the given
// version constraint.
//
// A failure to reach the release index is absorbed: it is logged and the
// answer is false, because a transient metadata outage must never block
// the editor from using whatever is already installed. A missing binary
// answers true with no prompt. Otherwise the resolved target is compared
// against the installed version and the user is asked, with different
// wording per direction, whether to proceed.
func (m *Manager) NeedsInstall(ctx context.Context, constraint string) (bool, error) {
	rel := m.resolve(ctx, constraint)
	if rel == nil {
		return false, nil
	}
	return m.decide(ctx, rel)
}

// EnsureInstalled runs the full flow: decide, install if confirmed, and
// announce the result. It reports whether an install actually happened.
func (m *Manager) EnsureInstalled(ctx context.Context, constraint string) (bool, error) {
	rel := m.resolve(ctx, constraint)
	if rel == nil {
		return false, nil
	}

	need, err := m.decide(ctx, rel)
	if err != nil || !need {
		return false, err
	}

	if err := m.installer.Install(ctx, rel); err != nil {
		return false, err
	}
	m.prompter.ShowInstalled(rel.Version, ChangelogURL(rel.Version))
	return true, nil
}

// resolve maps the constraint string to a target release, absorbing both
// invalid constraints (reported, then treated as "latest") and index
// failures (reported, then no action).
func (m *Manager) resolve(ctx context.Context, constraint string) *releases.Release {
	wanted, err := releases.ParseConstraint(constraint)
	if err != nil {
		m.logger.Warn("invalid version constraint", "error", err)
	}

	rel, err := m.releases.Resolve(ctx, Product, wanted)
	if err != nil {
		m.logger.Warn("failed to resolve a release, continuing with the installed version", "error", err)
		return nil
	}
	return rel
}

func (m *Manager) decide(ctx context.Context, rel *releases.Release) (bool, error) {
	installed, err := m.probe(ctx, m.installer.Dir())
	if errors.Is(err, installer.ErrNotInstalled) {
		// Fresh install: nothing to compare, nothing to ask.
		m.logger.Debug("no installed binary, proceeding with fresh install", "target", rel.Version.String())
		return true, nil
	}
	if err != nil {
		return false, err
	}

	switch installed.Compare(rel.Version) {
	case 0:
		m.logger.Debug("installed version is current", "version", installed.String())
		return false, nil
	case -1:
		return m.prompter.ConfirmInstall(DirectionUpgrade, installed, rel.Version)
	default:
		return m.prompter.ConfirmInstall(DirectionDowngrade, installed, rel.Version)
	}
}
