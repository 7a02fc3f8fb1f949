// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"strings"

	"github.com/hashicorp/cli"
	version "github.com/hashicorp/go-version"

	"github.com/hashicorp/terraform-ls-manager/internal/lifecycle"
)

// uiPrompter implements lifecycle.Prompter on top of a cli.Ui, keeping
// the distinct wording per direction: upgrades and downgrades are
// different questions and deliberately read differently.
type uiPrompter struct {
	ui cli.Ui
}

var _ lifecycle.Prompter = (*uiPrompter)(nil)

func (p *uiPrompter) ConfirmInstall(dir lifecycle.Direction, installed, target *version.Version) (bool, error) {
	var question string
	switch dir {
	case lifecycle.DirectionUpgrade:
		question = fmt.Sprintf(
			"A newer version of the Terraform language server is available: v%s (currently installed: v%s).\nInstall this newer version now? Type %q to confirm, anything else cancels",
			target, installed, "Install",
		)
	case lifecycle.DirectionDowngrade:
		question = fmt.Sprintf(
			"The requested version of the Terraform language server is older than the installed one: v%s (currently installed: v%s).\nInstall this older version now? Type %q to confirm, anything else cancels",
			target, installed, "Install",
		)
	default:
		return false, fmt.Errorf("unknown install direction %v", dir)
	}

	answer, err := p.ui.Ask(question)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(strings.TrimSpace(answer), "Install"), nil
}

func (p *uiPrompter) ShowInstalled(installed *version.Version, changelogURL string) {
	p.ui.Output(fmt.Sprintf("Installed v%s. View Changelog: %s", installed, changelogURL))
}
