// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-ls-manager/internal/installer"
)

// CleanupCommand removes retained release archives from the install
// directory.
type CleanupCommand struct {
	Meta
}

func (c *CleanupCommand) Run(args []string) int {
	var installDir string
	flags := flag.NewFlagSet("cleanup", flag.ContinueOnError)
	flags.StringVar(&installDir, "install-dir", DefaultInstallDir(), "install directory")
	flags.Usage = func() { c.UI.Error(c.Help()) }
	if err := flags.Parse(args); err != nil {
		return 1
	}

	removed, err := installer.CleanupArtifacts(installDir)
	for _, path := range removed {
		c.UI.Output("Removed " + path)
	}
	if err != nil {
		c.UI.Error(fmt.Sprintf("Cleanup failed: %s", err))
		return 1
	}
	if len(removed) == 0 {
		c.UI.Output("No artifacts to remove")
	}
	return 0
}

func (c *CleanupCommand) Help() string {
	helpText := `
Usage: terraform-ls-manager cleanup [options]

  Removes downloaded release archives retained in the install directory.
  Archives are kept after installation so that a failed install can be
  diagnosed; this command is the explicit cleanup step.

Options:

  -install-dir=path   Directory to clean up.
                      Defaults to ` + DefaultInstallDir() + `.
`
	return strings.TrimSpace(helpText)
}

func (c *CleanupCommand) Synopsis() string {
	return "Remove retained release archives"
}
