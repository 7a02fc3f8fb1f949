// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-ls-manager/internal/installer"
	"github.com/hashicorp/terraform-ls-manager/version"
)

// VersionCommand prints the manager's own version and, when available,
// the installed language server version.
type VersionCommand struct {
	Meta
}

func (c *VersionCommand) Run(args []string) int {
	var installDir string
	flags := flag.NewFlagSet("version", flag.ContinueOnError)
	flags.StringVar(&installDir, "install-dir", DefaultInstallDir(), "install directory")
	flags.Usage = func() { c.UI.Error(c.Help()) }
	if err := flags.Parse(args); err != nil {
		return 1
	}

	c.UI.Output(fmt.Sprintf("terraform-ls-manager v%s", version.String()))

	installed, err := installer.InstalledVersion(context.Background(), installDir)
	if err != nil {
		if errors.Is(err, installer.ErrNotInstalled) {
			c.UI.Output("terraform-ls is not installed")
			return 0
		}
		c.UI.Error(fmt.Sprintf("Failed to determine the installed terraform-ls version: %s", err))
		return 1
	}
	c.UI.Output(fmt.Sprintf("terraform-ls v%s", installed))
	return 0
}

func (c *VersionCommand) Help() string {
	helpText := `
Usage: terraform-ls-manager version [options]

  Prints the version of this tool and of the installed terraform-ls
  binary, if any.

Options:

  -install-dir=path   Directory the server is installed in.
                      Defaults to ` + DefaultInstallDir() + `.
`
	return strings.TrimSpace(helpText)
}

func (c *VersionCommand) Synopsis() string {
	return "Print tool and installed server versions"
}
