// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/hashicorp/terraform-ls-manager/internal/installer"
	"github.com/hashicorp/terraform-ls-manager/internal/lifecycle"
)

// InstallCommand installs or upgrades the managed language server.
type InstallCommand struct {
	Meta
}

func (c *InstallCommand) Run(args []string) int {
	var installDir, constraint, workspace string
	flags := flag.NewFlagSet("install", flag.ContinueOnError)
	flags.StringVar(&installDir, "install-dir", DefaultInstallDir(), "install directory")
	flags.StringVar(&constraint, "version", "latest", "version constraint")
	flags.StringVar(&workspace, "stage-legacy-plugins-from", "", "workspace to stage legacy provider plugins from")
	flags.Usage = func() { c.UI.Error(c.Help()) }
	if err := flags.Parse(args); err != nil {
		return 1
	}

	ctx := context.Background()
	mgr := lifecycle.NewManager(
		c.releasesClient(),
		c.installer(installDir),
		&uiPrompter{ui: c.UI},
		c.Logger.Named("lifecycle"),
	)

	did, err := mgr.EnsureInstalled(ctx, constraint)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Installation failed: %s", err))
		return 1
	}
	if !did {
		v, err := installer.InstalledVersion(ctx, installDir)
		if err == nil {
			c.UI.Output(fmt.Sprintf("terraform-ls v%s is already installed in %s", v, installDir))
		} else {
			c.UI.Output("No installation was performed")
		}
	}

	if workspace != "" {
		staged, err := installer.StageLegacyPlugins(workspace, installDir)
		if err != nil {
			c.UI.Error(fmt.Sprintf("Failed to stage legacy plugins: %s", err))
			return 1
		}
		for _, path := range staged {
			c.UI.Output("Staged legacy plugin " + path)
		}
	}
	return 0
}

func (c *InstallCommand) Help() string {
	helpText := `
Usage: terraform-ls-manager install [options]

  Installs the terraform-ls language server, or upgrades or downgrades
  an existing installation after confirmation. A transient failure to
  reach the release index leaves any existing installation untouched.

Options:

  -install-dir=path   Directory to install into.
                      Defaults to ` + DefaultInstallDir() + `.

  -version=constraint Version constraint, e.g. "~> 0.20" or "latest".
                      Invalid constraints are reported and treated as
                      "latest".

  -stage-legacy-plugins-from=dir
                      Also copy provider binaries staged under the
                      workspace's .terraform/plugins into the install
                      directory, for the legacy lifecycle manager.
`
	return strings.TrimSpace(helpText)
}

func (c *InstallCommand) Synopsis() string {
	return "Install or upgrade the terraform-ls language server"
}
