// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/hashicorp/terraform-ls-manager/internal/installer"
	"github.com/hashicorp/terraform-ls-manager/internal/langserver"
)

// ServeCommand launches the installed language server and supervises it
// until interrupted.
type ServeCommand struct {
	Meta
}

func (c *ServeCommand) Run(args []string) int {
	var installDir, workspace string
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	flags.StringVar(&installDir, "install-dir", DefaultInstallDir(), "install directory")
	flags.StringVar(&workspace, "workspace", "", "workspace root directory")
	flags.Usage = func() { c.UI.Error(c.Help()) }
	if err := flags.Parse(args); err != nil {
		return 1
	}

	ctx := context.Background()
	if _, err := installer.InstalledVersion(ctx, installDir); err != nil {
		if errors.Is(err, installer.ErrNotInstalled) {
			c.UI.Error("terraform-ls is not installed; run \"terraform-ls-manager install\" first")
		} else {
			c.UI.Error(fmt.Sprintf("Failed to inspect installation: %s", err))
		}
		return 1
	}

	var rootURI lsp.DocumentURI
	if workspace != "" {
		abs, err := filepath.Abs(workspace)
		if err != nil {
			c.UI.Error(fmt.Sprintf("Invalid workspace path: %s", err))
			return 1
		}
		rootURI = lsp.DocumentURI("file://" + abs)
	}

	registry := langserver.NewCommandRegistry()
	supervisor := langserver.NewSupervisor(langserver.Config{
		BinPath:  installer.BinaryPath(installDir),
		RootURI:  rootURI,
		Editor:   &uiEditor{ui: c.UI},
		Registry: registry,
		Logger:   c.Logger.Named("langserver"),
	})

	if err := supervisor.Start(ctx); err != nil {
		if errors.Is(err, langserver.ErrNoCapabilities) {
			// Degraded but alive; keep supervising so stop still works.
			c.UI.Warn("The language server started but reported no capabilities; it may be unusable")
		} else {
			c.UI.Error(fmt.Sprintf("Failed to start the language server: %s", err))
			supervisor.Stop()
			return 1
		}
	} else {
		<-supervisor.Ready()
		c.UI.Output("Language server is ready")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	c.UI.Output("Shutting down ...")
	if err := supervisor.Stop(); err != nil {
		c.UI.Error(fmt.Sprintf("Failed to stop the language server: %s", err))
		return 1
	}
	return 0
}

func (c *ServeCommand) Help() string {
	helpText := `
Usage: terraform-ls-manager serve [options]

  Launches the installed terraform-ls binary as a supervised subprocess,
  performs the protocol handshake, and keeps it running until
  interrupted.

Options:

  -install-dir=path   Directory the server is installed in.
                      Defaults to ` + DefaultInstallDir() + `.

  -workspace=path     Workspace root advertised to the server.
`
	return strings.TrimSpace(helpText)
}

func (c *ServeCommand) Synopsis() string {
	return "Launch and supervise the language server"
}
