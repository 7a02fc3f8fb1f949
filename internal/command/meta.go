// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package command implements the CLI commands. Each command is thin glue
// over the internal packages; anything interesting happens there.
package command

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/cli"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp/terraform-ls-manager/internal/installer"
	"github.com/hashicorp/terraform-ls-manager/internal/releases"
)

// Meta carries the dependencies common to all commands.
type Meta struct {
	UI     cli.Ui
	Logger hclog.Logger
}

// DefaultInstallDir is where the managed binary lives unless overridden
// with -install-dir.
func DefaultInstallDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".terraform-ls"
	}
	return filepath.Join(home, ".terraform-ls")
}

func (m *Meta) releasesClient() *releases.Client {
	return releases.NewClient(m.Logger.Named("releases"))
}

func (m *Meta) installer(dir string) *installer.Installer {
	inst := installer.NewInstaller(dir, m.releasesClient(), m.Logger.Named("installer"))
	inst.SetEvents(installer.InstallerEvents{
		DownloadBegin: func(url string) {
			m.UI.Output("Downloading " + url + " ...")
		},
		VerifyBegin: func(archivePath string) {
			m.UI.Output("Verifying checksums ...")
		},
		UnpackBegin: func(archivePath string) {
			m.UI.Output("Unpacking " + filepath.Base(archivePath) + " ...")
		},
	})
	return inst
}
