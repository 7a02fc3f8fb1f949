// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"

	"github.com/hashicorp/terraform-ls-manager/internal/command"
	"github.com/hashicorp/terraform-ls-manager/internal/httpclient"
	"github.com/hashicorp/terraform-ls-manager/internal/logging"
	"github.com/hashicorp/terraform-ls-manager/version"
)

func main() {
	os.Exit(logging.WrapMain(realMain))
}

func realMain() int {
	logger := logging.RootLogger()

	if editor := os.Getenv("TFLSM_EDITOR"); editor != "" {
		httpclient.SetEditorIdentity(editor, os.Getenv("TFLSM_EDITOR_VERSION"))
	}

	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}
	meta := command.Meta{
		UI:     ui,
		Logger: logger,
	}

	c := cli.NewCLI("terraform-ls-manager", version.String())
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"install": func() (cli.Command, error) {
			return &command.InstallCommand{Meta: meta}, nil
		},
		"cleanup": func() (cli.Command, error) {
			return &command.CleanupCommand{Meta: meta}, nil
		},
		"serve": func() (cli.Command, error) {
			return &command.ServeCommand{Meta: meta}, nil
		},
		"index": func() (cli.Command, error) {
			return &command.IndexCommand{Meta: meta}, nil
		},
		"version": func() (cli.Command, error) {
			return &command.VersionCommand{Meta: meta}, nil
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return exitStatus
}
