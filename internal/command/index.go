// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/terraform-ls-manager/internal/indexer"
)

// IndexCommand walks a workspace, indexes its configuration files, and
// prints the blocks found, or the references to a given address.
type IndexCommand struct {
	Meta
}

func (c *IndexCommand) Run(args []string) int {
	var refsTo string
	flags := flag.NewFlagSet("index", flag.ContinueOnError)
	flags.StringVar(&refsTo, "references-to", "", "print references to the given address instead of blocks")
	flags.Usage = func() { c.UI.Error(c.Help()) }
	if err := flags.Parse(args); err != nil {
		return 1
	}

	dir := "."
	if flags.NArg() > 0 {
		dir = flags.Arg(0)
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		c.UI.Error(fmt.Sprintf("Invalid workspace path: %s", err))
		return 1
	}

	index := indexer.NewIndex(c.Logger.Named("indexer"))
	watcher, err := indexer.NewWatcher(index, c.Logger.Named("watcher"))
	if err != nil {
		c.UI.Error(fmt.Sprintf("Failed to set up the workspace watcher: %s", err))
		return 1
	}
	watcher.Start()
	defer watcher.Stop()
	if err := watcher.AddWorkspace(dir); err != nil {
		c.UI.Error(fmt.Sprintf("Failed to index %s: %s", dir, err))
		return 1
	}

	if refsTo != "" {
		refs := index.ReferencesTo(refsTo)
		c.UI.Output(fmt.Sprintf("%d reference(s) to %s", len(refs), refsTo))
		for _, ref := range refs {
			c.UI.Output(fmt.Sprintf("  %s: %s", ref.Range, ref.Address))
		}
		return 0
	}

	for _, path := range index.Paths() {
		c.UI.Output(path)
	}
	for _, blockType := range []string{"provider", "variable", "resource", "data", "module", "output"} {
		for _, block := range index.Blocks(blockType) {
			c.UI.Output(fmt.Sprintf("  %s (%s)", block.Address(), block.Range))
		}
	}
	return 0
}

func (c *IndexCommand) Help() string {
	helpText := `
Usage: terraform-ls-manager index [options] [dir]

  Indexes the Terraform configuration files in the given workspace
  directory (the current directory by default) and prints the blocks
  found.

Options:

  -references-to=addr   Print expression references to the given address
                        (e.g. "var.region") instead of blocks.
`
	return strings.TrimSpace(helpText)
}

func (c *IndexCommand) Synopsis() string {
	return "Index a workspace's configuration files"
}
