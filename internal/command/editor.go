// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"

	"github.com/hashicorp/cli"
	lsp "github.com/sourcegraph/go-lsp"
)

// uiEditor adapts the terminal UI to the editor surface the language
// server supervisor expects. A terminal has no focused document, so
// commands that require one report that back to the server bridge, and
// reference results are rendered as plain output lines.
type uiEditor struct {
	ui cli.Ui
}

func (e *uiEditor) ActiveDocument() (lsp.DocumentURI, bool) {
	return "", false
}

func (e *uiEditor) ShowReferences(uri lsp.DocumentURI, pos lsp.Position, locations []lsp.Location) {
	e.ui.Output(fmt.Sprintf("%d reference(s) to %s:%d:%d", len(locations), uri, pos.Line+1, pos.Character+1))
	for _, loc := range locations {
		e.ui.Output(fmt.Sprintf("  %s:%d:%d", loc.URI, loc.Range.Start.Line+1, loc.Range.Start.Character+1))
	}
}
