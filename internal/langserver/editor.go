// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package langserver

import (
	lsp "github.com/sourcegraph/go-lsp"
)

// Editor is the boundary to the editor UI embedding this tool. Rendering
// is entirely the editor's concern; this package only asks it which
// document is active and tells it when to present a references list.
type Editor interface {
	// ActiveDocument returns the URI of the currently focused document,
	// or false when no document is active.
	ActiveDocument() (lsp.DocumentURI, bool)

	// ShowReferences triggers the editor's built-in references UI for
	// the given document and position.
	ShowReferences(uri lsp.DocumentURI, pos lsp.Position, locations []lsp.Location)
}
