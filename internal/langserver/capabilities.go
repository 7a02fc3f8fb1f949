// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package langserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
	lsp "github.com/sourcegraph/go-lsp"
)

// ShowReferencesCommandID is the fixed identifier of the interactive
// command bridging the server's reference-count code lens into the
// editor's references UI.
const ShowReferencesCommandID = "client.showReferences"

// refCountCapabilityName is the experimental server capability marking
// support for the reference-count code lens.
const refCountCapabilityName = "referenceCountCodeLens"

// ServerCapabilities is the client-side copy of what the server
// advertised during the handshake. It is read-only once the handshake
// completes.
type ServerCapabilities map[string]json.RawMessage

// Experimental returns the server's experimental capabilities, which may
// be empty.
func (c ServerCapabilities) Experimental() ExperimentalServerCapabilities {
	raw, ok := c["experimental"]
	if !ok {
		return nil
	}
	var exp ExperimentalServerCapabilities
	if err := json.Unmarshal(raw, &exp); err != nil {
		return nil
	}
	return exp
}

// ExperimentalServerCapabilities is the experimental sub-object of the
// server's advertised capabilities.
type ExperimentalServerCapabilities map[string]json.RawMessage

// ReferenceCountCodeLens reports whether the server advertised support
// for the reference-count code lens. The marker is boolean-like: an
// explicit false or null does not count, anything else present does.
func (c ExperimentalServerCapabilities) ReferenceCountCodeLens() bool {
	raw, ok := c[refCountCapabilityName]
	if !ok {
		return false
	}
	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		return flag
	}
	return string(raw) != "null"
}

// expClientCapabilities is what this client adds to its advertised
// experimental capabilities: the identifier of the command the server
// should attach to reference-count code lenses.
type expClientCapabilities struct {
	ShowReferencesCommandID string `json:"showReferencesCommandId"`
}

// ReferencesProvider resolves a references request through the standard
// "find references" capability already negotiated for a document.
type ReferencesProvider interface {
	References(ctx context.Context, params lsp.ReferenceParams) ([]lsp.Location, error)
}

// ShowReferencesFeature bridges the server's reference-count code lens
// to the editor's references UI. It has exactly two states, inactive and
// active, and only the handshake result can move it to active.
type ShowReferencesFeature struct {
	registry *CommandRegistry
	editor   Editor
	provider ReferencesProvider
	logger   hclog.Logger

	mu     sync.Mutex
	active bool
}

// NewShowReferencesFeature returns the feature in its inactive state.
func NewShowReferencesFeature(registry *CommandRegistry, editor Editor, provider ReferencesProvider, logger hclog.Logger) *ShowReferencesFeature {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ShowReferencesFeature{
		registry: registry,
		editor:   editor,
		provider: provider,
		logger:   logger,
	}
}

// Activate inspects the negotiated capabilities and registers the bridge
// command when the server offers the reference-count code lens. An
// absent offer is a capability-negotiation miss, not an error: the
// feature simply stays inactive.
func (f *ShowReferencesFeature) Activate(caps ServerCapabilities) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active {
		return fmt.Errorf("show-references feature is already active")
	}
	if !caps.Experimental().ReferenceCountCodeLens() {
		f.logger.Debug("server does not offer reference-count code lens, feature stays inactive")
		return nil
	}
	if err := f.registry.Register(ShowReferencesCommandID, f.run); err != nil {
		return err
	}
	f.active = true
	f.logger.Debug("registered show-references bridge command", "id", ShowReferencesCommandID)
	return nil
}

// Active reports whether the bridge command is currently registered.
func (f *ShowReferencesFeature) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// Dispose unregisters the bridge command and returns the feature to its
// inactive state. Disposing an inactive feature is a no-op.
func (f *ShowReferencesFeature) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.active {
		return
	}
	f.registry.Unregister(ShowReferencesCommandID)
	f.active = false
}

// run handles one invocation of the bridge command: resolve the active
// document, delegate to the standard references capability, and hand the
// locations to the editor's references UI.
func (f *ShowReferencesFeature) run(ctx context.Context, pos lsp.Position, refCtx lsp.ReferenceContext) error {
	uri, ok := f.editor.ActiveDocument()
	if !ok {
		return fmt.Errorf("no active document to show references for")
	}

	locations, err := f.provider.References(ctx, lsp.ReferenceParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: uri},
			Position:     pos,
		},
		Context: refCtx,
	})
	if err != nil {
		return fmt.Errorf("failed to find references: %w", err)
	}

	f.editor.ShowReferences(uri, pos, locations)
	return nil
}
