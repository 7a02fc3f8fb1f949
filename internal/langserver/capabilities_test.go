// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package langserver

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	lsp "github.com/sourcegraph/go-lsp"
)

func capsFromJSON(t *testing.T, doc string) ServerCapabilities {
	t.Helper()
	var caps ServerCapabilities
	if err := json.Unmarshal([]byte(doc), &caps); err != nil {
		t.Fatal(err)
	}
	return caps
}

func TestExperimentalServerCapabilities_referenceCountCodeLens(t *testing.T) {
	tests := []struct {
		doc  string
		want bool
	}{
		{`{}`, false},
		{`{"referencesProvider": true}`, false},
		{`{"experimental": {}}`, false},
		{`{"experimental": {"referenceCountCodeLens": true}}`, true},
		{`{"experimental": {"referenceCountCodeLens": false}}`, false},
		{`{"experimental": {"referenceCountCodeLens": null}}`, false},
		// Boolean-like: a non-null object marker counts as support.
		{`{"experimental": {"referenceCountCodeLens": {}}}`, true},
		{`{"experimental": {"somethingElse": true}}`, false},
	}

	for _, test := range tests {
		t.Run(test.doc, func(t *testing.T) {
			caps := capsFromJSON(t, test.doc)
			if got := caps.Experimental().ReferenceCountCodeLens(); got != test.want {
				t.Errorf("got %v, want %v", got, test.want)
			}
		})
	}
}

// staticProvider answers every references request with a fixed list and
// counts delegations.
type staticProvider struct {
	locations []lsp.Location
	calls     int
	lastReq   lsp.ReferenceParams
	err       error
}

func (p *staticProvider) References(ctx context.Context, params lsp.ReferenceParams) ([]lsp.Location, error) {
	p.calls++
	p.lastReq = params
	return p.locations, p.err
}

func TestShowReferencesFeature_activation(t *testing.T) {
	registry := NewCommandRegistry()
	editor := &fakeEditor{activeURI: "file:///work/main.tf"}
	provider := &staticProvider{}
	feature := NewShowReferencesFeature(registry, editor, provider, nil)

	// Without the experimental flag the feature silently stays inactive.
	if err := feature.Activate(capsFromJSON(t, `{"referencesProvider": true}`)); err != nil {
		t.Fatal(err)
	}
	if feature.Active() {
		t.Fatal("feature active without the experimental capability")
	}
	if len(registry.Names()) != 0 {
		t.Fatal("command registered without the experimental capability")
	}

	// With the flag it registers exactly the bridge command.
	caps := capsFromJSON(t, `{"experimental": {"referenceCountCodeLens": true}}`)
	if err := feature.Activate(caps); err != nil {
		t.Fatal(err)
	}
	if !feature.Active() {
		t.Fatal("feature is not active")
	}
	if got := registry.Names(); len(got) != 1 || got[0] != ShowReferencesCommandID {
		t.Fatalf("wrong registered commands: %v", got)
	}

	// Activating twice is a caller error.
	if err := feature.Activate(caps); err == nil {
		t.Error("double activation succeeded")
	}

	feature.Dispose()
	if feature.Active() {
		t.Error("feature still active after dispose")
	}
	if len(registry.Names()) != 0 {
		t.Error("command registration left dangling after dispose")
	}

	// Dispose of an inactive feature is a no-op.
	feature.Dispose()
}

func TestShowReferencesFeature_run(t *testing.T) {
	registry := NewCommandRegistry()
	editor := &fakeEditor{activeURI: "file:///work/variables.tf"}
	provider := &staticProvider{
		locations: []lsp.Location{
			{URI: "file:///work/main.tf", Range: lsp.Range{
				Start: lsp.Position{Line: 1, Character: 0},
				End:   lsp.Position{Line: 1, Character: 9},
			}},
			{URI: "file:///work/outputs.tf", Range: lsp.Range{
				Start: lsp.Position{Line: 4, Character: 7},
				End:   lsp.Position{Line: 4, Character: 16},
			}},
		},
	}
	feature := NewShowReferencesFeature(registry, editor, provider, nil)
	if err := feature.Activate(capsFromJSON(t, `{"experimental": {"referenceCountCodeLens": true}}`)); err != nil {
		t.Fatal(err)
	}

	pos := lsp.Position{Line: 2, Character: 5}
	refCtx := lsp.ReferenceContext{IncludeDeclaration: true}
	if err := registry.Invoke(context.Background(), ShowReferencesCommandID, pos, refCtx); err != nil {
		t.Fatal(err)
	}

	// Exactly one delegation, with the active document and original
	// position translated into the request.
	if provider.calls != 1 {
		t.Fatalf("references delegated %d times, want exactly once", provider.calls)
	}
	if got := provider.lastReq.TextDocument.URI; got != editor.activeURI {
		t.Errorf("wrong document in request: %s", got)
	}
	if provider.lastReq.Position != pos {
		t.Errorf("wrong position in request: %+v", provider.lastReq.Position)
	}
	if !provider.lastReq.Context.IncludeDeclaration {
		t.Error("includeDeclaration flag was dropped")
	}

	// Exactly one show-references trigger with the returned locations.
	if len(editor.shown) != 1 {
		t.Fatalf("ShowReferences triggered %d times, want exactly once", len(editor.shown))
	}
	if len(editor.shown[0].locations) != 2 {
		t.Errorf("wrong locations: %+v", editor.shown[0].locations)
	}
}

func TestShowReferencesFeature_runFailures(t *testing.T) {
	registry := NewCommandRegistry()
	caps := capsFromJSON(t, `{"experimental": {"referenceCountCodeLens": true}}`)

	// No active document.
	editor := &fakeEditor{}
	feature := NewShowReferencesFeature(registry, editor, &staticProvider{}, nil)
	if err := feature.Activate(caps); err != nil {
		t.Fatal(err)
	}
	err := registry.Invoke(context.Background(), ShowReferencesCommandID, lsp.Position{}, lsp.ReferenceContext{})
	if err == nil {
		t.Error("expected error with no active document")
	}
	feature.Dispose()

	// Provider failure does not trigger the references UI.
	editor = &fakeEditor{activeURI: "file:///work/main.tf"}
	provider := &staticProvider{err: fmt.Errorf("server went away")}
	feature = NewShowReferencesFeature(registry, editor, provider, nil)
	if err := feature.Activate(caps); err != nil {
		t.Fatal(err)
	}
	err = registry.Invoke(context.Background(), ShowReferencesCommandID, lsp.Position{}, lsp.ReferenceContext{})
	if err == nil {
		t.Error("expected provider failure to propagate")
	}
	if len(editor.shown) != 0 {
		t.Error("ShowReferences triggered despite provider failure")
	}
}
