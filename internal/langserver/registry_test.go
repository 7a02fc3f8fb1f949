// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package langserver

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
)

func TestCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()

	var invoked int
	cmd := func(ctx context.Context, pos lsp.Position, refCtx lsp.ReferenceContext) error {
		invoked++
		return nil
	}

	if err := registry.Register("example.one", cmd); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register("example.two", cmd); err != nil {
		t.Fatal(err)
	}
	if err := registry.Register("example.one", cmd); err == nil {
		t.Error("duplicate registration succeeded")
	}

	if diff := cmp.Diff([]string{"example.one", "example.two"}, registry.Names()); diff != "" {
		t.Errorf("wrong names\n%s", diff)
	}

	if err := registry.Invoke(context.Background(), "example.one", lsp.Position{}, lsp.ReferenceContext{}); err != nil {
		t.Fatal(err)
	}
	if invoked != 1 {
		t.Errorf("command invoked %d times, want 1", invoked)
	}

	if err := registry.Invoke(context.Background(), "example.unknown", lsp.Position{}, lsp.ReferenceContext{}); err == nil {
		t.Error("invoking an unknown command succeeded")
	}

	registry.Unregister("example.one")
	if err := registry.Invoke(context.Background(), "example.one", lsp.Position{}, lsp.ReferenceContext{}); err == nil {
		t.Error("invoking an unregistered command succeeded")
	}

	// Unregistering an unknown command is a no-op.
	registry.Unregister("example.unknown")
}
