// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package langserver

import (
	"context"
	"fmt"
	"sort"
	"sync"

	lsp "github.com/sourcegraph/go-lsp"
)

// Command is an interactive editor command taking a zero-based document
// position and a reference context.
type Command func(ctx context.Context, pos lsp.Position, refCtx lsp.ReferenceContext) error

// CommandRegistry tracks the interactive commands currently registered
// with the editor. Registrations are explicit and must be disposed of;
// nothing may remain registered after its owner shuts down.
type CommandRegistry struct {
	mu       sync.Mutex
	commands map[string]Command
}

func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]Command),
	}
}

// Register binds a command to the given identifier. Registering an
// identifier that is already bound is a caller error.
func (r *CommandRegistry) Register(id string, cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[id]; exists {
		return fmt.Errorf("command %q is already registered", id)
	}
	r.commands[id] = cmd
	return nil
}

// Unregister removes a command binding. Unregistering an unknown
// identifier is a no-op.
func (r *CommandRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, id)
}

// Invoke runs the command bound to the given identifier.
func (r *CommandRegistry) Invoke(ctx context.Context, id string, pos lsp.Position, refCtx lsp.ReferenceContext) error {
	r.mu.Lock()
	cmd, ok := r.commands[id]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("no command registered as %q", id)
	}
	return cmd(ctx, pos, refCtx)
}

// Names returns the identifiers of all registered commands, sorted.
func (r *CommandRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.commands))
	for id := range r.commands {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}
