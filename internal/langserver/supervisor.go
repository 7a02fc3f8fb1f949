// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package langserver launches and supervises the terraform-ls process,
// performs the protocol handshake, and bridges the experimental
// reference-count code lens capability into the editor's references UI.
package langserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/hashicorp/go-hclog"
	lsp "github.com/sourcegraph/go-lsp"
)

// ErrNoCapabilities indicates that the handshake completed but the
// server advertised no capabilities at all: it is running but offers
// nothing usable. Callers should warn rather than crash.
var ErrNoCapabilities = errors.New("language server reported no capabilities")

// stopGracePeriod is how long Stop waits for the process to exit after
// the graceful shutdown sequence before killing it.
const stopGracePeriod = 5 * time.Second

type state int

const (
	stateNotStarted state = iota
	stateStarting
	stateReady
	stateStopped
)

// Config wires a Supervisor to its collaborators. Editor and Registry
// are optional; without them the capability shim stays inactive.
type Config struct {
	// BinPath is the language server binary to launch.
	BinPath string

	// RootURI is the workspace root advertised during the handshake.
	RootURI lsp.DocumentURI

	Editor   Editor
	Registry *CommandRegistry
	Logger   hclog.Logger
}

// Supervisor owns a single language server subprocess. It is created at
// activation, passed around explicitly, and disposed with Stop; there is
// deliberately no shared package-level instance. At most one live server
// is permitted per Supervisor: starting while running is a caller error,
// and replacing a running server goes through Restart.
type Supervisor struct {
	binPath  string
	rootURI  lsp.DocumentURI
	logger   hclog.Logger
	registry *CommandRegistry
	editor   Editor

	// gracePeriod bounds both the graceful shutdown sequence and the
	// wait for process exit before Kill.
	gracePeriod time.Duration

	mu      sync.Mutex
	st      state
	cmd     *exec.Cmd
	client  *jrpc2.Client
	caps    ServerCapabilities
	feature *ShowReferencesFeature

	ready   chan struct{}
	exited  chan struct{}
	exitErr error
}

// NewSupervisor returns a supervisor in the not-started state.
func NewSupervisor(cfg Config) *Supervisor {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Supervisor{
		binPath:     cfg.BinPath,
		rootURI:     cfg.RootURI,
		logger:      logger,
		registry:    cfg.Registry,
		editor:      cfg.Editor,
		gracePeriod: stopGracePeriod,
		ready:       make(chan struct{}),
	}
}

// Start launches the server binary as a subprocess with no arguments and
// the inherited environment, then performs the protocol handshake. On
// success the readiness channel is closed exactly once. ErrNoCapabilities
// leaves the process running but not ready.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.st != stateNotStarted {
		s.mu.Unlock()
		return fmt.Errorf("language server is already running or was stopped; use Restart to replace it")
	}
	s.st = stateStarting
	s.mu.Unlock()

	cmd := exec.Command(s.binPath)
	// cmd.Env stays nil so the subprocess inherits our environment.
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open stdout pipe: %w", err)
	}
	cmd.Stderr = s.logger.StandardWriter(&hclog.StandardLoggerOptions{
		ForceLevel: hclog.Debug,
	})

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", s.binPath, err)
	}
	s.logger.Info("launched language server", "path", s.binPath, "pid", cmd.Process.Pid)

	exited := make(chan struct{})
	s.mu.Lock()
	s.cmd = cmd
	s.exited = exited
	s.mu.Unlock()

	// Observe subprocess completion through Wait rather than by polling
	// the pid; the exit channel is the single completion signal.
	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.exitErr = err
		s.mu.Unlock()
		s.logger.Debug("language server exited", "error", err)
		close(exited)
	}()

	return s.negotiate(ctx, channel.LSP(stdout, stdin))
}

// negotiate runs the initialize/initialized handshake over the given
// channel and, on success, fires readiness and activates the capability
// shim.
func (s *Supervisor) negotiate(ctx context.Context, ch channel.Channel) error {
	client := jrpc2.NewClient(ch, nil)
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	params := initializeParams{
		ProcessID: os.Getpid(),
		RootURI:   s.rootURI,
		Capabilities: clientCapabilities{
			Experimental: expClientCapabilities{
				ShowReferencesCommandID: ShowReferencesCommandID,
			},
		},
	}

	rsp, err := client.Call(ctx, "initialize", params)
	if err != nil {
		return fmt.Errorf("initialize request failed: %w", err)
	}
	var result initializeResult
	if err := rsp.UnmarshalResult(&result); err != nil {
		return fmt.Errorf("malformed initialize response: %w", err)
	}
	if len(result.Capabilities) == 0 {
		return ErrNoCapabilities
	}
	if err := client.Notify(ctx, "initialized", struct{}{}); err != nil {
		return fmt.Errorf("initialized notification failed: %w", err)
	}

	s.mu.Lock()
	s.caps = result.Capabilities
	s.st = stateReady
	ready := s.ready
	s.mu.Unlock()

	if s.registry != nil && s.editor != nil {
		feature := NewShowReferencesFeature(s.registry, s.editor, s, s.logger)
		if err := feature.Activate(result.Capabilities); err != nil {
			s.logger.Warn("failed to activate show-references feature", "error", err)
		} else {
			s.mu.Lock()
			s.feature = feature
			s.mu.Unlock()
		}
	}

	close(ready)
	return nil
}

// Restart stops any running server and launches a fresh one with the
// same configuration. The readiness channel is replaced, so callers
// holding the old channel must re-obtain it from Ready afterwards.
func (s *Supervisor) Restart(ctx context.Context) error {
	if err := s.Stop(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = stateNotStarted
	s.cmd = nil
	s.client = nil
	s.caps = nil
	s.feature = nil
	s.exited = nil
	s.exitErr = nil
	s.ready = make(chan struct{})
	s.mu.Unlock()

	return s.Start(ctx)
}

// Ready returns a channel closed once the handshake has completed with
// non-empty capabilities. The channel is replaced by Restart.
func (s *Supervisor) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Capabilities returns a copy of the server's advertised capabilities,
// so callers cannot alter what was negotiated. It is only meaningful
// after Ready.
func (s *Supervisor) Capabilities() ServerCapabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	caps := make(ServerCapabilities, len(s.caps))
	for name, raw := range s.caps {
		caps[name] = raw
	}
	return caps
}

// Running reports whether the supervisor currently owns a live session.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st == stateStarting || s.st == stateReady
}

// References delegates to the server's standard "find references"
// capability for the given document position.
func (s *Supervisor) References(ctx context.Context, params lsp.ReferenceParams) ([]lsp.Location, error) {
	s.mu.Lock()
	client := s.client
	st := s.st
	s.mu.Unlock()
	if client == nil || st != stateReady {
		return nil, fmt.Errorf("language server is not ready")
	}

	var locations []lsp.Location
	if err := client.CallResult(ctx, "textDocument/references", params, &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// Stop shuts the server down. The graceful shutdown/exit sequence is
// attempted first and its failure tolerated, since older servers may not
// support it; the process is then killed by its tracked handle if it has
// not exited within the grace period. Only after the process is gone is
// the supervisor marked not-running. Stopping a supervisor that is not
// running is a no-op.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	if s.st == stateNotStarted || s.st == stateStopped {
		s.mu.Unlock()
		return nil
	}
	client := s.client
	cmd := s.cmd
	exited := s.exited
	feature := s.feature
	s.mu.Unlock()

	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.gracePeriod)
		if _, err := client.Call(ctx, "shutdown", nil); err != nil {
			s.logger.Debug("graceful shutdown call failed", "error", err)
		}
		if err := client.Notify(ctx, "exit", nil); err != nil {
			s.logger.Debug("exit notification failed", "error", err)
		}
		cancel()
		client.Close()
	}

	if cmd != nil {
		select {
		case <-exited:
		case <-time.After(s.gracePeriod):
			s.logger.Warn("language server did not exit gracefully, killing", "pid", cmd.Process.Pid)
			if err := cmd.Process.Kill(); err != nil {
				s.logger.Error("failed to kill language server", "pid", cmd.Process.Pid, "error", err)
			}
			<-exited
		}
	}

	if feature != nil {
		feature.Dispose()
	}

	s.mu.Lock()
	s.st = stateStopped
	s.mu.Unlock()
	s.logger.Info("language server stopped")
	return nil
}

type initializeParams struct {
	ProcessID    int                `json:"processId"`
	RootURI      lsp.DocumentURI    `json:"rootUri,omitempty"`
	Capabilities clientCapabilities `json:"capabilities"`
}

// clientCapabilities is the subset of advertised client capabilities
// this supervisor populates; everything else is left to protocol
// defaults. The handshake result is decoded generically because the
// capability shim keys off the raw experimental object.
type clientCapabilities struct {
	Experimental expClientCapabilities `json:"experimental"`
}

type initializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}
