// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package indexer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// Watcher feeds an Index from filesystem events on workspace
// directories. Only *.tf files are indexed; the .terraform internals
// directory is ignored.
type Watcher struct {
	index  *Index
	logger hclog.Logger
	fs     *fsnotify.Watcher
	done   chan struct{}
}

// NewWatcher returns a watcher feeding the given index. Start must be
// called before events are processed.
func NewWatcher(index *Index, logger hclog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		index:  index,
		logger: logger,
		fs:     fs,
		done:   make(chan struct{}),
	}, nil
}

// AddWorkspace watches a directory and indexes the configuration files
// already in it.
func (w *Watcher) AddWorkspace(dir string) error {
	if err := w.fs.Add(dir); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || !isConfigFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := w.indexFile(path); err != nil {
			w.logger.Warn("failed to index file", "path", path, "error", err)
		}
	}
	return nil
}

// Start begins processing filesystem events until Stop is called.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop closes the underlying watcher and waits for event processing to
// finish.
func (w *Watcher) Stop() error {
	err := w.fs.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !isConfigFile(ev.Name) {
		return
	}
	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		if err := w.indexFile(ev.Name); err != nil {
			w.logger.Warn("failed to index file", "path", ev.Name, "error", err)
		}
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.index.Remove(ev.Name)
	}
}

func (w *Watcher) indexFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return w.index.PutFile(path, src)
}

func isConfigFile(path string) bool {
	if !strings.HasSuffix(path, ".tf") {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".terraform" {
			return false
		}
	}
	return true
}
