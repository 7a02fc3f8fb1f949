// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package indexer maintains a small in-memory index over the Terraform
// configuration files of a workspace, enough to power navigation
// features while the language server is unavailable. It deliberately
// stops at syntax: full language semantics belong to the server.
package indexer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Block is one top-level configuration block, such as a resource or
// variable declaration.
type Block struct {
	Path   string
	Type   string
	Labels []string
	Range  hcl.Range
}

// Address returns the canonical reference address of the block, e.g.
// "var.region" or "aws_instance.web".
func (b Block) Address() string {
	switch b.Type {
	case "variable":
		if len(b.Labels) > 0 {
			return "var." + b.Labels[0]
		}
	case "locals":
		return "local"
	case "resource":
		if len(b.Labels) >= 2 {
			return b.Labels[0] + "." + b.Labels[1]
		}
	case "data", "module", "output", "provider":
		if len(b.Labels) > 0 {
			return b.Type + "." + b.Labels[0]
		}
	}
	if len(b.Labels) > 0 {
		return b.Type + "." + strings.Join(b.Labels, ".")
	}
	return b.Type
}

// Reference is one expression traversal found in a file, recorded by its
// dotted address prefix.
type Reference struct {
	Path    string
	Address string
	Range   hcl.Range
}

type fileSummary struct {
	blocks []Block
	refs   []Reference
}

// Index is a mutex-guarded map from file path to parse summary. Writers
// are the watcher and explicit walks; readers tolerate files appearing
// and disappearing between calls.
type Index struct {
	logger hclog.Logger

	mu    sync.RWMutex
	files map[string]*fileSummary
}

// NewIndex returns an empty index.
func NewIndex(logger hclog.Logger) *Index {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Index{
		logger: logger,
		files:  make(map[string]*fileSummary),
	}
}

// PutFile parses the given source as HCL native syntax and replaces the
// index entry for path. Files with syntax errors are indexed as far as
// they parse; the diagnostics are returned for the caller to report.
func (ix *Index) PutFile(path string, src []byte) error {
	f, diags := hclsyntax.ParseConfig(src, path, hcl.InitialPos)

	summary := &fileSummary{}
	if body, ok := f.Body.(*hclsyntax.Body); ok {
		for _, block := range body.Blocks {
			summary.blocks = append(summary.blocks, Block{
				Path:   path,
				Type:   block.Type,
				Labels: block.Labels,
				Range:  block.DefRange(),
			})
		}
		collectRefs(body, path, &summary.refs)
	}

	ix.mu.Lock()
	ix.files[path] = summary
	ix.mu.Unlock()
	ix.logger.Trace("indexed file", "path", path, "blocks", len(summary.blocks), "refs", len(summary.refs))

	if diags.HasErrors() {
		return fmt.Errorf("failed to fully parse %s: %w", path, diags)
	}
	return nil
}

// Remove drops the index entry for path, if any.
func (ix *Index) Remove(path string) {
	ix.mu.Lock()
	delete(ix.files, path)
	ix.mu.Unlock()
	ix.logger.Trace("removed file from index", "path", path)
}

// Paths returns the indexed file paths, sorted.
func (ix *Index) Paths() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	paths := make([]string, 0, len(ix.files))
	for path := range ix.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Blocks returns all indexed top-level blocks of the given type, across
// all files, ordered by file path then source position.
func (ix *Index) Blocks(blockType string) []Block {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []Block
	for _, summary := range ix.files {
		for _, b := range summary.blocks {
			if b.Type == blockType {
				out = append(out, b)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Range.Start.Byte < out[j].Range.Start.Byte
	})
	return out
}

// ReferencesTo returns every indexed reference whose address is the
// given address or an attribute path below it.
func (ix *Index) ReferencesTo(addr string) []Reference {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []Reference
	for _, summary := range ix.files {
		for _, ref := range summary.refs {
			if ref.Address == addr || strings.HasPrefix(ref.Address, addr+".") {
				out = append(out, ref)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Range.Start.Byte < out[j].Range.Start.Byte
	})
	return out
}

func collectRefs(body *hclsyntax.Body, path string, out *[]Reference) {
	for _, attr := range body.Attributes {
		for _, traversal := range attr.Expr.Variables() {
			*out = append(*out, Reference{
				Path:    path,
				Address: traversalAddress(traversal),
				Range:   traversal.SourceRange(),
			})
		}
	}
	for _, block := range body.Blocks {
		collectRefs(block.Body, path, out)
	}
}

// traversalAddress renders the leading name/attribute steps of a
// traversal as a dotted address, stopping at the first index step.
func traversalAddress(traversal hcl.Traversal) string {
	var parts []string
	for _, step := range traversal {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			parts = append(parts, s.Name)
		case hcl.TraverseAttr:
			parts = append(parts, s.Name)
		default:
			return strings.Join(parts, ".")
		}
	}
	return strings.Join(parts, ".")
}
