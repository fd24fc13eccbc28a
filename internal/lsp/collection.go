package lsp

import (
	"sync"

	"github.com/joeandaverde/vscode-tinypg/pkg/core"
)

// Collections holds the published diagnostics of every document, one
// collection per category. Each category of a document can be replaced
// or cleared without touching the others.
type Collections struct {
	mu    sync.RWMutex
	byCat map[core.Category]map[string][]Diagnostic
}

// NewCollections creates empty collections for every known category.
func NewCollections() *Collections {
	c := &Collections{byCat: make(map[core.Category]map[string][]Diagnostic, len(core.Categories))}
	for _, cat := range core.Categories {
		c.byCat[cat] = make(map[string][]Diagnostic)
	}
	return c
}

// Set replaces the diagnostics of one category for uri.
func (c *Collections) Set(cat core.Category, uri string, diags []Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	docs, ok := c.byCat[cat]
	if !ok {
		docs = make(map[string][]Diagnostic)
		c.byCat[cat] = docs
	}
	if len(diags) == 0 {
		delete(docs, uri)
		return
	}
	docs[uri] = diags
}

// Get returns the diagnostics of one category for uri.
func (c *Collections) Get(cat core.Category, uri string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byCat[cat][uri]
}

// Clear removes every category for uri.
func (c *Collections) Clear(uri string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, docs := range c.byCat {
		delete(docs, uri)
	}
}

// Merged returns all diagnostics for uri in category order. The result is
// never nil so it encodes as an empty JSON array.
func (c *Collections) Merged(uri string) []Diagnostic {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []Diagnostic{}
	for _, cat := range core.Categories {
		out = append(out, c.byCat[cat][uri]...)
	}
	return out
}

// URIs returns every document with at least one diagnostic.
func (c *Collections) URIs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	seen := make(map[string]bool)
	var uris []string
	for _, cat := range core.Categories {
		for uri := range c.byCat[cat] {
			if !seen[uri] {
				seen[uri] = true
				uris = append(uris, uri)
			}
		}
	}
	return uris
}
