package lsp

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// Document is an immutable snapshot of an open text document. Updates
// replace the snapshot, so an analysis pass can keep the one it started
// with.
type Document struct {
	URI     string // Document URI (file:///path/to/file.ts)
	Content string // Full document content
	Version int    // Version number, incremented on each change
	Lines   []int  // Byte offsets of line starts for fast position lookups
}

// NewDocument creates a snapshot.
func NewDocument(uri, content string, version int) *Document {
	return &Document{
		URI:     uri,
		Content: content,
		Version: version,
		Lines:   computeLineOffsets(content),
	}
}

// DocumentStore manages open documents in memory.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Open adds or replaces a document in the store.
func (s *DocumentStore) Open(uri string, content string, version int) *Document {
	doc := NewDocument(uri, content, version)
	s.mu.Lock()
	s.documents[uri] = doc
	s.mu.Unlock()
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, uri)
}

// Get retrieves a document by URI.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documents[uri]
}

// Update replaces an open document's snapshot and returns the previous
// and current snapshots. Both are nil if the document is not open.
func (s *DocumentStore) Update(uri string, content string, version int) (prev, cur *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.documents[uri]
	if !ok {
		return nil, nil
	}
	cur = NewDocument(uri, content, version)
	s.documents[uri] = cur
	return prev, cur
}

// List returns all open document URIs, sorted.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// computeLineOffsets calculates byte offsets for each line start.
func computeLineOffsets(content string) []int {
	offsets := []int{0} // First line starts at offset 0

	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}

	return offsets
}

// lineOf returns the zero-based line containing a byte offset.
func (d *Document) lineOf(offset int) int {
	return sort.Search(len(d.Lines), func(i int) bool { return d.Lines[i] > offset }) - 1
}

// OffsetToPosition converts a byte offset to an LSP position, counting
// characters in UTF-16 code units.
func (d *Document) OffsetToPosition(offset int) Position {
	if d == nil || len(d.Lines) == 0 {
		return Position{}
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(d.Content) {
		offset = len(d.Content)
	}

	line := d.lineOf(offset)
	return Position{
		Line:      uint32(line),
		Character: uint32(utf16Len(d.Content[d.Lines[line]:offset])),
	}
}

// PositionToOffset converts an LSP position to a byte offset. Positions
// past the end of a line clamp to the line end.
func (d *Document) PositionToOffset(pos Position) int {
	if d == nil || len(d.Lines) == 0 {
		return 0
	}
	line := int(pos.Line)
	if line >= len(d.Lines) {
		return len(d.Content)
	}

	offset := d.Lines[line]
	end := d.lineEnd(line)
	units := 0
	for offset < end && units < int(pos.Character) {
		r, size := utf8.DecodeRuneInString(d.Content[offset:])
		units += runeUTF16Len(r)
		offset += size
	}
	return offset
}

// lineEnd returns the byte offset of the newline ending line, or the end of content.
func (d *Document) lineEnd(line int) int {
	if line+1 < len(d.Lines) {
		return d.Lines[line+1] - 1
	}
	return len(d.Content)
}

// GetLine returns the content of a specific line.
func (d *Document) GetLine(line int) string {
	if d == nil || line < 0 || line >= len(d.Lines) {
		return ""
	}
	return strings.TrimSuffix(d.Content[d.Lines[line]:d.lineEnd(line)], "\r")
}

// LineCount returns the number of lines.
func (d *Document) LineCount() int {
	return len(d.Lines)
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += runeUTF16Len(r)
	}
	return n
}

func runeUTF16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	const prefix = "file://"
	if !strings.HasPrefix(uri, prefix) {
		return uri
	}
	u, err := url.Parse(uri)
	if err != nil {
		return uri[len(prefix):]
	}
	return filepath.FromSlash(u.Path)
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
