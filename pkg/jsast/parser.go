package jsast

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Parse errors.
var (
	// ErrFileTooLarge is returned for content over the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	// ErrInvalidContent is returned for content that is not valid UTF-8.
	ErrInvalidContent = errors.New("content is not valid UTF-8")
	// ErrUnsupportedLanguage is returned when no grammar exists for a file.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// DefaultMaxFileSize is the default content limit in bytes.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Options configures Parser behavior.
type Options struct {
	// MaxFileSize is the maximum content size in bytes.
	// Default: 10MB
	MaxFileSize int
}

// Option mutates Options.
type Option func(*Options)

// WithMaxFileSize sets the maximum content size in bytes.
func WithMaxFileSize(size int) Option {
	return func(o *Options) {
		o.MaxFileSize = size
	}
}

// Parser turns source text into syntax trees.
//
// Parser is safe for concurrent use. Each Parse call creates its own
// tree-sitter parser instance.
type Parser struct {
	options Options
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	options := Options{MaxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&options)
	}
	return &Parser{options: options}
}

// Parse parses content with the grammar for lang. The caller must Close
// the returned tree. Syntax errors do not fail the parse; tree-sitter
// recovers and the well-formed parts of the tree remain usable.
func (p *Parser) Parse(ctx context.Context, content []byte, lang Language) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if p.options.MaxFileSize > 0 && len(content) > p.options.MaxFileSize {
		return nil, ErrFileTooLarge
	}
	if !utf8.Valid(content) {
		return nil, ErrInvalidContent
	}
	grammar := lang.grammar()
	if grammar == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, fmt.Errorf("parse canceled after tree-sitter: %w", err)
	}

	return &Tree{tree: tree, Source: content, Language: lang}, nil
}

// Tree is a parsed source file.
type Tree struct {
	tree     *sitter.Tree
	Source   []byte
	Language Language
}

// Root returns the root node of the tree.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// HasErrors reports whether tree-sitter had to recover from syntax errors.
func (t *Tree) HasErrors() bool {
	return t.Root().HasError()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}
