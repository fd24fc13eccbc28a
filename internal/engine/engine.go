// Package engine runs analysis passes over source documents: locate the
// binding calls, resolve each one concurrently, and produce diagnostics
// in call-site order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joeandaverde/vscode-tinypg/pkg/binding"
	"github.com/joeandaverde/vscode-tinypg/pkg/callsite"
	"github.com/joeandaverde/vscode-tinypg/pkg/core"
	"github.com/joeandaverde/vscode-tinypg/pkg/jsast"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// DefaultConcurrency bounds concurrent resolutions within one document.
const DefaultConcurrency = 8

// Default call names.
var (
	DefaultKeyedCalls  = []string{"sql"}
	DefaultInlineCalls = []string{"query"}
)

// Engine analyzes documents. It holds no per-document state and is safe
// for concurrent use.
type Engine struct {
	parser      *jsast.Parser
	resolvers   map[string]binding.Resolver
	targets     []string
	lint        *lint.Config
	concurrency int
	logger      *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Files locates .sql files for keyed calls. Required when KeyedCalls is non-empty.
	Files binding.FileLocator
	// Extension is appended to keyed targets.
	Extension string
	// KeyedCalls are member names whose first argument is a dotted key.
	// Nil means DefaultKeyedCalls.
	KeyedCalls []string
	// InlineCalls are member names whose first argument is SQL text.
	// Nil means DefaultInlineCalls.
	InlineCalls []string
	// Concurrency bounds concurrent resolutions per document.
	Concurrency int
	// Lint disables rules or overrides severities (optional)
	Lint *lint.Config
	// Parser parses sources (optional)
	Parser *jsast.Parser
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	keyed := cfg.KeyedCalls
	if keyed == nil {
		keyed = DefaultKeyedCalls
	}
	inline := cfg.InlineCalls
	if inline == nil {
		inline = DefaultInlineCalls
	}
	if len(keyed) > 0 && cfg.Files == nil {
		return nil, errors.New("keyed calls need a file locator")
	}

	e := &Engine{
		parser:      cfg.Parser,
		resolvers:   make(map[string]binding.Resolver, len(keyed)+len(inline)),
		lint:        cfg.Lint,
		concurrency: cfg.Concurrency,
		logger:      logger,
	}
	if e.parser == nil {
		e.parser = jsast.NewParser()
	}
	if e.concurrency < 1 {
		e.concurrency = DefaultConcurrency
	}

	keyedResolver := binding.KeyedResolver{Files: cfg.Files, Extension: cfg.Extension}
	if err := e.register(keyed, keyedResolver); err != nil {
		return nil, err
	}
	if err := e.register(inline, binding.InlineResolver{}); err != nil {
		return nil, err
	}

	logger.Debug("engine ready", "keyed", keyed, "inline", inline, "concurrency", e.concurrency)
	return e, nil
}

func (e *Engine) register(names []string, r binding.Resolver) error {
	for _, name := range names {
		if name == "" {
			return errors.New("empty call name")
		}
		if _, dup := e.resolvers[name]; dup {
			return fmt.Errorf("call name %q registered twice", name)
		}
		e.resolvers[name] = r
		e.targets = append(e.targets, name)
	}
	return nil
}

// Targets returns every call name the engine looks for.
func (e *Engine) Targets() []string {
	return append([]string(nil), e.targets...)
}

// FormOf returns the call form registered for name.
func (e *Engine) FormOf(name string) (core.CallForm, bool) {
	r, ok := e.resolvers[name]
	if !ok {
		return 0, false
	}
	return r.Form(), true
}

// AnalyzeFile reads and analyzes a file from disk.
func (e *Engine) AnalyzeFile(ctx context.Context, path string) ([]lint.Diagnostic, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return e.Analyze(ctx, path, content)
}

// Resolve returns the parameters the SQL of site expects.
func (e *Engine) Resolve(ctx context.Context, site callsite.CallSite) (binding.Expected, error) {
	r, ok := e.resolvers[site.Target]
	if !ok {
		return binding.Expected{}, fmt.Errorf("no resolver for call %q", site.Target)
	}
	return r.Resolve(ctx, site)
}
