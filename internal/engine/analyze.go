package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/joeandaverde/vscode-tinypg/pkg/binding"
	"github.com/joeandaverde/vscode-tinypg/pkg/callsite"
	"github.com/joeandaverde/vscode-tinypg/pkg/jsast"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// Report is the full result of one analysis pass.
type Report struct {
	// Sites are the located calls in source order.
	Sites []callsite.CallSite
	// Diagnostics are ordered by call site.
	Diagnostics []lint.Diagnostic
}

// Analyze checks every binding call in content. The path selects the
// grammar and is not read. Per-call failures become diagnostics; the
// returned error is reserved for an unsupported file, a parse failure of
// the source itself, or cancellation.
func (e *Engine) Analyze(ctx context.Context, path string, content []byte) ([]lint.Diagnostic, error) {
	report, err := e.AnalyzeReport(ctx, path, content)
	if err != nil {
		return nil, err
	}
	return report.Diagnostics, nil
}

// AnalyzeReport is Analyze that also returns the located call sites.
func (e *Engine) AnalyzeReport(ctx context.Context, path string, content []byte) (Report, error) {
	lang, ok := jsast.LanguageForPath(path)
	if !ok {
		return Report{}, fmt.Errorf("%w: %s", jsast.ErrUnsupportedLanguage, path)
	}
	sites, err := e.locate(ctx, content, lang)
	if err != nil {
		return Report{}, fmt.Errorf("analyze %s: %w", path, err)
	}

	results := make([][]lint.Diagnostic, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, site := range sites {
		g.Go(func() error {
			out, err := binding.Check(gctx, e.resolvers[site.Target], site)
			if err != nil {
				return err
			}
			if out.Err != nil {
				e.logger.Debug("call unresolved", "path", path, "line", site.KeySpan.Start.Line, "error", out.Err)
			}
			results[i] = binding.Format(out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	var diags []lint.Diagnostic
	for _, r := range results {
		diags = append(diags, r...)
	}
	diags = e.lint.Apply(diags)

	e.logger.Debug("analyzed", "path", path, "calls", len(sites), "diagnostics", len(diags))
	return Report{Sites: sites, Diagnostics: diags}, nil
}

// Sites returns the binding calls in content without resolving them.
func (e *Engine) Sites(ctx context.Context, path string, content []byte) ([]callsite.CallSite, error) {
	lang, ok := jsast.LanguageForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", jsast.ErrUnsupportedLanguage, path)
	}
	return e.locate(ctx, content, lang)
}

func (e *Engine) locate(ctx context.Context, content []byte, lang jsast.Language) ([]callsite.CallSite, error) {
	tree, err := e.parser.Parse(ctx, content, lang)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return callsite.Locate(tree, e.targets...), nil
}
