package binding

import (
	"context"

	"github.com/joeandaverde/vscode-tinypg/pkg/callsite"
	"github.com/joeandaverde/vscode-tinypg/pkg/core"
)

// Outcome is everything known about one call site after resolution.
type Outcome struct {
	Site callsite.CallSite
	Form core.CallForm
	// Expected is nil when resolution failed.
	Expected *Expected
	// Result is only meaningful when Reconciled is true.
	Result     Result
	Reconciled bool
	// Err is a *TargetNotFoundError or *SQLParseError.
	Err error
}

// Check resolves and reconciles one call site. Resolution failures are
// recorded on the Outcome; only context errors are returned.
//
// A call whose parameter argument is not an object literal is skipped
// without resolving its target.
func Check(ctx context.Context, r Resolver, site callsite.CallSite) (Outcome, error) {
	out := Outcome{Site: site, Form: r.Form()}
	if site.Params == nil {
		return out, nil
	}

	expected, err := r.Resolve(ctx, site)
	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		out.Err = err
		return out, nil
	}
	out.Expected = &expected
	out.Result = Reconcile(expected.Names, site.Params.Names, site.Params.Exhaustive)
	out.Reconciled = true
	return out, nil
}
