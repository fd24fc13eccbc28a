package binding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeandaverde/vscode-tinypg/pkg/core"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
	"github.com/joeandaverde/vscode-tinypg/pkg/token"
)

// Format turns an outcome into diagnostics. For one call site the target
// finding comes first, then missing, then unused parameters.
func Format(o Outcome) []lint.Diagnostic {
	if o.Err != nil {
		if d, ok := formatTargetError(o); ok {
			return []lint.Diagnostic{d}
		}
		return nil
	}
	if !o.Reconciled || o.Result.Empty() {
		return nil
	}

	var path string
	if o.Expected != nil {
		path = o.Expected.Path
	}
	span := o.Site.Params.Span
	category := core.ParamsCategory(o.Form)

	var diags []lint.Diagnostic
	if len(o.Result.Missing) > 0 {
		diags = append(diags, newDiagnostic(lint.RuleParamsMissing, category, span, o.Site.Literal, path,
			namesMessage("Missing", o.Result.Missing), o.Result.Missing))
	}
	if len(o.Result.Extra) > 0 {
		diags = append(diags, newDiagnostic(lint.RuleParamsUnused, category, span, o.Site.Literal, path,
			namesMessage("Unused", o.Result.Extra), o.Result.Extra))
	}
	return diags
}

func formatTargetError(o Outcome) (lint.Diagnostic, bool) {
	span := o.Site.KeySpan

	var notFound *TargetNotFoundError
	if errors.As(o.Err, &notFound) {
		msg := fmt.Sprintf("SQL file not found for key %q (looked for %s)", notFound.Key, notFound.Path)
		if notFound.Err != nil {
			msg = fmt.Sprintf("Unable to read SQL file %s for key %q: %v", notFound.Path, notFound.Key, notFound.Err)
		}
		return newDiagnostic(lint.RuleTargetNotFound, core.CategoryTargetMissing, span, o.Site.Literal,
			notFound.Path, msg, nil), true
	}

	var parseErr *SQLParseError
	if errors.As(o.Err, &parseErr) {
		category := core.CategoryTargetMissing
		msg := fmt.Sprintf("Unable to parse SQL: %v", parseErr.Err)
		if o.Form == core.FormInline {
			category = core.CategoryQueryParams
		} else {
			msg = fmt.Sprintf("Unable to parse SQL file %s: %v", parseErr.Path, parseErr.Err)
		}
		return newDiagnostic(lint.RuleTargetUnparsable, category, span, o.Site.Literal,
			parseErr.Path, msg, nil), true
	}
	return lint.Diagnostic{}, false
}

func newDiagnostic(rule lint.RuleDef, category core.Category, span token.Span, target, path, msg string, names []string) lint.Diagnostic {
	return lint.Diagnostic{
		RuleID:   rule.ID,
		Category: category,
		Severity: rule.Severity,
		Message:  msg,
		Pos:      span.Start,
		EndPos:   span.End,
		Target:   target,
		Names:    names,
		Path:     path,
	}
}

// namesMessage renders "Missing parameter: a" or "Missing parameters: a, b".
func namesMessage(prefix string, names []string) string {
	noun := "parameter"
	if len(names) != 1 {
		noun = "parameters"
	}
	return fmt.Sprintf("%s %s: %s", prefix, noun, strings.Join(names, ", "))
}
