package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joeandaverde/vscode-tinypg/pkg/core"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
	"github.com/joeandaverde/vscode-tinypg/pkg/token"
)

func TestCollections(t *testing.T) {
	c := NewCollections()
	uri := "file:///app.ts"

	missing := Diagnostic{Code: "TP01", Message: "missing"}
	unused := Diagnostic{Code: "PB02", Message: "unused"}
	inline := Diagnostic{Code: "PB01", Message: "inline"}

	c.Set(core.CategoryQueryParams, uri, []Diagnostic{inline})
	c.Set(core.CategoryFileParams, uri, []Diagnostic{unused})
	c.Set(core.CategoryTargetMissing, uri, []Diagnostic{missing})

	assert.Equal(t, []Diagnostic{missing, unused, inline}, c.Merged(uri))
	assert.Equal(t, []string{uri}, c.URIs())

	// replacing one category leaves the others alone
	c.Set(core.CategoryFileParams, uri, nil)
	assert.Empty(t, c.Get(core.CategoryFileParams, uri))
	assert.Equal(t, []Diagnostic{missing, inline}, c.Merged(uri))

	c.Clear(uri)
	merged := c.Merged(uri)
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
	assert.Empty(t, c.URIs())
}

func TestToLSPDiagnostic(t *testing.T) {
	doc := NewDocument("file:///app.ts", "let s = 'é';\ndb.sql('k', { a })", 1)

	d := lint.Diagnostic{
		RuleID:   "PB02",
		Category: core.CategoryFileParams,
		Severity: core.SeverityWarning,
		Message:  "Unused parameter: a",
		Pos:      token.Position{Line: 2, Column: 13, Offset: 26},
		EndPos:   token.Position{Line: 2, Column: 18, Offset: 31},
	}

	got := toLSPDiagnostic(doc, d)
	assert.Equal(t, Range{
		Start: Position{Line: 1, Character: 12},
		End:   Position{Line: 1, Character: 17},
	}, got.Range)
	assert.Equal(t, DiagnosticSeverityWarning, got.Severity)
	assert.Equal(t, "PB02", got.Code)
	assert.Equal(t, diagnosticSource, got.Source)
	assert.Equal(t, "Unused parameter: a", got.Message)
}

func TestToLSPSeverity(t *testing.T) {
	tests := []struct {
		in   core.Severity
		want DiagnosticSeverity
	}{
		{core.SeverityError, DiagnosticSeverityError},
		{core.SeverityWarning, DiagnosticSeverityWarning},
		{core.SeverityInfo, DiagnosticSeverityInformation},
		{core.SeverityHint, DiagnosticSeverityHint},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toLSPSeverity(tt.in), tt.in.String())
	}
}
