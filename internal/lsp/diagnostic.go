package lsp

import (
	"github.com/joeandaverde/vscode-tinypg/pkg/core"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// diagnosticSource labels every published diagnostic.
const diagnosticSource = "tinypg"

// replaceDiagnostics converts a pass result against the document
// snapshot it was computed from and replaces every category for the
// document.
func (s *Server) replaceDiagnostics(doc *Document, diags []lint.Diagnostic) {
	grouped := make(map[core.Category][]Diagnostic, len(core.Categories))
	for _, d := range diags {
		grouped[d.Category] = append(grouped[d.Category], toLSPDiagnostic(doc, d))
	}
	for _, cat := range core.Categories {
		s.collections.Set(cat, doc.URI, grouped[cat])
	}
}

// publishDiagnostics sends the merged collections for uri.
func (s *Server) publishDiagnostics(uri string, version *int) {
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: s.collections.Merged(uri),
	})
}

// toLSPDiagnostic converts a lint diagnostic. Byte offsets are mapped
// through the document so characters are counted in UTF-16 units.
func toLSPDiagnostic(doc *Document, d lint.Diagnostic) Diagnostic {
	start := doc.OffsetToPosition(d.Pos.Offset)
	end := start
	if d.EndPos.IsValid() && d.EndPos.Offset >= d.Pos.Offset {
		end = doc.OffsetToPosition(d.EndPos.Offset)
	}
	return Diagnostic{
		Range:    Range{Start: start, End: end},
		Severity: toLSPSeverity(d.Severity),
		Code:     d.RuleID,
		Source:   diagnosticSource,
		Message:  d.Message,
	}
}

// toLSPSeverity converts lint severity to LSP severity.
func toLSPSeverity(s core.Severity) DiagnosticSeverity {
	switch s {
	case core.SeverityError:
		return DiagnosticSeverityError
	case core.SeverityWarning:
		return DiagnosticSeverityWarning
	case core.SeverityInfo:
		return DiagnosticSeverityInformation
	case core.SeverityHint:
		return DiagnosticSeverityHint
	default:
		return DiagnosticSeverityWarning
	}
}
