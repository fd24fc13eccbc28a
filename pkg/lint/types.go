package lint

import (
	"github.com/joeandaverde/vscode-tinypg/pkg/core"
	"github.com/joeandaverde/vscode-tinypg/pkg/token"
)

// Severity is re-exported so callers rarely need pkg/core.
type Severity = core.Severity

// Severity levels for diagnostics.
const (
	SeverityError   = core.SeverityError
	SeverityWarning = core.SeverityWarning
	SeverityInfo    = core.SeverityInfo
	SeverityHint    = core.SeverityHint
)

// ParseSeverity converts a severity name such as "error" or "warn".
// ok is false for unknown names.
func ParseSeverity(s string) (Severity, bool) {
	return core.ParseSeverity(s)
}

// =============================================================================
// Diagnostics
// =============================================================================

// Diagnostic represents a binding finding.
type Diagnostic struct {
	RuleID   string         `json:"rule_id"`
	Category core.Category  `json:"category"`
	Severity core.Severity  `json:"severity"`
	Message  string         `json:"message"`
	Pos      token.Position `json:"pos"`
	EndPos   token.Position `json:"end_pos"`

	// Target is the literal first argument of the call: a dotted key or SQL text.
	Target string `json:"target"`
	// Names lists the offending parameter names, if any.
	Names []string `json:"names,omitempty"`
	// Path is the resolved or searched .sql path for keyed calls.
	Path string `json:"path,omitempty"`
}

// =============================================================================
// Rule Definitions
// =============================================================================

// RuleDef describes one class of finding.
type RuleDef struct {
	ID          string        // Unique identifier, e.g., "PB01"
	Name        string        // Human-readable name, e.g., "params.missing"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity

	// Documentation fields
	Rationale   string
	BadExample  string
	GoodExample string
}

// Info converts the rule to its tooling DTO.
func (r RuleDef) Info() core.RuleInfo {
	return core.RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Category:        categoryOf(r.ID),
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		Rationale:       r.Rationale,
		BadExample:      r.BadExample,
		GoodExample:     r.GoodExample,
	}
}

func categoryOf(id string) string {
	switch id {
	case RuleTargetNotFound.ID, RuleTargetUnparsable.ID:
		return "target"
	default:
		return "params"
	}
}
