// Package core defines the shared vocabulary of the tinypg checker.
//
// This package contains:
//   - Diagnostic severities
//   - Rule metadata (RuleInfo)
//   - Call forms and diagnostic categories
//
// pkg/core imports ONLY pkg/token and stdlib.
// All other packages depend on core, not the reverse.
package core
