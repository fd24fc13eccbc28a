// Package lint defines the diagnostics produced by the binding checker,
// the rules that classify them, and the configuration that disables rules
// or overrides their severity.
//
// # Rules
//
// Target rules (keyed calls):
//   - TP01 target.not_found: no .sql file matches the dotted key
//   - TP02 target.unparsable: the SQL could not be scanned
//
// Parameter rules (keyed and inline calls):
//   - PB01 params.missing: the SQL expects a name the literal does not supply
//   - PB02 params.unused: the literal supplies a name the SQL never reads
//
// # Configuration
//
//	config := lint.NewConfig()
//	config.Disable("PB02")
//	config.SetSeverity("PB01", core.SeverityWarning)
//	diags = config.Apply(diags)
package lint
