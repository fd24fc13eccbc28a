// Package binding reconciles the parameters a call site supplies with the
// parameters its SQL expects.
//
// Both call forms share one path: a Resolver produces the expected names
// (inline SQL is parsed directly, keyed SQL is located on disk first),
// Reconcile computes the set differences, and Format turns the Outcome
// into diagnostics.
package binding
