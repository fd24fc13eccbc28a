// Package callsite finds parameterized SQL invocations in a syntax tree.
//
// A qualifying call has a member-access callee whose property is one of
// the target names, at least two arguments, and a first argument that is
// a string literal or a template literal without substitutions:
//
//	db.sql("users.findById", { id })
//	tx.query(`SELECT * FROM t WHERE id = :id`, { id: 1 })
//
// Calls that do not qualify are skipped silently.
package callsite
