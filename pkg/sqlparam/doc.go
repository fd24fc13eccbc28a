// Package sqlparam extracts named parameters from SQL text.
//
// A named parameter is a colon followed by an identifier, as in
// "WHERE id = :id". Occurrences inside string literals, quoted
// identifiers, dollar-quoted bodies and comments are ignored, as are
// PostgreSQL "::" casts. Each distinct name is reported once, in the
// order of its first occurrence.
package sqlparam
