// Package jsast parses JavaScript and TypeScript source with tree-sitter
// and exposes the small set of node helpers the call-site locator needs:
// source spans, literal string decoding and expression unwrapping.
//
// Trees hold C memory. Callers must Close every Tree they obtain.
package jsast
