// Package workspace locates files in a project tree: the .sql files that
// keyed calls resolve to, and the source files the checker analyzes.
// Dependency directories such as node_modules are never entered.
package workspace
