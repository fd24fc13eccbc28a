// Package main provides the tinypg command, a checker for SQL parameter
// bindings in JavaScript and TypeScript sources.
package main

import (
	"os"

	"github.com/joeandaverde/vscode-tinypg/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
