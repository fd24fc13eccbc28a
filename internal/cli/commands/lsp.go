package commands

import (
	"github.com/spf13/cobra"

	"github.com/joeandaverde/vscode-tinypg/internal/lsp"
)

// NewLSPCommand creates the lsp command.
func NewLSPCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Long: `Start the LSP server for editor integration.

The server communicates over stdin/stdout using JSON-RPC. The workspace
root is taken from the client's initialize request (rootUri), falling
back to the configured root. Logs go to stderr.`,
		Example: `  # Start LSP server (usually called by an editor)
  tinypg lsp`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLSP(cmd, version)
		},
	}

	return cmd
}

func runLSP(cmd *cobra.Command, version string) error {
	cmdCtx := NewCommandContext(cmd, "")
	cfg := cmdCtx.Cfg

	lintCfg, err := cfg.LintConfig()
	if err != nil {
		return err
	}

	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), lsp.Options{
		Root:          cfg.Root,
		Extension:     cfg.SQLExtension,
		Exclude:       cfg.Exclude,
		KeyedCalls:    nonNil(cfg.Calls.File),
		InlineCalls:   nonNil(cfg.Calls.Inline),
		Concurrency:   cfg.Concurrency,
		Lint:          lintCfg,
		CheckOnChange: cfg.LSP.CheckOnChange,
		Watch:         cfg.LSP.Watch,
		Version:       version,
		Logger:        cmdCtx.Logger,
	})
	return server.Run(cmd.Context())
}
