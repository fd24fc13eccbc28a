// Package commands implements the tinypg subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/joeandaverde/vscode-tinypg/internal/cli/config"
	"github.com/joeandaverde/vscode-tinypg/internal/cli/output"
	"github.com/joeandaverde/vscode-tinypg/internal/engine"
	"github.com/joeandaverde/vscode-tinypg/internal/workspace"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext for cmd. format overrides
// the configured output mode when non-empty.
func NewCommandContext(cmd *cobra.Command, format string) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	mode := output.Mode(cfg.OutputFormat)
	if format != "" {
		mode = output.Mode(format)
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the loaded configuration, or the defaults when the
// command runs without the root command (as in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// newWorkspace builds the .sql index and the engine for cfg.
func newWorkspace(cfg *config.Config, lintCfg *lint.Config, logger *slog.Logger) (*workspace.Index, *engine.Engine, error) {
	index := workspace.NewIndex(workspace.Options{
		Root:      cfg.Root,
		Extension: cfg.SQLExtension,
		Exclude:   cfg.Exclude,
		Logger:    logger,
	})
	eng, err := engine.New(engine.Config{
		Files:       index,
		Extension:   cfg.SQLExtension,
		KeyedCalls:  nonNil(cfg.Calls.File),
		InlineCalls: nonNil(cfg.Calls.Inline),
		Concurrency: cfg.Concurrency,
		Lint:        lintCfg,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("configure engine: %w", err)
	}
	return index, eng, nil
}

// nonNil keeps an explicitly empty call list from selecting the engine defaults.
func nonNil(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

// buildLintConfig merges the lint section with --disable flags.
func buildLintConfig(cfg *config.Config, disable []string) (*lint.Config, error) {
	lintCfg, err := cfg.LintConfig()
	if err != nil {
		return nil, err
	}
	for _, id := range disable {
		if _, ok := lint.GetRuleByID(id); !ok {
			return nil, fmt.Errorf("unknown rule %q", id)
		}
		lintCfg.Disable(id)
	}
	return lintCfg, nil
}
