package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joeandaverde/vscode-tinypg/internal/engine"
	"github.com/joeandaverde/vscode-tinypg/internal/workspace"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	CheckOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Check SQL bindings and re-check on every change",
		Long: `Run a check, then keep watching the workspace.

A changed source file is re-checked on its own. A changed .sql file
re-checks everything, since any call may name it. Stop with Ctrl+C.`,
		Example: `  # Watch the workspace
  tinypg watch

  # Watch with a longer settle interval
  tinypg watch --debounce 500ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "hint", "Minimum severity: error, warning, info, hint")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", workspace.DefaultDebounce, "Wait this long for changes to settle")

	return cmd
}

// watchSession re-checks files as they change.
type watchSession struct {
	cmdCtx    *CommandContext
	index     *workspace.Index
	eng       *engine.Engine
	paths     []string
	threshold lint.Severity
}

func runWatch(cmd *cobra.Command, opts *WatchOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	cfg := cmdCtx.Cfg

	threshold, ok := lint.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("unknown severity %q", opts.Severity)
	}
	lintCfg, err := buildLintConfig(cfg, opts.Disable)
	if err != nil {
		return err
	}
	index, eng, err := newWorkspace(cfg, lintCfg, cmdCtx.Logger)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{cfg.Root}
	}
	s := &watchSession{cmdCtx: cmdCtx, index: index, eng: eng, paths: paths, threshold: threshold}

	w, err := workspace.NewWatcher(workspace.Options{
		Root:      cfg.Root,
		Extension: cfg.SQLExtension,
		Exclude:   cfg.Exclude,
		Logger:    cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	w.SetDebounce(opts.Debounce)

	if err := s.checkAll(ctx); err != nil {
		return err
	}
	cmdCtx.Renderer.Muted(fmt.Sprintf("Watching %s for changes...", displayPath(cfg.Root)))

	return w.Run(ctx, func(batch workspace.Batch) {
		if err := s.onChange(ctx, batch); err != nil && ctx.Err() == nil {
			cmdCtx.Renderer.Error(err.Error())
		}
	})
}

func (s *watchSession) checkAll(ctx context.Context) error {
	files, err := workspace.SourceFiles(ctx, s.paths, s.cmdCtx.Cfg.Extensions, s.cmdCtx.Cfg.Exclude)
	if err != nil {
		return err
	}
	return s.check(ctx, files)
}

func (s *watchSession) check(ctx context.Context, files []string) error {
	results, err := checkFiles(ctx, s.eng, files, s.cmdCtx.Cfg.Concurrency, s.cmdCtx)
	if err != nil {
		return err
	}
	renderCheckResults(s.cmdCtx.Renderer, filterBySeverity(results, s.threshold), len(files))
	return nil
}

func (s *watchSession) onChange(ctx context.Context, batch workspace.Batch) error {
	if batch.SQL {
		s.index.Invalidate()
		s.cmdCtx.Renderer.Muted("SQL files changed, re-checking everything")
		return s.checkAll(ctx)
	}

	var files []string
	for _, path := range batch.Paths {
		if !hasExtension(path, s.cmdCtx.Cfg.Extensions) || !s.covers(path) {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		files = append(files, path)
	}
	if len(files) == 0 {
		return nil
	}
	s.cmdCtx.Renderer.Muted(fmt.Sprintf("%s changed, re-checking", plural(len(files), "file")))
	return s.check(ctx, files)
}

// covers reports whether path lies under one of the watched paths.
func (s *watchSession) covers(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, p := range s.paths {
		root, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func hasExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
