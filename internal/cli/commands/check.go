package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joeandaverde/vscode-tinypg/internal/cli/output"
	"github.com/joeandaverde/vscode-tinypg/internal/engine"
	"github.com/joeandaverde/vscode-tinypg/internal/workspace"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// ErrFindings is returned when a check reports error-severity findings.
var ErrFindings = errors.New("binding errors found")

// CheckOptions holds options for the check command.
type CheckOptions struct {
	Paths    []string // Files or directories; the workspace root by default
	Format   string   // Output format: text, markdown, json
	Disable  []string // Rule IDs to disable
	Severity string   // Minimum severity: error, warning, info, hint
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Check SQL bindings in JavaScript and TypeScript sources",
		Long: `Check every sql(...) and query(...) call for parameters that the SQL
expects but the object literal does not supply, supplied parameters the
SQL never reads, and keyed calls whose .sql file does not exist.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format

The command fails when any error-severity finding is reported.`,
		Example: `  # Check the whole workspace
  tinypg check

  # Check one directory
  tinypg check ./src/users

  # Output as JSON
  tinypg check --format json

  # Ignore unused parameters
  tinypg check --disable PB02

  # Only report errors
  tinypg check --severity error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "hint", "Minimum severity: error, warning, info, hint")

	return cmd
}

// fileResult holds the findings for a single source file.
type fileResult struct {
	Path        string
	Diagnostics []lint.Diagnostic
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	cfg, r := cmdCtx.Cfg, cmdCtx.Renderer

	threshold, ok := lint.ParseSeverity(opts.Severity)
	if !ok {
		return fmt.Errorf("unknown severity %q", opts.Severity)
	}
	lintCfg, err := buildLintConfig(cfg, opts.Disable)
	if err != nil {
		return err
	}
	_, eng, err := newWorkspace(cfg, lintCfg, cmdCtx.Logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{cfg.Root}
	}
	files, err := workspace.SourceFiles(ctx, paths, cfg.Extensions, cfg.Exclude)
	if err != nil {
		return err
	}

	results, err := checkFiles(ctx, eng, files, cfg.Concurrency, cmdCtx)
	if err != nil {
		return err
	}
	results = filterBySeverity(results, threshold)

	if renderCheckResults(r, results, len(files)) {
		return ErrFindings
	}
	return nil
}

// checkFiles analyzes files concurrently. Results keep the order of files
// and omit files without findings. A file that cannot be analyzed is
// reported as a warning and skipped.
func checkFiles(ctx context.Context, eng *engine.Engine, files []string, limit int, cmdCtx *CommandContext) ([]fileResult, error) {
	results := make([]fileResult, len(files))
	failures := make([]error, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range files {
		g.Go(func() error {
			diags, err := eng.AnalyzeFile(gctx, path)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failures[i] = err
				return nil
			}
			results[i] = fileResult{Path: path, Diagnostics: diags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []fileResult
	for i, res := range results {
		if failures[i] != nil {
			cmdCtx.Logger.Debug("analyze failed", "path", files[i], "error", failures[i])
			cmdCtx.Renderer.Warning(fmt.Sprintf("skipped %s: %v", displayPath(files[i]), failures[i]))
			continue
		}
		if len(res.Diagnostics) > 0 {
			out = append(out, res)
		}
	}
	return out, nil
}

func filterBySeverity(results []fileResult, threshold lint.Severity) []fileResult {
	var filtered []fileResult
	for _, res := range results {
		var diags []lint.Diagnostic
		for _, d := range res.Diagnostics {
			if d.Severity.AtLeast(threshold) {
				diags = append(diags, d)
			}
		}
		if len(diags) > 0 {
			filtered = append(filtered, fileResult{Path: res.Path, Diagnostics: diags})
		}
	}
	return filtered
}

// summarize counts findings by severity.
func summarize(results []fileResult, filesChecked int) output.CheckSummary {
	summary := output.CheckSummary{FilesChecked: filesChecked, FilesWithIssues: len(results)}
	for _, res := range results {
		summary.TotalIssues += len(res.Diagnostics)
		for _, d := range res.Diagnostics {
			switch d.Severity {
			case lint.SeverityError:
				summary.Errors++
			case lint.SeverityWarning:
				summary.Warnings++
			case lint.SeverityInfo:
				summary.Info++
			case lint.SeverityHint:
				summary.Hints++
			}
		}
	}
	return summary
}

// renderCheckResults writes the findings and reports whether any of them
// is an error.
func renderCheckResults(r *output.Renderer, results []fileResult, filesChecked int) bool {
	summary := summarize(results, filesChecked)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		_ = r.JSON(checkJSON(results, summary))
	case output.ModeMarkdown:
		renderCheckMarkdown(r, results, summary)
	default:
		renderCheckText(r, results, summary)
	}
	return summary.Errors > 0
}

func checkJSON(results []fileResult, summary output.CheckSummary) output.CheckOutput {
	out := output.CheckOutput{Summary: summary, Files: []output.CheckFileResult{}}
	for _, res := range results {
		file := output.CheckFileResult{Path: displayPath(res.Path)}
		for _, d := range res.Diagnostics {
			file.Diagnostics = append(file.Diagnostics, output.CheckDiagnostic{
				RuleID:    d.RuleID,
				Category:  string(d.Category),
				Severity:  d.Severity.String(),
				Message:   d.Message,
				Line:      d.Pos.Line,
				Column:    d.Pos.Column,
				EndLine:   d.EndPos.Line,
				EndColumn: d.EndPos.Column,
				Target:    d.Target,
				Names:     d.Names,
				SQLPath:   d.Path,
			})
		}
		out.Files = append(out.Files, file)
	}
	return out
}

func renderCheckText(r *output.Renderer, results []fileResult, summary output.CheckSummary) {
	if len(results) == 0 {
		r.Success("No binding issues found in " + plural(summary.FilesChecked, "file"))
		return
	}

	styles := r.Styles()
	for _, res := range results {
		r.Println(styles.Path.Render(displayPath(res.Path)))
		for _, d := range res.Diagnostics {
			r.Printf("  %s  %s  %s  %s\n",
				styles.Muted.Render(fmt.Sprintf("%-7s", d.Pos.String())),
				styles.Severity(d.Severity).Render(fmt.Sprintf("%-7s", d.Severity.String())),
				styles.Bold.Render(d.RuleID),
				d.Message,
			)
		}
		r.Println("")
	}

	r.Table(table.Row{"Rule", "Name", "Findings"}, ruleCounts(results))
	r.Printf("Summary: %s in %d of %d files\n", summaryLine(summary), summary.FilesWithIssues, summary.FilesChecked)
}

func renderCheckMarkdown(r *output.Renderer, results []fileResult, summary output.CheckSummary) {
	r.Println("# Binding Check")
	r.Println("")
	if len(results) == 0 {
		r.Printf("No binding issues found in %s.\n", plural(summary.FilesChecked, "file"))
		return
	}

	for _, res := range results {
		r.Printf("## %s\n\n", displayPath(res.Path))
		for _, d := range res.Diagnostics {
			r.Printf("- `%s` **%s** %s: %s\n", d.Pos.String(), d.Severity.String(), d.RuleID, d.Message)
		}
		r.Println("")
	}

	r.Table(table.Row{"Rule", "Name", "Findings"}, ruleCounts(results))
	r.Println("")
	r.Printf("**Summary:** %s in %d of %d files\n", summaryLine(summary), summary.FilesWithIssues, summary.FilesChecked)
}

// ruleCounts tallies findings per rule in rule order.
func ruleCounts(results []fileResult) []table.Row {
	counts := make(map[string]int)
	for _, res := range results {
		for _, d := range res.Diagnostics {
			counts[d.RuleID]++
		}
	}
	var rows []table.Row
	for _, rule := range lint.AllRules() {
		if n := counts[rule.ID]; n > 0 {
			rows = append(rows, table.Row{rule.ID, rule.Name, n})
		}
	}
	return rows
}

func summaryLine(s output.CheckSummary) string {
	parts := []string{plural(s.TotalIssues, "issue")}
	if s.Errors > 0 {
		parts = append(parts, plural(s.Errors, "error"))
	}
	if s.Warnings > 0 {
		parts = append(parts, plural(s.Warnings, "warning"))
	}
	if s.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Info))
	}
	if s.Hints > 0 {
		parts = append(parts, plural(s.Hints, "hint"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// displayPath shortens path relative to the working directory.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
