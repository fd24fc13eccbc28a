package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/joeandaverde/vscode-tinypg/internal/cli/output"
	"github.com/joeandaverde/vscode-tinypg/pkg/core"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Category string // Filter by category: target, params
	Verbose  bool   // Show full documentation
	Format   string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the binding rules",
		Long: `List every rule check can report, with its default severity.

Rules are grouped by category: target rules concern the SQL a call
points at, params rules compare expected and supplied parameters.
Use --verbose, or pass a rule ID, for the full documentation.`,
		Example: `  # List all rules
  tinypg rules

  # Show details for a specific rule
  tinypg rules PB01

  # List target rules only
  tinypg rules --category target

  # Output as JSON
  tinypg rules --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Category, "category", "c", "", "Filter by category: target, params")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "V", false, "Show full documentation")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")

	return cmd
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []core.RuleInfo `json:"rules"`
	Count int             `json:"count"`
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	r := NewCommandContext(cmd, opts.Format).Renderer

	var rules []core.RuleInfo
	for _, rule := range lint.AllRules() {
		info := rule.Info()
		if opts.Category != "" && info.Category != opts.Category {
			continue
		}
		rules = append(rules, info)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(RulesJSONOutput{Rules: rules, Count: len(rules)})
	}

	r.Header(fmt.Sprintf("Binding Rules (%d)", len(rules)))
	if r.EffectiveMode() == output.ModeText {
		r.Println("")
	}
	header := table.Row{"ID", "Name", "Category", "Severity"}
	if opts.Verbose {
		header = append(header, "Description")
	}
	rows := make([]table.Row, 0, len(rules))
	for _, rule := range rules {
		row := table.Row{rule.ID, rule.Name, rule.Category, rule.DefaultSeverity.String()}
		if opts.Verbose {
			row = append(row, rule.Description)
		}
		rows = append(rows, row)
	}
	r.Table(header, rows)

	if r.EffectiveMode() == output.ModeText {
		r.Println("")
		r.Muted("Use 'tinypg rules <rule-id>' for detailed documentation")
	}
	return nil
}

func showRule(cmd *cobra.Command, ruleID string, opts *RulesOptions) error {
	r := NewCommandContext(cmd, opts.Format).Renderer

	rule, ok := lint.GetRuleByID(strings.ToUpper(ruleID))
	if !ok {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	info := rule.Info()

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(info)
	case output.ModeMarkdown:
		showRuleMarkdown(r, info)
	default:
		showRuleText(r, info)
	}
	return nil
}

// showRuleText displays detailed rule info in text format.
func showRuleText(r *output.Renderer, rule core.RuleInfo) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
	r.Println("")

	r.Printf("  %s: %s\n", styles.Bold.Render("Category"), rule.Category)
	r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), styles.Severity(rule.DefaultSeverity).Render(rule.DefaultSeverity.String()))
	r.Println("")

	r.Println(styles.Bold.Render("Description"))
	r.Println("  " + rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println(styles.Bold.Render("Why This Matters"))
		r.Println("  " + rule.Rationale)
		r.Println("")
	}
	if rule.BadExample != "" {
		r.Println(styles.Bold.Render("Bad Example"))
		r.Println(styles.Muted.Render("  " + rule.BadExample))
		r.Println("")
	}
	if rule.GoodExample != "" {
		r.Println(styles.Bold.Render("Good Example"))
		r.Println(styles.Success.Render("  " + rule.GoodExample))
		r.Println("")
	}
}

// showRuleMarkdown displays detailed rule info in markdown format.
func showRuleMarkdown(r *output.Renderer, rule core.RuleInfo) {
	r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
	r.Printf("**Category:** %s | **Severity:** `%s`\n\n", rule.Category, rule.DefaultSeverity.String())
	r.Println(rule.Description)
	r.Println("")

	if rule.Rationale != "" {
		r.Println("## Why This Matters")
		r.Println("")
		r.Println(rule.Rationale)
		r.Println("")
	}
	if rule.BadExample != "" {
		r.Println("## Bad Example")
		r.Println("")
		r.Println("```js")
		r.Println(rule.BadExample)
		r.Println("```")
		r.Println("")
	}
	if rule.GoodExample != "" {
		r.Println("## Good Example")
		r.Println("")
		r.Println("```js")
		r.Println(rule.GoodExample)
		r.Println("```")
		r.Println("")
	}
}
