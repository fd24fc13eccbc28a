package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeandaverde/vscode-tinypg/internal/cli/config"
)

// initFileName is the config file written by init.
const initFileName = "tinypg.yaml"

// initConfig is the document written by init. Field order is the order
// keys appear in the file.
type initConfig struct {
	Root         string    `yaml:"root"`
	SQLExtension string    `yaml:"sql_extension"`
	Exclude      []string  `yaml:"exclude"`
	Extensions   []string  `yaml:"extensions,flow"`
	Calls        initCalls `yaml:"calls"`
	Concurrency  int       `yaml:"concurrency"`
	Output       string    `yaml:"output"`
	Lint         initLint  `yaml:"lint"`
	LSP          initLSP   `yaml:"lsp"`
}

type initCalls struct {
	File   []string `yaml:"file,flow"`
	Inline []string `yaml:"inline,flow"`
}

type initLint struct {
	Disabled []string          `yaml:"disabled,flow"`
	Severity map[string]string `yaml:"severity"`
}

type initLSP struct {
	CheckOnChange bool `yaml:"check_on_change"`
	Watch         bool `yaml:"watch"`
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a default tinypg.yaml",
		Long: `Write a tinypg.yaml with every setting at its default value.

The file is found by every command run in the directory or below it.`,
		Example: `  # Initialize in current directory
  tinypg init

  # Initialize another directory
  tinypg init ./services/api

  # Overwrite an existing config
  tinypg init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(NewCommandContext(cmd, ""), dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmdCtx *CommandContext, dir string, force bool) error {
	r := cmdCtx.Renderer

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, initFileName)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}

	content, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	r.Success("Created " + path)
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Point root at the directory holding your .sql files")
	r.Println("  2. Run 'tinypg check' to check every call")
	r.Println("  3. Configure your editor to run 'tinypg lsp'")
	return nil
}

// defaultConfigYAML renders the default configuration.
func defaultConfigYAML() ([]byte, error) {
	d := config.Default()
	doc := initConfig{
		Root:         d.Root,
		SQLExtension: d.SQLExtension,
		Exclude:      d.Exclude,
		Extensions:   d.Extensions,
		Calls:        initCalls{File: d.Calls.File, Inline: d.Calls.Inline},
		Concurrency:  d.Concurrency,
		Output:       d.OutputFormat,
		Lint:         initLint{Disabled: []string{}, Severity: map[string]string{}},
		LSP:          initLSP{CheckOnChange: d.LSP.CheckOnChange, Watch: d.LSP.Watch},
	}

	var buf bytes.Buffer
	buf.WriteString("# tinypg configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
