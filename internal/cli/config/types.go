// Package config loads tinypg configuration from defaults, a tinypg.yaml
// file, TINYPG_* environment variables and command-line flags.
package config

// Default configuration values.
const (
	DefaultSQLExtension = ".sql"
	DefaultConcurrency  = 8
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel     = "info"
)

// Config file names, in lookup order.
var configFileNames = []string{"tinypg.yaml", "tinypg.yml"}

// DefaultExtensions are the source file suffixes checked by default.
var DefaultExtensions = []string{".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".mts", ".cts"}

// Config holds all CLI configuration options.
type Config struct {
	// Root is the workspace searched for .sql files.
	Root         string      `koanf:"root"`
	SQLExtension string      `koanf:"sql_extension"`
	Exclude      []string    `koanf:"exclude"`
	Extensions   []string    `koanf:"extensions"`
	Calls        CallsConfig `koanf:"calls"`
	Concurrency  int         `koanf:"concurrency"`
	OutputFormat string      `koanf:"output"`
	Verbose      bool        `koanf:"verbose"`
	LogLevel     string      `koanf:"log_level"`
	Lint         LintConfig  `koanf:"lint"`
	LSP          LSPConfig   `koanf:"lsp"`

	// ProjectRoot is the directory holding the config file, or the
	// working directory when there is none. Not read from configuration.
	ProjectRoot string `koanf:"-"`
}

// CallsConfig names the member calls checked in each form.
type CallsConfig struct {
	// File lists keyed calls whose first argument names a .sql file.
	File []string `koanf:"file"`
	// Inline lists calls whose first argument is SQL text.
	Inline []string `koanf:"inline"`
}

// LintConfig disables rules and overrides their severities.
type LintConfig struct {
	Disabled []string          `koanf:"disabled"`
	Severity map[string]string `koanf:"severity"`
}

// LSPConfig configures the language server.
type LSPConfig struct {
	// CheckOnChange re-checks a document on edits that touch a call.
	CheckOnChange bool `koanf:"check_on_change"`
	// Watch re-checks open documents when .sql files change on disk.
	Watch bool `koanf:"watch"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Root:         ".",
		SQLExtension: DefaultSQLExtension,
		Exclude:      []string{"node_modules"},
		Extensions:   append([]string(nil), DefaultExtensions...),
		Calls: CallsConfig{
			File:   []string{"sql"},
			Inline: []string{"query"},
		},
		Concurrency:  DefaultConcurrency,
		OutputFormat: DefaultOutput,
		LogLevel:     DefaultLogLevel,
		Lint:         LintConfig{Severity: map[string]string{}},
		LSP:          LSPConfig{CheckOnChange: true, Watch: true},
	}
}

// defaultsMap mirrors Default for the koanf confmap provider.
func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"root":                d.Root,
		"sql_extension":       d.SQLExtension,
		"exclude":             d.Exclude,
		"extensions":          d.Extensions,
		"calls.file":          d.Calls.File,
		"calls.inline":        d.Calls.Inline,
		"concurrency":         d.Concurrency,
		"output":              d.OutputFormat,
		"verbose":             d.Verbose,
		"log_level":           d.LogLevel,
		"lint.disabled":       []string{},
		"lsp.check_on_change": d.LSP.CheckOnChange,
		"lsp.watch":           d.LSP.Watch,
	}
}
