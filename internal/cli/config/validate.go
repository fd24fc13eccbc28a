package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joeandaverde/vscode-tinypg/internal/cli/output"
	"github.com/joeandaverde/vscode-tinypg/pkg/lint"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error

	if !strings.HasPrefix(c.SQLExtension, ".") {
		errs = append(errs, fmt.Errorf("sql_extension %q must start with a dot", c.SQLExtension))
	}
	if len(c.Extensions) == 0 {
		errs = append(errs, errors.New("extensions must not be empty"))
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("extension %q must start with a dot", ext))
		}
	}

	if len(c.Calls.File) == 0 && len(c.Calls.Inline) == 0 {
		errs = append(errs, errors.New("calls.file and calls.inline are both empty"))
	}
	seen := make(map[string]string)
	for form, names := range map[string][]string{"calls.file": c.Calls.File, "calls.inline": c.Calls.Inline} {
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				errs = append(errs, fmt.Errorf("%s: empty call name", form))
				continue
			}
			if prev, dup := seen[name]; dup && prev != form {
				errs = append(errs, fmt.Errorf("call %q is listed in both calls.file and calls.inline", name))
			}
			seen[name] = form
		}
	}

	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	if _, ok := output.ParseMode(c.OutputFormat); !ok {
		errs = append(errs, fmt.Errorf("unknown output format %q", c.OutputFormat))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := c.LintConfig(); err != nil {
		errs = append(errs, fmt.Errorf("lint: %w", err))
	}

	return errors.Join(errs...)
}

// LintConfig builds the rule configuration from the lint section.
func (c *Config) LintConfig() (*lint.Config, error) {
	return lint.ConfigFrom(c.Lint.Disabled, c.Lint.Severity)
}
