package lint

import (
	"fmt"
	"sort"
)

// Config controls which rules are enabled and their severity.
type Config struct {
	// DisabledRules contains rule IDs to skip
	DisabledRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]Severity
}

// NewConfig creates a default configuration with all rules enabled.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		SeverityOverrides: make(map[string]Severity),
	}
}

// ConfigFrom builds a Config from rule ID lists, as read from configuration
// files and flags. Unknown rule IDs and severity names are errors.
func ConfigFrom(disabled []string, severities map[string]string) (*Config, error) {
	c := NewConfig()
	for _, id := range disabled {
		if _, ok := GetRuleByID(id); !ok {
			return nil, fmt.Errorf("unknown rule %q", id)
		}
		c.Disable(id)
	}

	ids := make([]string, 0, len(severities))
	for id := range severities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := GetRuleByID(id); !ok {
			return nil, fmt.Errorf("unknown rule %q", id)
		}
		var sev Severity
		if err := sev.UnmarshalText([]byte(severities[id])); err != nil {
			return nil, fmt.Errorf("rule %s: %w", id, err)
		}
		c.SetSeverity(id, sev)
	}
	return c, nil
}

// IsDisabled returns true if the rule should be skipped.
func (c *Config) IsDisabled(ruleID string) bool {
	if c == nil {
		return false
	}
	return c.DisabledRules[ruleID]
}

// GetSeverity returns the severity for a rule, applying any override.
func (c *Config) GetSeverity(ruleID string, defaultSeverity Severity) Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[ruleID]; ok {
			return sev
		}
	}
	return defaultSeverity
}

// Disable disables a rule by ID.
func (c *Config) Disable(ruleID string) *Config {
	c.DisabledRules[ruleID] = true
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(ruleID string, severity Severity) *Config {
	c.SeverityOverrides[ruleID] = severity
	return c
}

// Apply drops diagnostics of disabled rules and rewrites overridden
// severities. Order is preserved. The input slice is not modified.
func (c *Config) Apply(diags []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, 0, len(diags))
	for _, d := range diags {
		if c.IsDisabled(d.RuleID) {
			continue
		}
		d.Severity = c.GetSeverity(d.RuleID, d.Severity)
		out = append(out, d)
	}
	return out
}
