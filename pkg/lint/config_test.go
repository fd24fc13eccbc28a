package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigApply(t *testing.T) {
	diags := []Diagnostic{
		{RuleID: "PB01", Severity: SeverityError, Message: "missing"},
		{RuleID: "PB02", Severity: SeverityWarning, Message: "unused"},
		{RuleID: "TP01", Severity: SeverityError, Message: "not found"},
	}

	t.Run("nil config keeps everything", func(t *testing.T) {
		var c *Config
		assert.Equal(t, diags, c.Apply(diags))
	})

	t.Run("disable and override", func(t *testing.T) {
		c := NewConfig().Disable("PB02").SetSeverity("TP01", SeverityWarning)
		got := c.Apply(diags)
		require.Len(t, got, 2)
		assert.Equal(t, "missing", got[0].Message)
		assert.Equal(t, SeverityError, got[0].Severity)
		assert.Equal(t, "not found", got[1].Message)
		assert.Equal(t, SeverityWarning, got[1].Severity)
		assert.Equal(t, SeverityError, diags[2].Severity, "input must not be modified")
	})
}

func TestConfigFrom(t *testing.T) {
	c, err := ConfigFrom([]string{"PB02"}, map[string]string{"PB01": "warning"})
	require.NoError(t, err)
	assert.True(t, c.IsDisabled("PB02"))
	assert.False(t, c.IsDisabled("PB01"))
	assert.Equal(t, SeverityWarning, c.GetSeverity("PB01", SeverityError))
	assert.Equal(t, SeverityError, c.GetSeverity("TP01", SeverityError))

	_, err = ConfigFrom([]string{"XX99"}, nil)
	assert.ErrorContains(t, err, `unknown rule "XX99"`)

	_, err = ConfigFrom(nil, map[string]string{"PB01": "fatal"})
	assert.ErrorContains(t, err, `rule PB01: unknown severity "fatal"`)
}

func TestRules(t *testing.T) {
	rules := AllRules()
	require.Len(t, rules, 4)
	for i := 1; i < len(rules); i++ {
		assert.Less(t, rules[i-1].ID, rules[i].ID)
	}

	r, ok := GetRuleByID("PB02")
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, r.Severity)
	assert.Equal(t, "params", r.Info().Category)

	r, ok = GetRuleByID("TP01")
	require.True(t, ok)
	assert.Equal(t, "target", r.Info().Category)

	_, ok = GetRuleByID("nope")
	assert.False(t, ok)
}

func TestParseSeverity(t *testing.T) {
	sev, ok := ParseSeverity("warn")
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, sev)

	sev, ok = ParseSeverity("error")
	require.True(t, ok)
	assert.Equal(t, SeverityError, sev)

	_, ok = ParseSeverity("fatal")
	assert.False(t, ok)
}
