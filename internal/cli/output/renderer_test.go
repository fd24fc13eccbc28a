package output

import (
	"bytes"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
		ok   bool
	}{
		{"", ModeAuto, true},
		{"auto", ModeAuto, true},
		{"TEXT", ModeText, true},
		{"md", ModeMarkdown, true},
		{"markdown", ModeMarkdown, true},
		{"json", ModeJSON, true},
		{"xml", ModeAuto, false},
	}
	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{name: "auto on terminal", mode: ModeAuto, isTTY: true, want: ModeText},
		{name: "auto piped", mode: ModeAuto, isTTY: false, want: ModeMarkdown},
		{name: "explicit text piped", mode: ModeText, isTTY: false, want: ModeText},
		{name: "json on terminal", mode: ModeJSON, isTTY: true, want: ModeJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRendererWithTTY(&bytes.Buffer{}, nil, tt.isTTY, tt.mode)
			assert.Equal(t, tt.want, r.EffectiveMode())
			assert.Equal(t, tt.isTTY, r.IsTTY())
		})
	}
}

func TestRenderer_PlainWhenPiped(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	r := NewRendererWithTTY(out, errOut, false, ModeText)

	r.Success("done")
	r.Error("broken")
	r.Warning("careful")

	assert.Equal(t, "✓ done\n", out.String())
	assert.Equal(t, "error: broken\nwarning: careful\n", errOut.String())
}

func TestRenderer_Markdown(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, nil, false, ModeAuto)

	r.Header("Results")
	r.Success("No binding issues found")

	assert.Equal(t, "## Results\n\n**No binding issues found**\n", out.String())
}

func TestRenderer_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, nil, false, ModeJSON)

	require.NoError(t, r.JSON(CheckOutput{Summary: CheckSummary{FilesChecked: 2}}))
	assert.Contains(t, out.String(), `"files_checked": 2`)
}

func TestRenderer_Table(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRendererWithTTY(out, nil, false, ModeMarkdown)

	r.Table(table.Row{"ID", "Name"}, []table.Row{{"PB01", "params.missing"}})

	assert.Contains(t, out.String(), "| ID | Name |")
	assert.Contains(t, out.String(), "| PB01 | params.missing |")
}
