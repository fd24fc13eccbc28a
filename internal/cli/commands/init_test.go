package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/joeandaverde/vscode-tinypg/internal/cli/config"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name     string
		setupDir func(t *testing.T, dir string)
		args     []string
		wantErr  bool
		wantFile string
	}{
		{
			name:     "init empty directory",
			args:     []string{},
			wantFile: "tinypg.yaml",
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "tinypg.yaml"), []byte("existing"), 0600)
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "tinypg.yaml"), []byte("existing"), 0600)
			},
			args:     []string{"--force"},
			wantFile: "tinypg.yaml",
		},
		{
			name:     "init named directory",
			args:     []string{"nested/app"},
			wantFile: "nested/app/tinypg.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)
			config.ResetConfig()

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "Created")

			data, err := os.ReadFile(filepath.Join(tmpDir, tt.wantFile))
			require.NoError(t, err)
			assert.NotEqual(t, "existing", string(data))
		})
	}
}

func TestInitConfigLoads(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)

	want := config.Default()
	assert.Equal(t, want.SQLExtension, cfg.SQLExtension)
	assert.Equal(t, want.Calls, cfg.Calls)
	assert.Equal(t, want.Extensions, cfg.Extensions)
	assert.Equal(t, want.Concurrency, cfg.Concurrency)
	assert.True(t, cfg.LSP.Watch)
	assert.Equal(t, tmpDir, cfg.Root)
	assert.Equal(t, filepath.Join(tmpDir, "tinypg.yaml"), config.GetConfigFileUsed())
}

func TestDefaultConfigYAML(t *testing.T) {
	data, err := defaultConfigYAML()
	require.NoError(t, err)

	assert.Contains(t, string(data), "# tinypg configuration\n")

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	for _, key := range []string{"root", "sql_extension", "exclude", "extensions", "calls", "concurrency", "output", "lint", "lsp"} {
		assert.Contains(t, doc, key)
	}
	calls, ok := doc["calls"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"sql"}, calls["file"])
	assert.Equal(t, []any{"query"}, calls["inline"])
}
