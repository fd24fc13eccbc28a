package commands

import (
	"bytes"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, build BuildInfo, args ...string) string {
	t.Helper()
	cmd := NewVersionCommand(build)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return buf.String()
}

func TestNewVersionCommand(t *testing.T) {
	out := runVersion(t, BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-10-01"})
	assert.Contains(t, out, "tinypg v1.2.3\n")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built:  2026-10-01")
	assert.Contains(t, out, runtime.Version())
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionCommandShort(t *testing.T) {
	assert.Equal(t, "0.1.0\n", runVersion(t, BuildInfo{Version: "0.1.0", Commit: "abc123"}, "--short"))
}

func TestVersionCommandMissingDate(t *testing.T) {
	out := runVersion(t, BuildInfo{Version: "dev", Commit: "abc123"})
	assert.Contains(t, out, "built:  unknown")
}

func TestBuildInfoWithVCS(t *testing.T) {
	info := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs", Value: "git"},
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
	}}

	got := BuildInfo{Version: "dev", Commit: "unknown"}.withVCS(info)
	assert.Equal(t, "0123456789ab", got.Commit)

	got = BuildInfo{Commit: "release"}.withVCS(info)
	assert.Equal(t, "release", got.Commit)

	got = BuildInfo{Commit: "unknown"}.withVCS(nil)
	assert.Equal(t, "unknown", got.Commit)
}

func TestVersionCommandMetadata(t *testing.T) {
	cmd := NewVersionCommand(BuildInfo{Version: "test"})
	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.Flags().Lookup("short"))
}
