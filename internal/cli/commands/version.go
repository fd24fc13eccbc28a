package commands

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// BuildInfo describes the binary. Commit and Date are set with -ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// withVCS fills an unset commit from the module build info.
func (b BuildInfo) withVCS(info *debug.BuildInfo) BuildInfo {
	if info == nil || (b.Commit != "" && b.Commit != "unknown") {
		return b
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			b.Commit = s.Value
			if len(b.Commit) > 12 {
				b.Commit = b.Commit[:12]
			}
		}
	}
	return b
}

// NewVersionCommand creates the version command.
func NewVersionCommand(build BuildInfo) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the tinypg version, the commit and date it was built from,
and the Go toolchain and platform. Use --short for the version alone.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(out, build.Version)
				return
			}
			info, _ := debug.ReadBuildInfo()
			b := build.withVCS(info)
			_, _ = fmt.Fprintf(out, "tinypg v%s\n", b.Version)
			_, _ = fmt.Fprintf(out, "  commit: %s\n", orUnknown(b.Commit))
			_, _ = fmt.Fprintf(out, "  built:  %s\n", orUnknown(b.Date))
			_, _ = fmt.Fprintf(out, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")
	return cmd
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
