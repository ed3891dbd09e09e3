package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// These are stamped at release time through ldflags. A plain `go build`
// leaves them empty and the answers come from the embedded build info
// instead.
var (
	version = ""
	commit  = ""
	date    = ""
)

// shortHashLen is how much of the VCS revision the version output shows.
const shortHashLen = 7

// buildSetting returns the named key from the binary's embedded build
// info, or "" when the binary carries no VCS stamp (e.g. go test).
func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// getVersion prefers the release stamp, then the module version from
// build info, then the development placeholder.
func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// getCommit returns the abbreviated commit hash the binary was built from.
func getCommit() string {
	if commit != "" {
		return commit
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		if len(rev) > shortHashLen {
			return rev[:shortHashLen]
		}
		return rev
	}
	return "unknown"
}

// getDate returns the commit timestamp recorded at build time.
func getDate() string {
	if date != "" {
		return date
	}
	if t := buildSetting("vcs.time"); t != "" {
		return t
	}
	return "unknown"
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of grantfinder.`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "grantfinder version %s\n", getVersion())
			fmt.Fprintf(out, "  commit: %s\n", getCommit())
			fmt.Fprintf(out, "  built:  %s\n", getDate())
		},
	}
}
