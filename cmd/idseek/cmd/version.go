package cmd

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/idseek/internal/timecodec"
)

const mysqlDriverModule = "github.com/go-sql-driver/mysql"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the idseek build, the MySQL driver it was linked against and
the timestamp layout accepted by find and align.`,
	Run: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// buildDetails is what version reports beyond the ldflags values.
type buildDetails struct {
	commit   string
	modified bool
	driver   string
}

// readBuildDetails falls back to the VCS stamp when no commit was set at link
// time. info may be nil.
func readBuildDetails(commit string, info *debug.BuildInfo) buildDetails {
	d := buildDetails{commit: commit, driver: "unknown"}
	if info == nil {
		return d
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if d.commit == "" || d.commit == "unknown" {
				d.commit = s.Value
			}
		case "vcs.modified":
			d.modified = s.Value == "true"
		}
	}
	for _, dep := range info.Deps {
		if dep.Path != mysqlDriverModule {
			continue
		}
		d.driver = dep.Version
		if dep.Replace != nil {
			d.driver = dep.Replace.Version
		}
	}
	return d
}

func runVersion(cmd *cobra.Command, args []string) {
	info, _ := debug.ReadBuildInfo()
	d := readBuildDetails(Commit, info)

	commit := d.commit
	if d.modified {
		commit += " (modified)"
	}

	cmd.Printf("idseek version %s\n", Version)
	cmd.Printf("  Commit: %s\n", commit)
	cmd.Printf("  MySQL driver: %s\n", d.driver)
	cmd.Printf("  Timestamp layout: %s (or RFC3339)\n", timecodec.Layout)
	cmd.Printf("  Go version: %s\n", runtime.Version())
	cmd.Printf("  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
