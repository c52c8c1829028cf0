package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile     string
	logLevel    string
	logFormat   string
	policy      string
	gapStrategy string
	timezone    string
)

var rootCmd = &cobra.Command{
	Use:   "idseek",
	Short: "Find the MySQL row ID closest to a point in time",
	Long: `idseek locates the primary key ID in a log or event table whose creation
time bounds a target timestamp, using a binary search over the ID range.
Each probe is one indexed primary key lookup, so even very large tables are
searched in a few dozen queries without scanning.

Features:
  - Leftmost (>=) or rightmost (>) tie-break between equal timestamps
  - Strict or nearest-below handling of deleted IDs
  - Concurrent alignment of several tables to the same instant
  - Read replica support with replication lag check
  - SSH tunnelled connections`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln(errorText("Error: " + err.Error()))
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "idseek.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Search overrides
	rootCmd.PersistentFlags().StringVarP(&policy, "policy", "p", "",
		"Override tie-break policy (leftmost, rightmost)")
	rootCmd.PersistentFlags().StringVar(&gapStrategy, "gap-strategy", "",
		"Override gap handling (strict, nearest_below)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "",
		"Override zone for timestamps without offset (e.g. UTC, Europe/Istanbul)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel    string
	LogFormat   string
	Policy      string
	GapStrategy string
	Timezone    string
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		Policy:      policy,
		GapStrategy: gapStrategy,
		Timezone:    timezone,
	}
}
