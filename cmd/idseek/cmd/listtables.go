package cmd

import (
	"github.com/spf13/cobra"
)

var listTablesCmd = &cobra.Command{
	Use:   "list-tables",
	Short: "List all tables defined in configuration",
	Long: `List-tables displays every table defined in the configuration file with
its resolved columns, tie-break policy and gap strategy.

Example:
  idseek list-tables --config idseek.yaml`,
	RunE: runListTables,
}

func init() {
	rootCmd.AddCommand(listTablesCmd)
}

func runListTables(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := cfg.ListTables()
	if len(names) == 0 {
		cmd.Printf("No tables defined in %s\n", GetConfigFile())
		return nil
	}

	t := &table{header: []string{"NAME", "TABLE", "ID COLUMN", "TIME COLUMN", "POLICY", "GAPS"}}
	for _, name := range names {
		rt := cfg.ResolveTable(name)
		t.add(plain(rt.Name), plain(rt.Table), plain(rt.IDColumn), plain(rt.TimeColumn),
			plain(rt.Policy), plain(rt.GapStrategy))
	}

	cmd.Printf("Tables defined in %s:\n\n", GetConfigFile())
	cmd.Print(t.String())
	cmd.Printf("\nTotal: %d table(s)\n", len(names))
	return nil
}
