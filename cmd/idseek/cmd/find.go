package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/idseek/internal/database"
	"github.com/dbsmedya/idseek/internal/finder"
	"github.com/dbsmedya/idseek/internal/timecodec"
)

// ErrNotFound is returned when every record in the table sorts before the target.
var ErrNotFound = errors.New("no record at or after target")

var findVerbose bool

var findCmd = &cobra.Command{
	Use:   "find <table> <timestamp>",
	Short: "Print the ID of the first record at or after a timestamp",
	Long: `Find runs a binary search over the ID range of a table and prints the ID
of the first record whose creation time is at or after the timestamp
(leftmost policy) or strictly after it (rightmost policy).

The table is either a name from the tables section of the config file or a
raw table name using the default id and create_time columns. A timestamp
without an offset is read in search.timezone (UTC by default).

Only the ID is written to stdout, so the result can be captured by scripts.
The command exits non-zero when no record qualifies.

Example:
  idseek find device_events "2024-09-08 00:00:00"
  idseek find device_events "2024-09-08T03:00:00+03:00" --policy rightmost`,
	Args: cobra.ExactArgs(2),
	RunE: runFind,
}

func init() {
	findCmd.Flags().BoolVarP(&findVerbose, "verbose", "v", false,
		"Print search details to stderr")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	ctx, stop := database.SetupSignalHandler(nil)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := parseTarget(cfg, args[1])
	if err != nil {
		return err
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := plan(a.cfg, a.store, a.log, args[0])
	if err != nil {
		return err
	}

	var details io.Writer
	if findVerbose {
		details = cmd.ErrOrStderr()
	}
	return findAndPrint(ctx, cmd.OutOrStdout(), details, p, target)
}

// findAndPrint runs one search, writes the ID to out and, when details is not
// nil, a human-readable summary to details.
func findAndPrint(ctx context.Context, out, details io.Writer, p *searchPlan, target time.Time) error {
	start := time.Now()
	res, err := p.searcher.Find(ctx, p.table, target, p.policy)
	if err != nil {
		return err
	}

	if details != nil {
		writeDetails(details, res, time.Since(start))
	}

	if !res.Found {
		if res.Empty {
			return fmt.Errorf("%w: table %s is empty", ErrNotFound, p.table.Name)
		}
		return fmt.Errorf("%w: every record in %s %s is older than %s",
			ErrNotFound, p.table.Name, res.Range, target.UTC().Format(time.RFC3339))
	}

	_, err = fmt.Fprintln(out, res.ID)
	return err
}

func writeDetails(w io.Writer, res *finder.Result, elapsed time.Duration) {
	fmt.Fprintf(w, "%s %s\n", headerText("Table:"), res.Table)
	fmt.Fprintf(w, "%s %s (%d)\n", headerText("Target:"),
		timecodec.FromOrdinal(res.Target).Format(time.RFC3339), res.Target)
	fmt.Fprintf(w, "%s %s\n", headerText("Policy:"), res.Policy)
	if !res.Empty {
		fmt.Fprintf(w, "%s %s\n", headerText("ID range:"), res.Range)
	}
	fmt.Fprintf(w, "%s %d in %s\n", headerText("Probes:"), res.Probes, elapsed.Round(time.Millisecond))
	for _, s := range res.Substitutions {
		if s.Missing {
			fmt.Fprintf(w, "  %s\n", warnText(fmt.Sprintf("gap at id %d, no timed row at or below", s.Probed)))
			continue
		}
		fmt.Fprintf(w, "  %s\n", warnText(fmt.Sprintf("gap at id %d, used id %d", s.Probed, s.Used)))
	}
	if res.Found {
		fmt.Fprintf(w, "%s %s\n", headerText("Result:"), okText(fmt.Sprint(res.ID)))
	} else {
		fmt.Fprintf(w, "%s %s\n", headerText("Result:"), warnText("not found"))
	}
}
