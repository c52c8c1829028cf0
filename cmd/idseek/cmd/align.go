package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/idseek/internal/config"
	"github.com/dbsmedya/idseek/internal/database"
	"github.com/dbsmedya/idseek/internal/finder"
	"github.com/dbsmedya/idseek/internal/logger"
	"github.com/dbsmedya/idseek/internal/store"
)

var alignAll bool

var alignCmd = &cobra.Command{
	Use:   "align <timestamp> [table...]",
	Short: "Find the closest ID in several tables at once",
	Long: `Align searches every given table for the same timestamp concurrently and
prints one line per table in the order given. With --all, every table from
the config file is searched. A failure in one table is reported for that
table and does not stop the others; the command exits non-zero if any table
failed.

Example:
  idseek align "2024-09-08 00:00:00" device_events login_log
  idseek align "2024-09-08 00:00:00" --all`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAlign,
}

func init() {
	alignCmd.Flags().BoolVar(&alignAll, "all", false,
		"Align every table defined in the config file")
	rootCmd.AddCommand(alignCmd)
}

func runAlign(cmd *cobra.Command, args []string) error {
	names := args[1:]
	if len(names) == 0 && !alignAll {
		return fmt.Errorf("no tables given (pass table names or --all)")
	}

	ctx, stop := database.SetupSignalHandler(nil)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := parseTarget(cfg, args[0])
	if err != nil {
		return err
	}
	if alignAll {
		names = append(cfg.ListTables(), names...)
	}

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return alignAndPrint(ctx, cmd.OutOrStdout(), a.cfg, a.store, a.log, target, names)
}

// alignAndPrint resolves names, aligns them and writes the result table.
func alignAndPrint(ctx context.Context, out io.Writer, cfg *config.Config, rs store.RecordStore, log *logger.Logger, target time.Time, names []string) error {
	reqs := make([]finder.AlignRequest, 0, len(names))
	for _, name := range names {
		p, err := plan(cfg, rs, log, name)
		if err != nil {
			return err
		}
		reqs = append(reqs, finder.AlignRequest{Table: p.table, Policy: p.policy, Searcher: p.searcher})
	}

	results, err := finder.NewAligner(cfg.Search.Concurrency, log).Align(ctx, target, reqs)
	if err != nil {
		return err
	}

	fmt.Fprint(out, renderAlignment(results))

	failed := 0
	for el := results.Front(); el != nil; el = el.Next() {
		if el.Value.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d table(s) failed", failed, results.Len())
	}
	return nil
}

func renderAlignment(results *orderedmap.OrderedMap[string, *finder.Alignment]) string {
	t := &table{header: []string{"TABLE", "POLICY", "ID", "PROBES", "NOTE"}}

	for el := results.Front(); el != nil; el = el.Next() {
		al := el.Value
		if al.Err != nil {
			t.add(plain(el.Key), plain("-"), painted("error", errorText), plain("-"), plain(al.Err.Error()))
			continue
		}

		res := al.Result
		var note string
		switch {
		case res.Empty:
			note = "table is empty"
		case !res.Found:
			note = "target is after the last record " + res.Range.String()
		case len(res.Substitutions) > 0:
			note = fmt.Sprintf("%d gap(s) bridged", len(res.Substitutions))
		}

		id := painted("none", warnText)
		if res.Found {
			id = painted(fmt.Sprint(res.ID), okText)
		}
		t.add(plain(el.Key), plain(res.Policy.String()), id, plain(fmt.Sprint(res.Probes)), plain(note))
	}
	return t.String()
}
