// Package finder locates the record closest to a point in time in a table whose
// creation times grow with its primary key, by binary search over lazily
// fetched rows. Each probe is one round trip to the Record Store.
package finder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dbsmedya/idseek/internal/logger"
	"github.com/dbsmedya/idseek/internal/sequence"
	"github.com/dbsmedya/idseek/internal/store"
	"github.com/dbsmedya/idseek/internal/timecodec"
	"github.com/dbsmedya/idseek/internal/types"
)

// Searcher finds the closest ID in one table. Finder and Retrier implement it.
type Searcher interface {
	Find(ctx context.Context, table store.Table, target time.Time, policy Policy) (*Result, error)
}

// Substitution records a probe that landed on a gap and was answered by a lower
// existing row. Missing is set when no row with a creation time exists at or
// below Probed inside the searched range; Used is then meaningless and the
// probe sorts before every target.
type Substitution struct {
	Probed  int64
	Used    int64
	Missing bool
}

// belowAll is the ordinal of a probe with nothing searchable at or below it.
const belowAll = math.MinInt64

// Result is the outcome of one search. Found is false when the table is empty
// or every record sorts before the target.
type Result struct {
	Table         string
	Policy        Policy
	Target        int64
	ID            int64
	Found         bool
	Empty         bool
	Range         types.Range
	Probes        int
	Substitutions []Substitution
}

// Finder runs searches against a Record Store. It holds no per-search state
// and may be shared between goroutines.
type Finder struct {
	store  store.RecordStore
	gap    GapStrategy
	logger *logger.Logger
}

// NewFinder creates a finder. A nil logger falls back to the default logger.
func NewFinder(rs store.RecordStore, gap GapStrategy, log *logger.Logger) *Finder {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Finder{
		store:  rs,
		gap:    gap,
		logger: log,
	}
}

// GapStrategy returns the strategy applied to every probe.
func (f *Finder) GapStrategy() GapStrategy {
	return f.gap
}

// Find converts target to an ordinal and searches table for it.
func (f *Finder) Find(ctx context.Context, table store.Table, target time.Time, policy Policy) (*Result, error) {
	ordinal, err := timecodec.ToOrdinal(target)
	if err != nil {
		return nil, err
	}
	return f.FindOrdinal(ctx, table, ordinal, policy)
}

// FindOrdinal searches table for an already normalised epoch-second target.
func (f *Finder) FindOrdinal(ctx context.Context, table store.Table, target int64, policy Policy) (*Result, error) {
	if !policy.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPolicy, int(policy))
	}
	table = table.WithDefaults()
	log := f.logger.WithTable(table.Name).WithPolicy(policy.String())

	result := &Result{
		Table:  table.Name,
		Policy: policy,
		Target: target,
	}

	sess, err := f.store.Session(ctx)
	if err != nil {
		var storeErr *store.StoreError
		if errors.As(err, &storeErr) {
			return nil, storeErr.WithTable(table.Name)
		}
		return nil, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warnf("Failed to close store session: %v", cerr)
		}
	}()

	rng, ok, err := sess.Bounds(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Warn("Table is empty or does not exist")
		result.Empty = true
		return result, nil
	}
	result.Range = rng

	seq := sequence.New(rng, f.fetcher(sess, table, result))

	lo, hi := int64(0), seq.Len()
	for lo < hi {
		mid := lo + (hi-lo)/2
		value, err := seq.ValueAt(ctx, mid)
		if err != nil {
			if errors.Is(err, sequence.ErrGapEncountered) {
				return nil, &SearchError{Table: table.Name, ID: seq.IDAt(mid), Range: seq.Range(), Err: err}
			}
			return nil, err
		}
		log.Debugw("Probe", "id", seq.IDAt(mid), "ordinal", value, "target", target)

		if value != belowAll && policy.goesLeft(value, target) {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	if lo == seq.Len() {
		log.Infow("Target is past the last record", "target", target, "range", rng.String(), "probes", result.Probes)
		return result, nil
	}

	result.ID = seq.IDAt(lo)
	result.Found = true
	log.Debugw("Search complete", "id", result.ID, "probes", result.Probes)
	return result, nil
}

// fetcher binds one search's probes to the session, table and gap strategy,
// counting round trips into result.
func (f *Finder) fetcher(sess store.Session, table store.Table, result *Result) sequence.FetchFunc {
	if f.gap == GapNearestBelow {
		return func(ctx context.Context, id int64) (int64, bool, error) {
			result.Probes++
			p, ok, err := sess.NearestAtOrBelow(ctx, table, id)
			if err != nil {
				return 0, false, err
			}
			if !ok || !result.Range.Contains(p.ID) {
				result.Substitutions = append(result.Substitutions, Substitution{Probed: id, Missing: true})
				return belowAll, true, nil
			}
			if p.ID != id {
				result.Substitutions = append(result.Substitutions, Substitution{Probed: id, Used: p.ID})
			}
			return p.Ordinal, true, nil
		}
	}

	return func(ctx context.Context, id int64) (int64, bool, error) {
		result.Probes++
		return sess.OrdinalAt(ctx, table, id)
	}
}
