package finder

import (
	"context"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/idseek/internal/logger"
	"github.com/dbsmedya/idseek/internal/store"
	"github.com/dbsmedya/idseek/internal/timecodec"
)

// AlignRequest is one table to position at the target time.
type AlignRequest struct {
	Table    store.Table
	Policy   Policy
	Searcher Searcher
}

// Alignment is the outcome for one table. Exactly one of Result and Err is set.
type Alignment struct {
	Table  store.Table
	Result *Result
	Err    error
}

// Aligner runs independent searches over several tables concurrently.
type Aligner struct {
	concurrency int
	logger      *logger.Logger
}

// NewAligner creates an aligner. concurrency <= 0 means no limit.
func NewAligner(concurrency int, log *logger.Logger) *Aligner {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Aligner{concurrency: concurrency, logger: log}
}

// Align searches every requested table for target. Results are keyed by table
// name in request order; a repeated name keeps its first request. A failing
// table does not stop the others.
func (a *Aligner) Align(ctx context.Context, target time.Time, reqs []AlignRequest) (*orderedmap.OrderedMap[string, *Alignment], error) {
	if _, err := timecodec.ToOrdinal(target); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(reqs))
	unique := make([]AlignRequest, 0, len(reqs))
	for _, req := range reqs {
		if seen[req.Table.Name] {
			continue
		}
		seen[req.Table.Name] = true
		unique = append(unique, req)
	}

	out := make([]*Alignment, len(unique))
	var g errgroup.Group
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, req := range unique {
		g.Go(func() error {
			result, err := req.Searcher.Find(ctx, req.Table, target, req.Policy)
			if err != nil {
				a.logger.WithTable(req.Table.Name).Errorf("Alignment failed: %v", err)
			}
			out[i] = &Alignment{Table: req.Table, Result: result, Err: err}
			return nil
		})
	}
	// Workers never return an error; failures are kept per table in out.
	_ = g.Wait()

	results := orderedmap.NewOrderedMap[string, *Alignment]()
	for _, al := range out {
		results.Set(al.Table.Name, al)
	}
	return results, nil
}
