package finder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dbsmedya/idseek/internal/logger"
	"github.com/dbsmedya/idseek/internal/store"
)

// Retrier reruns a whole search after a store failure. Probes inside one
// attempt are never retried individually: a fresh attempt re-reads the bounds
// so that no comparison is made against state from a different snapshot.
type Retrier struct {
	next        Searcher
	maxAttempts int
	backoff     time.Duration
	logger      *logger.Logger
}

// NewRetrier wraps next. maxAttempts below 1 is treated as 1.
func NewRetrier(next Searcher, maxAttempts int, backoff time.Duration, log *logger.Logger) *Retrier {
	if log == nil {
		log = logger.NewDefault()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrier{
		next:        next,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      log,
	}
}

// Find implements Searcher. Only errors matching store.ErrStoreUnavailable are retried.
func (r *Retrier) Find(ctx context.Context, table store.Table, target time.Time, policy Policy) (*Result, error) {
	delay := r.backoff

	for attempt := 1; ; attempt++ {
		result, err := r.next.Find(ctx, table, target, policy)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, store.ErrStoreUnavailable) || ctx.Err() != nil {
			return nil, err
		}
		if attempt >= r.maxAttempts {
			if r.maxAttempts == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("failed after %d attempts: %w", attempt, err)
		}

		r.logger.WithFields(map[string]interface{}{
			"table":        table.Name,
			"attempt":      attempt,
			"max_attempts": r.maxAttempts,
		}).Warnf("Search attempt %d/%d failed: %v, retrying in %s", attempt, r.maxAttempts, err, delay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay *= 2 // Exponential backoff
		}
	}
}
