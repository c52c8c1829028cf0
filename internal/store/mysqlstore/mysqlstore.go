// Package mysqlstore implements the Record Store over a MySQL connection pool.
//
// Every session pins one pooled connection, sets its time zone to UTC so that
// UNIX_TIMESTAMP of DATETIME columns is stable, and optionally opens a
// read-only consistent snapshot so all probes of one search see the same data.
package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/dbsmedya/idseek/internal/logger"
	"github.com/dbsmedya/idseek/internal/sqlutil"
	"github.com/dbsmedya/idseek/internal/store"
	"github.com/dbsmedya/idseek/internal/types"
)

const (
	setTimeZoneSQL   = "SET @@SESSION.time_zone = '+00:00'"
	startSnapshotSQL = "START TRANSACTION WITH CONSISTENT SNAPSHOT, READ ONLY"
	rollbackSQL      = "ROLLBACK"
)

// Options tune session behaviour.
type Options struct {
	// ConsistentSnapshot runs each session inside a read-only snapshot transaction.
	ConsistentSnapshot bool
	// ProbesPerSecond caps probe queries across all sessions. Zero disables the cap.
	ProbesPerSecond float64
}

// Store hands out MySQL-backed sessions.
type Store struct {
	db      *sql.DB
	opts    Options
	limiter *rate.Limiter
	logger  *logger.Logger

	mu      sync.Mutex
	queries map[store.Table]sqlutil.TableQueries
}

// New creates a Store over db.
func New(db *sql.DB, opts Options, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault()
	}
	s := &Store{
		db:      db,
		opts:    opts,
		logger:  log,
		queries: make(map[store.Table]sqlutil.TableQueries),
	}
	if opts.ProbesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(opts.ProbesPerSecond), 1)
	}
	return s
}

// Session implements store.RecordStore.
func (s *Store) Session(ctx context.Context) (store.Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, s.wrap(ctx, store.NewStoreError("session", "", err))
	}

	if _, err := conn.ExecContext(ctx, setTimeZoneSQL); err != nil {
		conn.Close()
		return nil, s.wrap(ctx, store.NewStoreError("session", "", fmt.Errorf("set time zone: %w", err)))
	}

	if s.opts.ConsistentSnapshot {
		if _, err := conn.ExecContext(ctx, startSnapshotSQL); err != nil {
			conn.Close()
			return nil, s.wrap(ctx, store.NewStoreError("session", "", fmt.Errorf("start snapshot: %w", err)))
		}
	}

	return &session{s: s, conn: conn, inTx: s.opts.ConsistentSnapshot}, nil
}

// tableQueries returns the rendered statements for t, building them once.
func (s *Store) tableQueries(t store.Table) (sqlutil.TableQueries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q, ok := s.queries[t]; ok {
		return q, nil
	}
	q, err := sqlutil.BuildTableQueries(t.Name, t.IDColumn, t.TimeColumn)
	if err != nil {
		return sqlutil.TableQueries{}, err
	}
	s.queries[t] = q
	return q, nil
}

// wrap returns the context error unchanged when the failure was caused by
// cancellation, so callers see context.Canceled rather than a store outage.
func (s *Store) wrap(ctx context.Context, err *store.StoreError) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func (s *Store) throttle(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

type session struct {
	s    *Store
	conn *sql.Conn
	inTx bool
}

func (ss *session) Bounds(ctx context.Context, t store.Table) (types.Range, bool, error) {
	t = t.WithDefaults()
	q, err := ss.s.tableQueries(t)
	if err != nil {
		return types.Range{}, false, err
	}

	var minV, maxV interface{}
	if err := ss.conn.QueryRowContext(ctx, q.Bounds).Scan(&minV, &maxV); err != nil {
		return types.Range{}, false, ss.s.wrap(ctx, store.NewStoreError("bounds", t.Name, err))
	}
	if minV == nil || maxV == nil {
		return types.Range{}, false, nil
	}

	minID, err := types.ToInt64(minV)
	if err != nil {
		return types.Range{}, false, store.NewStoreError("bounds", t.Name, err)
	}
	maxID, err := types.ToInt64(maxV)
	if err != nil {
		return types.Range{}, false, store.NewStoreError("bounds", t.Name, err)
	}
	return types.Range{MinID: minID, MaxID: maxID}, true, nil
}

func (ss *session) OrdinalAt(ctx context.Context, t store.Table, id int64) (int64, bool, error) {
	t = t.WithDefaults()
	q, err := ss.s.tableQueries(t)
	if err != nil {
		return 0, false, err
	}
	if err := ss.s.throttle(ctx); err != nil {
		return 0, false, err
	}

	var v interface{}
	err = ss.conn.QueryRowContext(ctx, q.OrdinalAt, id).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, ss.s.wrap(ctx, store.NewProbeError("ordinal_at", t.Name, id, err))
	}
	if v == nil {
		// NULL creation time: the row cannot be ordered.
		ss.s.logger.WithTable(t.Name).Debugw("Row has no creation time", "id", id)
		return 0, false, nil
	}

	ordinal, err := types.ToOrdinal(v)
	if err != nil {
		return 0, false, store.NewProbeError("ordinal_at", t.Name, id, err)
	}
	return ordinal, true, nil
}

func (ss *session) NearestAtOrBelow(ctx context.Context, t store.Table, id int64) (types.Probe, bool, error) {
	t = t.WithDefaults()
	q, err := ss.s.tableQueries(t)
	if err != nil {
		return types.Probe{}, false, err
	}
	if err := ss.s.throttle(ctx); err != nil {
		return types.Probe{}, false, err
	}

	var idV, tsV interface{}
	err = ss.conn.QueryRowContext(ctx, q.NearestAtOrBelow, id).Scan(&idV, &tsV)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Probe{}, false, nil
	}
	if err != nil {
		return types.Probe{}, false, ss.s.wrap(ctx, store.NewProbeError("nearest_at_or_below", t.Name, id, err))
	}
	if tsV == nil {
		ss.s.logger.WithTable(t.Name).Debugw("Row has no creation time", "id", id)
		return types.Probe{}, false, nil
	}

	found, err := types.ToInt64(idV)
	if err != nil {
		return types.Probe{}, false, store.NewProbeError("nearest_at_or_below", t.Name, id, err)
	}
	ordinal, err := types.ToOrdinal(tsV)
	if err != nil {
		return types.Probe{}, false, store.NewProbeError("nearest_at_or_below", t.Name, id, err)
	}
	return types.Probe{ID: found, Ordinal: ordinal}, true, nil
}

// Close ends the snapshot, if any, and returns the connection to the pool.
func (ss *session) Close() error {
	var errs []error
	if ss.inTx {
		// The session context may already be cancelled; the rollback must still run.
		if _, err := ss.conn.ExecContext(context.Background(), rollbackSQL); err != nil {
			errs = append(errs, fmt.Errorf("rollback snapshot: %w", err))
		}
		ss.inTx = false
	}
	if err := ss.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("release connection: %w", err))
	}
	return errors.Join(errs...)
}
