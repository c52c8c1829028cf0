// Package memstore is an in-memory Record Store. It counts round trips so
// search cost can be asserted, and can be told to fail specific operations.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dbsmedya/idseek/internal/store"
	"github.com/dbsmedya/idseek/internal/types"
)

// ErrInjected is the default failure returned by Fail.
var ErrInjected = errors.New("injected failure")

// Counters are cumulative round trips served by a Store.
type Counters struct {
	Sessions int
	Bounds   int
	Probes   int
}

type table struct {
	ids      []int64 // sorted
	ordinals map[int64]int64
}

// Store holds rows keyed by table name. It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	tables   map[string]*table
	counters Counters
	failOps  map[string]error
	failAt   map[int64]error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		tables:  make(map[string]*table),
		failOps: make(map[string]error),
		failAt:  make(map[int64]error),
	}
}

// Put inserts or replaces a row.
func (s *Store) Put(tableName string, id, ordinal int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableName]
	if !ok {
		t = &table{ordinals: make(map[int64]int64)}
		s.tables[tableName] = t
	}
	if _, exists := t.ordinals[id]; !exists {
		i := sort.Search(len(t.ids), func(i int) bool { return t.ids[i] >= id })
		t.ids = append(t.ids, 0)
		copy(t.ids[i+1:], t.ids[i:])
		t.ids[i] = id
	}
	t.ordinals[id] = ordinal
}

// PutSeries inserts ordinals at consecutive IDs starting at firstID.
func (s *Store) PutSeries(tableName string, firstID int64, ordinals ...int64) {
	for i, o := range ordinals {
		s.Put(tableName, firstID+int64(i), o)
	}
}

// Delete removes a row, leaving a gap.
func (s *Store) Delete(tableName string, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[tableName]
	if !ok {
		return
	}
	if _, exists := t.ordinals[id]; !exists {
		return
	}
	delete(t.ordinals, id)
	i := sort.Search(len(t.ids), func(i int) bool { return t.ids[i] >= id })
	t.ids = append(t.ids[:i], t.ids[i+1:]...)
}

// Fail makes every call of op ("session", "bounds", "ordinal_at",
// "nearest_at_or_below") return err. A nil err uses ErrInjected.
func (s *Store) Fail(op string, err error) {
	if err == nil {
		err = ErrInjected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOps[op] = err
}

// FailAt makes probes of id return err.
func (s *Store) FailAt(id int64, err error) {
	if err == nil {
		err = ErrInjected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAt[id] = err
}

// Heal clears all injected failures.
func (s *Store) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOps = make(map[string]error)
	s.failAt = make(map[int64]error)
}

// Counters returns a snapshot of the round trip counters.
func (s *Store) Counters() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}

// Reset zeroes the round trip counters.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters = Counters{}
}

// Session implements store.RecordStore.
func (s *Store) Session(ctx context.Context) (store.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Sessions++
	if err := s.failOps["session"]; err != nil {
		return nil, &store.StoreError{Op: "session", Err: err}
	}
	return &session{s: s}, nil
}

type session struct {
	s *Store
}

func (ss *session) Bounds(ctx context.Context, t store.Table) (types.Range, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.Range{}, false, err
	}
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters.Bounds++
	if err := s.failOps["bounds"]; err != nil {
		return types.Range{}, false, store.NewStoreError("bounds", t.Name, err)
	}
	tbl, ok := s.tables[t.Name]
	if !ok || len(tbl.ids) == 0 {
		return types.Range{}, false, nil
	}
	return types.Range{MinID: tbl.ids[0], MaxID: tbl.ids[len(tbl.ids)-1]}, true, nil
}

func (ss *session) OrdinalAt(ctx context.Context, t store.Table, id int64) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters.Probes++
	if err := s.probeFailure("ordinal_at", id); err != nil {
		return 0, false, store.NewProbeError("ordinal_at", t.Name, id, err)
	}
	tbl, ok := s.tables[t.Name]
	if !ok {
		return 0, false, nil
	}
	v, ok := tbl.ordinals[id]
	return v, ok, nil
}

func (ss *session) NearestAtOrBelow(ctx context.Context, t store.Table, id int64) (types.Probe, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.Probe{}, false, err
	}
	s := ss.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters.Probes++
	if err := s.probeFailure("nearest_at_or_below", id); err != nil {
		return types.Probe{}, false, store.NewProbeError("nearest_at_or_below", t.Name, id, err)
	}
	tbl, ok := s.tables[t.Name]
	if !ok {
		return types.Probe{}, false, nil
	}
	// First index with ids[i] > id; the row before it is the answer.
	i := sort.Search(len(tbl.ids), func(i int) bool { return tbl.ids[i] > id })
	if i == 0 {
		return types.Probe{}, false, nil
	}
	found := tbl.ids[i-1]
	return types.Probe{ID: found, Ordinal: tbl.ordinals[found]}, true, nil
}

func (ss *session) Close() error {
	return nil
}

// probeFailure must be called with s.mu held.
func (s *Store) probeFailure(op string, id int64) error {
	if err := s.failOps[op]; err != nil {
		return err
	}
	return s.failAt[id]
}
