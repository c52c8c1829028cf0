// Package store defines the Record Store capability the finder searches over.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/idseek/internal/types"
)

// Default column names used when a table does not override them.
const (
	DefaultIDColumn   = "id"
	DefaultTimeColumn = "create_time"
)

// ErrStoreUnavailable marks transport or query failures from the backing store.
var ErrStoreUnavailable = errors.New("record store unavailable")

// Table identifies a searchable table and the columns holding its key and creation time.
type Table struct {
	Name       string
	IDColumn   string
	TimeColumn string
}

// NewTable returns a Table using the default column names.
func NewTable(name string) Table {
	return Table{Name: name, IDColumn: DefaultIDColumn, TimeColumn: DefaultTimeColumn}
}

// WithDefaults fills empty column names.
func (t Table) WithDefaults() Table {
	if t.IDColumn == "" {
		t.IDColumn = DefaultIDColumn
	}
	if t.TimeColumn == "" {
		t.TimeColumn = DefaultTimeColumn
	}
	return t
}

func (t Table) String() string {
	return t.Name
}

// RecordStore hands out independent read sessions. Implementations must allow
// sessions to be used concurrently with each other.
type RecordStore interface {
	Session(ctx context.Context) (Session, error)
}

// Session is a single-goroutine read view used for one search.
type Session interface {
	// Bounds returns the MIN/MAX primary key. ok is false for an empty table.
	Bounds(ctx context.Context, t Table) (r types.Range, ok bool, err error)

	// OrdinalAt returns the creation ordinal of the row with exactly id.
	// ok is false when no such row exists.
	OrdinalAt(ctx context.Context, t Table, id int64) (ordinal int64, ok bool, err error)

	// NearestAtOrBelow returns the row with the greatest id <= the given id that
	// has a creation time. ok is false when no such row exists.
	NearestAtOrBelow(ctx context.Context, t Table, id int64) (p types.Probe, ok bool, err error)

	Close() error
}

// StoreError wraps a failed store operation with the context needed to diagnose it.
type StoreError struct {
	Op    string // "session", "bounds", "ordinal_at", "nearest_at_or_below"
	Table string
	ID    int64
	HasID bool
	Err   error
}

func (e *StoreError) Error() string {
	if e.HasID {
		return fmt.Sprintf("%s %s id=%d: %v", e.Op, e.Table, e.ID, e.Err)
	}
	if e.Table != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is makes StoreError match ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// WithTable returns a copy of e naming table when e has no table yet.
func (e *StoreError) WithTable(table string) *StoreError {
	if e.Table != "" {
		return e
	}
	c := *e
	c.Table = table
	return &c
}

// NewStoreError builds a StoreError for a table-level operation.
func NewStoreError(op, table string, err error) *StoreError {
	return &StoreError{Op: op, Table: table, Err: err}
}

// NewProbeError builds a StoreError for an operation on a single id.
func NewProbeError(op, table string, id int64, err error) *StoreError {
	return &StoreError{Op: op, Table: table, ID: id, HasID: true, Err: err}
}
