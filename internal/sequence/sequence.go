// Package sequence provides a read-only, index-addressable view over a
// contiguous primary key range whose values are fetched on demand.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/idseek/internal/types"
)

var (
	// ErrGapEncountered is returned when no record exists at a probed ID.
	ErrGapEncountered = errors.New("gap encountered")

	// ErrIndexOutOfRange is returned for an index outside [0, Len()).
	ErrIndexOutOfRange = errors.New("index out of range")
)

// FetchFunc returns the ordinal stored at id. ok is false when no record exists.
type FetchFunc func(ctx context.Context, id int64) (ordinal int64, ok bool, err error)

// GapError reports the ID that had no record.
type GapError struct {
	ID int64
}

func (e *GapError) Error() string {
	return fmt.Sprintf("no record at id %d", e.ID)
}

// Is makes GapError match ErrGapEncountered.
func (e *GapError) Is(target error) bool {
	return target == ErrGapEncountered
}

// Sequence maps logical index i to id MinID+i. Every ValueAt call costs
// exactly one fetch; nothing is cached.
type Sequence struct {
	rng   types.Range
	fetch FetchFunc
}

// New creates a sequence over r.
func New(r types.Range, fetch FetchFunc) *Sequence {
	return &Sequence{rng: r, fetch: fetch}
}

// Len returns MaxID - MinID + 1.
func (s *Sequence) Len() int64 {
	return s.rng.Len()
}

// Range returns the ID span backing the sequence.
func (s *Sequence) Range() types.Range {
	return s.rng
}

// IDAt maps a logical index to its primary key.
func (s *Sequence) IDAt(index int64) int64 {
	return s.rng.MinID + index
}

// ValueAt fetches the ordinal at logical index.
func (s *Sequence) ValueAt(ctx context.Context, index int64) (int64, error) {
	if index < 0 || index >= s.Len() {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, s.Len())
	}

	id := s.IDAt(index)
	ordinal, ok, err := s.fetch(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &GapError{ID: id}
	}
	return ordinal, nil
}
