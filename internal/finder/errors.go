package finder

import (
	"errors"
	"fmt"

	"github.com/dbsmedya/idseek/internal/types"
)

var (
	// ErrSearchFailed is returned when a probe cannot be compared, e.g. it hit a gap.
	ErrSearchFailed = errors.New("search failed")

	// ErrInvalidPolicy is returned for a Policy value outside Leftmost/Rightmost.
	ErrInvalidPolicy = errors.New("invalid policy")
)

// SearchError describes where a search stopped. It matches ErrSearchFailed and
// unwraps to the probe failure (sequence.ErrGapEncountered for gaps).
type SearchError struct {
	Table string
	ID    int64
	Range types.Range
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search %s failed at id %d in range %s: %v", e.Table, e.ID, e.Range, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Is makes SearchError match ErrSearchFailed.
func (e *SearchError) Is(target error) bool {
	return target == ErrSearchFailed
}
