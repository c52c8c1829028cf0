// Package types contains shared types used across multiple packages to avoid import cycles.
package types

import "fmt"

// Range is the inclusive primary key span of a table at query time.
type Range struct {
	MinID int64
	MaxID int64
}

// Len returns the number of IDs covered by the range, gaps included.
func (r Range) Len() int64 {
	if r.MaxID < r.MinID {
		return 0
	}
	return r.MaxID - r.MinID + 1
}

// Contains reports whether id lies within [MinID, MaxID].
func (r Range) Contains(id int64) bool {
	return id >= r.MinID && id <= r.MaxID
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.MinID, r.MaxID)
}

// Probe is the ordinal fetched for a single ID.
type Probe struct {
	ID      int64
	Ordinal int64
}
