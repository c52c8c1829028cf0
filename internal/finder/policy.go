package finder

import (
	"fmt"
	"strings"
)

// Policy selects which of several equal-keyed records a search resolves to.
type Policy int

const (
	// Leftmost resolves to the smallest ID whose ordinal is >= the target (lower bound).
	Leftmost Policy = iota
	// Rightmost resolves to the smallest ID whose ordinal is > the target (upper bound).
	Rightmost
)

// ParsePolicy accepts "leftmost"/"left" and "rightmost"/"right". Empty means Leftmost.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "leftmost", "left":
		return Leftmost, nil
	case "rightmost", "right":
		return Rightmost, nil
	default:
		return Leftmost, fmt.Errorf("unknown policy %q (want leftmost or rightmost)", s)
	}
}

func (p Policy) String() string {
	switch p {
	case Leftmost:
		return "leftmost"
	case Rightmost:
		return "rightmost"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// valid reports whether p is one of the declared policies.
func (p Policy) valid() bool {
	return p == Leftmost || p == Rightmost
}

// goesLeft reports whether the insertion point lies at or before an element
// holding value, i.e. whether the search should continue in the lower half.
func (p Policy) goesLeft(value, target int64) bool {
	if p == Rightmost {
		return value > target
	}
	return value >= target
}

// GapStrategy decides what a probe does when the probed ID has no record.
type GapStrategy int

const (
	// GapStrict fails the search on the first gap.
	GapStrict GapStrategy = iota
	// GapNearestBelow resolves every probe to the nearest existing ID at or below it.
	GapNearestBelow
)

// ParseGapStrategy accepts "strict" and "nearest_below". Empty means GapStrict.
func ParseGapStrategy(s string) (GapStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return GapStrict, nil
	case "nearest_below", "nearest-below":
		return GapNearestBelow, nil
	default:
		return GapStrict, fmt.Errorf("unknown gap strategy %q (want strict or nearest_below)", s)
	}
}

func (g GapStrategy) String() string {
	switch g {
	case GapStrict:
		return "strict"
	case GapNearestBelow:
		return "nearest_below"
	default:
		return fmt.Sprintf("GapStrategy(%d)", int(g))
	}
}
