package types

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNullValue is returned by ToOrdinal for a NULL column value.
var ErrNullValue = errors.New("null value")

// ToOrdinal converts a driver value holding a point in time to integer epoch seconds.
//
// UNIX_TIMESTAMP() returns an integer for second-precision columns and a decimal
// (delivered as []byte or string) for fractional ones. Fractions are truncated
// toward negative infinity so that the ordering of the source column is preserved.
func ToOrdinal(v interface{}) (int64, error) {
	switch i := v.(type) {
	case nil:
		return 0, ErrNullValue
	case int64:
		return i, nil
	case int:
		return int64(i), nil
	case int32:
		return int64(i), nil
	case uint64:
		if i > math.MaxInt64 {
			return 0, fmt.Errorf("ordinal %d overflows int64", i)
		}
		return int64(i), nil
	case uint32:
		return int64(i), nil
	case float64:
		return floorFloat(i)
	case float32:
		return floorFloat(float64(i))
	case time.Time:
		if i.IsZero() {
			return 0, ErrNullValue
		}
		return i.Unix(), nil
	case []byte:
		return parseOrdinal(string(i))
	case string:
		return parseOrdinal(i)
	default:
		return 0, fmt.Errorf("unsupported ordinal type %T", v)
	}
}

// ToInt64 converts an integer-like driver value to int64.
// It is used for primary key columns, which are never fractional.
func ToInt64(v interface{}) (int64, error) {
	switch i := v.(type) {
	case nil:
		return 0, ErrNullValue
	case int64:
		return i, nil
	case int:
		return int64(i), nil
	case int32:
		return int64(i), nil
	case uint64:
		if i > math.MaxInt64 {
			return 0, fmt.Errorf("id %d overflows int64", i)
		}
		return int64(i), nil
	case uint32:
		return int64(i), nil
	case []byte:
		return strconv.ParseInt(string(i), 10, 64)
	case string:
		return strconv.ParseInt(i, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported id type %T", v)
	}
}

func parseOrdinal(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrNullValue
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ordinal %q: %w", s, err)
	}
	return floorFloat(f)
}

func floorFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("ordinal %v out of range", f)
	}
	return int64(math.Floor(f)), nil
}
