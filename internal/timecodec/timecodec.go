// Package timecodec converts points in time to the integer ordinals used as
// search keys. All ordinals are UTC epoch seconds.
package timecodec

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTimestamp is returned for a timestamp that carries no zone information.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// Layout is the wall-clock form accepted on the command line.
const Layout = "2006-01-02 15:04:05"

// zonedLayouts carry an explicit offset and never need a default location.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
}

// naiveLayouts have no offset and are interpreted in the caller's location.
var naiveLayouts = []string{
	Layout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// ToOrdinal returns t as UTC epoch seconds, truncating sub-second precision.
// The zero time has no instant attached and is rejected.
func ToOrdinal(t time.Time) (int64, error) {
	if t.IsZero() {
		return 0, fmt.Errorf("%w: zero time has no zone information", ErrInvalidTimestamp)
	}
	return t.UTC().Unix(), nil
}

// FromOrdinal is the inverse of ToOrdinal.
func FromOrdinal(ordinal int64) time.Time {
	return time.Unix(ordinal, 0).UTC()
}

// Parse reads a timestamp string. Strings carrying an offset are accepted as-is.
// Strings without one are interpreted in loc; when loc is nil they are rejected,
// since their epoch value would depend on a guessed zone.
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrInvalidTimestamp)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			// "MST" style layouts accept unknown abbreviations with a zero offset;
			// only trust them when the abbreviation resolves to UTC.
			if layout == "2006-01-02 15:04:05 MST" {
				if name, _ := t.Zone(); name != "UTC" && name != "GMT" {
					continue
				}
			}
			return t, nil
		}
	}

	for _, layout := range naiveLayouts {
		if _, err := time.Parse(layout, s); err != nil {
			continue
		}
		if loc == nil {
			return time.Time{}, fmt.Errorf("%w: %q has no zone and no default location is set", ErrInvalidTimestamp, s)
		}
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: %q does not match %q or RFC3339", ErrInvalidTimestamp, s, Layout)
}

// LoadLocation resolves a configured zone name. An empty name yields nil,
// which makes Parse reject timestamps without an offset.
func LoadLocation(name string) (*time.Location, error) {
	switch strings.ToUpper(name) {
	case "":
		return nil, nil
	case "UTC", "Z":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return loc, nil
}
