package sqlutil

import "fmt"

// TableQueries holds the three statements a search issues against one table.
type TableQueries struct {
	// Bounds returns MIN(id), MAX(id); both NULL for an empty table.
	Bounds string
	// OrdinalAt returns UNIX_TIMESTAMP(time) of the row with exactly the given id.
	OrdinalAt string
	// NearestAtOrBelow returns id, UNIX_TIMESTAMP(time) of the greatest id <= the given id
	// whose time is set. Rows with a NULL time cannot be ordered and are skipped.
	NearestAtOrBelow string
}

// BuildTableQueries quotes the table and column names and renders the statements.
// UNIX_TIMESTAMP depends on the session time zone for DATETIME columns, so callers
// pin the session to +00:00 before running them.
func BuildTableQueries(table, idColumn, timeColumn string) (TableQueries, error) {
	t, err := QuoteTableSafe(table)
	if err != nil {
		return TableQueries{}, err
	}
	id, err := QuoteIdentifierSafe(idColumn)
	if err != nil {
		return TableQueries{}, err
	}
	ts, err := QuoteIdentifierSafe(timeColumn)
	if err != nil {
		return TableQueries{}, err
	}

	return TableQueries{
		Bounds:    fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s", id, id, t),
		OrdinalAt: fmt.Sprintf("SELECT UNIX_TIMESTAMP(%s) FROM %s WHERE %s = ?", ts, t, id),
		NearestAtOrBelow: fmt.Sprintf("SELECT %s, UNIX_TIMESTAMP(%s) FROM %s WHERE %s <= ? AND %s IS NOT NULL ORDER BY %s DESC LIMIT 1",
			id, ts, t, id, ts, id),
	}, nil
}
