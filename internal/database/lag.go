package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbsmedya/idseek/internal/types"
)

// ErrReplicaLagging is returned by CheckReplicaLag when the replica is too far
// behind and fail_on_lag is set.
var ErrReplicaLagging = errors.New("replica lag exceeds threshold")

// ReplicationStatus represents the current state of MySQL replication.
type ReplicationStatus struct {
	SecondsBehind sql.NullInt64 // NULL if replica is stopped
	IORunning     string        // "Yes", "No", "Connecting"
	SQLRunning    string        // "Yes", "No"
	LastError     string
}

// Running reports whether both replication threads are running.
func (s *ReplicationStatus) Running() bool {
	return s.IORunning == "Yes" && s.SQLRunning == "Yes"
}

// GetReplicationStatus queries db for its replication status. It tries
// SHOW REPLICA STATUS (MySQL 8.0.22+) and falls back to SHOW SLAVE STATUS.
func GetReplicationStatus(ctx context.Context, db *sql.DB) (*ReplicationStatus, error) {
	rows, err := db.QueryContext(ctx, "SHOW REPLICA STATUS")
	if err != nil {
		rows, err = db.QueryContext(ctx, "SHOW SLAVE STATUS")
		if err != nil {
			return nil, fmt.Errorf("failed to query replication status: %w", err)
		}
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.New("replication not configured on replica server")
	}

	// Column sets differ between versions, so locate fields by name.
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	values := make([]interface{}, len(columns))
	ptrs := make([]interface{}, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan replication status: %w", err)
	}

	result := make(map[string]interface{}, len(columns))
	for i, col := range columns {
		result[col] = values[i]
	}

	status := &ReplicationStatus{
		IORunning:  firstString(result, "Replica_IO_Running", "Slave_IO_Running"),
		SQLRunning: firstString(result, "Replica_SQL_Running", "Slave_SQL_Running"),
		LastError:  firstString(result, "Last_Error"),
	}
	for _, col := range []string{"Seconds_Behind_Source", "Seconds_Behind_Master"} {
		if v, ok := result[col]; ok && v != nil {
			if n, err := types.ToInt64(v); err == nil {
				status.SecondsBehind = sql.NullInt64{Int64: n, Valid: true}
			}
			break
		}
	}
	return status, nil
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			return v
		case []byte:
			return string(v)
		}
	}
	return ""
}

// CheckReplicaLag compares the replica's lag with replica.lag_threshold before
// searches are run against it. A lagging replica only logs a warning unless
// replica.fail_on_lag is set. It is a no-op without a replica connection.
func (m *Manager) CheckReplicaLag(ctx context.Context) error {
	if m.Replica == nil {
		return nil
	}
	threshold := m.config.Replica.LagThreshold
	if threshold <= 0 {
		threshold = 10
	}

	status, err := GetReplicationStatus(ctx, m.Replica)
	if err != nil {
		return m.lagProblem(fmt.Errorf("replica status: %w", err))
	}
	if !status.Running() {
		if status.LastError != "" {
			m.logger.Errorf("Replication error: %s", status.LastError)
		}
		return m.lagProblem(fmt.Errorf("replication is not running (IO: %s, SQL: %s)", status.IORunning, status.SQLRunning))
	}
	if !status.SecondsBehind.Valid {
		return m.lagProblem(errors.New("replication lag is NULL"))
	}

	lag := status.SecondsBehind.Int64
	if lag > int64(threshold) {
		return m.lagProblem(fmt.Errorf("%w: %d seconds (threshold: %d seconds)", ErrReplicaLagging, lag, threshold))
	}

	m.logger.Debugf("Replication lag OK: %d seconds (threshold: %d seconds)", lag, threshold)
	return nil
}

func (m *Manager) lagProblem(err error) error {
	if m.config.Replica.FailOnLag {
		return err
	}
	m.logger.Warnf("Searching a replica that may be behind: %v", err)
	return nil
}
