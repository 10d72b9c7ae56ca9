package db

import "context"

// CreateSyncCycle records the result of one sync cycle
func (db *DB) CreateSyncCycle(ctx context.Context, c *SyncCycle) error {
	query := `
		INSERT INTO sync_cycles (id, account, correlation_id, status,
			auth_failures, io_failures, parse_failures, iterations, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		c.ID,
		c.Account,
		c.CorrelationID,
		c.Status,
		c.AuthFailures,
		c.IOFailures,
		c.ParseFailures,
		c.Iterations,
		c.StartedAt,
		c.FinishedAt,
	)
	if IsDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// ListSyncCycles returns the most recent cycles for an account, newest first
func (db *DB) ListSyncCycles(ctx context.Context, account string, limit int) ([]SyncCycle, error) {
	query := `
		SELECT id, account, correlation_id, status, auth_failures, io_failures,
			parse_failures, iterations, started_at, finished_at
		FROM sync_cycles
		WHERE account = ?
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, account, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cycles []SyncCycle
	for rows.Next() {
		var c SyncCycle
		err := rows.Scan(
			&c.ID,
			&c.Account,
			&c.CorrelationID,
			&c.Status,
			&c.AuthFailures,
			&c.IOFailures,
			&c.ParseFailures,
			&c.Iterations,
			&c.StartedAt,
			&c.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}

	return cycles, rows.Err()
}
