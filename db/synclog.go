package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cameza/transfer_manager/model"
)

func (db *postgresDB) RecordSyncLog(ctx context.Context, l *model.SyncLog) error {
	const query = `INSERT INTO sync_logs (
		trigger_source,
		strategy,
		total_processed,
		successful,
		failed,
		duration_ms,
		groups_processed,
		api_calls_used,
		errors,
		success
	) VALUES (
		@trigger,
		@strategy,
		@totalProcessed,
		@successful,
		@failed,
		@durationMs,
		@groups,
		@apiCallsUsed,
		@errors,
		@success
	) RETURNING id, created`

	args := pgx.NamedArgs{
		"trigger":        string(l.Trigger),
		"strategy":       string(l.Result.Strategy),
		"totalProcessed": l.Result.TotalProcessed,
		"successful":     l.Result.Successful,
		"failed":         l.Result.Failed,
		"durationMs":     l.Result.DurationMs,
		"groups":         l.Result.GroupsProcessed,
		"apiCallsUsed":   l.Result.APICallsUsed,
		"errors":         l.Result.Errors,
		"success":        l.Result.Success(),
	}

	var created pgtype.Timestamptz
	if err := db.pool.QueryRow(ctx, query, args).Scan(&l.ID, &created); err != nil {
		return fmt.Errorf("error recording sync log: %w", err)
	}
	l.CreatedAt = created.Time
	l.Success = l.Result.Success()
	return nil
}

func (db *postgresDB) ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	const query = `SELECT id, trigger_source, strategy, total_processed, successful,
			failed, duration_ms, groups_processed, api_calls_used, errors, success, created
		FROM sync_logs ORDER BY created DESC, id DESC LIMIT @limit`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("error listing sync logs: %w", err)
	}

	results := make([]model.SyncLog, 0, limit)
	for rows.Next() {
		var l model.SyncLog
		var trigger, strategy string
		var created pgtype.Timestamptz
		err := rows.Scan(
			&l.ID,
			&trigger,
			&strategy,
			&l.Result.TotalProcessed,
			&l.Result.Successful,
			&l.Result.Failed,
			&l.Result.DurationMs,
			&l.Result.GroupsProcessed,
			&l.Result.APICallsUsed,
			&l.Result.Errors,
			&l.Success,
			&created)
		if err != nil {
			return nil, fmt.Errorf("error scanning sync log: %w", err)
		}
		l.Trigger = model.Trigger(trigger)
		l.Result.Strategy = model.SyncStrategy(strategy)
		l.CreatedAt = created.Time
		results = append(results, l)
	}
	return results, rows.Err()
}
