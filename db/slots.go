package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// GetManualSlot returns when the token last triggered a manual sync, or
// the zero time when it never has.
func (db *postgresDB) GetManualSlot(ctx context.Context, token string) (time.Time, error) {
	const query = `SELECT last_triggered_at FROM manual_sync_slots WHERE token=@token`

	var last pgtype.Timestamptz
	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"token": token})
	if err := row.Scan(&last); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("error reading manual slot: %w", err)
	}
	return last.Time, nil
}

func (db *postgresDB) UpsertManualSlot(ctx context.Context, token string, at time.Time) error {
	const query = `INSERT INTO manual_sync_slots (token, last_triggered_at)
		VALUES (@token, @at)
		ON CONFLICT (token) DO UPDATE SET last_triggered_at=@at`

	args := pgx.NamedArgs{
		"token": token,
		"at":    pgtype.Timestamptz{Time: at, InfinityModifier: pgtype.Finite, Valid: true},
	}
	if _, err := db.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("error upserting manual slot: %w", err)
	}
	return nil
}
