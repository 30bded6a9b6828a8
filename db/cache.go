package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cameza/transfer_manager/model"
)

// statsCacheTTL is how long a cached stats payload stays usable. Player
// stats move slowly compared to the transfer feed, so a day is plenty.
const statsCacheTTL = 24 * time.Hour

// GetCachedStats returns the cached stats payload for the player, or nil
// when there is no entry or the entry has expired. Expired entries are
// left in place; PutCachedStats overwrites them on the next fetch.
func (db *postgresDB) GetCachedStats(ctx context.Context, apiTransferID string) (*model.PlayerStats, error) {
	const query = `SELECT stats, fetched_at, expires_at FROM player_stats_cache
		WHERE api_transfer_id=@apiID`

	var payload []byte
	var fetchedAt, expiresAt pgtype.Timestamptz
	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"apiID": apiTransferID})
	if err := row.Scan(&payload, &fetchedAt, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading stats cache for %s: %w", apiTransferID, err)
	}

	if db.clock.Now().UTC().After(expiresAt.Time) {
		return nil, nil
	}

	var stats model.PlayerStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil, fmt.Errorf("error parsing cached stats for %s: %w", apiTransferID, err)
	}
	stats.FetchedAt = fetchedAt.Time
	return &stats, nil
}

func (db *postgresDB) PutCachedStats(ctx context.Context, apiTransferID string, stats *model.PlayerStats) error {
	const query = `INSERT INTO player_stats_cache (api_transfer_id, stats, fetched_at, expires_at)
		VALUES (@apiID, @stats, @fetchedAt, @expiresAt)
		ON CONFLICT (api_transfer_id)
		DO UPDATE SET stats=@stats, fetched_at=@fetchedAt, expires_at=@expiresAt`

	payload, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("error encoding stats for cache: %w", err)
	}

	now := db.clock.Now().UTC()
	args := pgx.NamedArgs{
		"apiID":     apiTransferID,
		"stats":     payload,
		"fetchedAt": pgtype.Timestamptz{Time: now, InfinityModifier: pgtype.Finite, Valid: true},
		"expiresAt": pgtype.Timestamptz{Time: now.Add(statsCacheTTL), InfinityModifier: pgtype.Finite, Valid: true},
	}
	if _, err := db.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("error writing stats cache for %s: %w", apiTransferID, err)
	}
	return nil
}
