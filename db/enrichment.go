package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/cameza/transfer_manager/model"
)

// GetUnderEnriched finds transfers still missing position, age or a valid
// nationality. Ids are assigned in insertion order, so ordering and the
// resume cursor both run on id.
func (db *postgresDB) GetUnderEnriched(ctx context.Context, season string, afterID int64, limit int) ([]model.Transfer, error) {
	const query = `SELECT ` + transferColumns + ` FROM transfers
		WHERE season=@season
			AND id > @afterID
			AND (position=@unknownPos OR age IS NULL OR nationality IS NULL
				OR nationality=@unknownNat OR length(nationality) <> 3)
		ORDER BY id
		LIMIT @limit`

	args := pgx.NamedArgs{
		"season":     season,
		"afterID":    afterID,
		"unknownPos": string(model.POS_UNKNOWN),
		"unknownNat": model.NATIONALITY_UNKNOWN,
		"limit":      limit,
	}
	rows, err := db.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("error querying under-enriched transfers: %w", err)
	}

	results := make([]model.Transfer, 0, 64)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *t)
	}
	return results, rows.Err()
}

func (db *postgresDB) UpdateEnrichment(ctx context.Context, id int64, patch EnrichmentPatch) error {
	const query = `UPDATE transfers
		SET position=@position,
			age=@age,
			nationality=@nationality,
			photo_url=@photoURL,
			updated=@updated
		WHERE id=@id`

	args := pgx.NamedArgs{
		"id":       id,
		"position": string(patch.Position),
		"age": sql.NullInt32{
			Int32: int32(patch.Age),
			Valid: patch.Age > 0,
		},
		"nationality": sql.NullString{
			String: patch.Nationality,
			Valid:  patch.Nationality != "",
		},
		"photoURL": sql.NullString{
			String: patch.PhotoURL,
			Valid:  patch.PhotoURL != "",
		},
		"updated": pgtype.Timestamptz{
			Time:             db.clock.Now().UTC(),
			InfinityModifier: pgtype.Finite,
			Valid:            true,
		},
	}
	if _, err := db.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("error updating enrichment for transfer %d: %w", id, err)
	}
	return nil
}

func (db *postgresDB) AppendEnrichmentError(ctx context.Context, e *model.EnrichmentError) error {
	const query = `INSERT INTO enrichment_errors (
		transfer_id,
		api_transfer_id,
		message,
		retry_count
	) VALUES (
		@transferID,
		@apiID,
		@message,
		@retryCount
	) RETURNING id`

	args := pgx.NamedArgs{
		"transferID": e.TransferID,
		"apiID":      e.APITransferID,
		"message":    e.Message,
		"retryCount": e.RetryCount,
	}
	if err := db.pool.QueryRow(ctx, query, args).Scan(&e.ID); err != nil {
		return fmt.Errorf("error appending enrichment error for transfer %d: %w", e.TransferID, err)
	}
	return nil
}

func (db *postgresDB) GetUnresolvedEnrichmentErrors(ctx context.Context, maxRetries int) ([]model.EnrichmentError, error) {
	const query = `SELECT id, transfer_id, api_transfer_id, message, created, retry_count, resolved
		FROM enrichment_errors
		WHERE resolved = FALSE AND retry_count < @maxRetries
		ORDER BY created, id`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"maxRetries": maxRetries})
	if err != nil {
		return nil, fmt.Errorf("error querying enrichment errors: %w", err)
	}

	results := make([]model.EnrichmentError, 0, 16)
	for rows.Next() {
		var e model.EnrichmentError
		var created pgtype.Timestamptz
		if err := rows.Scan(&e.ID, &e.TransferID, &e.APITransferID, &e.Message, &created, &e.RetryCount, &e.Resolved); err != nil {
			return nil, fmt.Errorf("error scanning enrichment error: %w", err)
		}
		e.Timestamp = created.Time
		results = append(results, e)
	}
	return results, rows.Err()
}

func (db *postgresDB) ResolveEnrichmentError(ctx context.Context, id int64) error {
	const query = `UPDATE enrichment_errors SET resolved = TRUE WHERE id=@id`

	if _, err := db.pool.Exec(ctx, query, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("error resolving enrichment error %d: %w", id, err)
	}
	return nil
}

func (db *postgresDB) IncrementEnrichmentRetry(ctx context.Context, id int64) error {
	const query = `UPDATE enrichment_errors SET retry_count = retry_count + 1 WHERE id=@id`

	if _, err := db.pool.Exec(ctx, query, pgx.NamedArgs{"id": id}); err != nil {
		return fmt.Errorf("error incrementing retry count for enrichment error %d: %w", id, err)
	}
	return nil
}
