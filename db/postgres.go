package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/itbasis/go-clock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cameza/transfer_manager/model"
)

var (
	ErrTransferNotFound error = errors.New("transfer not found")
)

func New(ctx context.Context, connString string, clock clock.Clock) (DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &postgresDB{pool: pool, clock: clock}, nil
}

type postgresDB struct {
	pool  *pgxpool.Pool
	clock clock.Clock
}

const transferColumns = `id, api_transfer_id, player_name, from_club, to_club,
	league, transfer_type, fee_cents, transfer_date, transfer_window, season,
	position, age, nationality, photo_url, created, updated`

func (db *postgresDB) GetTransfer(ctx context.Context, id int64) (*model.Transfer, error) {
	const query = `SELECT ` + transferColumns + ` FROM transfers WHERE id=@id`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"id": id})
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("error scanning transfer %d: %w", id, err)
	}
	return t, nil
}

func (db *postgresDB) GetTransferByAPIID(ctx context.Context, apiTransferID string) (*model.Transfer, error) {
	const query = `SELECT ` + transferColumns + ` FROM transfers WHERE api_transfer_id=@apiID`

	row := db.pool.QueryRow(ctx, query, pgx.NamedArgs{"apiID": apiTransferID})
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("error scanning transfer %s: %w", apiTransferID, err)
	}
	return t, nil
}

func (db *postgresDB) SaveTransfer(ctx context.Context, t *model.Transfer) error {
	old, err := db.GetTransferByAPIID(ctx, t.APITransferID)
	if err != nil {
		if errors.Is(err, ErrTransferNotFound) {
			return db.insertTransfer(ctx, db.pool, t)
		}
		return fmt.Errorf("error reading transfer at start of SaveTransfer(): %w", err)
	}

	if !transferChanged(old, t) {
		t.ID = old.ID
		return nil
	}
	t.ID = old.ID
	return db.updateTransfer(ctx, db.pool, t)
}

func (db *postgresDB) ListTransfers(ctx context.Context, season string, limit int) ([]model.Transfer, error) {
	const query = `SELECT ` + transferColumns + ` FROM transfers
		WHERE season=@season ORDER BY transfer_date DESC, id DESC LIMIT @limit`

	rows, err := db.pool.Query(ctx, query, pgx.NamedArgs{"season": season, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("error listing transfers: %w", err)
	}

	results := make([]model.Transfer, 0, limit)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *t)
	}
	return results, rows.Err()
}

// pgxExecer covers both the pool and a transaction so the insert/update
// helpers serve SaveTransfer and SyncTx alike.
type pgxExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (db *postgresDB) insertTransfer(ctx context.Context, e pgxExecer, t *model.Transfer) error {
	const query = `INSERT INTO transfers (
		api_transfer_id,
		player_name,
		from_club,
		to_club,
		league,
		transfer_type,
		fee_cents,
		transfer_date,
		transfer_window,
		season,
		position,
		age,
		nationality,
		photo_url
	) VALUES (
		@apiID,
		@playerName,
		@fromClub,
		@toClub,
		@league,
		@transferType,
		@feeCents,
		@transferDate,
		@window,
		@season,
		@position,
		@age,
		@nationality,
		@photoURL
	) RETURNING id`

	args := namedArgsForTransfer(t, db.clock)
	if err := e.QueryRow(ctx, query, args).Scan(&t.ID); err != nil {
		return fmt.Errorf("error inserting transfer (%s): %w", t.APITransferID, err)
	}
	return nil
}

func (db *postgresDB) updateTransfer(ctx context.Context, e pgxExecer, t *model.Transfer) error {
	const query = `UPDATE transfers
		SET player_name=@playerName,
			from_club=@fromClub,
			to_club=@toClub,
			league=@league,
			transfer_type=@transferType,
			fee_cents=@feeCents,
			transfer_date=@transferDate,
			transfer_window=@window,
			season=@season,
			position=@position,
			age=@age,
			nationality=@nationality,
			photo_url=@photoURL,
			updated=@updated
		WHERE api_transfer_id=@apiID`

	args := namedArgsForTransfer(t, db.clock)
	if _, err := e.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("error updating transfer (%s): %w", t.APITransferID, err)
	}
	return nil
}

// transferChanged compares the fields a fresh feed row can legitimately
// change. Enrichment fields are only compared when the incoming record
// carries them: a plain feed row never wipes out enrichment data.
func transferChanged(old, new *model.Transfer) bool {
	if old.PlayerName != new.PlayerName ||
		old.FromClub != new.FromClub ||
		old.ToClub != new.ToClub ||
		old.League != new.League ||
		old.Type != new.Type ||
		old.FeeCents != new.FeeCents ||
		!old.TransferDate.Equal(new.TransferDate) ||
		old.Window != new.Window ||
		old.Season != new.Season {
		return true
	}
	if new.Position != model.POS_UNKNOWN && new.Position != old.Position {
		return true
	}
	if new.Age > 0 && new.Age != old.Age {
		return true
	}
	if new.Nationality != "" && new.Nationality != old.Nationality {
		return true
	}
	if new.PhotoURL != "" && new.PhotoURL != old.PhotoURL {
		return true
	}
	return false
}

func scanTransfer(row pgx.Row) (*model.Transfer, error) {
	var result model.Transfer

	var transferType, window, position string
	var fee sql.NullInt64
	var age sql.NullInt32
	var nationality, photoURL sql.NullString
	var transferDate pgtype.Date
	var created, updated pgtype.Timestamptz
	err := row.Scan(
		&result.ID,
		&result.APITransferID,
		&result.PlayerName,
		&result.FromClub,
		&result.ToClub,
		&result.League,
		&transferType,
		&fee,
		&transferDate,
		&window,
		&result.Season,
		&position,
		&age,
		&nationality,
		&photoURL,
		&created,
		&updated)

	if err != nil {
		return nil, err
	}

	result.Type = model.TransferType(transferType)
	result.Window = model.TransferWindow(window)
	result.Position = model.Position(position)
	result.FeeCents = fee.Int64
	result.Age = int(age.Int32)
	result.Nationality = valueOrEmpty(nationality)
	result.PhotoURL = valueOrEmpty(photoURL)
	result.TransferDate = transferDate.Time
	result.Created = created.Time
	result.Updated = updated.Time

	return &result, nil
}

func namedArgsForTransfer(t *model.Transfer, clock clock.Clock) pgx.NamedArgs {
	position := t.Position
	if position == "" {
		position = model.POS_UNKNOWN
	}
	window := t.Window
	if window == "" {
		window = model.WINDOW_NONE
	}
	return pgx.NamedArgs{
		"apiID":        t.APITransferID,
		"playerName":   t.PlayerName,
		"fromClub":     t.FromClub,
		"toClub":       t.ToClub,
		"league":       t.League,
		"transferType": string(t.Type),
		"feeCents": sql.NullInt64{
			Int64: t.FeeCents,
			Valid: t.FeeCents != 0,
		},
		"transferDate": pgtype.Date{
			Time:  t.TransferDate,
			Valid: !t.TransferDate.IsZero(),
		},
		"window":   string(window),
		"season":   t.Season,
		"position": string(position),
		"age": sql.NullInt32{
			Int32: int32(t.Age),
			Valid: t.Age > 0,
		},
		"nationality": sql.NullString{
			String: t.Nationality,
			Valid:  t.Nationality != "",
		},
		"photoURL": sql.NullString{
			String: t.PhotoURL,
			Valid:  t.PhotoURL != "",
		},
		"updated": pgtype.Timestamptz{
			Time:             clock.Now().UTC(),
			InfinityModifier: pgtype.Finite,
			Valid:            true,
		},
	}
}

func valueOrEmpty(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}
