package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cameza/transfer_manager/model"
)

func (db *postgresDB) BeginSync(ctx context.Context) (SyncTx, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("error starting sync transaction: %w", err)
	}
	return &syncTx{tx: tx, db: db}, nil
}

// syncTx runs one sync run's finds and upserts on a single pgx
// transaction, so a rollback after a catastrophic failure really does
// discard every row the run wrote. Each write goes through a savepoint:
// without one, the first SQL error aborts the whole transaction and
// Postgres rejects every later statement with SQLSTATE 25P02, turning
// one bad record into a failed run.
type syncTx struct {
	tx pgx.Tx
	db *postgresDB
}

// withSavepoint runs fn inside a nested transaction, which pgx issues as
// SAVEPOINT / RELEASE / ROLLBACK TO. A failure is rolled back to the
// savepoint and the outer transaction stays usable.
func (s *syncTx) withSavepoint(ctx context.Context, fn func(pgx.Tx) error) error {
	sp, err := s.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error opening savepoint: %w", err)
	}
	if err := fn(sp); err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("error releasing savepoint: %w", err)
	}
	return nil
}

func (s *syncTx) FindByAPIID(ctx context.Context, apiTransferID string) (*model.Transfer, error) {
	const query = `SELECT ` + transferColumns + ` FROM transfers WHERE api_transfer_id=@apiID`

	row := s.tx.QueryRow(ctx, query, pgx.NamedArgs{"apiID": apiTransferID})
	t, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("error scanning transfer %s: %w", apiTransferID, err)
	}
	return t, nil
}

func (s *syncTx) Insert(ctx context.Context, t *model.Transfer) error {
	return s.withSavepoint(ctx, func(sp pgx.Tx) error {
		return s.db.insertTransfer(ctx, sp, t)
	})
}

func (s *syncTx) Update(ctx context.Context, existing, incoming *model.Transfer) (bool, error) {
	if !transferChanged(existing, incoming) {
		incoming.ID = existing.ID
		return false, nil
	}
	incoming.ID = existing.ID
	err := s.withSavepoint(ctx, func(sp pgx.Tx) error {
		return s.db.updateTransfer(ctx, sp, incoming)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *syncTx) Commit(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("error commiting sync transaction: %w", err)
	}
	return nil
}

func (s *syncTx) Rollback(ctx context.Context) error {
	return s.tx.Rollback(ctx)
}
