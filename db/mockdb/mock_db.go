package mockdb

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cameza/transfer_manager/db"
	"github.com/cameza/transfer_manager/model"
)

type DB struct {
	mock.Mock
}

func (m *DB) GetTransfer(ctx context.Context, id int64) (*model.Transfer, error) {
	args := m.Called(ctx, id)

	var t *model.Transfer
	if args.Get(0) != nil {
		t = args.Get(0).(*model.Transfer)
	}
	return t, args.Error(1)
}

func (m *DB) GetTransferByAPIID(ctx context.Context, apiTransferID string) (*model.Transfer, error) {
	args := m.Called(ctx, apiTransferID)

	var t *model.Transfer
	if args.Get(0) != nil {
		t = args.Get(0).(*model.Transfer)
	}
	return t, args.Error(1)
}

func (m *DB) SaveTransfer(ctx context.Context, t *model.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *DB) ListTransfers(ctx context.Context, season string, limit int) ([]model.Transfer, error) {
	args := m.Called(ctx, season, limit)

	var r []model.Transfer
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Transfer)
	}
	return r, args.Error(1)
}

func (m *DB) BeginSync(ctx context.Context) (db.SyncTx, error) {
	args := m.Called(ctx)

	var tx db.SyncTx
	if args.Get(0) != nil {
		tx = args.Get(0).(db.SyncTx)
	}
	return tx, args.Error(1)
}

func (m *DB) GetUnderEnriched(ctx context.Context, season string, afterID int64, limit int) ([]model.Transfer, error) {
	args := m.Called(ctx, season, afterID, limit)

	var r []model.Transfer
	if args.Get(0) != nil {
		r = args.Get(0).([]model.Transfer)
	}
	return r, args.Error(1)
}

func (m *DB) UpdateEnrichment(ctx context.Context, id int64, patch db.EnrichmentPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *DB) AppendEnrichmentError(ctx context.Context, e *model.EnrichmentError) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *DB) GetUnresolvedEnrichmentErrors(ctx context.Context, maxRetries int) ([]model.EnrichmentError, error) {
	args := m.Called(ctx, maxRetries)

	var r []model.EnrichmentError
	if args.Get(0) != nil {
		r = args.Get(0).([]model.EnrichmentError)
	}
	return r, args.Error(1)
}

func (m *DB) ResolveEnrichmentError(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) IncrementEnrichmentRetry(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DB) RecordSyncLog(ctx context.Context, l *model.SyncLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *DB) ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	args := m.Called(ctx, limit)

	var r []model.SyncLog
	if args.Get(0) != nil {
		r = args.Get(0).([]model.SyncLog)
	}
	return r, args.Error(1)
}

func (m *DB) GetCachedStats(ctx context.Context, apiTransferID string) (*model.PlayerStats, error) {
	args := m.Called(ctx, apiTransferID)

	var s *model.PlayerStats
	if args.Get(0) != nil {
		s = args.Get(0).(*model.PlayerStats)
	}
	return s, args.Error(1)
}

func (m *DB) PutCachedStats(ctx context.Context, apiTransferID string, stats *model.PlayerStats) error {
	args := m.Called(ctx, apiTransferID, stats)
	return args.Error(0)
}

func (m *DB) GetManualSlot(ctx context.Context, token string) (time.Time, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *DB) UpsertManualSlot(ctx context.Context, token string, at time.Time) error {
	args := m.Called(ctx, token, at)
	return args.Error(0)
}

// SyncTx is a mock of the db.SyncTx interface.
type SyncTx struct {
	mock.Mock
}

func (m *SyncTx) FindByAPIID(ctx context.Context, apiTransferID string) (*model.Transfer, error) {
	args := m.Called(ctx, apiTransferID)

	var t *model.Transfer
	if args.Get(0) != nil {
		t = args.Get(0).(*model.Transfer)
	}
	return t, args.Error(1)
}

func (m *SyncTx) Insert(ctx context.Context, t *model.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *SyncTx) Update(ctx context.Context, existing, incoming *model.Transfer) (bool, error) {
	args := m.Called(ctx, existing, incoming)
	return args.Bool(0), args.Error(1)
}

func (m *SyncTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *SyncTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
