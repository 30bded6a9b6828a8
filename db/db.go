package db

import (
	"context"
	"time"

	"github.com/cameza/transfer_manager/model"
)

type DB interface {
	GetTransfer(ctx context.Context, id int64) (*model.Transfer, error)
	GetTransferByAPIID(ctx context.Context, apiTransferID string) (*model.Transfer, error)
	// SaveTransfer inserts the transfer if its APITransferID is new, and
	// otherwise updates it, advancing `updated` only when a field genuinely
	// changed.
	SaveTransfer(ctx context.Context, t *model.Transfer) error
	ListTransfers(ctx context.Context, season string, limit int) ([]model.Transfer, error)

	// BeginSync opens the transaction one sync run performs its upserts in.
	BeginSync(ctx context.Context) (SyncTx, error)

	// GetUnderEnriched lists transfers for the season that are still missing
	// position, age or a valid nationality, in creation order, starting
	// strictly after afterID.
	GetUnderEnriched(ctx context.Context, season string, afterID int64, limit int) ([]model.Transfer, error)
	UpdateEnrichment(ctx context.Context, id int64, patch EnrichmentPatch) error

	AppendEnrichmentError(ctx context.Context, e *model.EnrichmentError) error
	GetUnresolvedEnrichmentErrors(ctx context.Context, maxRetries int) ([]model.EnrichmentError, error)
	ResolveEnrichmentError(ctx context.Context, id int64) error
	IncrementEnrichmentRetry(ctx context.Context, id int64) error

	RecordSyncLog(ctx context.Context, l *model.SyncLog) error
	ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error)

	// GetCachedStats returns nil with no error on a miss or an expired entry.
	GetCachedStats(ctx context.Context, apiTransferID string) (*model.PlayerStats, error)
	PutCachedStats(ctx context.Context, apiTransferID string, stats *model.PlayerStats) error

	GetManualSlot(ctx context.Context, token string) (time.Time, error)
	UpsertManualSlot(ctx context.Context, token string, at time.Time) error
}

// SyncTx is the handle a sync run does all of its record work through.
// Nothing is visible to other readers until Commit; Rollback after a
// catastrophic failure discards the whole run.
type SyncTx interface {
	FindByAPIID(ctx context.Context, apiTransferID string) (*model.Transfer, error)
	Insert(ctx context.Context, t *model.Transfer) error
	// Update writes incoming over existing and reports whether anything
	// actually changed; unchanged rows are left untouched.
	Update(ctx context.Context, existing, incoming *model.Transfer) (bool, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// EnrichmentPatch carries the secondary-data fields the enrichment pipeline
// writes back onto a transfer.
type EnrichmentPatch struct {
	Position    model.Position
	Age         int
	Nationality string
	PhotoURL    string
}
