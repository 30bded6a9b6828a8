package controller

import (
	"context"
	"sync"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/cameza/transfer_manager/db"
	"github.com/cameza/transfer_manager/model"
	"github.com/cameza/transfer_manager/platforms/statsapi"
	"github.com/cameza/transfer_manager/platforms/transfermarket"
	"github.com/cameza/transfer_manager/ratelimit"
)

// C encapsulates business logic without worrying about any web layers
type C interface {
	// RunSync drives one sync run under the given strategy. It always
	// returns a result; callers check Failed, not an error, for the
	// outcome of the run.
	RunSync(ctx context.Context, strategy model.SyncStrategy, season string, trigger model.Trigger) *model.SyncResult
	// DecideStrategy computes the strategy the current wall-clock time
	// calls for, plus the context that went into the decision.
	DecideStrategy() (model.SyncStrategy, StrategyContext)
	RunPeriodicSyncs(shutdown chan bool, wg *sync.WaitGroup)

	// EnrichTransfers runs one enrichment batch for the season, resuming
	// strictly after resumeAfterID when it is non-zero.
	EnrichTransfers(ctx context.Context, season string, resumeAfterID int64) (*model.EnrichmentProgress, error)
	RetryFailedEnrichments(ctx context.Context, maxRetries int) (*model.EnrichmentProgress, error)

	AcquireManualSlot(ctx context.Context, token string) ratelimit.Slot
	RateLimitStatus() ratelimit.Status

	ListTransfers(ctx context.Context, season string, limit int) ([]model.Transfer, error)
	ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error)
}

// StrategyContext records why DecideStrategy picked what it picked.
type StrategyContext struct {
	DeadlineDay       bool `json:"deadlineDay"`
	EmergencyOverride bool `json:"emergencyOverride"`
	EmergencyMode     bool `json:"emergencyMode"`
}

// Config carries the tunables the controller needs beyond its
// collaborators. The zero value of the delays means "no throttling",
// which tests rely on; production wiring uses DefaultConfig.
type Config struct {
	Deadlines         []time.Time
	EmergencyOverride bool
	StatsCacheEnabled bool
	RecordDelay       time.Duration
	BatchDelay        time.Duration
}

func DefaultConfig() Config {
	return Config{
		Deadlines:         DefaultDeadlines,
		StatsCacheEnabled: true,
		RecordDelay:       100 * time.Millisecond,
		BatchDelay:        1 * time.Second,
	}
}

type controller struct {
	clock   clock.Clock
	db      db.DB
	market  transfermarket.Client
	stats   statsapi.Client
	limiter *ratelimit.Limiter
	manual  *ratelimit.ManualLimiter
	cfg     Config
	retry   retryPolicy
}

func New(clock clock.Clock, database db.DB, market transfermarket.Client, stats statsapi.Client,
	limiter *ratelimit.Limiter, manual *ratelimit.ManualLimiter, cfg Config) (C, error) {
	c := &controller{
		clock:   clock,
		db:      database,
		market:  market,
		stats:   stats,
		limiter: limiter,
		manual:  manual,
		cfg:     cfg,
		retry:   defaultRetryPolicy,
	}
	return c, nil
}

func (c *controller) AcquireManualSlot(ctx context.Context, token string) ratelimit.Slot {
	return c.manual.AcquireSlot(ctx, token)
}

func (c *controller) RateLimitStatus() ratelimit.Status {
	return c.limiter.Status()
}

func (c *controller) ListTransfers(ctx context.Context, season string, limit int) ([]model.Transfer, error) {
	return c.db.ListTransfers(ctx, season, limit)
}

func (c *controller) ListSyncLogs(ctx context.Context, limit int) ([]model.SyncLog, error) {
	return c.db.ListSyncLogs(ctx, limit)
}

// sleep blocks for d on the injected clock, returning early if the
// context is cancelled. A zero duration returns immediately.
func (c *controller) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := c.clock.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
