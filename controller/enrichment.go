package controller

import (
	"context"
	"fmt"
	"log"

	"github.com/cameza/transfer_manager/db"
	"github.com/cameza/transfer_manager/model"
	"github.com/cameza/transfer_manager/ratelimit"
)

const (
	enrichmentQueryLimit = 1000
	enrichmentBatchSize  = 50
)

// EnrichTransfers runs one enrichment batch: it finds transfers still
// missing position, age or nationality and fills them in from the stats
// provider. The batch never aborts on a single record; every failure is
// logged durably so RetryFailedEnrichments can come back to it. The
// inter-record and inter-batch delays keep us polite toward the stats
// API without a second token bucket.
func (c *controller) EnrichTransfers(ctx context.Context, season string, resumeAfterID int64) (*model.EnrichmentProgress, error) {
	records, err := c.db.GetUnderEnriched(ctx, season, resumeAfterID, enrichmentQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("error loading under-enriched transfers: %w", err)
	}

	progress := &model.EnrichmentProgress{
		Total:     len(records),
		StartedAt: c.clock.Now().UTC(),
		Errors:    []model.EnrichmentError{},
	}
	log.Printf("enrichment starting: season=%s records=%d resumeAfter=%d", season, len(records), resumeAfterID)

	for i := range records {
		if i > 0 {
			delay := c.cfg.RecordDelay
			if i%enrichmentBatchSize == 0 {
				delay = c.cfg.BatchDelay
			}
			if err := c.sleep(ctx, delay); err != nil {
				return progress, err
			}
		}

		t := &records[i]
		progress.Processed++
		progress.LastProcessedID = t.ID

		// Records that picked up their data some other way don't need a
		// lookup. This also makes resumed runs cheap: anything a prior
		// run already enriched short-circuits here.
		if t.FullyEnriched() {
			progress.Succeeded++
			continue
		}

		if err := c.enrichOne(ctx, t); err != nil {
			progress.Failed++
			e := model.EnrichmentError{
				TransferID:    t.ID,
				APITransferID: t.APITransferID,
				Message:       err.Error(),
				Timestamp:     c.clock.Now().UTC(),
			}
			if dbErr := c.db.AppendEnrichmentError(ctx, &e); dbErr != nil {
				log.Printf("error persisting enrichment error for transfer %d: %v", t.ID, dbErr)
			}
			progress.Errors = append(progress.Errors, e)
			continue
		}
		progress.Succeeded++
	}

	log.Printf("enrichment finished: processed=%d succeeded=%d failed=%d lastID=%d",
		progress.Processed, progress.Succeeded, progress.Failed, progress.LastProcessedID)
	return progress, nil
}

// enrichOne fetches secondary data for one transfer and writes it back.
// Absent fields get defaults: unknown position, zero age, UNK nationality.
func (c *controller) enrichOne(ctx context.Context, t *model.Transfer) error {
	stats, err := c.lookupStats(ctx, t.APITransferID)
	if err != nil {
		return err
	}

	patch := db.EnrichmentPatch{
		Position:    model.MostFrequentPosition(stats.PositionLabels),
		Age:         stats.Age,
		Nationality: model.ParseNationality(stats.Nationality),
		PhotoURL:    stats.PhotoURL,
	}
	if err := c.db.UpdateEnrichment(ctx, t.ID, patch); err != nil {
		return err
	}

	t.Position = patch.Position
	t.Age = patch.Age
	t.Nationality = patch.Nationality
	t.PhotoURL = patch.PhotoURL
	return nil
}

// lookupStats consults the cache before the network. A cache hit is
// recorded for visibility but costs nothing against the quota; a fetch
// is charged like any other API call.
func (c *controller) lookupStats(ctx context.Context, apiTransferID string) (*model.PlayerStats, error) {
	if c.cfg.StatsCacheEnabled {
		cached, err := c.db.GetCachedStats(ctx, apiTransferID)
		if err != nil {
			log.Printf("stats cache read failed for %s, falling through to fetch: %v", apiTransferID, err)
		} else if cached != nil {
			c.limiter.RecordCacheHit()
			return cached, nil
		}
	}

	if a := c.limiter.CanAdmit(); !a.Allowed {
		return nil, fmt.Errorf("stats lookup for %s: %w", apiTransferID, ratelimit.ErrQuotaExhausted)
	}

	stats, err := c.stats.GetPlayerStats(ctx, apiTransferID)
	if err != nil {
		return nil, err
	}
	c.limiter.RecordCall()

	if c.cfg.StatsCacheEnabled {
		if err := c.db.PutCachedStats(ctx, apiTransferID, stats); err != nil {
			log.Printf("stats cache write failed for %s: %v", apiTransferID, err)
		}
	}
	return stats, nil
}

// RetryFailedEnrichments replays durable enrichment errors whose retry
// count is still under maxRetries, waiting out an exponential backoff
// before each attempt. Successes are marked resolved; repeated failures
// bump the retry counter for the next pass.
func (c *controller) RetryFailedEnrichments(ctx context.Context, maxRetries int) (*model.EnrichmentProgress, error) {
	if maxRetries <= 0 {
		maxRetries = c.retry.maxAttempts
	}
	pending, err := c.db.GetUnresolvedEnrichmentErrors(ctx, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("error loading enrichment errors: %w", err)
	}

	progress := &model.EnrichmentProgress{
		Total:     len(pending),
		StartedAt: c.clock.Now().UTC(),
		Errors:    []model.EnrichmentError{},
	}
	log.Printf("enrichment retry starting: pending=%d maxRetries=%d", len(pending), maxRetries)

	for i := range pending {
		e := &pending[i]

		if err := c.sleep(ctx, c.retry.backoffFor(e.RetryCount)); err != nil {
			return progress, err
		}

		progress.Processed++
		if err := c.retryOne(ctx, e); err != nil {
			progress.Failed++
			if dbErr := c.db.IncrementEnrichmentRetry(ctx, e.ID); dbErr != nil {
				log.Printf("error incrementing retry count for enrichment error %d: %v", e.ID, dbErr)
			}
			e.RetryCount++
			e.Message = err.Error()
			progress.Errors = append(progress.Errors, *e)
			continue
		}

		progress.Succeeded++
		if err := c.db.ResolveEnrichmentError(ctx, e.ID); err != nil {
			log.Printf("error resolving enrichment error %d: %v", e.ID, err)
		}
	}

	return progress, nil
}

func (c *controller) retryOne(ctx context.Context, e *model.EnrichmentError) error {
	t, err := c.db.GetTransfer(ctx, e.TransferID)
	if err != nil {
		return fmt.Errorf("error loading transfer %d for retry: %w", e.TransferID, err)
	}
	if t.FullyEnriched() {
		return nil
	}
	return c.enrichOne(ctx, t)
}
