package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cameza/transfer_manager/db"
	"github.com/cameza/transfer_manager/model"
	"github.com/cameza/transfer_manager/platforms/transfermarket"
)

// RunSync executes one sync run. Failure isolation is layered: a failed
// group records an error and the run moves on, a failed record records an
// error and the group moves on. Only a failure of the transaction itself
// is unrecoverable, and then the whole run's work is discarded and every
// processed record is reclassified as failed.
func (c *controller) RunSync(ctx context.Context, strategy model.SyncStrategy, season string, trigger model.Trigger) *model.SyncResult {
	start := c.clock.Now()
	log.Printf("sync starting: strategy=%s season=%s trigger=%s", strategy, season, trigger)

	result := &model.SyncResult{
		Strategy:        strategy,
		GroupsProcessed: []string{},
		Errors:          []string{},
	}

	groups := model.GroupsForStrategy(strategy)

	tx, err := c.db.BeginSync(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("begin sync transaction: %v", err))
		c.finishSync(ctx, result, start, trigger)
		return result
	}

	for _, g := range groups {
		if ctx.Err() != nil {
			break
		}

		transfers, err := c.market.FetchTransfers(ctx, transfermarket.FetchParams{
			Season:  season,
			GroupID: g.ID,
		})
		if err != nil {
			// Transport and admission failures are per-group: siblings
			// still run.
			result.Errors = append(result.Errors, fmt.Sprintf("group %s: %v", g.ID, err))
			continue
		}

		result.GroupsProcessed = append(result.GroupsProcessed, g.ID)
		for i := range transfers {
			result.TotalProcessed++
			if err := upsertTransfer(ctx, tx, &transfers[i]); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("record %s: %v", transfers[i].APITransferID, err))
				continue
			}
			result.Successful++
		}
	}

	unrecoverable := ctx.Err()
	if unrecoverable == nil {
		unrecoverable = tx.Commit(ctx)
	}
	if unrecoverable != nil {
		if err := tx.Rollback(ctx); err != nil {
			log.Printf("sync rollback failed: %v", err)
		}
		// The transaction is gone, so none of the "successful" writes
		// survived. Reclassify the entire run.
		result.Errors = append(result.Errors, fmt.Sprintf("sync run rolled back: %v", unrecoverable))
		result.Failed = result.TotalProcessed
		result.Successful = 0
	}

	c.finishSync(ctx, result, start, trigger)
	return result
}

// upsertTransfer reconciles one incoming record by its natural id.
func upsertTransfer(ctx context.Context, tx db.SyncTx, t *model.Transfer) error {
	existing, err := tx.FindByAPIID(ctx, t.APITransferID)
	if err == nil {
		_, err = tx.Update(ctx, existing, t)
		return err
	}
	if errors.Is(err, db.ErrTransferNotFound) {
		return tx.Insert(ctx, t)
	}
	return err
}

func (c *controller) finishSync(ctx context.Context, result *model.SyncResult, start time.Time, trigger model.Trigger) {
	result.DurationMs = c.clock.Now().Sub(start).Milliseconds()
	result.APICallsUsed = c.limiter.Status().Used

	syncLog := &model.SyncLog{
		Trigger: trigger,
		Result:  *result,
	}
	// A cancelled run is the one most worth a log entry, so the write
	// must not inherit the run's cancellation.
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := c.db.RecordSyncLog(logCtx, syncLog); err != nil {
		log.Printf("error recording sync log: %v", err)
	}

	log.Printf("sync finished: strategy=%s processed=%d successful=%d failed=%d groups=%d took=%dms",
		result.Strategy, result.TotalProcessed, result.Successful, result.Failed,
		len(result.GroupsProcessed), result.DurationMs)
}

// RunPeriodicSyncs keeps cron-triggered syncs going until shutdown. The
// wait is re-derived from the strategy every wake, so the loop tightens
// to the 30 minute cadence as a deadline approaches and relaxes afterwards.
func (c *controller) RunPeriodicSyncs(shutdown chan bool, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		strategy, _ := c.DecideStrategy()
		timer := c.clock.Timer(NextSyncInterval(strategy))

		select {
		case <-shutdown:
			timer.Stop()
			return
		case <-timer.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

			strategy, _ := c.DecideStrategy()
			season := model.SeasonForDate(c.clock.Now().UTC())
			result := c.RunSync(ctx, strategy, season, model.TRIGGER_CRON)
			if !result.Success() {
				log.Printf("periodic sync had %d failures: %v", result.Failed, result.Errors)
			}
			cancel()
		}
	}
}
