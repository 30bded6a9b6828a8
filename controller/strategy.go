package controller

import (
	"time"

	"github.com/cameza/transfer_manager/model"
)

const (
	// A run counts as deadline day from a full day before the cutoff
	// until two hours after it. The window looks much further backward
	// than forward: the interesting churn happens in the run-up, while
	// anything after the cutoff is just late paperwork.
	deadlineLookback  = 24 * time.Hour
	deadlineLookahead = 2 * time.Hour
)

// DefaultDeadlines are the registration cutoffs of the major European
// windows, as absolute UTC instants.
var DefaultDeadlines = []time.Time{
	time.Date(2025, time.February, 3, 23, 0, 0, 0, time.UTC),
	time.Date(2025, time.September, 1, 18, 0, 0, 0, time.UTC),
	time.Date(2026, time.February, 2, 23, 0, 0, 0, time.UTC),
	time.Date(2026, time.September, 1, 18, 0, 0, 0, time.UTC),
}

// IsDeadlineDay reports whether now falls inside any deadline's window.
// Both boundary instants are inclusive.
func IsDeadlineDay(now time.Time, deadlines []time.Time) bool {
	for _, d := range deadlines {
		from := d.Add(-deadlineLookback)
		to := d.Add(deadlineLookahead)
		if !now.Before(from) && !now.After(to) {
			return true
		}
	}
	return false
}

// ShouldUseEmergencyCadence reports whether the scheduler should tighten
// its cadence beyond the normal interval.
func ShouldUseEmergencyCadence(now time.Time, override bool, deadlines []time.Time) bool {
	return override || IsDeadlineDay(now, deadlines)
}

// SelectStrategy picks the strategy for a run at the given instant.
// Deadline day wins over the emergency override; a caller-supplied
// strategy (a manual trigger naming one explicitly) bypasses this
// function entirely.
func SelectStrategy(now time.Time, override bool, deadlines []time.Time) model.SyncStrategy {
	if IsDeadlineDay(now, deadlines) {
		return model.STRATEGY_DEADLINE_DAY
	}
	if override {
		return model.STRATEGY_EMERGENCY
	}
	return model.STRATEGY_NORMAL
}

// NextSyncInterval is how long the periodic loop waits before the next
// run under the given strategy.
func NextSyncInterval(s model.SyncStrategy) time.Duration {
	switch s {
	case model.STRATEGY_DEADLINE_DAY:
		return 30 * time.Minute
	case model.STRATEGY_EMERGENCY:
		return 120 * time.Minute
	default:
		return 360 * time.Minute
	}
}

func (c *controller) DecideStrategy() (model.SyncStrategy, StrategyContext) {
	now := c.clock.Now().UTC()
	sctx := StrategyContext{
		DeadlineDay:       IsDeadlineDay(now, c.cfg.Deadlines),
		EmergencyOverride: c.cfg.EmergencyOverride,
		EmergencyMode:     c.limiter.Status().EmergencyMode,
	}
	return SelectStrategy(now, c.cfg.EmergencyOverride, c.cfg.Deadlines), sctx
}
