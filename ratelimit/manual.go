package ratelimit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
)

const manualSlotWindow = 1 * time.Hour

// SlotStore is the durable record of when each token last triggered a
// manual sync. db.DB implements it; tests use an in-memory fake.
type SlotStore interface {
	GetManualSlot(ctx context.Context, token string) (time.Time, error)
	UpsertManualSlot(ctx context.Context, token string, at time.Time) error
}

// Slot is the outcome of a manual-sync admission request.
type Slot struct {
	Allowed       bool
	NextAllowedAt time.Time
	Reason        string
}

// ManualLimiter grants each token one manual sync per hour. The durable
// store is the source of truth; when it errors the limiter fails closed
// rather than let a broken store turn into unlimited syncs. Constructed
// without a store it degrades to a process-local map, which resets on
// restart and is only used when no database is available.
type ManualLimiter struct {
	clock clock.Clock
	store SlotStore

	mu    sync.Mutex
	local map[string]time.Time
}

func NewManualLimiter(store SlotStore, clock clock.Clock) *ManualLimiter {
	l := &ManualLimiter{
		clock: clock,
		store: store,
	}
	if store == nil {
		log.Printf("manual sync limiter running without a durable store, slots reset on restart")
		l.local = make(map[string]time.Time)
	}
	return l
}

// AcquireSlot admits the token if it has not triggered a sync in the last
// hour, and records the trigger time when it does.
func (l *ManualLimiter) AcquireSlot(ctx context.Context, token string) Slot {
	if token == "" {
		return Slot{Allowed: false, Reason: "missing token"}
	}

	now := l.clock.Now().UTC()

	if l.store == nil {
		return l.acquireLocal(token, now)
	}

	last, err := l.store.GetManualSlot(ctx, token)
	if err != nil {
		log.Printf("manual slot read failed for token, denying: %v", err)
		return Slot{Allowed: false, Reason: "slot store unavailable"}
	}

	if !last.IsZero() && now.Sub(last) < manualSlotWindow {
		return Slot{
			Allowed:       false,
			NextAllowedAt: last.Add(manualSlotWindow),
			Reason:        "manual sync already triggered within the last hour",
		}
	}

	if err := l.store.UpsertManualSlot(ctx, token, now); err != nil {
		log.Printf("manual slot write failed for token, denying: %v", err)
		return Slot{Allowed: false, Reason: "slot store unavailable"}
	}

	return Slot{Allowed: true}
}

func (l *ManualLimiter) acquireLocal(token string, now time.Time) Slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.local[token]; ok && now.Sub(last) < manualSlotWindow {
		return Slot{
			Allowed:       false,
			NextAllowedAt: last.Add(manualSlotWindow),
			Reason:        "manual sync already triggered within the last hour",
		}
	}

	l.local[token] = now
	return Slot{Allowed: true}
}
