package ratelimit

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
)

// ErrQuotaExhausted is what API clients wrap when the limiter denies
// admission. Callers that treat quota denial differently from transport
// failures match it with errors.Is.
var ErrQuotaExhausted = errors.New("daily API quota exhausted")

const (
	DefaultDailyLimit         = 3000
	DefaultEmergencyThreshold = 0.10

	resetWindow = 24 * time.Hour
)

// Admission is the answer to "may I make one more API call right now".
// Denial is always a value, never an error; callers must check Allowed
// before making the external call and RecordCall afterwards.
type Admission struct {
	Allowed       bool
	EmergencyMode bool
	Remaining     int
}

// Status is a read-only snapshot of the limiter.
type Status struct {
	Used            int     `json:"used"`
	Limit           int     `json:"limit"`
	Remaining       int     `json:"remaining"`
	EmergencyMode   bool    `json:"emergencyMode"`
	CacheHits       int     `json:"cacheHits"`
	UsagePercentage float64 `json:"usagePercentage"`
}

// Limiter tracks the rolling daily quota of outbound API calls. It is
// shared by every caller in the process and guarded by a mutex, but the
// admission check and the later RecordCall are deliberately separate:
// two concurrent runs can both be admitted on the last unit of quota.
// That gap existed in the original scheduler and stays best-effort here.
type Limiter struct {
	mu                 sync.Mutex
	clock              clock.Clock
	dailyLimit         int
	emergencyThreshold float64
	currentUsage       int
	cacheHits          int
	lastResetAt        time.Time
	emergencyMode      bool
}

func New(clock clock.Clock, dailyLimit int, emergencyThreshold float64) *Limiter {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	if emergencyThreshold <= 0 || emergencyThreshold >= 1 {
		emergencyThreshold = DefaultEmergencyThreshold
	}
	return &Limiter{
		clock:              clock,
		dailyLimit:         dailyLimit,
		emergencyThreshold: emergencyThreshold,
		lastResetAt:        clock.Now().UTC(),
	}
}

// CanAdmit reports whether one more call fits in today's quota. It also
// performs the lazy daily reset and flips emergency mode on when the
// remaining quota drops to the threshold fraction of the limit.
func (l *Limiter) CanAdmit() Admission {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeReset()

	remaining := l.dailyLimit - l.currentUsage
	if !l.emergencyMode && float64(remaining) <= float64(l.dailyLimit)*l.emergencyThreshold {
		l.emergencyMode = true
		log.Printf("rate limiter entering emergency mode: %d of %d calls remaining", remaining, l.dailyLimit)
	}

	return Admission{
		Allowed:       remaining > 0,
		EmergencyMode: l.emergencyMode,
		Remaining:     remaining,
	}
}

// RecordCall counts one successful admitted request against the quota.
func (l *Limiter) RecordCall() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.currentUsage++
}

// RecordCacheHit counts a request served from cache. Cache hits are
// tracked for visibility but never charged against the quota.
func (l *Limiter) RecordCacheHit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cacheHits++
}

func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.maybeReset()

	remaining := l.dailyLimit - l.currentUsage
	return Status{
		Used:            l.currentUsage,
		Limit:           l.dailyLimit,
		Remaining:       remaining,
		EmergencyMode:   l.emergencyMode,
		CacheHits:       l.cacheHits,
		UsagePercentage: float64(l.currentUsage) / float64(l.dailyLimit) * 100,
	}
}

// maybeReset zeroes the counters once 24h have passed since the last
// reset. Callers must hold the mutex.
func (l *Limiter) maybeReset() {
	now := l.clock.Now().UTC()
	if now.Sub(l.lastResetAt) < resetWindow {
		return
	}
	if l.currentUsage > 0 || l.emergencyMode {
		log.Printf("rate limiter daily reset: %d calls used in the last window", l.currentUsage)
	}
	l.currentUsage = 0
	l.cacheHits = 0
	l.emergencyMode = false
	l.lastResetAt = now
}
