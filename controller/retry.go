package controller

import (
	"math"
	"time"
)

// retryPolicy describes an exponential backoff schedule. It only does
// arithmetic; the caller decides how to wait and when to give up.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	multiplier  float64
	maxDelay    time.Duration
}

var defaultRetryPolicy = retryPolicy{
	maxAttempts: 3,
	baseDelay:   1 * time.Second,
	multiplier:  2,
	maxDelay:    1 * time.Minute,
}

// backoffFor returns the wait before retry number attempt (0-based):
// baseDelay * multiplier^attempt, capped at maxDelay.
func (p retryPolicy) backoffFor(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := time.Duration(float64(p.baseDelay) * math.Pow(p.multiplier, float64(attempt)))
	if d > p.maxDelay || d <= 0 {
		return p.maxDelay
	}
	return d
}
