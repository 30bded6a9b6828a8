package model

import (
	"strconv"
	"strings"
	"time"
)

// SyncStrategy determines which source groups run and how often the
// periodic loop wakes up.
type SyncStrategy string

const (
	STRATEGY_NORMAL       SyncStrategy = "normal"
	STRATEGY_DEADLINE_DAY SyncStrategy = "deadline_day"
	STRATEGY_EMERGENCY    SyncStrategy = "emergency"
)

// ParseStrategy returns the strategy matching s, or STRATEGY_NORMAL and
// false when s names no known strategy. Callers that accept a strategy from
// a request body should reject the input when ok is false rather than
// silently running a normal sync.
func ParseStrategy(s string) (SyncStrategy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return STRATEGY_NORMAL, true
	case "deadline_day", "deadline-day", "deadlineday":
		return STRATEGY_DEADLINE_DAY, true
	case "emergency":
		return STRATEGY_EMERGENCY, true
	default:
		return STRATEGY_NORMAL, false
	}
}

// SeasonForDate labels the season a date belongs to by the year the season
// started: the 2025/26 season is "2025" and runs from July 2025 through
// June 2026.
func SeasonForDate(d time.Time) string {
	year := d.Year()
	if d.Month() < time.July {
		year--
	}
	return strconv.Itoa(year)
}
