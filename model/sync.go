package model

import (
	"time"
)

type Trigger string

const (
	TRIGGER_CRON   Trigger = "cron"
	TRIGGER_MANUAL Trigger = "manual"
)

// SyncResult summarizes one sync run. It is built once by the orchestrator
// and not modified after the run returns. Callers check Failed to decide the
// outcome; a run never signals failure through an error alone.
type SyncResult struct {
	Strategy        SyncStrategy `json:"strategy"`
	TotalProcessed  int          `json:"totalProcessed"`
	Successful      int          `json:"successful"`
	Failed          int          `json:"failed"`
	DurationMs      int64        `json:"durationMs"`
	GroupsProcessed []string     `json:"groupsProcessed"`
	APICallsUsed    int          `json:"apiCallsUsed"`
	Errors          []string     `json:"errors"`
}

func (r *SyncResult) Success() bool {
	return r.Failed == 0
}

// SyncLog is the persisted form of a SyncResult.
type SyncLog struct {
	ID        int64      `json:"id"`
	Trigger   Trigger    `json:"trigger"`
	Result    SyncResult `json:"result"`
	Success   bool       `json:"success"`
	CreatedAt time.Time  `json:"createdAt"`
}
