package model

import (
	"time"
)

// EnrichmentProgress tracks one enrichment batch. LastProcessedID is the
// resume cursor: a follow-up run passes it back to continue strictly after
// the last record this run touched. Only the errors survive the run, as
// durable enrichment_errors rows.
type EnrichmentProgress struct {
	Total           int               `json:"total"`
	Processed       int               `json:"processed"`
	Succeeded       int               `json:"succeeded"`
	Failed          int               `json:"failed"`
	LastProcessedID int64             `json:"lastProcessedId"`
	StartedAt       time.Time         `json:"startedAt"`
	Errors          []EnrichmentError `json:"errors"`
}

// EnrichmentError is one failed enrichment attempt. Rows are appended
// durably so RetryFailedEnrichments can pick them up later; RetryCount
// climbs on every repeated failure until the configured maximum.
type EnrichmentError struct {
	ID            int64     `json:"id"`
	TransferID    int64     `json:"transferId"`
	APITransferID string    `json:"apiTransferId"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	RetryCount    int       `json:"retryCount"`
	Resolved      bool      `json:"resolved"`
}

// PlayerStats is the secondary-data payload for one player. PositionLabels
// holds the raw per-competition labels; MostFrequentPosition reduces them
// to a single Position.
type PlayerStats struct {
	PositionLabels []string  `json:"positionLabels"`
	Age            int       `json:"age"`
	Nationality    string    `json:"nationality"` // country name as reported
	PhotoURL       string    `json:"photoUrl"`
	FetchedAt      time.Time `json:"fetchedAt"`
}
