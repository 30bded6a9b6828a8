package model

import (
	"fmt"
	"time"
)

type TransferType string

const (
	TYPE_LOAN      TransferType = "Loan"
	TYPE_PERMANENT TransferType = "Permanent"
	TYPE_FREE      TransferType = "FreeTransfer"
	TYPE_NA        TransferType = "NA"
)

func ParseTransferType(t string) TransferType {
	switch t {
	case "Loan", "loan", "loan transfer", "End of loan":
		return TYPE_LOAN
	case "Permanent", "permanent", "transfer":
		return TYPE_PERMANENT
	case "FreeTransfer", "free", "free transfer", "Free Transfer":
		return TYPE_FREE
	default:
		return TYPE_NA
	}
}

type TransferWindow string

const (
	WINDOW_SUMMER TransferWindow = "summer"
	WINDOW_WINTER TransferWindow = "winter"
	WINDOW_NONE   TransferWindow = "off-window"
)

// WindowForDate buckets a transfer date into the window it belongs to.
// June through September is the summer window, January and February the
// winter window. Deals registered outside either window (free agents,
// emergency signings) land in the off-window bucket.
func WindowForDate(d time.Time) TransferWindow {
	switch d.Month() {
	case time.June, time.July, time.August, time.September:
		return WINDOW_SUMMER
	case time.January, time.February:
		return WINDOW_WINTER
	default:
		return WINDOW_NONE
	}
}

// Transfer is the canonical representation of one transfer-market record
// after normalization. APITransferID is the source system's own id and is
// the idempotency key for upserts.
type Transfer struct {
	ID            int64
	APITransferID string
	PlayerName    string
	FromClub      string
	ToClub        string
	League        string
	Type          TransferType
	FeeCents      int64 // minor units, 0 means undisclosed
	TransferDate  time.Time
	Window        TransferWindow
	Season        string
	Position      Position
	Age           int    // 0 means unknown
	Nationality   string // ISO-3, empty until enriched
	PhotoURL      string
	Created       time.Time
	Updated       time.Time
}

// FullyEnriched reports whether the secondary-data fields are all present.
// Records that pass never need another stats lookup.
func (t *Transfer) FullyEnriched() bool {
	return t.Position != POS_UNKNOWN && t.Age > 0 && validNationality(t.Nationality)
}

func (t *Transfer) FormattedFee() string {
	if t.FeeCents == 0 {
		return "undisclosed"
	}
	return fmt.Sprintf("€%.2fm", float64(t.FeeCents)/100_000_000)
}

func (t *Transfer) FormattedTransferDate() string {
	if t.TransferDate.IsZero() {
		return "unknown"
	}
	return t.TransferDate.Format(time.DateOnly)
}
