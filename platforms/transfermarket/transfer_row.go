package transfermarket

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cameza/transfer_manager/model"
)

// transferRow is the wire shape of one transfer in the provider's feed.
type transferRow struct {
	ID           string `json:"transfer_id"`
	PlayerName   string `json:"player_name"`
	FromClub     string `json:"from_club"`
	ToClub       string `json:"to_club"`
	League       string `json:"league"`
	TransferType string `json:"transfer_type"`
	Fee          string `json:"fee"`
	Date         string `json:"date"`
}

// toTransfer normalizes a raw feed row. Rows missing the natural id, the
// player name or a parsable date are unusable and reported as ok=false;
// the caller drops them without counting a failure.
func (r *transferRow) toTransfer(season string) (*model.Transfer, bool) {
	if r.ID == "" || r.PlayerName == "" {
		return nil, false
	}

	date, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		log.Printf("dropping transfer %s: unparsable date %q", r.ID, r.Date)
		return nil, false
	}

	return &model.Transfer{
		APITransferID: r.ID,
		PlayerName:    r.PlayerName,
		FromClub:      r.FromClub,
		ToClub:        r.ToClub,
		League:        r.League,
		Type:          model.ParseTransferType(r.TransferType),
		FeeCents:      parseFee(r.Fee),
		TransferDate:  date,
		Window:        model.WindowForDate(date),
		Season:        season,
	}, true
}

var feeRegex = regexp.MustCompile(`(?i)€?\s*(?P<amount>\d+(?:\.\d+)?)\s*(?P<unit>m|k)?`)

// parseFee turns the provider's free-text fee ("€12.5m", "800k", "free",
// "undisclosed") into minor units. Anything that isn't a number comes back
// as 0, which the model treats as undisclosed.
func parseFee(fee string) int64 {
	fee = strings.TrimSpace(strings.ToLower(fee))
	if fee == "" || fee == "free" || fee == "free transfer" || fee == "undisclosed" || fee == "-" {
		return 0
	}

	m := feeRegex.FindStringSubmatch(fee)
	if m == nil {
		return 0
	}

	amount, err := strconv.ParseFloat(m[feeRegex.SubexpIndex("amount")], 64)
	if err != nil {
		return 0
	}

	switch m[feeRegex.SubexpIndex("unit")] {
	case "m":
		amount *= 1_000_000
	case "k":
		amount *= 1_000
	}

	return int64(amount * 100)
}
