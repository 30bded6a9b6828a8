package statsapi

import (
	"github.com/cameza/transfer_manager/model"
)

// playerProfile is the wire shape of the stats provider's player endpoint.
type playerProfile struct {
	Age         int    `json:"age"`
	Nationality string `json:"nationality"`
	PhotoURL    string `json:"photo_url"`
	Statistics  []struct {
		Competition string `json:"competition"`
		Position    string `json:"position"`
	} `json:"statistics"`
}

func (p *playerProfile) toPlayerStats() *model.PlayerStats {
	labels := make([]string, 0, len(p.Statistics))
	for _, s := range p.Statistics {
		labels = append(labels, s.Position)
	}

	return &model.PlayerStats{
		PositionLabels: labels,
		Age:            p.Age,
		Nationality:    p.Nationality,
		PhotoURL:       p.PhotoURL,
	}
}
