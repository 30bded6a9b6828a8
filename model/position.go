package model

import (
	"strings"
)

type Position string

const (
	POS_UNKNOWN Position = "UNK"
	POS_GK      Position = "GK"
	POS_DF      Position = "DF"
	POS_MF      Position = "MF"
	POS_FW      Position = "FW"
)

// ParsePosition maps the position labels the providers use onto the four
// broad roles. Providers are inconsistent: the feed uses full words, the
// stats API uses per-competition labels like "Centre-Back".
func ParsePosition(pos string) Position {
	pos = strings.ToLower(strings.TrimSpace(pos))
	switch pos {
	case "gk", "goalkeeper", "keeper":
		return POS_GK
	case "df", "defender", "centre-back", "center-back", "left-back", "right-back", "full-back":
		return POS_DF
	case "mf", "midfielder", "defensive midfield", "central midfield", "attacking midfield":
		return POS_MF
	case "fw", "forward", "striker", "centre-forward", "winger", "left winger", "right winger", "second striker":
		return POS_FW
	default:
		return POS_UNKNOWN
	}
}

// MostFrequentPosition picks the position a player actually plays from the
// per-competition labels in their statistics. The most frequent label wins,
// ties go to the label seen first. Labels that don't map to a known position
// are ignored entirely, so a list of junk labels yields POS_UNKNOWN.
func MostFrequentPosition(labels []string) Position {
	counts := make(map[Position]int, 4)
	order := make([]Position, 0, 4)

	for _, l := range labels {
		p := ParsePosition(l)
		if p == POS_UNKNOWN {
			continue
		}
		if _, seen := counts[p]; !seen {
			order = append(order, p)
		}
		counts[p]++
	}

	best := POS_UNKNOWN
	bestCount := 0
	for _, p := range order {
		if counts[p] > bestCount {
			best = p
			bestCount = counts[p]
		}
	}
	return best
}
