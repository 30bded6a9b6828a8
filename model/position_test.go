package model

import (
	"testing"
)

func TestParsePosition(t *testing.T) {
	tests := map[string]struct {
		input string
		want  Position
	}{
		"short gk":          {input: "GK", want: POS_GK},
		"goalkeeper":        {input: "Goalkeeper", want: POS_GK},
		"centre-back":       {input: "Centre-Back", want: POS_DF},
		"full-back":         {input: "full-back", want: POS_DF},
		"defensive mid":     {input: "Defensive Midfield", want: POS_MF},
		"attacking mid":     {input: "attacking midfield", want: POS_MF},
		"striker":           {input: "Striker", want: POS_FW},
		"left winger":       {input: "Left Winger", want: POS_FW},
		"padded":            {input: "  forward  ", want: POS_FW},
		"unknown label":     {input: "libero", want: POS_UNKNOWN},
		"empty":             {input: "", want: POS_UNKNOWN},
		"nonsense":          {input: "coach", want: POS_UNKNOWN},
		"already canonical": {input: "MF", want: POS_MF},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ParsePosition(tc.input); got != tc.want {
				t.Errorf("ParsePosition(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestMostFrequentPosition(t *testing.T) {
	tests := map[string]struct {
		labels []string
		want   Position
	}{
		"clear winner":        {labels: []string{"Striker", "Striker", "Left Winger", "Centre-Back"}, want: POS_FW},
		"tie first wins":      {labels: []string{"Centre-Back", "Striker"}, want: POS_DF},
		"unknowns ignored":    {labels: []string{"libero", "libero", "Goalkeeper"}, want: POS_GK},
		"all unknown":         {labels: []string{"libero", "sweeper-ish"}, want: POS_UNKNOWN},
		"empty":               {labels: nil, want: POS_UNKNOWN},
		"mixed across groups": {labels: []string{"Central Midfield", "Attacking Midfield", "Striker"}, want: POS_MF},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := MostFrequentPosition(tc.labels); got != tc.want {
				t.Errorf("MostFrequentPosition(%v) = %v, want %v", tc.labels, got, tc.want)
			}
		})
	}
}
