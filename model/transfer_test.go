package model

import (
	"testing"
	"time"
)

func TestParseTransferType(t *testing.T) {
	tests := map[string]struct {
		input string
		want  TransferType
	}{
		"loan":          {input: "loan", want: TYPE_LOAN},
		"end of loan":   {input: "End of loan", want: TYPE_LOAN},
		"permanent":     {input: "transfer", want: TYPE_PERMANENT},
		"free":          {input: "free transfer", want: TYPE_FREE},
		"free cased":    {input: "Free Transfer", want: TYPE_FREE},
		"already typed": {input: "Permanent", want: TYPE_PERMANENT},
		"unknown":       {input: "swap deal", want: TYPE_NA},
		"empty":         {input: "", want: TYPE_NA},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ParseTransferType(tc.input); got != tc.want {
				t.Errorf("ParseTransferType(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestWindowForDate(t *testing.T) {
	tests := map[string]struct {
		date time.Time
		want TransferWindow
	}{
		"early summer":   {date: time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC), want: WINDOW_SUMMER},
		"deadline day":   {date: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), want: WINDOW_SUMMER},
		"january":        {date: time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC), want: WINDOW_WINTER},
		"february":       {date: time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC), want: WINDOW_WINTER},
		"spring signing": {date: time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC), want: WINDOW_NONE},
		"october":        {date: time.Date(2025, time.October, 2, 0, 0, 0, 0, time.UTC), want: WINDOW_NONE},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := WindowForDate(tc.date); got != tc.want {
				t.Errorf("WindowForDate(%v) = %v, want %v", tc.date, got, tc.want)
			}
		})
	}
}

func TestFullyEnriched(t *testing.T) {
	tests := map[string]struct {
		transfer Transfer
		want     bool
	}{
		"complete":       {transfer: Transfer{Position: POS_FW, Age: 27, Nationality: "NOR"}, want: true},
		"no position":    {transfer: Transfer{Position: POS_UNKNOWN, Age: 27, Nationality: "NOR"}, want: false},
		"no age":         {transfer: Transfer{Position: POS_FW, Nationality: "NOR"}, want: false},
		"no nationality": {transfer: Transfer{Position: POS_FW, Age: 27}, want: false},
		"unk code":       {transfer: Transfer{Position: POS_FW, Age: 27, Nationality: NATIONALITY_UNKNOWN}, want: false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tc.transfer.FullyEnriched(); got != tc.want {
				t.Errorf("FullyEnriched() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFormattedFee(t *testing.T) {
	tr := Transfer{FeeCents: 1_250_000_000}
	if got := tr.FormattedFee(); got != "€12.50m" {
		t.Errorf("FormattedFee() = %q, want €12.50m", got)
	}

	undisclosed := Transfer{}
	if got := undisclosed.FormattedFee(); got != "undisclosed" {
		t.Errorf("FormattedFee() = %q, want undisclosed", got)
	}
}
