package boxscore

import (
	"errors"
	"testing"
)

func TestValidatePlayerRow(t *testing.T) {
	tests := []struct {
		name     string
		row      PlayerRow
		required []string
		reason   string
	}{
		{name: "ok without requirements", row: PlayerRow{PlayerName: "Jayson Tatum"}},
		{name: "missing identity", row: PlayerRow{Role: "skater"}, reason: "player identity missing"},
		{name: "hockey role missing", row: PlayerRow{PlayerName: "Connor McDavid"}, required: []string{"role"}, reason: "role missing"},
		{name: "hockey role present", row: PlayerRow{PlayerName: "Connor McDavid", Role: "skater"}, required: []string{"role"}},
		{name: "unknown requirement", row: PlayerRow{PlayerName: "x"}, required: []string{"jersey"}, reason: `unknown required field "jersey"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePlayerRow(tc.row, tc.required)
			if tc.reason == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var rejection Rejection
			if !errors.As(err, &rejection) {
				t.Fatalf("expected Rejection, got %v", err)
			}
			if rejection.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", rejection.Reason, tc.reason)
			}
		})
	}
}

func TestPlayerKey(t *testing.T) {
	if got := PlayerKey(PlayerRow{PlayerExternalID: " 3112335 ", PlayerName: "Nikola Jokic"}); got != "3112335" {
		t.Fatalf("PlayerKey = %q", got)
	}
	if got := PlayerKey(PlayerRow{PlayerName: "Nikola  Jokic"}); got != "name:nikola jokic" {
		t.Fatalf("PlayerKey = %q", got)
	}
}
