package play

import (
	"testing"
	"time"
)

func TestIsGameEnd(t *testing.T) {
	tests := []struct {
		play Play
		want bool
	}{
		{Play{PlayType: "End Game"}, true},
		{Play{PlayType: "end-of-game"}, true},
		{Play{Description: "End of Game"}, true},
		{Play{PlayType: "End Period", Description: "End of 4th Quarter"}, false},
		{Play{PlayType: "jumpshot", Description: "Tatum makes 3pt"}, false},
	}
	for _, tc := range tests {
		if got := IsGameEnd(tc.play); got != tc.want {
			t.Fatalf("IsGameEnd(%+v) = %v, want %v", tc.play, got, tc.want)
		}
	}
}

func TestDedupeKeepsLastPerIndex(t *testing.T) {
	out := Dedupe([]Play{
		{PlayIndex: 1, Description: "a"},
		{PlayIndex: 2, Description: "b"},
		{PlayIndex: 1, Description: "a2"},
	})
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Description != "a2" || out[1].Description != "b" {
		t.Fatalf("unexpected plays: %+v", out)
	}
}

func TestSameComparesContent(t *testing.T) {
	score := 3
	at := time.Date(2024, 1, 15, 19, 0, 0, 0, time.UTC)
	base := Play{PlayIndex: 7, Period: 1, Description: "Tatum makes 3pt", HomeScore: &score, OccurredAt: &at, Raw: map[string]any{"x": 1}}

	copyScore, copyAt := 3, at
	same := base
	same.HomeScore, same.OccurredAt, same.Raw = &copyScore, &copyAt, map[string]any{"x": 1}
	if !Same(base, same) {
		t.Fatalf("expected equal content to compare same")
	}

	changed := same
	changed.Description = "Tatum makes 3pt jumper"
	if Same(base, changed) {
		t.Fatalf("expected description change to differ")
	}

	noTime := same
	noTime.OccurredAt = nil
	if Same(base, noTime) {
		t.Fatalf("expected missing occurred_at to differ")
	}

	if !Same(Play{PlayIndex: 1}, Play{PlayIndex: 1, Raw: map[string]any{}}) {
		t.Fatalf("expected empty raw maps to compare same")
	}
}

func TestGameEndUsesPlayTimes(t *testing.T) {
	tip := time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC)
	last := tip.Add(2 * time.Hour)

	ended, end := GameEnd([]Play{{PlayIndex: 1, OccurredAt: &tip}})
	if ended || end != nil {
		t.Fatalf("GameEnd without marker = %v, %v", ended, end)
	}

	ended, end = GameEnd([]Play{
		{PlayIndex: 1, OccurredAt: &tip},
		{PlayIndex: 2, OccurredAt: &last},
		{PlayIndex: 3, PlayType: "End Game"},
	})
	if !ended || end == nil || !end.Equal(last) {
		t.Fatalf("GameEnd fallback = %v, %v, want %v", ended, end, last)
	}

	marker := last.Add(time.Minute)
	ended, end = GameEnd([]Play{{PlayIndex: 3, PlayType: "End Game", OccurredAt: &marker}})
	if !ended || end == nil || !end.Equal(marker) {
		t.Fatalf("GameEnd marker = %v, %v, want %v", ended, end, marker)
	}

	ended, end = GameEnd([]Play{{PlayIndex: 3, PlayType: "End Game"}})
	if !ended || end != nil {
		t.Fatalf("GameEnd without times = %v, %v", ended, end)
	}
}
