package play

import (
	"reflect"
	"strings"
	"time"
)

type Play struct {
	PlayIndex   int `validate:"gte=0"`
	Period      int `validate:"gte=0"`
	Clock       string
	PlayType    string
	TeamAbbr    string
	PlayerID    string
	PlayerName  string
	Description string
	HomeScore   *int
	AwayScore   *int
	// OccurredAt is the wall-clock time the source reports for the play.
	OccurredAt *time.Time
	Raw        map[string]any
}

// Same reports whether a and b carry identical play content.
func Same(a, b Play) bool {
	return a.PlayIndex == b.PlayIndex &&
		a.Period == b.Period &&
		a.Clock == b.Clock &&
		a.PlayType == b.PlayType &&
		a.TeamAbbr == b.TeamAbbr &&
		a.PlayerID == b.PlayerID &&
		a.PlayerName == b.PlayerName &&
		a.Description == b.Description &&
		sameInt(a.HomeScore, b.HomeScore) &&
		sameInt(a.AwayScore, b.AwayScore) &&
		sameTime(a.OccurredAt, b.OccurredAt) &&
		sameRaw(a.Raw, b.Raw)
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameRaw(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// Stored is a persisted play.
type Stored struct {
	GameID    int64
	Play      Play
	UpdatedAt time.Time
}

var endTypes = map[string]struct{}{
	"end_game":    {},
	"game_end":    {},
	"end_of_game": {},
	"game_over":   {},
	"final":       {},
}

// IsGameEnd reports whether p marks the end of the game.
func IsGameEnd(p Play) bool {
	kind := strings.ToLower(strings.TrimSpace(p.PlayType))
	kind = strings.NewReplacer(" ", "_", "-", "_").Replace(kind)
	if _, ok := endTypes[kind]; ok {
		return true
	}
	desc := strings.ToLower(strings.TrimSpace(p.Description))
	return strings.HasPrefix(desc, "end of game") || strings.HasPrefix(desc, "game end")
}

// GameEnd reports whether plays contain an end-of-game marker. The end time
// is the marker's OccurredAt, else the latest OccurredAt in plays, else nil.
func GameEnd(plays []Play) (bool, *time.Time) {
	ended := false
	var marker, latest *time.Time
	for _, p := range plays {
		if IsGameEnd(p) && !ended {
			ended = true
			marker = p.OccurredAt
		}
		if p.OccurredAt != nil && (latest == nil || p.OccurredAt.After(*latest)) {
			latest = p.OccurredAt
		}
	}
	if !ended {
		return false, nil
	}
	if marker == nil {
		marker = latest
	}
	if marker == nil {
		return true, nil
	}
	at := marker.UTC()
	return true, &at
}

// Dedupe keeps the last play seen for each index in first-seen order.
func Dedupe(plays []Play) []Play {
	byIndex := make(map[int]int, len(plays))
	out := make([]Play, 0, len(plays))
	for _, p := range plays {
		if i, ok := byIndex[p.PlayIndex]; ok {
			out[i] = p
			continue
		}
		byIndex[p.PlayIndex] = len(out)
		out = append(out, p)
	}
	return out
}
