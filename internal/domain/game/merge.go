package game

import (
	"maps"
	"time"
)

// Merge applies in to existing and reports whether any observable field
// changed. Scores and venue are overwritten when supplied, status goes
// through ResolveTransition, tip time, end time, season and source key are
// first-write-wins and external ids merge additively. Only a change bumps
// ScrapeVersion and LastIngestedAt; LastScrapedAt always moves to now.
func Merge(existing Game, in Update, now time.Time) (Game, bool) {
	out := existing
	out.ExternalIDs = maps.Clone(existing.ExternalIDs)
	changed := false

	if in.HomeScore != nil && !sameInt(out.HomeScore, in.HomeScore) {
		out.HomeScore = intPtr(*in.HomeScore)
		changed = true
	}
	if in.AwayScore != nil && !sameInt(out.AwayScore, in.AwayScore) {
		out.AwayScore = intPtr(*in.AwayScore)
		changed = true
	}
	if in.Venue != "" && in.Venue != out.Venue {
		out.Venue = in.Venue
		changed = true
	}
	if in.Status != "" {
		if next := ResolveTransition(out.Status, in.Status); next != out.Status {
			out.Status = next
			changed = true
		}
	}
	if in.TipTime != nil && out.TipTime == nil {
		out.TipTime = timePtr(*in.TipTime)
		changed = true
	}
	if in.EndTime != nil && out.EndTime == nil {
		out.EndTime = timePtr(*in.EndTime)
		changed = true
	}
	if in.Season != 0 && out.Season == 0 {
		out.Season = in.Season
		changed = true
	}
	if in.SeasonType != "" && out.SeasonType == "" {
		out.SeasonType = in.SeasonType
		changed = true
	}
	if in.SourceGameKey != "" && out.SourceGameKey == "" {
		out.SourceGameKey = in.SourceGameKey
		changed = true
	}
	for key, value := range in.ExternalIDs {
		if key == "" || value == "" || out.ExternalIDs[key] == value {
			continue
		}
		if out.ExternalIDs == nil {
			out.ExternalIDs = make(map[string]string, len(in.ExternalIDs))
		}
		out.ExternalIDs[key] = value
		changed = true
	}

	out.LastScrapedAt = timePtr(now)
	if changed {
		out.ScrapeVersion++
		out.LastIngestedAt = timePtr(now)
		out.UpdatedAt = now
	}
	return out, changed
}

// FromStub builds the row inserted for a newly created game.
func FromStub(s Stub, now time.Time) Game {
	return Game{
		LeagueID:       s.LeagueID,
		Season:         s.Season,
		SeasonType:     s.SeasonType,
		GameDate:       CalendarDate(s.GameDate),
		TipTime:        s.TipTime,
		HomeTeamID:     s.HomeTeamID,
		AwayTeamID:     s.AwayTeamID,
		Status:         StatusScheduled,
		SourceGameKey:  s.SourceGameKey,
		ExternalIDs:    maps.Clone(s.ExternalIDs),
		ScrapeVersion:  1,
		LastIngestedAt: timePtr(now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtr(v int) *int {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
