package diagnostics

import (
	"sort"
	"time"
)

const (
	ReasonStartProximity = "start_time_proximity"
	ReasonTeamMismatch   = "team_mismatch"
)

// Conflict records two games sharing an external id.
type Conflict struct {
	LeagueID       int64
	ExternalID     string
	GameID         int64
	ConflictGameID int64
	Reason         string
	DetectedAt     time.Time
	ResolvedAt     *time.Time
}

// Key is the conflict's natural key within a league.
func (c Conflict) Key() string {
	return c.ExternalID + "#" + itoa(c.ConflictGameID) + "#" + itoa(c.GameID)
}

// ExternalIDGame is one game carrying a shared external id.
type ExternalIDGame struct {
	GameID     int64
	HomeTeamID int64
	AwayTeamID int64
	StartTime  time.Time
}

// ExternalIDGroup is every game in a league sharing Source/Value.
type ExternalIDGroup struct {
	Source string
	Value  string
	Games  []ExternalIDGame
}

// ExternalID renders the stored external id as "source:value".
func (g ExternalIDGroup) ExternalID() string {
	return g.Source + ":" + g.Value
}

// PairConflicts flags each pair in the group whose start times are within
// window of each other or whose team assignments differ.
func PairConflicts(leagueID int64, group ExternalIDGroup, window time.Duration, now time.Time) []Conflict {
	games := append([]ExternalIDGame(nil), group.Games...)
	sort.Slice(games, func(i, j int) bool { return games[i].GameID < games[j].GameID })

	var out []Conflict
	for i := 0; i < len(games); i++ {
		for j := i + 1; j < len(games); j++ {
			a, b := games[i], games[j]
			if a.GameID == b.GameID {
				continue
			}

			var reasons []string
			gap := a.StartTime.Sub(b.StartTime)
			if gap < 0 {
				gap = -gap
			}
			if gap <= window {
				reasons = append(reasons, ReasonStartProximity)
			}
			if a.HomeTeamID != b.HomeTeamID || a.AwayTeamID != b.AwayTeamID {
				reasons = append(reasons, ReasonTeamMismatch)
			}
			if len(reasons) == 0 {
				continue
			}

			out = append(out, Conflict{
				LeagueID:       leagueID,
				ExternalID:     group.ExternalID(),
				GameID:         a.GameID,
				ConflictGameID: b.GameID,
				Reason:         joinReasons(reasons),
				DetectedAt:     now,
			})
		}
	}
	return out
}

func joinReasons(reasons []string) string {
	out := reasons[0]
	for _, r := range reasons[1:] {
		out += "," + r
	}
	return out
}
