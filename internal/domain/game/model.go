package game

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/team"
)

// Game is one contest between two teams on one calendar date.
type Game struct {
	ID            int64
	LeagueID      int64
	Season        int
	SeasonType    string
	GameDate      time.Time
	TipTime       *time.Time
	HomeTeamID    int64
	AwayTeamID    int64
	HomeScore     *int
	AwayScore     *int
	Venue         string
	Status        Status
	EndTime       *time.Time
	SourceGameKey string
	ExternalIDs   map[string]string
	ScrapeVersion int

	LastScrapedAt  *time.Time
	LastIngestedAt *time.Time
	LastPbpAt      *time.Time
	LastBoxscoreAt *time.Time
	LastSocialAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// StartTime is the tip time when known, otherwise the calendar date.
func (g Game) StartTime() time.Time {
	if g.TipTime != nil {
		return *g.TipTime
	}
	return g.GameDate
}

// HasTeams reports whether the game is between a and b in either orientation.
func (g Game) HasTeams(a, b int64) bool {
	return (g.HomeTeamID == a && g.AwayTeamID == b) || (g.HomeTeamID == b && g.AwayTeamID == a)
}

// Identification is how a source identifies a game before it has an id.
type Identification struct {
	League        string `validate:"required"`
	Season        int    `validate:"gte=0"`
	SeasonType    string
	GameDate      time.Time `validate:"required"`
	Home          team.Identity
	Away          team.Identity
	SourceGameKey string
}

// Update is an observation applied to an existing game. Zero values mean
// "not observed".
type Update struct {
	Season        int
	SeasonType    string
	TipTime       *time.Time
	HomeScore     *int
	AwayScore     *int
	Venue         string
	Status        Status
	EndTime       *time.Time
	SourceGameKey string
	ExternalIDs   map[string]string
}

// Stub is the minimum needed to create a game found nowhere else.
type Stub struct {
	LeagueID      int64
	Season        int
	SeasonType    string
	GameDate      time.Time
	TipTime       *time.Time
	HomeTeamID    int64
	AwayTeamID    int64
	SourceGameKey string
	ExternalIDs   map[string]string
}

// TouchKind selects which freshness timestamp Touch updates.
type TouchKind string

const (
	TouchScraped  TouchKind = "scraped"
	TouchPbp      TouchKind = "pbp"
	TouchBoxscore TouchKind = "boxscore"
	TouchSocial   TouchKind = "social"
)

// CalendarDate truncates t to its calendar day in its own location and
// returns that day at UTC midnight.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
