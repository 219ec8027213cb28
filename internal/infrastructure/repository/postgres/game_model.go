package postgres

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
)

type gameTableModel struct {
	ID             int64      `db:"id"`
	LeagueID       int64      `db:"league_id"`
	Season         int        `db:"season"`
	SeasonType     string     `db:"season_type"`
	GameDate       time.Time  `db:"game_date"`
	TipTime        *time.Time `db:"tip_time"`
	HomeTeamID     int64      `db:"home_team_id"`
	AwayTeamID     int64      `db:"away_team_id"`
	HomeScore      *int       `db:"home_score"`
	AwayScore      *int       `db:"away_score"`
	Venue          string     `db:"venue"`
	Status         string     `db:"status"`
	EndTime        *time.Time `db:"end_time"`
	SourceGameKey  string     `db:"source_game_key"`
	ExternalIDs    string     `db:"external_ids"`
	ScrapeVersion  int        `db:"scrape_version"`
	LastScrapedAt  *time.Time `db:"last_scraped_at"`
	LastIngestedAt *time.Time `db:"last_ingested_at"`
	LastPbpAt      *time.Time `db:"last_pbp_at"`
	LastBoxscoreAt *time.Time `db:"last_boxscore_at"`
	LastSocialAt   *time.Time `db:"last_social_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

type activeGameRow struct {
	gameTableModel
	WindowState string `db:"window_state"`
}

type gameInsertModel struct {
	LeagueID       int64      `db:"league_id"`
	Season         int        `db:"season"`
	SeasonType     string     `db:"season_type"`
	GameDate       time.Time  `db:"game_date"`
	TipTime        *time.Time `db:"tip_time"`
	HomeTeamID     int64      `db:"home_team_id"`
	AwayTeamID     int64      `db:"away_team_id"`
	Status         string     `db:"status"`
	SourceGameKey  string     `db:"source_game_key"`
	ExternalIDs    string     `db:"external_ids"`
	ScrapeVersion  int        `db:"scrape_version"`
	LastIngestedAt *time.Time `db:"last_ingested_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func newGameInsertModel(g game.Game) gameInsertModel {
	return gameInsertModel{
		LeagueID:       g.LeagueID,
		Season:         g.Season,
		SeasonType:     g.SeasonType,
		GameDate:       g.GameDate,
		TipTime:        g.TipTime,
		HomeTeamID:     g.HomeTeamID,
		AwayTeamID:     g.AwayTeamID,
		Status:         string(g.Status),
		SourceGameKey:  g.SourceGameKey,
		ExternalIDs:    encodeStringMap(g.ExternalIDs),
		ScrapeVersion:  g.ScrapeVersion,
		LastIngestedAt: g.LastIngestedAt,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

func (m gameTableModel) toDomain() game.Game {
	return game.Game{
		ID:             m.ID,
		LeagueID:       m.LeagueID,
		Season:         m.Season,
		SeasonType:     m.SeasonType,
		GameDate:       game.CalendarDate(m.GameDate),
		TipTime:        utcPtr(m.TipTime),
		HomeTeamID:     m.HomeTeamID,
		AwayTeamID:     m.AwayTeamID,
		HomeScore:      m.HomeScore,
		AwayScore:      m.AwayScore,
		Venue:          m.Venue,
		Status:         game.Status(m.Status),
		EndTime:        utcPtr(m.EndTime),
		SourceGameKey:  m.SourceGameKey,
		ExternalIDs:    decodeStringMap(m.ExternalIDs),
		ScrapeVersion:  m.ScrapeVersion,
		LastScrapedAt:  utcPtr(m.LastScrapedAt),
		LastIngestedAt: utcPtr(m.LastIngestedAt),
		LastPbpAt:      utcPtr(m.LastPbpAt),
		LastBoxscoreAt: utcPtr(m.LastBoxscoreAt),
		LastSocialAt:   utcPtr(m.LastSocialAt),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
