package postgres

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/diagnostics"
	"github.com/riskibarqy/game-reconciler/internal/domain/game"
)

type conflictTableModel struct {
	ID             int64      `db:"id"`
	LeagueID       int64      `db:"league_id"`
	ExternalID     string     `db:"external_id"`
	GameID         int64      `db:"game_id"`
	ConflictGameID int64      `db:"conflict_game_id"`
	Reason         string     `db:"reason"`
	DetectedAt     time.Time  `db:"detected_at"`
	ResolvedAt     *time.Time `db:"resolved_at"`
}

type conflictInsertModel struct {
	LeagueID       int64     `db:"league_id"`
	ExternalID     string    `db:"external_id"`
	GameID         int64     `db:"game_id"`
	ConflictGameID int64     `db:"conflict_game_id"`
	Reason         string    `db:"reason"`
	DetectedAt     time.Time `db:"detected_at"`
}

type externalIDGameRow struct {
	Source     string    `db:"source"`
	Value      string    `db:"value"`
	GameID     int64     `db:"game_id"`
	HomeTeamID int64     `db:"home_team_id"`
	AwayTeamID int64     `db:"away_team_id"`
	StartTime  time.Time `db:"start_time"`
}

type pbpCandidateRow struct {
	GameID    int64  `db:"game_id"`
	Status    string `db:"status"`
	PlayCount int    `db:"play_count"`
}

type missingPbpTableModel struct {
	GameID     int64     `db:"game_id"`
	LeagueID   int64     `db:"league_id"`
	Status     string    `db:"status"`
	PlayCount  int       `db:"play_count"`
	Expected   int       `db:"expected"`
	Reason     string    `db:"reason"`
	DetectedAt time.Time `db:"detected_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (m conflictTableModel) toDomain() diagnostics.Conflict {
	return diagnostics.Conflict{
		LeagueID:       m.LeagueID,
		ExternalID:     m.ExternalID,
		GameID:         m.GameID,
		ConflictGameID: m.ConflictGameID,
		Reason:         m.Reason,
		DetectedAt:     m.DetectedAt.UTC(),
		ResolvedAt:     utcPtr(m.ResolvedAt),
	}
}

func (m missingPbpTableModel) toDomain() diagnostics.MissingPbp {
	return diagnostics.MissingPbp{
		LeagueID:   m.LeagueID,
		GameID:     m.GameID,
		Status:     game.Status(m.Status),
		PlayCount:  m.PlayCount,
		Expected:   m.Expected,
		Reason:     m.Reason,
		DetectedAt: m.DetectedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}
