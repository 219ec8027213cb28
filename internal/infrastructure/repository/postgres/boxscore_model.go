package postgres

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/boxscore"
)

type teamBoxscoreTableModel struct {
	GameID    int64     `db:"game_id"`
	TeamID    int64     `db:"team_id"`
	Score     *int      `db:"score"`
	Stats     string    `db:"stats"`
	UpdatedAt time.Time `db:"updated_at"`
}

type playerBoxscoreTableModel struct {
	GameID           int64     `db:"game_id"`
	TeamID           int64     `db:"team_id"`
	PlayerKey        string    `db:"player_key"`
	PlayerExternalID string    `db:"player_external_id"`
	PlayerName       string    `db:"player_name"`
	Position         string    `db:"position"`
	Role             string    `db:"role"`
	Starter          bool      `db:"starter"`
	Stats            string    `db:"stats"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (m teamBoxscoreTableModel) toDomain() boxscore.StoredTeamRow {
	return boxscore.StoredTeamRow{
		GameID:    m.GameID,
		TeamID:    m.TeamID,
		Score:     m.Score,
		Stats:     decodeJSONMap(m.Stats),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func (m playerBoxscoreTableModel) toDomain() boxscore.StoredPlayerRow {
	return boxscore.StoredPlayerRow{
		GameID:           m.GameID,
		TeamID:           m.TeamID,
		PlayerExternalID: m.PlayerExternalID,
		PlayerName:       m.PlayerName,
		Position:         m.Position,
		Role:             m.Role,
		Starter:          m.Starter,
		Stats:            decodeJSONMap(m.Stats),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}
