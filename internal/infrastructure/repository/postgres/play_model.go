package postgres

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/play"
)

type playTableModel struct {
	GameID      int64      `db:"game_id"`
	PlayIndex   int        `db:"play_index"`
	Period      int        `db:"period"`
	Clock       string     `db:"clock"`
	PlayType    string     `db:"play_type"`
	TeamAbbr    string     `db:"team_abbr"`
	PlayerID    string     `db:"player_id"`
	PlayerName  string     `db:"player_name"`
	Description string     `db:"description"`
	HomeScore   *int       `db:"home_score"`
	AwayScore   *int       `db:"away_score"`
	OccurredAt  *time.Time `db:"occurred_at"`
	Raw         string     `db:"raw"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (m playTableModel) toDomain() play.Stored {
	return play.Stored{
		GameID: m.GameID,
		Play: play.Play{
			PlayIndex:   m.PlayIndex,
			Period:      m.Period,
			Clock:       m.Clock,
			PlayType:    m.PlayType,
			TeamAbbr:    m.TeamAbbr,
			PlayerID:    m.PlayerID,
			PlayerName:  m.PlayerName,
			Description: m.Description,
			HomeScore:   m.HomeScore,
			AwayScore:   m.AwayScore,
			OccurredAt:  utcPtr(m.OccurredAt),
			Raw:         decodeJSONMap(m.Raw),
		},
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}
