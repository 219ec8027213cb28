package postgres

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/team"
)

type teamTableModel struct {
	ID            int64     `db:"id"`
	LeagueID      int64     `db:"league_id"`
	Name          string    `db:"name"`
	ShortName     string    `db:"short_name"`
	Abbreviation  string    `db:"abbreviation"`
	ExternalRef   string    `db:"external_ref"`
	ExternalCodes string    `db:"external_codes"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type teamListRow struct {
	teamTableModel
	GameCount int `db:"game_count"`
}

type teamInsertModel struct {
	LeagueID      int64  `db:"league_id"`
	Name          string `db:"name"`
	ShortName     string `db:"short_name"`
	Abbreviation  string `db:"abbreviation"`
	ExternalRef   string `db:"external_ref"`
	ExternalCodes string `db:"external_codes"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:            m.ID,
		LeagueID:      m.LeagueID,
		Name:          m.Name,
		ShortName:     m.ShortName,
		Abbreviation:  m.Abbreviation,
		ExternalRef:   m.ExternalRef,
		ExternalCodes: decodeStringMap(m.ExternalCodes),
	}
}
