package postgres

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/league"
)

type leagueTableModel struct {
	ID        int64     `db:"id"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{ID: m.ID, Code: m.Code, Name: m.Name}
}
