package postgres

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/odds"
)

type oddsLineTableModel struct {
	ID            int64     `db:"id"`
	GameID        int64     `db:"game_id"`
	Book          string    `db:"book"`
	MarketType    string    `db:"market_type"`
	Side          string    `db:"side"`
	Line          *float64  `db:"line"`
	Price         *int      `db:"price"`
	IsClosingLine bool      `db:"is_closing_line"`
	ObservedAt    time.Time `db:"observed_at"`
	SourceKey     string    `db:"source_key"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type oddsLineInsertModel struct {
	GameID        int64     `db:"game_id"`
	Book          string    `db:"book"`
	MarketType    string    `db:"market_type"`
	Side          string    `db:"side"`
	Line          *float64  `db:"line"`
	Price         *int      `db:"price"`
	IsClosingLine bool      `db:"is_closing_line"`
	ObservedAt    time.Time `db:"observed_at"`
	SourceKey     string    `db:"source_key"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (m oddsLineTableModel) toDomain() odds.Line {
	return odds.Line{
		ID:            m.ID,
		GameID:        m.GameID,
		Book:          m.Book,
		MarketType:    m.MarketType,
		Side:          m.Side,
		Line:          m.Line,
		Price:         m.Price,
		IsClosingLine: m.IsClosingLine,
		ObservedAt:    m.ObservedAt.UTC(),
		SourceKey:     m.SourceKey,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}
