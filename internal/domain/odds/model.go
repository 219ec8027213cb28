package odds

import (
	"strings"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/team"
)

// Outcome reports what happened to one odds snapshot.
type Outcome string

const (
	OutcomePersisted      Outcome = "persisted"
	OutcomeSkippedNoMatch Outcome = "skipped_no_match"
	OutcomeSkippedLive    Outcome = "skipped_live"
)

// Snapshot is one normalized price observation for a matchup.
type Snapshot struct {
	League        string `validate:"required"`
	Book          string `validate:"required"`
	MarketType    string `validate:"required,oneof=spread moneyline total"`
	Side          string
	Line          *float64
	Price         *int
	ObservedAt    time.Time `validate:"required"`
	Home          team.Identity
	Away          team.Identity
	GameDate      time.Time `validate:"required"`
	TipTime       *time.Time
	SourceKey     string
	IsClosingLine bool
}

// Normalized lowercases book and market and trims the side.
func (s Snapshot) Normalized() Snapshot {
	s.League = strings.ToUpper(strings.TrimSpace(s.League))
	s.Book = strings.ToLower(strings.TrimSpace(s.Book))
	s.MarketType = strings.ToLower(strings.TrimSpace(s.MarketType))
	s.Side = strings.TrimSpace(s.Side)
	s.SourceKey = strings.TrimSpace(s.SourceKey)
	s.Home = s.Home.Normalized()
	s.Away = s.Away.Normalized()
	if s.Home.League == "" {
		s.Home.League = s.League
	}
	if s.Away.League == "" {
		s.Away.League = s.League
	}
	return s
}

// Line is a stored odds row. Rows are unique on
// (game_id, book, market_type, side, is_closing_line).
type Line struct {
	ID            int64
	GameID        int64
	Book          string
	MarketType    string
	Side          string
	Line          *float64
	Price         *int
	IsClosingLine bool
	ObservedAt    time.Time
	SourceKey     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func FromSnapshot(gameID int64, s Snapshot) Line {
	return Line{
		GameID:        gameID,
		Book:          s.Book,
		MarketType:    s.MarketType,
		Side:          s.Side,
		Line:          s.Line,
		Price:         s.Price,
		IsClosingLine: s.IsClosingLine,
		ObservedAt:    s.ObservedAt,
		SourceKey:     s.SourceKey,
	}
}

// SamePrice reports whether two lines carry the same observable price.
func SamePrice(a, b Line) bool {
	return sameFloat(a.Line, b.Line) && sameInt(a.Price, b.Price)
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
