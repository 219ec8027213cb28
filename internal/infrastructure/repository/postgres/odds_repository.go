package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/game-reconciler/internal/domain/odds"
	qb "github.com/riskibarqy/game-reconciler/internal/platform/querybuilder"
)

const oddsConflictTarget = "ON CONFLICT (game_id, book, market_type, side, is_closing_line)"

type OddsRepository struct {
	db *sqlx.DB
}

func NewOddsRepository(db *sqlx.DB) *OddsRepository {
	return &OddsRepository{db: db}
}

func newOddsLineInsertModel(line odds.Line, now time.Time) oddsLineInsertModel {
	return oddsLineInsertModel{
		GameID:        line.GameID,
		Book:          line.Book,
		MarketType:    line.MarketType,
		Side:          line.Side,
		Line:          line.Line,
		Price:         line.Price,
		IsClosingLine: line.IsClosingLine,
		ObservedAt:    line.ObservedAt,
		SourceKey:     line.SourceKey,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (r *OddsRepository) UpsertOpening(ctx context.Context, line odds.Line, now time.Time) (bool, error) {
	line.IsClosingLine = false
	query, args, err := qb.InsertModel("game_odds", newOddsLineInsertModel(line, now), oddsConflictTarget+" DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert opening line query: %w", err)
	}
	return r.execUpsert(ctx, query, args, line)
}

// UpsertClosing only rewrites the row when the line or price moved, so a
// repeated observation leaves updated_at alone.
func (r *OddsRepository) UpsertClosing(ctx context.Context, line odds.Line, now time.Time) (bool, error) {
	line.IsClosingLine = true
	query, args, err := qb.InsertModel("game_odds", newOddsLineInsertModel(line, now), oddsConflictTarget+`
DO UPDATE SET
    line = EXCLUDED.line,
    price = EXCLUDED.price,
    observed_at = EXCLUDED.observed_at,
    source_key = EXCLUDED.source_key,
    updated_at = EXCLUDED.updated_at
WHERE game_odds.line IS DISTINCT FROM EXCLUDED.line
   OR game_odds.price IS DISTINCT FROM EXCLUDED.price`)
	if err != nil {
		return false, fmt.Errorf("build upsert closing line query: %w", err)
	}
	return r.execUpsert(ctx, query, args, line)
}

func (r *OddsRepository) execUpsert(ctx context.Context, query string, args []any, line odds.Line) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("upsert odds line game=%d book=%s market=%s side=%s: %w",
			line.GameID, line.Book, line.MarketType, line.Side, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read upsert odds line result: %w", err)
	}
	return affected > 0, nil
}

func (r *OddsRepository) ListByGame(ctx context.Context, gameID int64) ([]odds.Line, error) {
	query, args, err := qb.Select("*").From("game_odds").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select odds lines query: %w", err)
	}

	var rows []oddsLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select odds lines for game %d: %w", gameID, err)
	}
	out := make([]odds.Line, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
