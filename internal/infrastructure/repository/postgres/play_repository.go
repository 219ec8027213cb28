package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/game-reconciler/internal/domain/play"
	qb "github.com/riskibarqy/game-reconciler/internal/platform/querybuilder"
)

const playBatchSize = 200

type PlayRepository struct {
	db *sqlx.DB
}

func NewPlayRepository(db *sqlx.DB) *PlayRepository {
	return &PlayRepository{db: db}
}

// UpsertMany writes plays in batches inside one transaction. Callers dedupe
// by play index first; a batch with a repeated index would be rejected by
// postgres. Rows whose content is unchanged keep their updated_at.
func (r *PlayRepository) UpsertMany(ctx context.Context, gameID int64, plays []play.Play, now time.Time) (int, error) {
	if len(plays) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx upsert plays: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for start := 0; start < len(plays); start += playBatchSize {
		end := start + playBatchSize
		if end > len(plays) {
			end = len(plays)
		}

		insert := qb.InsertInto("plays").Columns(
			"game_id", "play_index", "period", "clock", "play_type", "team_abbr",
			"player_id", "player_name", "description", "home_score", "away_score", "occurred_at", "raw", "updated_at",
		)
		for _, p := range plays[start:end] {
			insert = insert.Values(
				gameID, p.PlayIndex, p.Period, p.Clock, p.PlayType, p.TeamAbbr,
				p.PlayerID, p.PlayerName, p.Description, p.HomeScore, p.AwayScore, p.OccurredAt, encodeJSONMap(p.Raw), now,
			)
		}
		query, args, err := insert.Suffix(`ON CONFLICT (game_id, play_index)
DO UPDATE SET
    period = EXCLUDED.period,
    clock = EXCLUDED.clock,
    play_type = EXCLUDED.play_type,
    team_abbr = EXCLUDED.team_abbr,
    player_id = EXCLUDED.player_id,
    player_name = EXCLUDED.player_name,
    description = EXCLUDED.description,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    occurred_at = EXCLUDED.occurred_at,
    raw = EXCLUDED.raw,
    updated_at = EXCLUDED.updated_at
WHERE (plays.period, plays.clock, plays.play_type, plays.team_abbr, plays.player_id, plays.player_name,
       plays.description, plays.home_score, plays.away_score, plays.occurred_at, plays.raw)
    IS DISTINCT FROM
      (EXCLUDED.period, EXCLUDED.clock, EXCLUDED.play_type, EXCLUDED.team_abbr, EXCLUDED.player_id, EXCLUDED.player_name,
       EXCLUDED.description, EXCLUDED.home_score, EXCLUDED.away_score, EXCLUDED.occurred_at, EXCLUDED.raw)`).ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build upsert plays query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert plays game=%d batch=%d: %w", gameID, start/playBatchSize, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert plays tx: %w", err)
	}
	return len(plays), nil
}

func (r *PlayRepository) CountByGame(ctx context.Context, gameIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(gameIDs))
	if len(gameIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("game_id", "COUNT(1) AS play_count").From("plays").
		Where(qb.AnyInt64("game_id", gameIDs)).
		GroupBy("game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build count plays query: %w", err)
	}

	var rows []struct {
		GameID    int64 `db:"game_id"`
		PlayCount int   `db:"play_count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count plays: %w", err)
	}
	for _, row := range rows {
		out[row.GameID] = row.PlayCount
	}
	return out, nil
}

func (r *PlayRepository) ListByGame(ctx context.Context, gameID int64) ([]play.Stored, error) {
	query, args, err := qb.Select("*").From("plays").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("play_index").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select plays query: %w", err)
	}

	var rows []playTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select plays for game %d: %w", gameID, err)
	}
	out := make([]play.Stored, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
