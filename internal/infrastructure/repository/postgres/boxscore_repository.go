package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/game-reconciler/internal/domain/boxscore"
	qb "github.com/riskibarqy/game-reconciler/internal/platform/querybuilder"
)

type BoxscoreRepository struct {
	db *sqlx.DB
}

func NewBoxscoreRepository(db *sqlx.DB) *BoxscoreRepository {
	return &BoxscoreRepository{db: db}
}

func (r *BoxscoreRepository) UpsertTeamRow(ctx context.Context, gameID, teamID int64, row boxscore.TeamRow, now time.Time) (bool, error) {
	insertModel := teamBoxscoreTableModel{
		GameID:    gameID,
		TeamID:    teamID,
		Score:     row.Score,
		Stats:     encodeJSONMap(row.Stats),
		UpdatedAt: now,
	}
	query, args, err := qb.InsertModel("team_boxscores", insertModel, `ON CONFLICT (game_id, team_id)
DO UPDATE SET
    score = EXCLUDED.score,
    stats = EXCLUDED.stats,
    updated_at = EXCLUDED.updated_at
WHERE team_boxscores.score IS DISTINCT FROM EXCLUDED.score
   OR team_boxscores.stats IS DISTINCT FROM EXCLUDED.stats`)
	if err != nil {
		return false, fmt.Errorf("build upsert team boxscore query: %w", err)
	}
	return r.exec(ctx, query, args, "team boxscore", gameID, teamID)
}

func (r *BoxscoreRepository) UpsertPlayerRow(ctx context.Context, gameID, teamID int64, row boxscore.PlayerRow, now time.Time) (bool, error) {
	insertModel := playerBoxscoreTableModel{
		GameID:           gameID,
		TeamID:           teamID,
		PlayerKey:        boxscore.PlayerKey(row),
		PlayerExternalID: row.PlayerExternalID,
		PlayerName:       row.PlayerName,
		Position:         row.Position,
		Role:             row.Role,
		Starter:          row.Starter,
		Stats:            encodeJSONMap(row.Stats),
		UpdatedAt:        now,
	}
	query, args, err := qb.InsertModel("player_boxscores", insertModel, `ON CONFLICT (game_id, team_id, player_key)
DO UPDATE SET
    player_external_id = EXCLUDED.player_external_id,
    player_name = EXCLUDED.player_name,
    position = EXCLUDED.position,
    role = EXCLUDED.role,
    starter = EXCLUDED.starter,
    stats = EXCLUDED.stats,
    updated_at = EXCLUDED.updated_at
WHERE (player_boxscores.player_external_id, player_boxscores.player_name, player_boxscores.position,
       player_boxscores.role, player_boxscores.starter, player_boxscores.stats)
   IS DISTINCT FROM
      (EXCLUDED.player_external_id, EXCLUDED.player_name, EXCLUDED.position,
       EXCLUDED.role, EXCLUDED.starter, EXCLUDED.stats)`)
	if err != nil {
		return false, fmt.Errorf("build upsert player boxscore query: %w", err)
	}
	return r.exec(ctx, query, args, "player boxscore", gameID, teamID)
}

func (r *BoxscoreRepository) exec(ctx context.Context, query string, args []any, kind string, gameID, teamID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("upsert %s game=%d team=%d: %w", kind, gameID, teamID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read upsert %s result: %w", kind, err)
	}
	return affected > 0, nil
}

func (r *BoxscoreRepository) ListTeamRows(ctx context.Context, gameID int64) ([]boxscore.StoredTeamRow, error) {
	query, args, err := qb.Select("*").From("team_boxscores").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team boxscores query: %w", err)
	}

	var rows []teamBoxscoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team boxscores for game %d: %w", gameID, err)
	}
	out := make([]boxscore.StoredTeamRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *BoxscoreRepository) ListPlayerRows(ctx context.Context, gameID int64) ([]boxscore.StoredPlayerRow, error) {
	query, args, err := qb.Select("*").From("player_boxscores").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("team_id", "player_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player boxscores query: %w", err)
	}

	var rows []playerBoxscoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player boxscores for game %d: %w", gameID, err)
	}
	out := make([]boxscore.StoredPlayerRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
