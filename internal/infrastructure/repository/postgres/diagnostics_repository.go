package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/game-reconciler/internal/domain/diagnostics"
	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	qb "github.com/riskibarqy/game-reconciler/internal/platform/querybuilder"
)

type DiagnosticsRepository struct {
	db *sqlx.DB
}

func NewDiagnosticsRepository(db *sqlx.DB) *DiagnosticsRepository {
	return &DiagnosticsRepository{db: db}
}

func (r *DiagnosticsRepository) ListExternalIDGroups(ctx context.Context, leagueID int64) ([]diagnostics.ExternalIDGroup, error) {
	const query = `
WITH ids AS (
    SELECT e.key AS source, e.value AS value, g.id AS game_id,
           g.home_team_id, g.away_team_id,
           COALESCE(g.tip_time, CAST(g.game_date AS timestamp) AT TIME ZONE 'UTC') AS start_time
    FROM games g
    CROSS JOIN LATERAL jsonb_each_text(g.external_ids) e
    WHERE g.league_id = $1
)
SELECT ids.source, ids.value, ids.game_id, ids.home_team_id, ids.away_team_id, ids.start_time
FROM ids
JOIN (
    SELECT source, value
    FROM ids
    GROUP BY source, value
    HAVING COUNT(DISTINCT game_id) > 1
) shared ON shared.source = ids.source AND shared.value = ids.value
ORDER BY ids.source, ids.value, ids.game_id`

	var rows []externalIDGameRow
	if err := r.db.SelectContext(ctx, &rows, query, leagueID); err != nil {
		return nil, fmt.Errorf("select shared external ids league=%d: %w", leagueID, err)
	}

	out := make([]diagnostics.ExternalIDGroup, 0)
	for _, row := range rows {
		n := len(out)
		if n == 0 || out[n-1].Source != row.Source || out[n-1].Value != row.Value {
			out = append(out, diagnostics.ExternalIDGroup{Source: row.Source, Value: row.Value})
			n++
		}
		out[n-1].Games = append(out[n-1].Games, diagnostics.ExternalIDGame{
			GameID:     row.GameID,
			HomeTeamID: row.HomeTeamID,
			AwayTeamID: row.AwayTeamID,
			StartTime:  row.StartTime.UTC(),
		})
	}
	return out, nil
}

// ReplaceConflicts inserts new conflicts and drops unresolved rows that are
// no longer detected. Existing rows are left untouched so detected_at
// survives reruns.
func (r *DiagnosticsRepository) ReplaceConflicts(ctx context.Context, leagueID int64, conflicts []diagnostics.Conflict) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace conflicts: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	keys := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		keys = append(keys, c.Key())

		query, args, err := qb.InsertModel("game_conflicts", conflictInsertModel{
			LeagueID:       leagueID,
			ExternalID:     c.ExternalID,
			GameID:         c.GameID,
			ConflictGameID: c.ConflictGameID,
			Reason:         c.Reason,
			DetectedAt:     c.DetectedAt,
		}, "ON CONFLICT (league_id, external_id, game_id, conflict_game_id) DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert conflict query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert conflict %s: %w", c.Key(), err)
		}
	}

	query, args, err := qb.DeleteFrom("game_conflicts").
		Where(
			qb.Eq("league_id", leagueID),
			qb.IsNull("resolved_at"),
			qb.Expr("NOT (external_id || '#' || conflict_game_id || '#' || game_id = ANY(?))", pq.Array(keys)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete stale conflicts query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete stale conflicts league=%d: %w", leagueID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace conflicts tx: %w", err)
	}
	return nil
}

func (r *DiagnosticsRepository) ListConflicts(ctx context.Context, leagueID int64) ([]diagnostics.Conflict, error) {
	query, args, err := qb.Select("*").From("game_conflicts").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("game_id", "conflict_game_id", "external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select conflicts query: %w", err)
	}

	var rows []conflictTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select conflicts league=%d: %w", leagueID, err)
	}
	out := make([]diagnostics.Conflict, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *DiagnosticsRepository) ListPbpCandidates(ctx context.Context, leagueID int64) ([]diagnostics.PbpCandidate, error) {
	query, args, err := qb.Select("g.id AS game_id", "g.status", "COUNT(p.play_index) AS play_count").
		From("games g LEFT JOIN plays p ON p.game_id = g.id").
		Where(
			qb.Eq("g.league_id", leagueID),
			qb.In("g.status", []any{string(game.StatusLive), string(game.StatusFinal)}),
		).
		GroupBy("g.id", "g.status").
		OrderBy("g.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select pbp candidates query: %w", err)
	}

	var rows []pbpCandidateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select pbp candidates league=%d: %w", leagueID, err)
	}
	out := make([]diagnostics.PbpCandidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, diagnostics.PbpCandidate{
			GameID:    row.GameID,
			Status:    game.Status(row.Status),
			PlayCount: row.PlayCount,
		})
	}
	return out, nil
}

func (r *DiagnosticsRepository) ReplaceMissingPbp(ctx context.Context, leagueID int64, entries []diagnostics.MissingPbp, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace missing pbp: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	gameIDs := make([]int64, 0, len(entries))
	for _, e := range entries {
		gameIDs = append(gameIDs, e.GameID)
	}

	query, args, err := qb.DeleteFrom("missing_pbp").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Expr("NOT (game_id = ANY(?))", pq.Array(gameIDs)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete missing pbp query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete cleared missing pbp league=%d: %w", leagueID, err)
	}

	for _, e := range entries {
		query, args, err := qb.InsertModel("missing_pbp", missingPbpTableModel{
			GameID:     e.GameID,
			LeagueID:   leagueID,
			Status:     string(e.Status),
			PlayCount:  e.PlayCount,
			Expected:   e.Expected,
			Reason:     e.Reason,
			DetectedAt: now,
			UpdatedAt:  now,
		}, `ON CONFLICT (game_id)
DO UPDATE SET
    status = EXCLUDED.status,
    play_count = EXCLUDED.play_count,
    expected = EXCLUDED.expected,
    reason = EXCLUDED.reason,
    updated_at = EXCLUDED.updated_at`)
		if err != nil {
			return fmt.Errorf("build upsert missing pbp query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert missing pbp game=%d: %w", e.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace missing pbp tx: %w", err)
	}
	return nil
}

func (r *DiagnosticsRepository) ListMissingPbp(ctx context.Context, leagueID int64) ([]diagnostics.MissingPbp, error) {
	query, args, err := qb.Select("*").From("missing_pbp").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select missing pbp query: %w", err)
	}

	var rows []missingPbpTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select missing pbp league=%d: %w", leagueID, err)
	}
	out := make([]diagnostics.MissingPbp, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
