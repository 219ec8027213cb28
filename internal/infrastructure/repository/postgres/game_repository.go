package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	qb "github.com/riskibarqy/game-reconciler/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

var touchColumns = map[game.TouchKind]string{
	game.TouchScraped:  "last_scraped_at",
	game.TouchPbp:      "last_pbp_at",
	game.TouchBoxscore: "last_boxscore_at",
	game.TouchSocial:   "last_social_at",
}

func (r *GameRepository) Get(ctx context.Context, id int64) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game %d: %w", id, err)
	}
	return row.toDomain(), true, nil
}

func (r *GameRepository) FindByExternalID(ctx context.Context, leagueID int64, source, externalID string) (game.Game, bool, error) {
	if externalID == "" {
		return game.Game{}, false, nil
	}

	match := qb.Expr("external_ids ->> ? = ?", source, externalID)
	if source == "" {
		match = qb.Eq("source_game_key", externalID)
	}
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("league_id", leagueID), match).
		OrderBy("id").
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game by external id query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by external id %s=%s: %w", source, externalID, err)
	}
	return row.toDomain(), true, nil
}

func (r *GameRepository) FindCandidates(ctx context.Context, leagueID int64, from, to time.Time) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Gte("game_date", game.CalendarDate(from)),
			qb.Lte("game_date", game.CalendarDate(to)),
		).
		OrderBy("game_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select candidate games query: %w", err)
	}
	return r.selectGames(ctx, query, args)
}

// CreateStub inserts a scheduled game. The identity and source-key unique
// indexes make concurrent creators converge on one row. A source key already
// held by a different matchup is dropped from the new stub.
func (r *GameRepository) CreateStub(ctx context.Context, stub game.Stub, now time.Time) (game.Game, bool, error) {
	g := game.FromStub(stub, now)
	created, ok, err := r.insertStub(ctx, g)
	if err != nil || ok {
		return created, ok, err
	}

	identity := qb.Expr("(home_team_id = ? AND away_team_id = ? AND game_date = ?)", g.HomeTeamID, g.AwayTeamID, g.GameDate)
	existing, found, err := r.findOne(ctx, qb.Eq("league_id", g.LeagueID), identity)
	if err != nil || found {
		return existing, false, err
	}
	if g.SourceGameKey == "" {
		return game.Game{}, false, fmt.Errorf("insert game stub: conflicting row for league %d not found", g.LeagueID)
	}

	samePair := qb.Expr("((home_team_id = ? AND away_team_id = ?) OR (home_team_id = ? AND away_team_id = ?))",
		g.HomeTeamID, g.AwayTeamID, g.AwayTeamID, g.HomeTeamID)
	existing, found, err = r.findOne(ctx, qb.Eq("league_id", g.LeagueID), qb.Eq("source_game_key", g.SourceGameKey), samePair)
	if err != nil || found {
		return existing, false, err
	}

	g.SourceGameKey = ""
	created, ok, err = r.insertStub(ctx, g)
	if err != nil || ok {
		return created, ok, err
	}
	existing, found, err = r.findOne(ctx, qb.Eq("league_id", g.LeagueID), identity)
	if err != nil {
		return game.Game{}, false, err
	}
	if !found {
		return game.Game{}, false, fmt.Errorf("insert game stub: conflicting row for league %d not found", g.LeagueID)
	}
	return existing, false, nil
}

func (r *GameRepository) insertStub(ctx context.Context, g game.Game) (game.Game, bool, error) {
	query, args, err := qb.InsertModel("games", newGameInsertModel(g), "ON CONFLICT DO NOTHING RETURNING *")
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build insert game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("insert game stub: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *GameRepository) findOne(ctx context.Context, conds ...qb.Condition) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").Where(conds...).OrderBy("id").Limit(1).ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select existing game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select existing game: %w", err)
	}
	return row.toDomain(), true, nil
}

// Upsert locks the row, merges in Go and writes the full mutable column set
// only when the merge changed something. Concurrent writers of the same game
// are serialized by the row lock, so status transitions never race.
func (r *GameRepository) Upsert(ctx context.Context, id int64, in game.Update, now time.Time) (game.Game, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return game.Game{}, false, fmt.Errorf("begin tx upsert game: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Select("*").From("games").Where(qb.Eq("id", id)).ForUpdate().ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build lock game query: %w", err)
	}
	var row gameTableModel
	if err := tx.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, fmt.Errorf("game %d not found", id)
		}
		return game.Game{}, false, fmt.Errorf("lock game %d: %w", id, err)
	}

	merged, changed := game.Merge(row.toDomain(), in, now)
	update := qb.Update("games").Set("last_scraped_at", now)
	if changed {
		update = update.
			Set("season", merged.Season).
			Set("season_type", merged.SeasonType).
			Set("tip_time", merged.TipTime).
			Set("home_score", merged.HomeScore).
			Set("away_score", merged.AwayScore).
			Set("venue", merged.Venue).
			Set("status", string(merged.Status)).
			Set("end_time", merged.EndTime).
			Set("source_game_key", merged.SourceGameKey).
			Set("external_ids", encodeStringMap(merged.ExternalIDs)).
			Set("scrape_version", merged.ScrapeVersion).
			Set("last_ingested_at", merged.LastIngestedAt).
			Set("updated_at", merged.UpdatedAt)
	}
	query, args, err = update.Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build update game query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return game.Game{}, false, fmt.Errorf("update game %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return game.Game{}, false, fmt.Errorf("commit upsert game tx: %w", err)
	}
	return merged, changed, nil
}

func (r *GameRepository) Touch(ctx context.Context, id int64, kind game.TouchKind, at time.Time) error {
	column, ok := touchColumns[kind]
	if !ok {
		return fmt.Errorf("unknown touch kind %q", kind)
	}

	query, args, err := qb.Update("games").Set(column, at).Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build touch game query: %w", err)
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("touch game %d %s: %w", id, kind, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("game %d not found", id)
	}
	return nil
}

func (r *GameRepository) ListByStatus(ctx context.Context, leagueID int64, statuses []game.Status) ([]game.Game, error) {
	values := make([]any, 0, len(statuses))
	for _, st := range statuses {
		values = append(values, string(st))
	}

	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("league_id", leagueID), qb.In("status", values)).
		OrderBy("game_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by status query: %w", err)
	}
	return r.selectGames(ctx, query, args)
}

// ListActive classifies games in SQL with the same rules as
// game.ClassifyWindow and drops NONE.
func (r *GameRepository) ListActive(ctx context.Context, leagueID int64, params game.WindowParams, now time.Time) ([]game.ActiveGame, error) {
	query, args, err := sqlx.Named(`
SELECT * FROM (
    SELECT g.*,
        CASE
            WHEN g.status = 'live' THEN 'IN'
            WHEN g.status IN ('scheduled', 'pregame')
                AND COALESCE(g.tip_time, CAST(g.game_date AS timestamp) AT TIME ZONE 'UTC') BETWEEN :pre_from AND :pre_to THEN 'PRE'
            WHEN g.status = 'final'
                AND COALESCE(g.end_time, COALESCE(g.tip_time, CAST(g.game_date AS timestamp) AT TIME ZONE 'UTC') + (:duration_secs * INTERVAL '1 second')) >= :post_cutoff THEN 'POST'
            ELSE 'NONE'
        END AS window_state
    FROM games g
    WHERE g.league_id = :league_id
      AND g.status IN ('scheduled', 'pregame', 'live', 'final')
) w
WHERE w.window_state <> 'NONE'
ORDER BY COALESCE(w.tip_time, CAST(w.game_date AS timestamp) AT TIME ZONE 'UTC'), w.id`, map[string]any{
		"league_id":     leagueID,
		"pre_from":      now.Add(-params.StaleAfter),
		"pre_to":        now.Add(params.PregameWindow),
		"duration_secs": params.EstimatedDuration.Seconds(),
		"post_cutoff":   now.Add(-params.PostGameLookback),
	})
	if err != nil {
		return nil, fmt.Errorf("bind select active games query: %w", err)
	}

	var rows []activeGameRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select active games: %w", err)
	}

	out := make([]game.ActiveGame, 0, len(rows))
	for _, row := range rows {
		out = append(out, game.ActiveGame{
			Game:  row.toDomain(),
			State: game.WindowState(row.WindowState),
		})
	}
	return out, nil
}

func (r *GameRepository) selectGames(ctx context.Context, query string, args []any) ([]game.Game, error) {
	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
