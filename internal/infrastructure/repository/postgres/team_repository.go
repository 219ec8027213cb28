package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/game-reconciler/internal/domain/team"
	qb "github.com/riskibarqy/game-reconciler/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// ListByLeague returns the league's teams with the number of games each has
// played, used to break ties between equally good name matches.
func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID int64) ([]team.Team, error) {
	query, args, err := sqlx.Named(`
SELECT t.*, COALESCE(c.game_count, 0) AS game_count
FROM teams t
LEFT JOIN (
    SELECT team_id, COUNT(1) AS game_count
    FROM (
        SELECT home_team_id AS team_id FROM games WHERE league_id = :league_id
        UNION ALL
        SELECT away_team_id AS team_id FROM games WHERE league_id = :league_id
    ) sides
    GROUP BY team_id
) c ON c.team_id = t.id
WHERE t.league_id = :league_id
ORDER BY t.id`, map[string]any{"league_id": leagueID})
	if err != nil {
		return nil, fmt.Errorf("bind select teams by league query: %w", err)
	}

	var rows []teamListRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select teams by league: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		item := row.toDomain()
		item.GameCount = row.GameCount
		out = append(out, item)
	}
	return out, nil
}

// Insert relies on the (league_id, lower(name)) unique index: when another
// writer got there first the existing row is returned instead.
func (r *TeamRepository) Insert(ctx context.Context, t team.Team) (team.Team, error) {
	insertModel := teamInsertModel{
		LeagueID:      t.LeagueID,
		Name:          t.Name,
		ShortName:     t.ShortName,
		Abbreviation:  t.Abbreviation,
		ExternalRef:   t.ExternalRef,
		ExternalCodes: encodeStringMap(t.ExternalCodes),
	}
	query, args, err := qb.InsertModel("teams", insertModel, "ON CONFLICT DO NOTHING RETURNING *")
	if err != nil {
		return team.Team{}, fmt.Errorf("build insert team query: %w", err)
	}

	var row teamTableModel
	err = r.db.GetContext(ctx, &row, query, args...)
	if err == nil {
		return row.toDomain(), nil
	}
	if !isNotFound(err) {
		return team.Team{}, fmt.Errorf("insert team %q: %w", t.Name, err)
	}

	query, args, err = qb.Select("*").From("teams").
		Where(
			qb.Eq("league_id", t.LeagueID),
			qb.Expr("LOWER(name) = LOWER(?)", t.Name),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build select existing team query: %w", err)
	}
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return team.Team{}, fmt.Errorf("select existing team %q: %w", t.Name, err)
	}
	return row.toDomain(), nil
}

func (r *TeamRepository) Update(ctx context.Context, t team.Team) error {
	query, args, err := qb.Update("teams").
		Set("name", t.Name).
		Set("short_name", t.ShortName).
		Set("abbreviation", t.Abbreviation).
		Set("external_ref", t.ExternalRef).
		Set("external_codes", encodeStringMap(t.ExternalCodes)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", t.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("team name %q already used in league %d: %w", t.Name, t.LeagueID, err)
		}
		return fmt.Errorf("update team %d: %w", t.ID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("team %d not found", t.ID)
	}
	return nil
}
