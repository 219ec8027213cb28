package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "status").
		From("games").
		Where(Eq("league_id", int64(3)), IsNull("end_time")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, status FROM games WHERE league_id = $1 AND end_time IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != int64(3) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderRangeAndLock(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 2)
	query, args, err := Select("*").
		From("games").
		Where(Gte("game_date", from), Lte("game_date", to), In("status", []any{"live", "final"})).
		ForUpdate().
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT * FROM games WHERE game_date >= $1 AND game_date <= $2 AND status IN ($3, $4) FOR UPDATE"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestOrAndExprConditions(t *testing.T) {
	query, args, err := Select("id").
		From("games").
		Where(
			Eq("league_id", 1),
			Or(Eq("source_game_key", "k1"), Expr("external_ids ->> ? = ?", "espn", "401")),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM games WHERE league_id = $1 AND (source_game_key = $2 OR external_ids ->> $3 = $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != "espn" || args[3] != "401" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestEmptyInConditions(t *testing.T) {
	query, _, err := Select("id").From("games").Where(In("id", nil), NotIn("status", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if want := "SELECT id FROM games WHERE 1=0 AND 1=1"; query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("game_odds").
		Columns("game_id", "book").
		Values(int64(7), "pinnacle").
		Suffix("ON CONFLICT (game_id, book) DO NOTHING RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO game_odds (game_id, book) VALUES ($1, $2) ON CONFLICT (game_id, book) DO NOTHING RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(7) || args[1] != "pinnacle" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderSuffixArgs(t *testing.T) {
	query, args, err := InsertInto("teams").
		Columns("league_id", "name").
		Values(1, "Boston Celtics").
		Suffix("ON CONFLICT (league_id, name) DO UPDATE SET updated_at = ? RETURNING id", "now").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO teams (league_id, name) VALUES ($1, $2) ON CONFLICT (league_id, name) DO UPDATE SET updated_at = $3 RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != "now" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		GameID  int64  `db:"game_id"`
		Book    string `db:"book"`
		skipped string
		Ignored string `db:"-"`
	}

	query, args, err := InsertModel("game_odds", row{GameID: 9, Book: "fanduel", skipped: "x"}, "")
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}
	if want := "INSERT INTO game_odds (game_id, book) VALUES ($1, $2)"; query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("games").
		Set("status", "final").
		SetExpr("scrape_version", "scrape_version + ?", 1).
		Where(Eq("id", int64(4))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE games SET status = $1, scrape_version = scrape_version + $2 WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "final" || args[2] != int64(4) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("missing_pbp").
		Where(Eq("league_id", int64(2)), Expr("NOT (game_id = ANY(?))", "{1,2}")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM missing_pbp WHERE league_id = $1 AND NOT (game_id = ANY($2))"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("missing_pbp").ToSQL(); err == nil {
		t.Fatalf("expected error for unconditioned delete")
	}
}

func TestAnyInt64(t *testing.T) {
	query, args, err := Select("game_id", "COUNT(1)").
		From("plays").
		Where(AnyInt64("game_id", []int64{1, 2})).
		GroupBy("game_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if want := "SELECT game_id, COUNT(1) FROM plays WHERE game_id = ANY($1) GROUP BY game_id"; query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
	if len(args) != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
