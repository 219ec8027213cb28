package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/game-reconciler/internal/domain/league"
)

// BootstrapSeed makes sure every configured league has a row. Leagues from
// the migrations are left as they are; ones added through the league
// overlay file are inserted here.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, configs []league.Config) error {
	if db == nil {
		return fmt.Errorf("bootstrap seed: nil db")
	}
	if len(configs) == 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx bootstrap seed: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertLeague = `
INSERT INTO leagues (code, name)
VALUES (:code, :name)
ON CONFLICT (code) DO NOTHING`

	for _, cfg := range configs {
		code := league.NormalizeCode(cfg.Code)
		if code == "" {
			continue
		}
		name := cfg.Name
		if name == "" {
			name = code
		}
		query, args, err := sqlx.Named(insertLeague, map[string]any{"code": code, "name": name})
		if err != nil {
			return fmt.Errorf("build seed league query %s: %w", code, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("seed league %s: %w", code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bootstrap seed tx: %w", err)
	}
	return nil
}
