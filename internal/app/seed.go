package app

import (
	"context"
	"fmt"

	"github.com/riskibarqy/game-reconciler/internal/config"
	"github.com/riskibarqy/game-reconciler/internal/infrastructure/repository/postgres"
)

// MigrationURL is the DSN golang-migrate should use for cfg.
func MigrationURL(cfg config.Config) string {
	return normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
}

// SeedLeagues inserts every configured league row that is missing. It returns
// the number of league configs considered.
func SeedLeagues(ctx context.Context, cfg config.Config) (int, error) {
	set, err := LoadLeagues(cfg)
	if err != nil {
		return 0, err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := postgres.BootstrapSeed(ctx, db, set.Configs); err != nil {
		return 0, fmt.Errorf("seed leagues: %w", err)
	}
	return len(set.Configs), nil
}
