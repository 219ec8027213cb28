package memory

import "github.com/riskibarqy/game-reconciler/internal/domain/league"

// SeedLeagues turns league configs into league rows with stable ids in the
// order given.
func SeedLeagues(configs []league.Config) []league.League {
	out := make([]league.League, 0, len(configs))
	for i, cfg := range configs {
		out = append(out, league.League{
			ID:   int64(i + 1),
			Code: league.NormalizeCode(cfg.Code),
			Name: cfg.Name,
		})
	}
	return out
}
