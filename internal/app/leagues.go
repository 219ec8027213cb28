package app

import (
	"fmt"

	"github.com/riskibarqy/game-reconciler/internal/config"
	"github.com/riskibarqy/game-reconciler/internal/domain/league"
	"github.com/riskibarqy/game-reconciler/internal/domain/team"
)

// LeagueSet is the resolved league configuration for one process.
type LeagueSet struct {
	// Configs is every known league, used for seeding so ids stay stable
	// when LEAGUES narrows the active set.
	Configs  []league.Config
	Registry *league.Registry
	Rules    *team.Rules
}

func LoadLeagues(cfg config.Config) (LeagueSet, error) {
	configs := league.DefaultConfigs()
	var overrides map[string]map[string]string
	if cfg.LeagueConfigPath != "" {
		overlay, err := league.LoadFile(cfg.LeagueConfigPath, configs)
		if err != nil {
			return LeagueSet{}, err
		}
		configs = overlay.Configs
		overrides = overlay.TeamOverrides
	}

	registry, err := league.NewRegistry(configs...)
	if err != nil {
		return LeagueSet{}, fmt.Errorf("build league registry: %w", err)
	}
	if len(cfg.Leagues) > 0 {
		registry, err = registry.Subset(cfg.Leagues)
		if err != nil {
			return LeagueSet{}, fmt.Errorf("select leagues: %w", err)
		}
	}

	rules := team.DefaultRules()
	for code, table := range overrides {
		if _, err := registry.Get(code); err != nil {
			continue
		}
		rules = rules.WithOverrides(code, table)
	}

	return LeagueSet{Configs: configs, Registry: registry, Rules: rules}, nil
}
