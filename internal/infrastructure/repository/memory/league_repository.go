package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/game-reconciler/internal/domain/league"
)

type LeagueRepository struct {
	s *Store
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]league.League, 0, len(r.s.leagues))
	for _, item := range r.s.leagues {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *LeagueRepository) GetByCode(_ context.Context, code string) (league.League, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	code = league.NormalizeCode(code)
	for _, item := range r.s.leagues {
		if item.Code == code {
			return item, true, nil
		}
	}
	return league.League{}, false, nil
}
