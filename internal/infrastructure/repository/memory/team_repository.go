package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/riskibarqy/game-reconciler/internal/domain/team"
)

type TeamRepository struct {
	s *Store
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID int64) ([]team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, g := range r.s.games {
		if g.LeagueID != leagueID {
			continue
		}
		counts[g.HomeTeamID]++
		counts[g.AwayTeamID]++
	}

	out := make([]team.Team, 0)
	for _, item := range r.s.teams {
		if item.LeagueID != leagueID {
			continue
		}
		item.ExternalCodes = maps.Clone(item.ExternalCodes)
		item.GameCount = counts[item.ID]
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TeamRepository) Insert(_ context.Context, t team.Team) (team.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.teams {
		if existing.LeagueID == t.LeagueID && strings.EqualFold(existing.Name, t.Name) {
			existing.ExternalCodes = maps.Clone(existing.ExternalCodes)
			return existing, nil
		}
	}

	t.ID = r.s.nextID()
	t.GameCount = 0
	t.ExternalCodes = maps.Clone(t.ExternalCodes)
	r.s.teams[t.ID] = t
	return t, nil
}

func (r *TeamRepository) Update(_ context.Context, t team.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.teams[t.ID]; !ok {
		return fmt.Errorf("team %d not found", t.ID)
	}
	for _, other := range r.s.teams {
		if other.ID != t.ID && other.LeagueID == t.LeagueID && strings.EqualFold(other.Name, t.Name) {
			return fmt.Errorf("team name %q already used in league %d", t.Name, t.LeagueID)
		}
	}
	t.GameCount = 0
	t.ExternalCodes = maps.Clone(t.ExternalCodes)
	r.s.teams[t.ID] = t
	return nil
}
