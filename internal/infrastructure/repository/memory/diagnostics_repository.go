package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/diagnostics"
	"github.com/riskibarqy/game-reconciler/internal/domain/game"
)

type DiagnosticsRepository struct {
	s *Store
}

func (r *DiagnosticsRepository) ListExternalIDGroups(_ context.Context, leagueID int64) ([]diagnostics.ExternalIDGroup, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type groupKey struct{ source, value string }
	groups := make(map[groupKey][]diagnostics.ExternalIDGame)
	for _, g := range r.s.games {
		if g.LeagueID != leagueID {
			continue
		}
		for source, value := range g.ExternalIDs {
			key := groupKey{source: source, value: value}
			groups[key] = append(groups[key], diagnostics.ExternalIDGame{
				GameID:     g.ID,
				HomeTeamID: g.HomeTeamID,
				AwayTeamID: g.AwayTeamID,
				StartTime:  g.StartTime(),
			})
		}
	}

	out := make([]diagnostics.ExternalIDGroup, 0)
	for key, games := range groups {
		if len(games) < 2 {
			continue
		}
		sort.Slice(games, func(i, j int) bool { return games[i].GameID < games[j].GameID })
		out = append(out, diagnostics.ExternalIDGroup{Source: key.source, Value: key.value, Games: games})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

func (r *DiagnosticsRepository) ReplaceConflicts(_ context.Context, leagueID int64, conflicts []diagnostics.Conflict) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current := r.s.conflicts[leagueID]
	if current == nil {
		current = make(map[string]diagnostics.Conflict, len(conflicts))
		r.s.conflicts[leagueID] = current
	}

	keep := make(map[string]struct{}, len(conflicts))
	for _, c := range conflicts {
		keep[c.Key()] = struct{}{}
		if _, ok := current[c.Key()]; ok {
			continue
		}
		c.LeagueID = leagueID
		current[c.Key()] = c
	}
	for key, c := range current {
		if _, ok := keep[key]; !ok && c.ResolvedAt == nil {
			delete(current, key)
		}
	}
	return nil
}

func (r *DiagnosticsRepository) ListConflicts(_ context.Context, leagueID int64) ([]diagnostics.Conflict, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]diagnostics.Conflict, 0, len(r.s.conflicts[leagueID]))
	for _, c := range r.s.conflicts[leagueID] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GameID != out[j].GameID {
			return out[i].GameID < out[j].GameID
		}
		if out[i].ConflictGameID != out[j].ConflictGameID {
			return out[i].ConflictGameID < out[j].ConflictGameID
		}
		return out[i].ExternalID < out[j].ExternalID
	})
	return out, nil
}

func (r *DiagnosticsRepository) ListPbpCandidates(_ context.Context, leagueID int64) ([]diagnostics.PbpCandidate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]diagnostics.PbpCandidate, 0)
	for _, g := range r.s.games {
		if g.LeagueID != leagueID || (g.Status != game.StatusLive && g.Status != game.StatusFinal) {
			continue
		}
		out = append(out, diagnostics.PbpCandidate{
			GameID:    g.ID,
			Status:    g.Status,
			PlayCount: len(r.s.plays[g.ID]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out, nil
}

func (r *DiagnosticsRepository) ReplaceMissingPbp(_ context.Context, leagueID int64, entries []diagnostics.MissingPbp, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current := r.s.missing[leagueID]
	next := make(map[int64]diagnostics.MissingPbp, len(entries))
	for _, e := range entries {
		e.LeagueID = leagueID
		e.UpdatedAt = now
		if prev, ok := current[e.GameID]; ok {
			e.DetectedAt = prev.DetectedAt
		}
		next[e.GameID] = e
	}
	r.s.missing[leagueID] = next
	return nil
}

func (r *DiagnosticsRepository) ListMissingPbp(_ context.Context, leagueID int64) ([]diagnostics.MissingPbp, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]diagnostics.MissingPbp, 0, len(r.s.missing[leagueID]))
	for _, e := range r.s.missing[leagueID] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out, nil
}
