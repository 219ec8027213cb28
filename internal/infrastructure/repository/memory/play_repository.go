package memory

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/play"
)

type PlayRepository struct {
	s *Store
}

func (r *PlayRepository) UpsertMany(_ context.Context, gameID int64, plays []play.Play, now time.Time) (int, error) {
	plays = play.Dedupe(plays)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rows := r.s.plays[gameID]
	if rows == nil {
		rows = make(map[int]play.Stored, len(plays))
		r.s.plays[gameID] = rows
	}
	for _, p := range plays {
		if existing, ok := rows[p.PlayIndex]; ok && play.Same(existing.Play, p) {
			continue
		}
		p.Raw = maps.Clone(p.Raw)
		if p.OccurredAt != nil {
			at := *p.OccurredAt
			p.OccurredAt = &at
		}
		rows[p.PlayIndex] = play.Stored{GameID: gameID, Play: p, UpdatedAt: now}
	}
	return len(plays), nil
}

func (r *PlayRepository) CountByGame(_ context.Context, gameIDs []int64) (map[int64]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make(map[int64]int, len(gameIDs))
	for _, id := range gameIDs {
		out[id] = len(r.s.plays[id])
	}
	return out, nil
}

func (r *PlayRepository) ListByGame(_ context.Context, gameID int64) ([]play.Stored, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]play.Stored, 0, len(r.s.plays[gameID]))
	for _, row := range r.s.plays[gameID] {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Play.PlayIndex < out[j].Play.PlayIndex })
	return out, nil
}
