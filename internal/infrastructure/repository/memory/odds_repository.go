package memory

import (
	"context"
	"sort"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/odds"
)

type OddsRepository struct {
	s *Store
}

func keyOf(line odds.Line) oddsKey {
	return oddsKey{
		gameID:  line.GameID,
		book:    line.Book,
		market:  line.MarketType,
		side:    line.Side,
		closing: line.IsClosingLine,
	}
}

func (r *OddsRepository) UpsertOpening(_ context.Context, line odds.Line, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := keyOf(line)
	if _, ok := r.s.odds[key]; ok {
		return false, nil
	}
	line.ID = r.s.nextID()
	line.CreatedAt, line.UpdatedAt = now, now
	r.s.odds[key] = line
	return true, nil
}

func (r *OddsRepository) UpsertClosing(_ context.Context, line odds.Line, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := keyOf(line)
	existing, ok := r.s.odds[key]
	if ok && odds.SamePrice(existing, line) {
		return false, nil
	}
	if ok {
		line.ID, line.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		line.ID, line.CreatedAt = r.s.nextID(), now
	}
	line.UpdatedAt = now
	r.s.odds[key] = line
	return true, nil
}

func (r *OddsRepository) ListByGame(_ context.Context, gameID int64) ([]odds.Line, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]odds.Line, 0)
	for key, line := range r.s.odds {
		if key.gameID == gameID {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
