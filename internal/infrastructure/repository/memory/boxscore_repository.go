package memory

import (
	"context"
	"maps"
	"reflect"
	"sort"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/boxscore"
)

type BoxscoreRepository struct {
	s *Store
}

func (r *BoxscoreRepository) UpsertTeamRow(_ context.Context, gameID, teamID int64, row boxscore.TeamRow, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := teamBoxKey{gameID: gameID, teamID: teamID}
	next := boxscore.StoredTeamRow{
		GameID:    gameID,
		TeamID:    teamID,
		Score:     row.Score,
		Stats:     maps.Clone(row.Stats),
		UpdatedAt: now,
	}
	if existing, ok := r.s.teamBox[key]; ok {
		if sameScore(existing.Score, next.Score) && reflect.DeepEqual(existing.Stats, next.Stats) {
			return false, nil
		}
	}
	r.s.teamBox[key] = next
	return true, nil
}

func (r *BoxscoreRepository) UpsertPlayerRow(_ context.Context, gameID, teamID int64, row boxscore.PlayerRow, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := playerBoxKey{gameID: gameID, teamID: teamID, player: boxscore.PlayerKey(row)}
	next := boxscore.StoredPlayerRow{
		GameID:           gameID,
		TeamID:           teamID,
		PlayerExternalID: row.PlayerExternalID,
		PlayerName:       row.PlayerName,
		Position:         row.Position,
		Role:             row.Role,
		Starter:          row.Starter,
		Stats:            maps.Clone(row.Stats),
		UpdatedAt:        now,
	}
	if existing, ok := r.s.playerBox[key]; ok {
		existing.UpdatedAt = now
		if reflect.DeepEqual(existing, next) {
			return false, nil
		}
	}
	r.s.playerBox[key] = next
	return true, nil
}

func (r *BoxscoreRepository) ListTeamRows(_ context.Context, gameID int64) ([]boxscore.StoredTeamRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]boxscore.StoredTeamRow, 0, 2)
	for key, row := range r.s.teamBox {
		if key.gameID == gameID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (r *BoxscoreRepository) ListPlayerRows(_ context.Context, gameID int64) ([]boxscore.StoredPlayerRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]boxscore.StoredPlayerRow, 0)
	for key, row := range r.s.playerBox {
		if key.gameID == gameID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TeamID != out[j].TeamID {
			return out[i].TeamID < out[j].TeamID
		}
		return boxscore.PlayerKey(boxscore.PlayerRow{PlayerExternalID: out[i].PlayerExternalID, PlayerName: out[i].PlayerName}) <
			boxscore.PlayerKey(boxscore.PlayerRow{PlayerExternalID: out[j].PlayerExternalID, PlayerName: out[j].PlayerName})
	})
	return out, nil
}

func sameScore(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
