package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
)

type GameRepository struct {
	s *Store
}

func cloneGame(g game.Game) game.Game {
	g.ExternalIDs = maps.Clone(g.ExternalIDs)
	return g
}

func (r *GameRepository) Get(_ context.Context, id int64) (game.Game, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.games[id]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(g), true, nil
}

func (r *GameRepository) FindByExternalID(_ context.Context, leagueID int64, source, externalID string) (game.Game, bool, error) {
	if externalID == "" {
		return game.Game{}, false, nil
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found game.Game
	ok := false
	for _, g := range r.s.games {
		if g.LeagueID != leagueID {
			continue
		}
		match := g.ExternalIDs[source] == externalID
		if source == "" {
			match = g.SourceGameKey == externalID
		}
		if match && (!ok || g.ID < found.ID) {
			found, ok = g, true
		}
	}
	return cloneGame(found), ok, nil
}

func (r *GameRepository) FindCandidates(_ context.Context, leagueID int64, from, to time.Time) ([]game.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, g := range r.s.games {
		if g.LeagueID != leagueID || g.GameDate.Before(from) || g.GameDate.After(to) {
			continue
		}
		out = append(out, cloneGame(g))
	}
	sortGames(out)
	return out, nil
}

func (r *GameRepository) CreateStub(_ context.Context, stub game.Stub, now time.Time) (game.Game, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	date := game.CalendarDate(stub.GameDate)
	var keyed game.Game
	keyTaken := false
	for _, g := range r.s.games {
		if g.LeagueID != stub.LeagueID {
			continue
		}
		if g.HomeTeamID == stub.HomeTeamID && g.AwayTeamID == stub.AwayTeamID && g.GameDate.Equal(date) {
			return cloneGame(g), false, nil
		}
		if stub.SourceGameKey == "" || g.SourceGameKey != stub.SourceGameKey {
			continue
		}
		keyTaken = true
		if g.HasTeams(stub.HomeTeamID, stub.AwayTeamID) && (keyed.ID == 0 || g.ID < keyed.ID) {
			keyed = g
		}
	}
	if keyed.ID != 0 {
		return cloneGame(keyed), false, nil
	}

	g := game.FromStub(stub, now)
	if keyTaken {
		g.SourceGameKey = ""
	}
	g.ID = r.s.nextID()
	r.s.games[g.ID] = cloneGame(g)
	return g, true, nil
}

func (r *GameRepository) Upsert(_ context.Context, id int64, in game.Update, now time.Time) (game.Game, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.games[id]
	if !ok {
		return game.Game{}, false, fmt.Errorf("game %d not found", id)
	}
	merged, changed := game.Merge(existing, in, now)
	r.s.games[id] = cloneGame(merged)
	return merged, changed, nil
}

func (r *GameRepository) Touch(_ context.Context, id int64, kind game.TouchKind, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.games[id]
	if !ok {
		return fmt.Errorf("game %d not found", id)
	}
	ts := at
	switch kind {
	case game.TouchScraped:
		g.LastScrapedAt = &ts
	case game.TouchPbp:
		g.LastPbpAt = &ts
	case game.TouchBoxscore:
		g.LastBoxscoreAt = &ts
	case game.TouchSocial:
		g.LastSocialAt = &ts
	default:
		return fmt.Errorf("unknown touch kind %q", kind)
	}
	r.s.games[id] = g
	return nil
}

func (r *GameRepository) ListByStatus(_ context.Context, leagueID int64, statuses []game.Status) ([]game.Game, error) {
	want := make(map[game.Status]struct{}, len(statuses))
	for _, st := range statuses {
		want[st] = struct{}{}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, g := range r.s.games {
		if _, ok := want[g.Status]; ok && g.LeagueID == leagueID {
			out = append(out, cloneGame(g))
		}
	}
	sortGames(out)
	return out, nil
}

func (r *GameRepository) ListActive(_ context.Context, leagueID int64, params game.WindowParams, now time.Time) ([]game.ActiveGame, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]game.ActiveGame, 0)
	for _, g := range r.s.games {
		if g.LeagueID != leagueID {
			continue
		}
		state := game.ClassifyWindow(g, params, now)
		if state == game.WindowNone {
			continue
		}
		out = append(out, game.ActiveGame{Game: cloneGame(g), State: state})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Game.StartTime(), out[j].Game.StartTime()
		if !a.Equal(b) {
			return a.Before(b)
		}
		return out[i].Game.ID < out[j].Game.ID
	})
	return out, nil
}

func sortGames(games []game.Game) {
	sort.Slice(games, func(i, j int) bool {
		if !games[i].GameDate.Equal(games[j].GameDate) {
			return games[i].GameDate.Before(games[j].GameDate)
		}
		return games[i].ID < games[j].ID
	})
}
