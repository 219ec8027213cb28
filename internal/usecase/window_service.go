package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
)

type WindowServiceConfig struct {
	// PbpStaleAfter is how old last_pbp_at may get before a PRE/IN game
	// needs another play-by-play fetch.
	PbpStaleAfter time.Duration
}

// WindowService answers "what is happening now" queries. Window states are
// computed per query against the current clock and never stored.
type WindowService struct {
	leagues *LeagueDirectory
	games   game.Repository
	cfg     WindowServiceConfig
	now     func() time.Time
	logger  *logging.Logger
}

func NewWindowService(leagues *LeagueDirectory, games game.Repository, cfg WindowServiceConfig, logger *logging.Logger) *WindowService {
	if cfg.PbpStaleAfter <= 0 {
		cfg.PbpStaleAfter = 2 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WindowService{
		leagues: leagues,
		games:   games,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.Named("window"),
	}
}

// ActiveGames lists games in PRE, IN or POST for one league, or every
// configured league when leagueCode is empty.
func (s *WindowService) ActiveGames(ctx context.Context, leagueCode string) ([]game.ActiveGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WindowService.ActiveGames")
	defer span.End()

	leagues, err := s.leagues.All(ctx, leagueCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]game.ActiveGame, 0)
	for _, lc := range leagues {
		items, err := s.games.ListActive(ctx, lc.League.ID, game.NewWindowParams(lc.Config), now)
		if err != nil {
			return nil, fmt.Errorf("list active games for %s: %w", lc.Config.Code, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

// GamesNeedingPbp returns PRE/IN games in live-feed leagues whose play-by-play
// was never fetched or is older than PbpStaleAfter.
func (s *WindowService) GamesNeedingPbp(ctx context.Context, leagueCode string) ([]game.ActiveGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WindowService.GamesNeedingPbp")
	defer span.End()

	leagues, err := s.leagues.All(ctx, leagueCode)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cutoff := now.Add(-s.cfg.PbpStaleAfter)
	out := make([]game.ActiveGame, 0)
	for _, lc := range leagues {
		if !lc.Config.HasLiveFeed {
			continue
		}
		items, err := s.games.ListActive(ctx, lc.League.ID, game.NewWindowParams(lc.Config), now)
		if err != nil {
			return nil, fmt.Errorf("list active games for %s: %w", lc.Config.Code, err)
		}
		for _, item := range items {
			if item.State != game.WindowPre && item.State != game.WindowIn {
				continue
			}
			if item.Game.LastPbpAt != nil && item.Game.LastPbpAt.After(cutoff) {
				continue
			}
			out = append(out, item)
		}
	}
	return out, nil
}

// GamesNeedingOdds returns PRE/IN games plus POST games, which stay eligible
// through the post-game lookback so closing lines can still be captured.
func (s *WindowService) GamesNeedingOdds(ctx context.Context, leagueCode string) ([]game.ActiveGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WindowService.GamesNeedingOdds")
	defer span.End()

	items, err := s.ActiveGames(ctx, leagueCode)
	if err != nil {
		return nil, err
	}
	out := make([]game.ActiveGame, 0, len(items))
	for _, item := range items {
		switch item.State {
		case game.WindowPre, game.WindowIn, game.WindowPost:
			out = append(out, item)
		}
	}
	return out, nil
}

// TeamsInWindow returns each team with a game in any active window once,
// even when it plays twice inside the window.
func (s *WindowService) TeamsInWindow(ctx context.Context, leagueCode string) ([]int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WindowService.TeamsInWindow")
	defer span.End()

	items, err := s.ActiveGames(ctx, leagueCode)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(items)*2)
	out := make([]int64, 0, len(items)*2)
	for _, item := range items {
		for _, id := range []int64{item.Game.HomeTeamID, item.Game.AwayTeamID} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
