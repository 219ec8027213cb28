package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

type SweepResult struct {
	League     string
	Examined   int
	Promoted   int
	Failed     int
	Promotions []game.Promotion
	Err        error
}

// LifecycleSweepService promotes games whose status should change purely
// because time passed. Every change goes through the same merge path as
// source writes, so a sweep can never regress a status a source reported.
type LifecycleSweepService struct {
	leagues     *LeagueDirectory
	games       game.Repository
	concurrency int
	now         func() time.Time
	logger      *logging.Logger
}

func NewLifecycleSweepService(leagues *LeagueDirectory, games game.Repository, concurrency int, logger *logging.Logger) *LifecycleSweepService {
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LifecycleSweepService{
		leagues:     leagues,
		games:       games,
		concurrency: concurrency,
		now:         time.Now,
		logger:      logger.Named("lifecycle_sweep"),
	}
}

// Run sweeps one league. Per-game failures are counted and logged.
func (s *LifecycleSweepService) Run(ctx context.Context, leagueCode string) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LifecycleSweepService.Run",
		attribute.String("league", leagueCode),
	)
	defer span.End()

	lc, err := s.leagues.Resolve(ctx, leagueCode)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{League: lc.Config.Code}
	items, err := s.games.ListByStatus(ctx, lc.League.ID, game.SweepStatuses)
	if err != nil {
		return result, fmt.Errorf("list games to sweep for %s: %w", lc.Config.Code, err)
	}

	now := s.now()
	for _, g := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Examined++

		p, ok := game.TimePromotion(g, lc.Config, now)
		if !ok {
			continue
		}

		_, changed, err := s.games.Upsert(ctx, g.ID, game.Update{Status: p.To, EndTime: p.EndTime}, now)
		if err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "promote game failed",
				"game_id", g.ID,
				"league", lc.Config.Code,
				"to", string(p.To),
				"error", err,
			)
			continue
		}
		if !changed {
			continue
		}

		result.Promoted++
		result.Promotions = append(result.Promotions, p)
		if p.Reason == game.ReasonStaleTimeout {
			s.logger.WarnContext(ctx, "forcing stale game to final",
				"game_id", g.ID,
				"league", lc.Config.Code,
				"from", string(p.From),
				"reason", p.Reason,
			)
			continue
		}
		s.logger.InfoContext(ctx, "game promoted",
			"game_id", g.ID,
			"league", lc.Config.Code,
			"from", string(p.From),
			"to", string(p.To),
			"reason", p.Reason,
		)
	}
	return result, nil
}

// RunAll sweeps every configured league concurrently. A league failure is
// reported in its result and does not stop the others.
func (s *LifecycleSweepService) RunAll(ctx context.Context) []SweepResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.LifecycleSweepService.RunAll")
	defer span.End()

	p := pool.NewWithResults[SweepResult]().WithMaxGoroutines(s.concurrency)
	for _, code := range s.leagues.Registry().Codes() {
		p.Go(func() SweepResult {
			result, err := s.Run(ctx, code)
			if err != nil {
				s.logger.ErrorContext(ctx, "league sweep failed", "league", code, "error", err)
				result.League = code
				result.Err = err
			}
			return result
		})
	}

	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].League < results[j].League })
	return results
}
