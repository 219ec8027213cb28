package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/play"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
)

// PlayFetcher pulls the current play-by-play for a game from a live feed.
// Implementations return an error wrapping ErrRateLimited when throttled.
type PlayFetcher interface {
	FetchPlays(ctx context.Context, g game.Game) ([]play.Play, error)
}

// PbpRefreshService polls the live feed for every game whose play-by-play
// is stale, one poll cycle per league.
type PbpRefreshService struct {
	window    *WindowService
	ingestion *IngestionService
	fetcher   PlayFetcher
	poll      *PollCycle
	logger    *logging.Logger
}

func NewPbpRefreshService(window *WindowService, ingestion *IngestionService, fetcher PlayFetcher, poll *PollCycle, logger *logging.Logger) *PbpRefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PbpRefreshService{
		window:    window,
		ingestion: ingestion,
		fetcher:   fetcher,
		poll:      poll,
		logger:    logger.Named("pbp_refresh"),
	}
}

func (s *PbpRefreshService) Run(ctx context.Context, leagueCode string) (PollReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PbpRefreshService.Run")
	defer span.End()

	if s.fetcher == nil {
		return PollReport{}, fmt.Errorf("%w: no play fetcher configured", ErrDependencyUnavailable)
	}

	due, err := s.window.GamesNeedingPbp(ctx, leagueCode)
	if err != nil {
		return PollReport{}, err
	}

	run := s.ingestion.ForRun()
	tasks := make([]PollTask, 0, len(due))
	for _, item := range due {
		g := item.Game
		tasks = append(tasks, PollTask{
			Key: "game:" + strconv.FormatInt(g.ID, 10),
			Run: func(ctx context.Context) error {
				plays, err := s.fetcher.FetchPlays(ctx, g)
				if err != nil {
					return err
				}
				_, err = run.UpsertPlays(ctx, g.ID, plays)
				return err
			},
		})
	}

	lockKey := "pbp:" + leagueCode
	if leagueCode == "" {
		lockKey = "pbp:all"
	}
	report, err := s.poll.Run(ctx, lockKey, tasks)
	if err != nil {
		return report, err
	}
	s.logger.InfoContext(ctx, "pbp refresh finished",
		"league", leagueCode,
		"due", len(due),
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"deferred", report.Deferred,
		"rate_limited", report.RateLimited,
	)
	return report, nil
}
