package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/game-reconciler/internal/usecase"
)

const (
	JobSweep       = "lifecycle_sweep"
	JobDiagnostics = "diagnostics"
	JobPbpRefresh  = "pbp_refresh"
)

// ScheduleJobs registers the sweep, diagnostics and play-by-play jobs. The
// play-by-play job needs a fetcher; with none it stays off.
func (rt *Runtime) ScheduleJobs(s *Scheduler, fetcher usecase.PlayFetcher) error {
	if err := s.Add(JobSweep, rt.Config.SweepCron, rt.runSweep); err != nil {
		return err
	}
	if err := s.Add(JobDiagnostics, rt.Config.DiagnosticsCron, rt.runDiagnostics); err != nil {
		return err
	}

	if fetcher == nil {
		if rt.Config.PbpCron != "" {
			rt.logger.Warn("pbp refresh not scheduled", "reason", "no play fetcher configured")
		}
		return nil
	}
	refresh := rt.PbpRefresh(fetcher)
	return s.Add(JobPbpRefresh, rt.Config.PbpCron, func(ctx context.Context) error {
		return rt.runPbpRefresh(ctx, refresh)
	})
}

func (rt *Runtime) runSweep(ctx context.Context) error {
	var errs []error
	for _, result := range rt.Sweep.RunAll(ctx) {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.League, result.Err))
			continue
		}
		rt.logger.InfoContext(ctx, "lifecycle sweep finished",
			"league", result.League,
			"examined", result.Examined,
			"promoted", result.Promoted,
			"failed", result.Failed,
		)
	}
	return errors.Join(errs...)
}

func (rt *Runtime) runDiagnostics(ctx context.Context) error {
	results, err := rt.Diagnostics.RunAll(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, result := range results {
		if result.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.League, result.Err))
			continue
		}
		if result.Conflicts > 0 || len(result.MissingPbp) > 0 {
			rt.logger.WarnContext(ctx, "diagnostics findings",
				"league", result.League,
				"external_id_conflicts", result.Conflicts,
				"missing_pbp", len(result.MissingPbp),
			)
		}
	}
	return errors.Join(errs...)
}

func (rt *Runtime) runPbpRefresh(ctx context.Context, refresh *usecase.PbpRefreshService) error {
	var errs []error
	for _, code := range rt.Registry.Codes() {
		if _, err := refresh.Run(ctx, code); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", code, err))
			if ctx.Err() != nil {
				break
			}
		}
	}
	return errors.Join(errs...)
}
