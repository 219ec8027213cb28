package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/game-reconciler/internal/domain/diagnostics"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type DiagnosticsConfig struct {
	// ConflictStartWindow is how close two games sharing an external id must
	// start to be flagged.
	ConflictStartWindow time.Duration
	Workers             int
}

type LeagueDiagnostics struct {
	League     string
	Conflicts  int
	MissingPbp []int64
	Err        error
}

// DiagnosticsService records integrity findings as data. Findings are never
// raised as errors; only storage failures are.
type DiagnosticsService struct {
	leagues *LeagueDirectory
	repo    diagnostics.Repository
	cfg     DiagnosticsConfig
	now     func() time.Time
	logger  *logging.Logger
}

func NewDiagnosticsService(leagues *LeagueDirectory, repo diagnostics.Repository, cfg DiagnosticsConfig, logger *logging.Logger) *DiagnosticsService {
	if cfg.ConflictStartWindow <= 0 {
		cfg.ConflictStartWindow = 6 * time.Hour
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DiagnosticsService{
		leagues: leagues,
		repo:    repo,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger.Named("diagnostics"),
	}
}

// DetectExternalIDConflicts rebuilds the league's unresolved conflict set
// and returns its size.
func (s *DiagnosticsService) DetectExternalIDConflicts(ctx context.Context, leagueCode string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DiagnosticsService.DetectExternalIDConflicts",
		attribute.String("league", leagueCode),
	)
	defer span.End()

	lc, err := s.leagues.Resolve(ctx, leagueCode)
	if err != nil {
		return 0, err
	}

	groups, err := s.repo.ListExternalIDGroups(ctx, lc.League.ID)
	if err != nil {
		return 0, fmt.Errorf("list external id groups for %s: %w", lc.Config.Code, err)
	}

	now := s.now()
	conflicts := make([]diagnostics.Conflict, 0)
	for _, group := range groups {
		conflicts = append(conflicts, diagnostics.PairConflicts(lc.League.ID, group, s.cfg.ConflictStartWindow, now)...)
	}

	if err := s.repo.ReplaceConflicts(ctx, lc.League.ID, conflicts); err != nil {
		return 0, fmt.Errorf("replace conflicts for %s: %w", lc.Config.Code, err)
	}
	if len(conflicts) > 0 {
		s.logger.WarnContext(ctx, "external id conflicts detected",
			"league", lc.Config.Code,
			"count", len(conflicts),
		)
	}
	return len(conflicts), nil
}

// DetectMissingPbp replaces the league's missing play-by-play rows with the
// current findings and returns the affected game ids in ascending order.
func (s *DiagnosticsService) DetectMissingPbp(ctx context.Context, leagueCode string) ([]int64, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DiagnosticsService.DetectMissingPbp",
		attribute.String("league", leagueCode),
	)
	defer span.End()

	lc, err := s.leagues.Resolve(ctx, leagueCode)
	if err != nil {
		return nil, err
	}

	candidates, err := s.repo.ListPbpCandidates(ctx, lc.League.ID)
	if err != nil {
		return nil, fmt.Errorf("list pbp candidates for %s: %w", lc.Config.Code, err)
	}

	now := s.now()
	entries := make([]diagnostics.MissingPbp, 0)
	for _, c := range candidates {
		if entry, ok := diagnostics.EvaluatePbp(lc.League.ID, c, lc.Config, now); ok {
			entries = append(entries, entry)
		}
	}

	if err := s.repo.ReplaceMissingPbp(ctx, lc.League.ID, entries, now); err != nil {
		return nil, fmt.Errorf("replace missing pbp for %s: %w", lc.Config.Code, err)
	}

	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.GameID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// RunAll runs both detectors for every configured league on a bounded
// worker pool.
func (s *DiagnosticsService) RunAll(ctx context.Context) ([]LeagueDiagnostics, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DiagnosticsService.RunAll")
	defer span.End()

	codes := s.leagues.Registry().Codes()
	workerCount := s.cfg.Workers
	if workerCount > len(codes) {
		workerCount = len(codes)
	}
	if workerCount <= 0 {
		return nil, nil
	}

	workerPool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create diagnostics worker pool: %w", err)
	}
	defer workerPool.Release()

	resultCh := make(chan LeagueDiagnostics, len(codes))
	var wg sync.WaitGroup
	for _, code := range codes {
		wg.Add(1)
		submitErr := workerPool.Submit(func() {
			defer wg.Done()
			resultCh <- s.runLeague(ctx, code)
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submit diagnostics for %s: %w", code, submitErr)
		}
	}

	wg.Wait()
	close(resultCh)

	results := make([]LeagueDiagnostics, 0, len(codes))
	for item := range resultCh {
		results = append(results, item)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].League < results[j].League })
	return results, nil
}

func (s *DiagnosticsService) runLeague(ctx context.Context, code string) LeagueDiagnostics {
	out := LeagueDiagnostics{League: code}

	count, err := s.DetectExternalIDConflicts(ctx, code)
	if err != nil {
		s.logger.ErrorContext(ctx, "external id conflict detection failed", "league", code, "error", err)
		out.Err = err
		return out
	}
	out.Conflicts = count

	missing, err := s.DetectMissingPbp(ctx, code)
	if err != nil {
		s.logger.ErrorContext(ctx, "missing pbp detection failed", "league", code, "error", err)
		out.Err = err
		return out
	}
	out.MissingPbp = missing
	return out
}
