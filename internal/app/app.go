package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/game-reconciler/internal/config"
	"github.com/riskibarqy/game-reconciler/internal/domain/boxscore"
	"github.com/riskibarqy/game-reconciler/internal/domain/diagnostics"
	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/league"
	"github.com/riskibarqy/game-reconciler/internal/domain/odds"
	"github.com/riskibarqy/game-reconciler/internal/domain/play"
	"github.com/riskibarqy/game-reconciler/internal/domain/team"
	"github.com/riskibarqy/game-reconciler/internal/infrastructure/lock"
	"github.com/riskibarqy/game-reconciler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/game-reconciler/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/game-reconciler/internal/platform/id"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
	"github.com/riskibarqy/game-reconciler/internal/usecase"
)

type repositories struct {
	leagues     league.Repository
	teams       team.Repository
	games       game.Repository
	odds        odds.Repository
	plays       play.Repository
	boxscores   boxscore.Repository
	diagnostics diagnostics.Repository
}

// Runtime holds every long-lived service the worker schedules.
type Runtime struct {
	Config      config.Config
	Registry    *league.Registry
	Leagues     *usecase.LeagueDirectory
	Teams       *usecase.TeamResolver
	Window      *usecase.WindowService
	Sweep       *usecase.LifecycleSweepService
	Diagnostics *usecase.DiagnosticsService
	Poll        *usecase.PollCycle

	// ingestion is a template; callers get per-run copies from IngestionRun
	// so match caches never outlive a run.
	ingestion *usecase.IngestionService
	logger    *logging.Logger
	closers   []func() error
}

// New builds the runtime. Unknown league codes in LEAGUES or a broken league
// file fail here, before any job is scheduled.
func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	leagueSet, err := LoadLeagues(cfg)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Config: cfg, Registry: leagueSet.Registry, logger: logger}

	repos, err := rt.openRepositories(ctx, cfg, leagueSet.Configs)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	locker, err := rt.openLocker(ctx, cfg)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.Leagues = usecase.NewLeagueDirectory(repos.leagues, leagueSet.Registry)
	rt.Teams = usecase.NewTeamResolver(rt.Leagues, repos.teams, leagueSet.Rules, cfg.TeamCacheTTL, logger)
	resolver := usecase.NewGameResolver(rt.Leagues, rt.Teams, repos.games, usecase.GameResolverConfig{
		MatchWindow:   cfg.MatchWindow,
		MaxFutureDays: cfg.MatchMaxFutureDays,
	}, logger)
	rt.ingestion = usecase.NewIngestionService(rt.Leagues, rt.Teams, resolver, repos.games, repos.odds, repos.plays, repos.boxscores, logger)
	rt.Window = usecase.NewWindowService(rt.Leagues, repos.games, usecase.WindowServiceConfig{
		PbpStaleAfter: cfg.PbpStaleAfter,
	}, logger)
	rt.Sweep = usecase.NewLifecycleSweepService(rt.Leagues, repos.games, cfg.SweepConcurrency, logger)
	rt.Diagnostics = usecase.NewDiagnosticsService(rt.Leagues, repos.diagnostics, usecase.DiagnosticsConfig{
		ConflictStartWindow: cfg.ConflictStartWindow,
		Workers:             cfg.DiagnosticsWorkers,
	}, logger)
	rt.Poll = usecase.NewPollCycle(usecase.PollConfig{
		MaxCalls:    cfg.PollMaxCalls,
		Jitter:      cfg.PollJitter,
		CallTimeout: cfg.PollCallTimeout,
		Cooldown:    cfg.PollCooldown,
		LockTTL:     cfg.LockTTL,
	}, locker, logger)

	return rt, nil
}

// IngestionRun returns an ingestion service with its own match cache. Use
// one per ingestion run and drop it afterwards.
func (rt *Runtime) IngestionRun() *usecase.IngestionService {
	return rt.ingestion.ForRun()
}

// PbpRefresh wires a play-by-play poller around fetcher.
func (rt *Runtime) PbpRefresh(fetcher usecase.PlayFetcher) *usecase.PbpRefreshService {
	return usecase.NewPbpRefreshService(rt.Window, rt.IngestionRun(), fetcher, rt.Poll, rt.logger)
}

func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}

func (rt *Runtime) openRepositories(ctx context.Context, cfg config.Config, configs []league.Config) (repositories, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		rt.logger.Warn("using in-memory store, nothing is persisted", "store_driver", cfg.StoreDriver)
		store := memory.NewStore(memory.SeedLeagues(configs)...)
		return repositories{
			leagues:     store.Leagues(),
			teams:       store.Teams(),
			games:       store.Games(),
			odds:        store.Odds(),
			plays:       store.Plays(),
			boxscores:   store.Boxscores(),
			diagnostics: store.Diagnostics(),
		}, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	rt.closers = append(rt.closers, db.Close)

	if err := postgres.BootstrapSeed(ctx, db, configs); err != nil {
		return repositories{}, fmt.Errorf("seed leagues: %w", err)
	}

	return repositories{
		leagues:     postgres.NewLeagueRepository(db),
		teams:       postgres.NewTeamRepository(db),
		games:       postgres.NewGameRepository(db),
		odds:        postgres.NewOddsRepository(db),
		plays:       postgres.NewPlayRepository(db),
		boxscores:   postgres.NewBoxscoreRepository(db),
		diagnostics: postgres.NewDiagnosticsRepository(db),
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	opts := []otelsql.Option{
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	}
	if name := dbNameFromURL(dsn); name != "" {
		opts = append(opts, otelsql.WithDBName(name))
	}

	db, err := otelsqlx.Open("postgres", dsn, opts...)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	otelsql.ReportDBStatsMetrics(db.DB, opts...)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (rt *Runtime) openLocker(ctx context.Context, cfg config.Config) (usecase.Locker, error) {
	ids := idgen.NewRandomGenerator()
	if cfg.RedisURL == "" {
		rt.logger.Info("poll lock is process-local", "reason", "REDIS_URL empty")
		return lock.NewMemoryLocker(ids), nil
	}

	rdb, err := lock.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	rt.closers = append(rt.closers, rdb.Close)
	return lock.NewRedisLocker(rdb, cfg.LockPrefix, ids), nil
}
