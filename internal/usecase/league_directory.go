package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/game-reconciler/internal/domain/league"
	basecache "github.com/riskibarqy/game-reconciler/internal/platform/cache"
)

// LeagueContext is a league row joined with its configuration.
type LeagueContext struct {
	League league.League
	Config league.Config
}

// LeagueDirectory resolves league codes against the configured registry and
// the stored league rows.
type LeagueDirectory struct {
	repo     league.Repository
	registry *league.Registry
	cache    *basecache.Store
}

func NewLeagueDirectory(repo league.Repository, registry *league.Registry) *LeagueDirectory {
	if registry == nil {
		registry = league.DefaultRegistry()
	}
	return &LeagueDirectory{
		repo:     repo,
		registry: registry,
		cache:    basecache.NewStore(0),
	}
}

func (d *LeagueDirectory) Registry() *league.Registry {
	return d.registry
}

// Resolve fails with league.ErrUnknownLeague for unconfigured codes and
// ErrNotFound when the league row is missing from storage.
func (d *LeagueDirectory) Resolve(ctx context.Context, code string) (LeagueContext, error) {
	cfg, err := d.registry.Get(code)
	if err != nil {
		return LeagueContext{}, err
	}

	value, err := d.cache.GetOrLoad(ctx, cfg.Code, func(ctx context.Context) (any, error) {
		row, ok, err := d.repo.GetByCode(ctx, cfg.Code)
		if err != nil {
			return nil, fmt.Errorf("get league %s: %w", cfg.Code, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: league row %s", ErrNotFound, cfg.Code)
		}
		return row, nil
	})
	if err != nil {
		return LeagueContext{}, err
	}

	return LeagueContext{League: value.(league.League), Config: cfg}, nil
}

// All resolves every configured league, or only code when it is non-empty.
func (d *LeagueDirectory) All(ctx context.Context, code string) ([]LeagueContext, error) {
	codes := d.registry.Codes()
	if code != "" {
		codes = []string{code}
	}

	out := make([]LeagueContext, 0, len(codes))
	for _, c := range codes {
		lc, err := d.Resolve(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, lc)
	}
	return out, nil
}

// ResolveID finds the configured league whose stored row has id.
func (d *LeagueDirectory) ResolveID(ctx context.Context, id int64) (LeagueContext, error) {
	for _, code := range d.registry.Codes() {
		lc, err := d.Resolve(ctx, code)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return LeagueContext{}, err
		}
		if lc.League.ID == id {
			return lc, nil
		}
	}
	return LeagueContext{}, fmt.Errorf("%w: league id %d is not configured", ErrNotFound, id)
}
