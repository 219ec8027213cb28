package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/play"
)

type fakeFetcher struct {
	mu      sync.Mutex
	plays   map[int64][]play.Play
	errs    map[int64]error
	fetched []int64
}

func (f *fakeFetcher) FetchPlays(_ context.Context, g game.Game) ([]play.Play, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, g.ID)
	if err := f.errs[g.ID]; err != nil {
		return nil, err
	}
	return f.plays[g.ID], nil
}

func TestPbpRefreshService_FetchesDueGames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, date(2024, 1, 15).Add(18*time.Hour))
	fx := seedWindowGames(t, env)
	window := newWindowService(env)

	fetcher := &fakeFetcher{
		plays: map[int64][]play.Play{
			fx.in: {
				{PlayIndex: 1, Period: 1, Description: "Jump ball"},
				{PlayIndex: 2, Period: 1, Description: "Brunson makes layup"},
			},
		},
	}
	locker := newFakeLocker()
	cycle, _ := newTestPollCycle(PollConfig{MaxCalls: 10}, locker)
	svc := NewPbpRefreshService(window, env.ingestion, fetcher, cycle, nil)

	report, err := svc.Run(ctx, "NBA")
	require.NoError(t, err)
	assert.Equal(t, PollReport{Attempted: 2, Succeeded: 2}, report)
	assert.ElementsMatch(t, []int64{fx.pre, fx.in}, fetcher.fetched)
	assert.Empty(t, locker.held)

	stored, err := env.store.Plays().ListByGame(ctx, fx.in)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	// Only the game touched by a non-empty fetch drops out of the due list.
	fetcher.fetched = nil
	_, err = svc.Run(ctx, "NBA")
	require.NoError(t, err)
	assert.Equal(t, []int64{fx.pre}, fetcher.fetched)
}

func TestPbpRefreshService_RateLimitDefersRemainingGames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, date(2024, 1, 15).Add(18*time.Hour))
	seedWindowGames(t, env)
	window := newWindowService(env)

	due, err := window.GamesNeedingPbp(ctx, "NBA")
	require.NoError(t, err)
	require.Len(t, due, 2)

	fetcher := &fakeFetcher{errs: map[int64]error{due[0].Game.ID: ErrRateLimited}}
	cycle, _ := newTestPollCycle(PollConfig{MaxCalls: 10, Cooldown: time.Hour}, nil)
	svc := NewPbpRefreshService(window, env.ingestion, fetcher, cycle, nil)

	report, err := svc.Run(ctx, "")
	require.NoError(t, err)
	assert.True(t, report.RateLimited)
	assert.Equal(t, 1, report.Deferred)
	assert.Len(t, fetcher.fetched, 1)
}

func TestPbpRefreshService_RequiresFetcher(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, date(2024, 1, 15))
	cycle, _ := newTestPollCycle(PollConfig{}, nil)
	svc := NewPbpRefreshService(newWindowService(env), env.ingestion, nil, cycle, nil)

	_, err := svc.Run(context.Background(), "NBA")
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
