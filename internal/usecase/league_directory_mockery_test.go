package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/game-reconciler/internal/domain/league"
	leaguemock "github.com/riskibarqy/game-reconciler/internal/mocks/domain/league"
)

func TestLeagueDirectory_ResolveCachesRowUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	leagueRepo.
		On("GetByCode", mock.Anything, "NBA").
		Return(league.League{ID: 11, Code: "NBA", Name: "NBA"}, true, nil).
		Once()

	directory := NewLeagueDirectory(leagueRepo, league.DefaultRegistry())
	for i := 0; i < 3; i++ {
		lc, err := directory.Resolve(ctx, " nba ")
		if err != nil {
			t.Fatalf("resolve league: %v", err)
		}
		if lc.League.ID != 11 {
			t.Fatalf("unexpected league id: got=%d want=11", lc.League.ID)
		}
		if !lc.Config.HasLiveFeed {
			t.Fatalf("expected NBA config to carry a live feed")
		}
	}
}

func TestLeagueDirectory_ResolveMissingRowUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	leagueRepo.
		On("GetByCode", mock.Anything, "WNBA").
		Return(league.League{}, false, nil).
		Once()

	directory := NewLeagueDirectory(leagueRepo, league.DefaultRegistry())
	_, err := directory.Resolve(ctx, "WNBA")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Unconfigured codes never reach storage.
	_, err = directory.Resolve(ctx, "XFL")
	if !errors.Is(err, league.ErrUnknownLeague) {
		t.Fatalf("expected ErrUnknownLeague, got %v", err)
	}
}

func TestLeagueDirectory_ResolveStorageErrorUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	leagueRepo.
		On("GetByCode", mock.Anything, "NHL").
		Return(league.League{}, false, errors.New("connection reset")).
		Twice()

	directory := NewLeagueDirectory(leagueRepo, league.DefaultRegistry())
	for i := 0; i < 2; i++ {
		if _, err := directory.Resolve(ctx, "NHL"); err == nil {
			t.Fatalf("expected storage error on attempt %d", i+1)
		}
	}
}
