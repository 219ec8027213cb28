package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
)

func stubGame(t *testing.T, env *testEnv, home, away string, gameDate time.Time, tip *time.Time) int64 {
	t.Helper()
	ctx := context.Background()

	homeID, err := env.teams.Resolve(ctx, nbaTeam(home, ""))
	require.NoError(t, err)
	awayID, err := env.teams.Resolve(ctx, nbaTeam(away, ""))
	require.NoError(t, err)

	g, created, err := env.store.Games().CreateStub(ctx, game.Stub{
		LeagueID:   1,
		GameDate:   gameDate,
		TipTime:    tip,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
	}, env.clock.Now())
	require.NoError(t, err)
	require.True(t, created)
	return g.ID
}

func newSweepService(env *testEnv) *LifecycleSweepService {
	svc := NewLifecycleSweepService(env.leagues, env.store.Games(), 2, nil)
	svc.now = env.clock.Now
	return svc
}

func TestLifecycleSweep_PromotesByTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	day := date(2024, 1, 15)
	env := newTestEnv(t, day.Add(18*time.Hour))
	games := env.store.Games()

	upcoming := stubGame(t, env, "BOS", "LAL", day, timePtr(day.Add(19*time.Hour)))
	stale := stubGame(t, env, "NYK", "MIA", day, timePtr(day.Add(10*time.Hour)))
	finished := stubGame(t, env, "DEN", "PHX", date(2024, 1, 11), timePtr(date(2024, 1, 11).Add(19*time.Hour)))
	bare := stubGame(t, env, "GSW", "SAC", date(2024, 1, 11), timePtr(date(2024, 1, 11).Add(19*time.Hour)))
	tomorrow := stubGame(t, env, "CHI", "DAL", day.AddDate(0, 0, 1), nil)

	for _, id := range []int64{finished, bare} {
		end := date(2024, 1, 11).Add(22 * time.Hour)
		_, _, err := games.Upsert(ctx, id, game.Update{Status: game.StatusFinal, EndTime: &end}, env.clock.Now())
		require.NoError(t, err)
	}
	require.NoError(t, games.Touch(ctx, finished, game.TouchBoxscore, env.clock.Now()))
	require.NoError(t, games.Touch(ctx, finished, game.TouchPbp, env.clock.Now()))

	svc := newSweepService(env)
	result, err := svc.Run(ctx, "nba")
	require.NoError(t, err)
	assert.Equal(t, "NBA", result.League)
	assert.Equal(t, 5, result.Examined)
	assert.Equal(t, 3, result.Promoted)
	assert.Zero(t, result.Failed)

	statusOf := func(id int64) game.Game {
		g, ok, err := games.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		return g
	}

	assert.Equal(t, game.StatusPregame, statusOf(upcoming).Status)

	forced := statusOf(stale)
	assert.Equal(t, game.StatusFinal, forced.Status)
	require.NotNil(t, forced.EndTime)
	assert.Equal(t, day.Add(10*time.Hour+150*time.Minute), *forced.EndTime)

	assert.Equal(t, game.StatusArchived, statusOf(finished).Status)
	assert.Equal(t, game.StatusFinal, statusOf(bare).Status)
	assert.Equal(t, game.StatusScheduled, statusOf(tomorrow).Status)

	again, err := svc.Run(ctx, "NBA")
	require.NoError(t, err)
	assert.Zero(t, again.Promoted)
}

func TestLifecycleSweep_UntippedGameUsesEndOfDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	day := date(2024, 1, 15)
	env := newTestEnv(t, day.Add(22*time.Hour))
	id := stubGame(t, env, "BOS", "LAL", day, nil)
	svc := newSweepService(env)

	// No tip time: never promoted to pregame, forced final only after the
	// end of the calendar date plus duration and buffer.
	result, err := svc.Run(ctx, "NBA")
	require.NoError(t, err)
	assert.Zero(t, result.Promoted)

	env.clock.Advance(8 * time.Hour)
	result, err = svc.Run(ctx, "NBA")
	require.NoError(t, err)
	require.Len(t, result.Promotions, 1)
	assert.Equal(t, id, result.Promotions[0].GameID)
	assert.Equal(t, game.ReasonStaleTimeout, result.Promotions[0].Reason)
}

func TestLifecycleSweep_RunAllCoversEveryLeague(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, date(2024, 1, 15).Add(18*time.Hour))
	stubGame(t, env, "BOS", "LAL", date(2024, 1, 15), timePtr(date(2024, 1, 15).Add(19*time.Hour)))

	results := newSweepService(env).RunAll(ctx)
	require.Len(t, results, 7)

	leagues := make([]string, 0, len(results))
	promoted := 0
	for _, r := range results {
		require.NoError(t, r.Err)
		leagues = append(leagues, r.League)
		promoted += r.Promoted
	}
	assert.Equal(t, []string{"MLB", "NBA", "NCAAB", "NCAAF", "NFL", "NHL", "WNBA"}, leagues)
	assert.Equal(t, 1, promoted)
}

func TestLifecycleSweep_UnknownLeague(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, date(2024, 1, 15))
	_, err := newSweepService(env).Run(context.Background(), "XFL")
	require.Error(t, err)
}
