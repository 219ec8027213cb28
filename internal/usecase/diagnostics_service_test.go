package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/game-reconciler/internal/domain/diagnostics"
	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/play"
	"github.com/riskibarqy/game-reconciler/internal/domain/team"
)

func leagueGame(t *testing.T, env *testEnv, code string, leagueID int64, home, away string, tip time.Time, externalIDs map[string]string) int64 {
	t.Helper()
	ctx := context.Background()

	homeID, err := env.teams.Resolve(ctx, team.Identity{League: code, Name: home})
	require.NoError(t, err)
	awayID, err := env.teams.Resolve(ctx, team.Identity{League: code, Name: away})
	require.NoError(t, err)

	g, _, err := env.store.Games().CreateStub(ctx, game.Stub{
		LeagueID:    leagueID,
		GameDate:    game.CalendarDate(tip),
		TipTime:     &tip,
		HomeTeamID:  homeID,
		AwayTeamID:  awayID,
		ExternalIDs: externalIDs,
	}, env.clock.Now())
	require.NoError(t, err)
	return g.ID
}

func setStatus(t *testing.T, env *testEnv, id int64, status game.Status) {
	t.Helper()
	_, _, err := env.store.Games().Upsert(context.Background(), id, game.Update{Status: status}, env.clock.Now())
	require.NoError(t, err)
}

func playsN(n int) []play.Play {
	out := make([]play.Play, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, play.Play{PlayIndex: i, Period: 1 + i/70, Description: fmt.Sprintf("play %d", i)})
	}
	return out
}

func newDiagnosticsService(env *testEnv) *DiagnosticsService {
	svc := NewDiagnosticsService(env.leagues, env.store.Diagnostics(), DiagnosticsConfig{Workers: 3}, nil)
	svc.now = env.clock.Now
	return svc
}

func TestDiagnostics_ExternalIDConflicts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, date(2024, 1, 16))
	tip := date(2024, 1, 15).Add(19 * time.Hour)

	first := leagueGame(t, env, "NBA", 1, "BOS", "LAL", tip, map[string]string{"espn": "1"})
	second := leagueGame(t, env, "NBA", 1, "NYK", "MIA", tip.Add(time.Hour), map[string]string{"espn": "1"})
	leagueGame(t, env, "NBA", 1, "DEN", "PHX", tip, map[string]string{"espn": "2"})

	svc := newDiagnosticsService(env)
	count, err := svc.DetectExternalIDConflicts(ctx, "NBA")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	conflicts, err := env.store.Diagnostics().ListConflicts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "espn:1", conflicts[0].ExternalID)
	assert.Equal(t, first, conflicts[0].GameID)
	assert.Equal(t, second, conflicts[0].ConflictGameID)
	assert.Equal(t, diagnostics.ReasonStartProximity+","+diagnostics.ReasonTeamMismatch, conflicts[0].Reason)
	detected := conflicts[0].DetectedAt

	env.clock.Advance(time.Hour)
	count, err = svc.DetectExternalIDConflicts(ctx, "NBA")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	conflicts, err = env.store.Diagnostics().ListConflicts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, detected, conflicts[0].DetectedAt)
}

func TestDiagnostics_MissingPbp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, date(2024, 1, 16))
	tip := date(2024, 1, 15).Add(19 * time.Hour)

	empty := leagueGame(t, env, "NBA", 1, "BOS", "LAL", tip, nil)
	setStatus(t, env, empty, game.StatusLive)

	thin := leagueGame(t, env, "NBA", 1, "NYK", "MIA", tip, nil)
	setStatus(t, env, thin, game.StatusFinal)
	_, err := env.store.Plays().UpsertMany(ctx, thin, playsN(10), env.clock.Now())
	require.NoError(t, err)

	full := leagueGame(t, env, "NBA", 1, "DEN", "PHX", tip, nil)
	setStatus(t, env, full, game.StatusFinal)
	_, err = env.store.Plays().UpsertMany(ctx, full, playsN(250), env.clock.Now())
	require.NoError(t, err)

	// Scheduled games are not candidates.
	leagueGame(t, env, "NBA", 1, "CHI", "DAL", tip, nil)

	svc := newDiagnosticsService(env)
	ids, err := svc.DetectMissingPbp(ctx, "NBA")
	require.NoError(t, err)
	assert.Equal(t, []int64{empty, thin}, ids)

	rows, err := env.store.Diagnostics().ListMissingPbp(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, diagnostics.ReasonFeedEmpty, rows[0].Reason)
	assert.Equal(t, diagnostics.ReasonBelowThreshold, rows[1].Reason)
	assert.Equal(t, 10, rows[1].PlayCount)
	assert.Equal(t, 250, rows[1].Expected)

	_, err = env.store.Plays().UpsertMany(ctx, empty, playsN(250), env.clock.Now())
	require.NoError(t, err)
	ids, err = svc.DetectMissingPbp(ctx, "NBA")
	require.NoError(t, err)
	assert.Equal(t, []int64{thin}, ids)

	mlb := leagueGame(t, env, "MLB", 5, "New York Yankees", "Boston Red Sox", tip, nil)
	setStatus(t, env, mlb, game.StatusFinal)
	ids, err = svc.DetectMissingPbp(ctx, "MLB")
	require.NoError(t, err)
	assert.Equal(t, []int64{mlb}, ids)

	rows, err = env.store.Diagnostics().ListMissingPbp(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, diagnostics.ReasonNoLiveFeed, rows[0].Reason)
}

func TestDiagnostics_RunAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t, date(2024, 1, 16))
	tip := date(2024, 1, 15).Add(19 * time.Hour)

	live := leagueGame(t, env, "NBA", 1, "BOS", "LAL", tip, map[string]string{"espn": "7"})
	setStatus(t, env, live, game.StatusLive)
	leagueGame(t, env, "NBA", 1, "NYK", "MIA", tip, map[string]string{"espn": "7"})

	results, err := newDiagnosticsService(env).RunAll(ctx)
	require.NoError(t, err)
	require.Len(t, results, 7)

	for _, r := range results {
		require.NoError(t, r.Err, r.League)
		if r.League != "NBA" {
			assert.Zero(t, r.Conflicts, r.League)
			assert.Empty(t, r.MissingPbp, r.League)
			continue
		}
		assert.Equal(t, 1, r.Conflicts)
		assert.Equal(t, []int64{live}, r.MissingPbp)
	}
}
