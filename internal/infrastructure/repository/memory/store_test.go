package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/game-reconciler/internal/domain/diagnostics"
	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/league"
	"github.com/riskibarqy/game-reconciler/internal/domain/odds"
	"github.com/riskibarqy/game-reconciler/internal/domain/play"
	"github.com/riskibarqy/game-reconciler/internal/domain/team"
)

func newTestStore() *Store {
	return NewStore(SeedLeagues(league.DefaultConfigs())...)
}

func TestCreateStubIsConflictAware(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	stub := game.Stub{LeagueID: 1, GameDate: now, HomeTeamID: 10, AwayTeamID: 11}

	first, created, err := store.Games().CreateStub(ctx, stub, now)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, game.StatusScheduled, first.Status)

	stub.GameDate = now.Add(5 * time.Hour)
	second, created, err := store.Games().CreateStub(ctx, stub, now)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateStubSourceKeyNeedsSameMatchup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	first, created, err := store.Games().CreateStub(ctx, game.Stub{LeagueID: 1, GameDate: now, HomeTeamID: 10, AwayTeamID: 11, SourceGameKey: "0022400555"}, now)
	require.NoError(t, err)
	require.True(t, created)

	// Rescheduled game between the same teams keeps resolving to the keyed row.
	moved, created, err := store.Games().CreateStub(ctx, game.Stub{LeagueID: 1, GameDate: now.AddDate(0, 0, 2), HomeTeamID: 11, AwayTeamID: 10, SourceGameKey: "0022400555"}, now)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, moved.ID)

	other, created, err := store.Games().CreateStub(ctx, game.Stub{LeagueID: 1, GameDate: now, HomeTeamID: 12, AwayTeamID: 13, SourceGameKey: "0022400555"}, now)
	require.NoError(t, err)
	require.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)
	assert.Equal(t, int64(12), other.HomeTeamID)
	assert.Empty(t, other.SourceGameKey)

	kept, found, err := store.Games().Get(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "0022400555", kept.SourceGameKey)
}

func TestUpsertSuppressesNoopWrites(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	g, _, err := store.Games().CreateStub(ctx, game.Stub{LeagueID: 1, GameDate: now, HomeTeamID: 1, AwayTeamID: 2}, now)
	require.NoError(t, err)

	score := 100
	in := game.Update{HomeScore: &score, Status: game.StatusLive}
	_, changed, err := store.Games().Upsert(ctx, g.ID, in, now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, changed)

	after, changed, err := store.Games().Upsert(ctx, g.ID, in, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 2, after.ScrapeVersion)
	assert.Equal(t, now.Add(time.Minute), *after.LastIngestedAt)
}

func TestOddsOpeningKeptClosingOverwritten(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Odds()
	now := time.Now()
	line := func(v float64, closing bool) odds.Line {
		return odds.Line{GameID: 1, Book: "pinnacle", MarketType: "spread", Side: "BOS", Line: &v, IsClosingLine: closing}
	}

	inserted, err := repo.UpsertOpening(ctx, line(-3.5, false), now)
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = repo.UpsertOpening(ctx, line(-4.0, false), now)
	require.NoError(t, err)
	assert.False(t, inserted)

	changed, err := repo.UpsertClosing(ctx, line(-5.0, true), now)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = repo.UpsertClosing(ctx, line(-5.0, true), now)
	require.NoError(t, err)
	assert.False(t, changed)
	changed, err = repo.UpsertClosing(ctx, line(-5.5, true), now)
	require.NoError(t, err)
	assert.True(t, changed)

	lines, err := repo.ListByGame(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, -3.5, *lines[0].Line)
	assert.Equal(t, -5.5, *lines[1].Line)
}

func TestTeamInsertReturnsExistingOnNameConflict(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Teams()

	a, err := repo.Insert(ctx, team.Team{LeagueID: 1, Name: "Boston Celtics", Abbreviation: "BOS"})
	require.NoError(t, err)
	b, err := repo.Insert(ctx, team.Team{LeagueID: 1, Name: "boston celtics"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	c, err := repo.Insert(ctx, team.Team{LeagueID: 2, Name: "Boston Celtics"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID, "uniqueness is per league")
}

func TestReplaceConflictsKeepsDetectedAtAndResolvedRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore().Diagnostics()
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	resolvedAt := first

	require.NoError(t, repo.ReplaceConflicts(ctx, 1, []diagnostics.Conflict{
		{ExternalID: "espn:1", GameID: 1, ConflictGameID: 2, Reason: "team_mismatch", DetectedAt: first},
		{ExternalID: "espn:9", GameID: 5, ConflictGameID: 6, Reason: "team_mismatch", DetectedAt: first, ResolvedAt: &resolvedAt},
		{ExternalID: "espn:3", GameID: 3, ConflictGameID: 4, Reason: "team_mismatch", DetectedAt: first},
	}))

	later := first.Add(time.Hour)
	require.NoError(t, repo.ReplaceConflicts(ctx, 1, []diagnostics.Conflict{
		{ExternalID: "espn:1", GameID: 1, ConflictGameID: 2, Reason: "team_mismatch", DetectedAt: later},
	}))

	rows, err := repo.ListConflicts(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first, rows[0].DetectedAt)
	assert.NotNil(t, rows[1].ResolvedAt, "resolved rows survive a replace")
}

func TestPlayUpsertKeepsUnchangedRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore()
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	plays := []play.Play{
		{PlayIndex: 1, Period: 1, Description: "Jump ball"},
		{PlayIndex: 2, Period: 1, Description: "Tatum makes 3pt"},
	}
	_, err := store.Plays().UpsertMany(ctx, 42, plays, now)
	require.NoError(t, err)

	changed := []play.Play{plays[0], {PlayIndex: 2, Period: 1, Description: "Tatum makes 3pt jumper"}}
	later := now.Add(time.Minute)
	_, err = store.Plays().UpsertMany(ctx, 42, changed, later)
	require.NoError(t, err)

	stored, err := store.Plays().ListByGame(ctx, 42)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, now, stored[0].UpdatedAt)
	assert.Equal(t, later, stored[1].UpdatedAt)
	assert.Equal(t, "Tatum makes 3pt jumper", stored[1].Play.Description)
}
