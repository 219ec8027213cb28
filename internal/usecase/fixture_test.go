package usecase

import (
	"testing"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/league"
	"github.com/riskibarqy/game-reconciler/internal/domain/team"
	"github.com/riskibarqy/game-reconciler/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
)

type testEnv struct {
	store     *memory.Store
	leagues   *LeagueDirectory
	teams     *TeamResolver
	resolver  *GameResolver
	ingestion *IngestionService
	clock     *testClock
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	store := memory.NewStore(memory.SeedLeagues(league.DefaultConfigs())...)
	clock := &testClock{now: now}
	logger := logging.NewNop()

	leagues := NewLeagueDirectory(store.Leagues(), league.DefaultRegistry())
	teams := NewTeamResolver(leagues, store.Teams(), team.DefaultRules(), time.Minute, logger)
	resolver := NewGameResolver(leagues, teams, store.Games(), GameResolverConfig{}, logger)
	resolver.now = clock.Now
	ingestion := NewIngestionService(leagues, teams, resolver, store.Games(), store.Odds(), store.Plays(), store.Boxscores(), logger)
	ingestion.now = clock.Now

	return &testEnv{
		store:     store,
		leagues:   leagues,
		teams:     teams,
		resolver:  resolver,
		ingestion: ingestion,
		clock:     clock,
	}
}

func nbaTeam(name, abbr string) team.Identity {
	return team.Identity{League: "NBA", Name: name, Abbreviation: abbr}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
