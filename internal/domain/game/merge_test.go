package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestMergeIsIdempotent(t *testing.T) {
	created := time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)
	existing := FromStub(Stub{LeagueID: 1, GameDate: created, HomeTeamID: 1, AwayTeamID: 2}, created)

	in := Update{
		HomeScore:   ptr(101),
		AwayScore:   ptr(99),
		Venue:       "TD Garden",
		Status:      StatusFinal,
		ExternalIDs: map[string]string{"espn": "401"},
	}

	first := created.Add(time.Hour)
	once, changed := Merge(existing, in, first)
	require.True(t, changed)
	assert.Equal(t, 2, once.ScrapeVersion)
	assert.Equal(t, first, *once.LastIngestedAt)

	second := first.Add(time.Hour)
	twice, changed := Merge(once, in, second)
	assert.False(t, changed)
	assert.Equal(t, once.ScrapeVersion, twice.ScrapeVersion)
	assert.Equal(t, first, *twice.LastIngestedAt)
	assert.Equal(t, second, *twice.LastScrapedAt)
}

func TestMergeFieldRules(t *testing.T) {
	now := time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)
	tip := now.Add(time.Hour)
	existing := Game{
		ID:            3,
		Status:        StatusLive,
		TipTime:       &tip,
		SourceGameKey: "bbref-1",
		ExternalIDs:   map[string]string{"espn": "401"},
		HomeScore:     ptr(50),
	}

	later := tip.Add(time.Hour)
	out, changed := Merge(existing, Update{
		Status:        StatusScheduled,
		TipTime:       &later,
		SourceGameKey: "bbref-2",
		ExternalIDs:   map[string]string{"odds_api": "abc", "espn": "401"},
	}, now)

	require.True(t, changed, "the new external id is a change")
	assert.Equal(t, StatusLive, out.Status, "status never regresses")
	assert.Equal(t, tip, *out.TipTime, "tip time is first-write-wins")
	assert.Equal(t, "bbref-1", out.SourceGameKey)
	assert.Equal(t, map[string]string{"espn": "401", "odds_api": "abc"}, out.ExternalIDs)
	assert.Equal(t, map[string]string{"espn": "401"}, existing.ExternalIDs, "input must not be mutated")
	assert.Equal(t, 50, *out.HomeScore, "absent score keeps stored value")

	out, changed = Merge(out, Update{HomeScore: ptr(52)}, now)
	require.True(t, changed)
	assert.Equal(t, 52, *out.HomeScore)
}

func TestMergeEndTimeSetOnce(t *testing.T) {
	now := time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)
	first := now.Add(-time.Minute)
	out, changed := Merge(Game{Status: StatusLive}, Update{EndTime: &first}, now)
	require.True(t, changed)

	out, changed = Merge(out, Update{EndTime: &now}, now)
	assert.False(t, changed)
	assert.Equal(t, first, *out.EndTime)
}

func TestCalendarDate(t *testing.T) {
	pacific := time.FixedZone("PST", -8*3600)
	local := time.Date(2025, 1, 10, 22, 30, 0, 0, pacific)

	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), CalendarDate(local))
	assert.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), CalendarDate(local.UTC()))
}
