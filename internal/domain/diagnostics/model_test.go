package diagnostics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/league"
)

func TestPairConflicts(t *testing.T) {
	start := time.Date(2025, 1, 10, 19, 0, 0, 0, time.UTC)
	now := start.Add(48 * time.Hour)
	group := ExternalIDGroup{
		Source: "espn",
		Value:  "401",
		Games: []ExternalIDGame{
			{GameID: 9, HomeTeamID: 1, AwayTeamID: 2, StartTime: start.Add(time.Hour)},
			{GameID: 4, HomeTeamID: 1, AwayTeamID: 2, StartTime: start},
			{GameID: 12, HomeTeamID: 1, AwayTeamID: 2, StartTime: start.Add(10 * 24 * time.Hour)},
		},
	}

	conflicts := PairConflicts(7, group, 6*time.Hour, now)
	require.Len(t, conflicts, 1)
	assert.Equal(t, int64(4), conflicts[0].GameID)
	assert.Equal(t, int64(9), conflicts[0].ConflictGameID)
	assert.Equal(t, "espn:401", conflicts[0].ExternalID)
	assert.Equal(t, ReasonStartProximity, conflicts[0].Reason)

	group.Games[2].AwayTeamID = 3
	conflicts = PairConflicts(7, group, 6*time.Hour, now)
	require.Len(t, conflicts, 3)
	assert.Equal(t, ReasonTeamMismatch, conflicts[1].Reason)
}

func TestEvaluatePbp(t *testing.T) {
	registry := league.DefaultRegistry()
	nba, _ := registry.Get("NBA")
	mlb, _ := registry.Get("MLB")
	now := time.Now()

	entry, ok := EvaluatePbp(1, PbpCandidate{GameID: 1, Status: game.StatusFinal}, nba, now)
	require.True(t, ok)
	assert.Equal(t, ReasonFeedEmpty, entry.Reason)

	entry, ok = EvaluatePbp(1, PbpCandidate{GameID: 2, Status: game.StatusLive, PlayCount: 10}, nba, now)
	require.True(t, ok)
	assert.Equal(t, ReasonBelowThreshold, entry.Reason)

	_, ok = EvaluatePbp(1, PbpCandidate{GameID: 3, Status: game.StatusFinal, PlayCount: nba.MinExpectedPlays}, nba, now)
	assert.False(t, ok)

	entry, ok = EvaluatePbp(2, PbpCandidate{GameID: 4, Status: game.StatusFinal}, mlb, now)
	require.True(t, ok)
	assert.Equal(t, ReasonNoLiveFeed, entry.Reason)

	quiet := nba
	quiet.HasLiveFeed = false
	quiet.MinExpectedPlays = 0
	_, ok = EvaluatePbp(3, PbpCandidate{GameID: 5, Status: game.StatusFinal}, quiet, now)
	assert.False(t, ok, "leagues expecting no plays are never tracked")
}
