package diagnostics

import (
	"strconv"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/game"
	"github.com/riskibarqy/game-reconciler/internal/domain/league"
)

const (
	// ReasonNoLiveFeed: the league has no live feed, plays come from
	// post-game scraping only.
	ReasonNoLiveFeed = "no_live_feed"
	// ReasonFeedEmpty: a feed exists but produced zero plays.
	ReasonFeedEmpty = "feed_empty"
	// ReasonBelowThreshold: some plays exist but fewer than expected.
	ReasonBelowThreshold = "below_threshold"
)

// MissingPbp tracks a live or final game whose play-by-play is absent or thin.
type MissingPbp struct {
	LeagueID   int64
	GameID     int64
	Status     game.Status
	PlayCount  int
	Expected   int
	Reason     string
	DetectedAt time.Time
	UpdatedAt  time.Time
}

// PbpCandidate is a live/final game with its current play count.
type PbpCandidate struct {
	GameID    int64
	Status    game.Status
	PlayCount int
}

// EvaluatePbp decides whether a candidate belongs in the missing-pbp table.
func EvaluatePbp(leagueID int64, c PbpCandidate, cfg league.Config, now time.Time) (MissingPbp, bool) {
	if !cfg.ExpectsPlays() {
		return MissingPbp{}, false
	}
	expected := cfg.MinExpectedPlays
	if expected < 1 {
		expected = 1
	}
	if c.PlayCount >= expected {
		return MissingPbp{}, false
	}

	reason := ReasonBelowThreshold
	switch {
	case !cfg.HasLiveFeed:
		reason = ReasonNoLiveFeed
	case c.PlayCount == 0:
		reason = ReasonFeedEmpty
	}

	return MissingPbp{
		LeagueID:   leagueID,
		GameID:     c.GameID,
		Status:     c.Status,
		PlayCount:  c.PlayCount,
		Expected:   expected,
		Reason:     reason,
		DetectedAt: now,
		UpdatedAt:  now,
	}, true
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
