package game

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/league"
)

const (
	ReasonPregameWindow = "pregame_window"
	ReasonStaleTimeout  = "stale_timeout"
	ReasonArchive       = "archive_age"
)

// Promotion is a time-driven status change proposed by the sweep.
type Promotion struct {
	GameID  int64
	From    Status
	To      Status
	Reason  string
	EndTime *time.Time
}

// SweepStatuses are the statuses TimePromotion can act on.
var SweepStatuses = []Status{StatusScheduled, StatusPregame, StatusFinal}

// TimePromotion proposes the status a game should move to purely because
// time passed:
//   - scheduled enters pregame inside the league pregame window;
//   - scheduled/pregame past tip + duration + buffer is forced final with
//     end_time = tip + duration;
//   - final older than ArchiveAfter is archived once its boxscore (and,
//     where a live feed exists, play-by-play) has been captured.
//
// A game without a tip time uses the end of its calendar date as the tip.
func TimePromotion(g Game, cfg league.Config, now time.Time) (Promotion, bool) {
	tip := g.GameDate.Add(24 * time.Hour)
	hasTip := g.TipTime != nil
	if hasTip {
		tip = *g.TipTime
	}
	p := Promotion{GameID: g.ID, From: g.Status}

	switch g.Status {
	case StatusScheduled, StatusPregame:
		if !now.Before(tip.Add(cfg.StaleAfter())) {
			end := tip.Add(cfg.EstimatedDuration)
			p.To, p.Reason, p.EndTime = StatusFinal, ReasonStaleTimeout, &end
			return p, true
		}
		if g.Status == StatusScheduled && hasTip && !now.Before(tip.Add(-cfg.PregameWindow)) {
			p.To, p.Reason = StatusPregame, ReasonPregameWindow
			return p, true
		}
	case StatusFinal:
		end := tip.Add(cfg.EstimatedDuration)
		if g.EndTime != nil {
			end = *g.EndTime
		}
		if now.Sub(end) >= cfg.ArchiveAfter && HasArtifacts(g, cfg) {
			p.To, p.Reason = StatusArchived, ReasonArchive
			return p, true
		}
	}
	return Promotion{}, false
}

// HasArtifacts reports whether a final game has what archival requires.
func HasArtifacts(g Game, cfg league.Config) bool {
	if g.LastBoxscoreAt == nil {
		return false
	}
	if cfg.HasLiveFeed && g.LastPbpAt == nil {
		return false
	}
	return true
}
