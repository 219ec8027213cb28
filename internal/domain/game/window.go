package game

import (
	"time"

	"github.com/riskibarqy/game-reconciler/internal/domain/league"
)

// WindowState places a game relative to the current moment. It is computed
// at query time and never stored.
type WindowState string

const (
	WindowPre  WindowState = "PRE"
	WindowIn   WindowState = "IN"
	WindowPost WindowState = "POST"
	WindowNone WindowState = "NONE"
)

// WindowParams are the league durations the window classification needs.
// The postgres query binds the same values into its CASE expression.
type WindowParams struct {
	PregameWindow     time.Duration
	StaleAfter        time.Duration
	EstimatedDuration time.Duration
	PostGameLookback  time.Duration
}

func NewWindowParams(cfg league.Config) WindowParams {
	return WindowParams{
		PregameWindow:     cfg.PregameWindow,
		StaleAfter:        cfg.StaleAfter(),
		EstimatedDuration: cfg.EstimatedDuration,
		PostGameLookback:  cfg.PostGameLookback,
	}
}

// ActiveGame is a game paired with its window state.
type ActiveGame struct {
	Game  Game
	State WindowState
}

// ClassifyWindow:
//   - IN: live.
//   - PRE: scheduled or pregame with start inside
//     [now-StaleAfter, now+PregameWindow].
//   - POST: final with end (or start+EstimatedDuration) no older than
//     PostGameLookback.
//   - NONE: everything else.
func ClassifyWindow(g Game, p WindowParams, now time.Time) WindowState {
	start := g.StartTime()
	switch g.Status {
	case StatusLive:
		return WindowIn
	case StatusScheduled, StatusPregame:
		if !start.After(now.Add(p.PregameWindow)) && !start.Before(now.Add(-p.StaleAfter)) {
			return WindowPre
		}
	case StatusFinal:
		end := start.Add(p.EstimatedDuration)
		if g.EndTime != nil {
			end = *g.EndTime
		}
		if !end.Before(now.Add(-p.PostGameLookback)) {
			return WindowPost
		}
	}
	return WindowNone
}
