package game

import "strings"

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusPregame   Status = "pregame"
	StatusLive      Status = "live"
	StatusFinal     Status = "final"
	StatusArchived  Status = "archived"
	StatusPostponed Status = "postponed"
	StatusCanceled  Status = "canceled"
)

var lifecycleIndex = map[Status]int{
	StatusScheduled: 0,
	StatusPregame:   1,
	StatusLive:      2,
	StatusFinal:     3,
	StatusArchived:  4,
}

// LifecycleIndex returns the position of s on the forward-only path
// scheduled -> pregame -> live -> final -> archived. Side states have none.
func (s Status) LifecycleIndex() (int, bool) {
	idx, ok := lifecycleIndex[s]
	return idx, ok
}

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusPregame, StatusLive, StatusFinal, StatusArchived, StatusPostponed, StatusCanceled:
		return true
	default:
		return false
	}
}

func (s Status) IsSideState() bool {
	return s == StatusPostponed || s == StatusCanceled
}

// ResolveTransition decides the status to persist when incoming is observed
// for a game currently in current.
//
// Archived is terminal. Final only moves to archived. Side states always pass
// through. Otherwise the later lifecycle state wins, so a stale "scheduled"
// from a slow source never rolls back a live game.
func ResolveTransition(current, incoming Status) Status {
	if !incoming.Valid() {
		return current
	}
	if !current.Valid() {
		return incoming
	}

	switch current {
	case StatusArchived:
		return StatusArchived
	case StatusFinal:
		if incoming == StatusArchived {
			return StatusArchived
		}
		return StatusFinal
	}

	if incoming.IsSideState() || current.IsSideState() {
		return incoming
	}

	cur, _ := current.LifecycleIndex()
	next, _ := incoming.LifecycleIndex()
	if next < cur {
		return current
	}
	return incoming
}

var statusVocabulary = map[string]Status{
	"scheduled":          StatusScheduled,
	"sched":              StatusScheduled,
	"status_scheduled":   StatusScheduled,
	"not_started":        StatusScheduled,
	"ns":                 StatusScheduled,
	"upcoming":           StatusScheduled,
	"tbd":                StatusScheduled,
	"time_tbd":           StatusScheduled,
	"pregame":            StatusPregame,
	"pre_game":           StatusPregame,
	"pre":                StatusPregame,
	"warmup":             StatusPregame,
	"live":               StatusLive,
	"in_progress":        StatusLive,
	"inprogress":         StatusLive,
	"in":                 StatusLive,
	"status_in_progress": StatusLive,
	"halftime":           StatusLive,
	"ht":                 StatusLive,
	"status_halftime":    StatusLive,
	"end_period":         StatusLive,
	"status_end_period":  StatusLive,
	"intermission":       StatusLive,
	"overtime":           StatusLive,
	"final":              StatusFinal,
	"ft":                 StatusFinal,
	"status_final":       StatusFinal,
	"status_full_time":   StatusFinal,
	"final_ot":           StatusFinal,
	"f/ot":               StatusFinal,
	"aet":                StatusFinal,
	"completed":          StatusFinal,
	"complete":           StatusFinal,
	"closed":             StatusFinal,
	"post":               StatusFinal,
	"game_over":          StatusFinal,
	"official":           StatusFinal,
	"archived":           StatusArchived,
	"postponed":          StatusPostponed,
	"status_postponed":   StatusPostponed,
	"ppd":                StatusPostponed,
	"suspended":          StatusPostponed,
	"canceled":           StatusCanceled,
	"cancelled":          StatusCanceled,
	"status_canceled":    StatusCanceled,
	"status_cancelled":   StatusCanceled,
	"abandoned":          StatusCanceled,
}

// ParseStatus maps a source status string onto Status. Unknown values
// report false and must be treated as "no status observed".
func ParseStatus(raw string) (Status, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	s, ok := statusVocabulary[key]
	return s, ok
}
