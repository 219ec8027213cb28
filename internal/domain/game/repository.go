package game

import (
	"context"
	"time"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Game, bool, error)
	// FindByExternalID looks a game up by source key (source == "") or by
	// the value stored under source in external_ids.
	FindByExternalID(ctx context.Context, leagueID int64, source, externalID string) (Game, bool, error)
	// FindCandidates lists league games whose calendar date is in [from, to].
	FindCandidates(ctx context.Context, leagueID int64, from, to time.Time) ([]Game, error)
	// CreateStub inserts a scheduled game unless one with the same identity,
	// or the same source key and team pair, already exists. That game is
	// returned with created=false. A source key held by a different matchup
	// is dropped from the new stub.
	CreateStub(ctx context.Context, stub Stub, now time.Time) (Game, bool, error)
	// Upsert merges an observation into a game under a row lock and writes
	// only when Merge reports a change.
	Upsert(ctx context.Context, id int64, in Update, now time.Time) (Game, bool, error)
	Touch(ctx context.Context, id int64, kind TouchKind, at time.Time) error
	ListByStatus(ctx context.Context, leagueID int64, statuses []Status) ([]Game, error)
	ListActive(ctx context.Context, leagueID int64, params WindowParams, now time.Time) ([]ActiveGame, error)
}
