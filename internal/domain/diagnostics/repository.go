package diagnostics

import (
	"context"
	"time"
)

type Repository interface {
	// ListExternalIDGroups returns every external id shared by two or more
	// games in the league.
	ListExternalIDGroups(ctx context.Context, leagueID int64) ([]ExternalIDGroup, error)
	// ReplaceConflicts makes the league's unresolved conflicts equal to the
	// given set. Rows already present keep their original detected_at.
	ReplaceConflicts(ctx context.Context, leagueID int64, conflicts []Conflict) error
	ListConflicts(ctx context.Context, leagueID int64) ([]Conflict, error)

	ListPbpCandidates(ctx context.Context, leagueID int64) ([]PbpCandidate, error)
	// ReplaceMissingPbp makes the league's tracking rows equal to entries.
	ReplaceMissingPbp(ctx context.Context, leagueID int64, entries []MissingPbp, now time.Time) error
	ListMissingPbp(ctx context.Context, leagueID int64) ([]MissingPbp, error)
}
