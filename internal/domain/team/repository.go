package team

import "context"

type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Team, error)
	// Insert is conflict-aware on (league_id, name): a concurrent insert of
	// the same name returns the existing row.
	Insert(ctx context.Context, t Team) (Team, error)
	Update(ctx context.Context, t Team) error
}
