package boxscore

import (
	"context"
	"time"
)

type Repository interface {
	// UpsertTeamRow is keyed on (game_id, team_id) and reports whether the
	// stored row changed.
	UpsertTeamRow(ctx context.Context, gameID, teamID int64, row TeamRow, now time.Time) (bool, error)
	// UpsertPlayerRow is keyed on (game_id, team_id, player key).
	UpsertPlayerRow(ctx context.Context, gameID, teamID int64, row PlayerRow, now time.Time) (bool, error)
	ListTeamRows(ctx context.Context, gameID int64) ([]StoredTeamRow, error)
	ListPlayerRows(ctx context.Context, gameID int64) ([]StoredPlayerRow, error)
}
