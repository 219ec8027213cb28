package play

import (
	"context"
	"time"
)

type Repository interface {
	// UpsertMany writes plays keyed on (game_id, play_index) and returns the
	// number processed.
	UpsertMany(ctx context.Context, gameID int64, plays []Play, now time.Time) (int, error)
	CountByGame(ctx context.Context, gameIDs []int64) (map[int64]int, error)
	ListByGame(ctx context.Context, gameID int64) ([]Stored, error)
}
