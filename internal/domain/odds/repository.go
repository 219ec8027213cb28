package odds

import (
	"context"
	"time"
)

type Repository interface {
	// UpsertOpening inserts the line unless one already exists for its key;
	// the first opening observation is kept forever.
	UpsertOpening(ctx context.Context, line Line, now time.Time) (bool, error)
	// UpsertClosing overwrites the stored closing line when line or price
	// differ and reports whether a write happened.
	UpsertClosing(ctx context.Context, line Line, now time.Time) (bool, error)
	ListByGame(ctx context.Context, gameID int64) ([]Line, error)
}
