package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/game-reconciler/internal/platform/id"
)

type held struct {
	token     string
	expiresAt time.Time
}

// MemoryLocker serializes poll cycles inside a single process. It is used
// when no redis url is configured.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]held
	ids   id.Generator
	now   func() time.Time
}

func NewMemoryLocker(ids id.Generator) *MemoryLocker {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	return &MemoryLocker{
		locks: make(map[string]held),
		ids:   ids,
		now:   time.Now,
	}
}

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	token, err := l.ids.NewID()
	if err != nil {
		return "", false, fmt.Errorf("generate lock token: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if current, ok := l.locks[key]; ok && now.Before(current.expiresAt) {
		return "", false, nil
	}
	l.locks[key] = held{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (l *MemoryLocker) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if current, ok := l.locks[key]; ok && current.token == token {
		delete(l.locks, key)
	}
	return nil
}
