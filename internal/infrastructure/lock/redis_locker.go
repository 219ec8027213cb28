package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/riskibarqy/game-reconciler/internal/platform/id"
)

// releaseScript deletes the key only while it still holds our token, so a
// worker whose lock expired cannot release a lock someone else now owns.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares poll locks between worker processes.
type RedisLocker struct {
	rdb    *goredis.Client
	prefix string
	ids    id.Generator
}

func NewRedisLocker(rdb *goredis.Client, prefix string, ids id.Generator) *RedisLocker {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "game-reconciler:lock:"
	}
	return &RedisLocker{rdb: rdb, prefix: prefix, ids: ids}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, rawURL string) (*goredis.Client, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	rdb := goredis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l == nil || l.rdb == nil {
		return "", false, fmt.Errorf("redis locker not initialized")
	}
	token, err := l.ids.NewID()
	if err != nil {
		return "", false, fmt.Errorf("generate lock token: %w", err)
	}

	ok, err := l.rdb.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLocker) Release(ctx context.Context, key, token string) error {
	if l == nil || l.rdb == nil {
		return fmt.Errorf("redis locker not initialized")
	}
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, l.rdb, []string{l.prefix + key}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}
