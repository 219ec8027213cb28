package usecase

import (
	"context"
	stderrors "errors"
	"math/rand/v2"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/game-reconciler/internal/platform/logging"
	"github.com/riskibarqy/game-reconciler/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

// ErrRateLimited is returned (wrapped) by a poll task when the upstream
// asked us to back off. The rest of the cycle is abandoned.
var ErrRateLimited = crerr.New("upstream rate limited")

// Locker is a cooperative lock shared by workers polling the same upstream.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

type PollConfig struct {
	// MaxCalls caps upstream calls per cycle; the rest wait for the next one.
	MaxCalls    int
	Jitter      time.Duration
	CallTimeout time.Duration
	Cooldown    time.Duration
	LockTTL     time.Duration
}

func (c PollConfig) withDefaults() PollConfig {
	if c.MaxCalls <= 0 {
		c.MaxCalls = 25
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 15 * time.Second
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 5 * time.Minute
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 2 * time.Minute
	}
	return c
}

// PollTask is one upstream call. Key only labels logs.
type PollTask struct {
	Key string
	Run func(ctx context.Context) error
}

type PollReport struct {
	Attempted   int
	Succeeded   int
	Failed      int
	Deferred    int
	RateLimited bool
	// Skipped is set when the cycle did not run at all because another
	// worker holds the lock or the cooldown is active.
	Skipped    bool
	SkipReason string
}

// PollCycle runs a batch of upstream calls with backpressure: a cap on calls
// per cycle, random jitter between calls, a per-call timeout and a cooldown
// that is tripped by a rate-limit response.
type PollCycle struct {
	cfg      PollConfig
	locker   Locker
	cooldown *resilience.Cooldown
	sleep    func(ctx context.Context, d time.Duration) error
	jitter   func(max time.Duration) time.Duration
	logger   *logging.Logger
}

func NewPollCycle(cfg PollConfig, locker Locker, logger *logging.Logger) *PollCycle {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.Default()
	}
	return &PollCycle{
		cfg:      cfg,
		locker:   locker,
		cooldown: resilience.NewCooldown(cfg.Cooldown),
		sleep:    sleepContext,
		jitter:   randomJitter,
		logger:   logger.Named("poll_cycle"),
	}
}

// Run executes tasks in order under lockKey. Task failures are counted and
// do not stop the cycle, except for ErrRateLimited.
func (c *PollCycle) Run(ctx context.Context, lockKey string, tasks []PollTask) (PollReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollCycle.Run",
		attribute.String("lock_key", lockKey),
		attribute.Int("tasks", len(tasks)),
	)
	defer span.End()

	var report PollReport
	if err := c.cooldown.Allow(); err != nil {
		report.Skipped, report.SkipReason = true, "cooldown"
		report.Deferred = len(tasks)
		c.logger.InfoContext(ctx, "poll cycle skipped while cooling down",
			"lock_key", lockKey,
			"remaining", c.cooldown.Remaining(),
		)
		return report, nil
	}

	if c.locker != nil {
		token, ok, err := c.locker.Acquire(ctx, lockKey, c.cfg.LockTTL)
		if err != nil {
			return report, crerr.Wrapf(err, "acquire poll lock %s", lockKey)
		}
		if !ok {
			report.Skipped, report.SkipReason = true, "locked"
			report.Deferred = len(tasks)
			c.logger.DebugContext(ctx, "poll cycle skipped, lock held elsewhere", "lock_key", lockKey)
			return report, nil
		}
		defer func() {
			if err := c.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
				c.logger.WarnContext(ctx, "release poll lock failed", "lock_key", lockKey, "error", err)
			}
		}()
	}

	limit := len(tasks)
	if limit > c.cfg.MaxCalls {
		limit = c.cfg.MaxCalls
	}
	report.Deferred = len(tasks) - limit

	for i := 0; i < limit; i++ {
		if i > 0 && c.cfg.Jitter > 0 {
			if err := c.sleep(ctx, c.jitter(c.cfg.Jitter)); err != nil {
				report.Deferred += limit - i
				return report, err
			}
		}

		task := tasks[i]
		report.Attempted++
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		err := task.Run(callCtx)
		cancel()

		if err == nil {
			report.Succeeded++
			continue
		}
		if crerr.Is(err, ErrRateLimited) {
			c.cooldown.Trip()
			report.Failed++
			report.RateLimited = true
			report.Deferred += limit - i - 1
			c.logger.WarnContext(ctx, "upstream rate limited, abandoning cycle",
				"lock_key", lockKey,
				"task", task.Key,
				"deferred", report.Deferred,
				"cooldown", c.cfg.Cooldown,
			)
			return report, nil
		}
		if stderrors.Is(err, context.Canceled) && ctx.Err() != nil {
			report.Deferred += limit - i - 1
			return report, ctx.Err()
		}

		report.Failed++
		c.logger.WarnContext(ctx, "poll task failed",
			"lock_key", lockKey,
			"task", task.Key,
			"error", err,
		)
	}
	return report, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(max) + 1))
}
