package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCoolingDown = errors.New("cooling down after rate limit")

// Cooldown is a one-shot gate: once tripped it refuses work until the
// cooldown period elapses. Tripping again while cooling extends the period.
type Cooldown struct {
	mu      sync.Mutex
	period  time.Duration
	until   time.Time
	tripped int
	now     func() time.Time
}

func NewCooldown(period time.Duration) *Cooldown {
	if period <= 0 {
		period = time.Minute
	}
	return &Cooldown{period: period, now: time.Now}
}

// Allow returns ErrCoolingDown while the gate is closed.
func (c *Cooldown) Allow() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.now().Before(c.until) {
		return ErrCoolingDown
	}
	return nil
}

func (c *Cooldown) Trip() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.until = c.now().Add(c.period)
	c.tripped++
}

func (c *Cooldown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if left := c.until.Sub(c.now()); left > 0 {
		return left
	}
	return 0
}

// Trips reports how many times the gate has been tripped.
func (c *Cooldown) Trips() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tripped
}
