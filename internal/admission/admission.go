package admission

import (
	"sync"
	"time"
)

const (
	DefaultWindow = 60 * time.Second
	DefaultLimit  = 30
)

type Config struct {
	Window time.Duration // trailing interval over which arrivals are counted
	Limit  int           // arrivals admitted per window
}

// Controller bounds how many retrievals start per trailing window. One
// controller is shared by every caller in the process, so it protects the
// upstream credential from aggregate overuse rather than metering callers.
type Controller struct {
	now      func() time.Time
	arrivals []time.Time
	window   time.Duration
	limit    int
	mu       sync.Mutex
}

type Option func(*Controller)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func New(cfg Config, opts ...Option) *Controller {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}

	c := &Controller{
		now:      time.Now,
		arrivals: make([]time.Time, 0, cfg.Limit),
		window:   cfg.Window,
		limit:    cfg.Limit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Admit records an arrival and reports true if fewer than Limit arrivals
// fall inside the trailing window. A denied attempt is not recorded.
func (c *Controller) Admit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.purge(now)

	if len(c.arrivals) >= c.limit {
		return false
	}
	c.arrivals = append(c.arrivals, now)
	return true
}

// Remaining reports how many arrivals would currently be admitted.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.purge(c.now())
	return c.limit - len(c.arrivals)
}

func (c *Controller) Window() time.Duration {
	return c.window
}

// purge drops arrivals at least one window old. Arrivals are appended in
// order, so the expired ones form a prefix.
func (c *Controller) purge(now time.Time) {
	cutoff := 0
	for cutoff < len(c.arrivals) && now.Sub(c.arrivals[cutoff]) >= c.window {
		cutoff++
	}
	if cutoff > 0 {
		c.arrivals = append(c.arrivals[:0], c.arrivals[cutoff:]...)
	}
}
