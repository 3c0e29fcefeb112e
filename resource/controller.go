package resource

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is matched by every *MemoryLimitError.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// MemoryLimitError reports a reservation that did not fit the budget.
type MemoryLimitError struct {
	Requested int64
	Used      int64
	Limit     int64
}

func (e *MemoryLimitError) Error() string {
	return fmt.Sprintf("%s: requested %d bytes with %d of %d in use",
		ErrMemoryLimitExceeded, e.Requested, e.Used, e.Limit)
}

func (e *MemoryLimitError) Is(target error) bool { return target == ErrMemoryLimitExceeded }

// defaultMaxBurst caps the token bucket when IOBurstBytes is unset.
const defaultMaxBurst = 64 << 20

// Config holds resource limits. Zero values mean unlimited, except
// MaxBackgroundWorkers which defaults to 1.
type Config struct {
	// MemoryLimitBytes bounds the bytes all backing stores may hold.
	MemoryLimitBytes int64

	// MaxBackgroundWorkers bounds concurrent blob transfers.
	MaxBackgroundWorkers int64

	// IOLimitBytesPerSec bounds blob IO throughput.
	IOLimitBytesPerSec int64

	// IOBurstBytes is the token bucket size. Default: one second of
	// throughput, at most 64 MiB.
	IOBurstBytes int
}

// Stats is a point-in-time snapshot of a Controller.
type Stats struct {
	MemoryUsed  int64
	MemoryPeak  int64
	MemoryLimit int64
	Rejected    int64
	WorkersBusy int64
	Workers     int64
}

// Controller enforces the memory, worker and IO budgets of Config.
type Controller struct {
	cfg Config

	mem      *semaphore.Weighted // nil when unlimited
	used     atomic.Int64
	peak     atomic.Int64
	rejected atomic.Int64

	workers *semaphore.Weighted
	busy    atomic.Int64

	io *rate.Limiter // nil when unlimited
}

// NewController creates a Controller for cfg.
func NewController(cfg Config) *Controller {
	cfg.MaxBackgroundWorkers = max(cfg.MaxBackgroundWorkers, 1)
	c := &Controller{
		cfg:     cfg,
		workers: semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}
	if cfg.MemoryLimitBytes > 0 {
		c.mem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		burst := cfg.IOBurstBytes
		if burst <= 0 {
			burst = int(min(cfg.IOLimitBytesPerSec, defaultMaxBurst))
		}
		c.io = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), burst)
	}
	return c
}

// AcquireMemory reserves n bytes without blocking. A reservation that does
// not fit returns a *MemoryLimitError and reserves nothing.
func (c *Controller) AcquireMemory(n int64) error {
	if c == nil || n <= 0 {
		return nil
	}
	if c.mem != nil && !c.mem.TryAcquire(n) {
		c.rejected.Add(1)
		return &MemoryLimitError{Requested: n, Used: c.used.Load(), Limit: c.cfg.MemoryLimitBytes}
	}
	used := c.used.Add(n)
	for {
		peak := c.peak.Load()
		if used <= peak || c.peak.CompareAndSwap(peak, used) {
			return nil
		}
	}
}

// ReleaseMemory returns n previously reserved bytes.
func (c *Controller) ReleaseMemory(n int64) {
	if c == nil || n <= 0 {
		return
	}
	if c.mem != nil {
		c.mem.Release(n)
	}
	c.used.Add(-n)
}

// MemoryUsage returns the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.used.Load()
}

// MemoryLimit returns the configured limit, 0 if unlimited.
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireBackground blocks until a worker slot is free or ctx is done.
func (c *Controller) AcquireBackground(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.workers.Acquire(ctx, 1); err != nil {
		return err
	}
	c.busy.Add(1)
	return nil
}

// TryAcquireBackground takes a worker slot if one is free.
func (c *Controller) TryAcquireBackground() bool {
	if c == nil {
		return true
	}
	if !c.workers.TryAcquire(1) {
		return false
	}
	c.busy.Add(1)
	return true
}

func (c *Controller) ReleaseBackground() {
	if c == nil {
		return
	}
	c.busy.Add(-1)
	c.workers.Release(1)
}

// AcquireIO waits until n bytes of IO are allowed. Requests larger than the
// bucket are paid for in bucket-sized installments.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil || c.io == nil {
		return nil
	}
	for burst := c.io.Burst(); n > 0; {
		step := min(n, burst)
		if err := c.io.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// Stats returns a snapshot of the controller's counters.
func (c *Controller) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{
		MemoryUsed:  c.used.Load(),
		MemoryPeak:  c.peak.Load(),
		MemoryLimit: c.cfg.MemoryLimitBytes,
		Rejected:    c.rejected.Load(),
		WorkersBusy: c.busy.Load(),
		Workers:     c.cfg.MaxBackgroundWorkers,
	}
}
