// Package resource bounds the memory, concurrency and I/O used while decoding
// IMDF archives.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds the limits of a Controller. Zero values disable a limit.
type Config struct {
	// MemoryLimitBytes caps the file bytes held for decoding. Bytes are
	// reserved after a file has been read, so the limit bounds how many
	// files are decoded at once, not the peak of reads in flight; combine
	// it with MaxConcurrentLoads to bound those. Usage is tracked even when
	// unset.
	MemoryLimitBytes int64

	// MaxConcurrentLoads is the maximum number of files read at the same time.
	// Defaults to 1.
	MaxConcurrentLoads int64

	// IOLimitBytesPerSec is the maximum read throughput.
	IOLimitBytesPerSec int64
}

// Controller manages resources shared by concurrent decodes.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	buffers    *semaphore.Weighted // nil without MemoryLimitBytes
	buffered   atomic.Int64
	loads      *semaphore.Weighted
	throughput *rate.Limiter // nil without IOLimitBytesPerSec
}

// NewController returns a Controller enforcing cfg.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentLoads <= 0 {
		cfg.MaxConcurrentLoads = 1
	}

	c := &Controller{
		cfg:   cfg,
		loads: semaphore.NewWeighted(cfg.MaxConcurrentLoads),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.buffers = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.throughput = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// Config returns the effective configuration.
func (c *Controller) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.cfg
}

// AcquireMemory reserves memory and returns the number of bytes reserved.
// Requests above the hard limit are clamped to it so a single large file can
// still be processed once it holds the whole budget. If usage would exceed the
// limit, this blocks until memory is available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) (int64, error) {
	if c == nil || bytes <= 0 {
		return 0, nil
	}

	if c.buffers != nil {
		if bytes > c.cfg.MemoryLimitBytes {
			bytes = c.cfg.MemoryLimitBytes
		}
		if err := c.buffers.Acquire(ctx, bytes); err != nil {
			return 0, err
		}
	}

	c.buffered.Add(bytes)
	return bytes, nil
}

// ReleaseMemory returns bytes reserved by AcquireMemory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.buffers != nil {
		c.buffers.Release(bytes)
	}
	c.buffered.Add(-bytes)
}

// MemoryUsage reports the bytes currently reserved.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.buffered.Load()
}

// AcquireLoad waits for a free file load slot.
func (c *Controller) AcquireLoad(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.loads.Acquire(ctx, 1)
}

// TryAcquireLoad attempts to reserve a file load slot without blocking.
func (c *Controller) TryAcquireLoad() bool {
	if c == nil {
		return true
	}
	return c.loads.TryAcquire(1)
}

// ReleaseLoad releases a file load slot.
func (c *Controller) ReleaseLoad() {
	if c == nil {
		return
	}
	c.loads.Release(1)
}

// AcquireIO charges bytes against the read throughput limit, waiting as needed.
// Requests larger than one second of throughput are split into burst-sized
// waits.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.throughput == nil {
		return nil
	}

	burst := c.throughput.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.throughput.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
