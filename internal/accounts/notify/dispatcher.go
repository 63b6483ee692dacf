// Package notify runs out-of-band side effects (emails, geo lookups) off the
// request path and provides the mailers that deliver account emails.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scrimflow/accounts/pkg/slogx"
)

// Config controls the dispatcher's worker pool and queue.
type Config struct {
	Workers     int
	QueueSize   int
	TaskTimeout time.Duration
}

// DefaultConfig is used for zero fields of a Config.
var DefaultConfig = Config{
	Workers:     4,
	QueueSize:   256,
	TaskTimeout: 30 * time.Second,
}

type job struct {
	ctx  context.Context
	name string
	run  func(ctx context.Context) error
}

// Dispatcher executes fire-and-forget tasks on a fixed pool of workers.
// Submit never blocks: a task is rejected once the dispatcher is closed, and
// dropped and counted when the queue is full. Task errors and panics are logged, never
// returned to the submitter.
type Dispatcher struct {
	cfg       Config
	logger    *slog.Logger
	ch        chan job
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	failed    atomic.Uint64
	closeOnce sync.Once

	// mu orders Submit's enqueue against Close so nothing is queued after
	// the workers have started draining.
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the workers. Call Close to drain the queue and stop.
func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig.QueueSize
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = DefaultConfig.TaskTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		cfg:    cfg,
		logger: logger.With("component", "notify"),
		ch:     make(chan job, cfg.QueueSize),
		done:   make(chan struct{}),
	}

	d.wg.Add(cfg.Workers)
	for range cfg.Workers {
		go d.worker()
	}

	d.logger.Info("notification dispatcher started",
		"workers", cfg.Workers,
		"queue_size", cfg.QueueSize,
	)
	return d
}

// Submit queues task under name. The task receives a context that keeps the
// submitter's logger but not its cancellation, bounded by the task timeout.
// It reports whether the task was accepted.
func (d *Dispatcher) Submit(ctx context.Context, name string, task func(ctx context.Context) error) bool {
	if d == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}

	select {
	case d.ch <- job{ctx: slogx.Detach(ctx), name: name, run: task}:
		return true
	default:
		d.dropped.Add(1)
		slogx.FromContext(ctx).Warn("notification task dropped", "task", name, "reason", "queue full")
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case j := <-d.ch:
			d.execute(j)
		case <-d.done:
			for {
				select {
				case j := <-d.ch:
					d.execute(j)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) execute(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, d.cfg.TaskTimeout)
	defer cancel()

	logger := slogx.FromContext(ctx)
	start := time.Now()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return j.run(ctx)
	}()

	if err != nil {
		d.failed.Add(1)
		logger.Error("notification task failed",
			"task", j.name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return
	}

	logger.Debug("notification task completed",
		"task", j.name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Close stops accepting tasks, runs whatever is already queued and waits for
// the workers to exit. It is safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		close(d.done)
		d.wg.Wait()
		d.logger.Info("notification dispatcher stopped",
			"dropped", d.dropped.Load(),
			"failed", d.failed.Load(),
		)
	})
}

// Dropped returns how many tasks were rejected because the queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Failed returns how many tasks returned an error or panicked.
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
