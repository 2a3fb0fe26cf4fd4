package decks

import (
	"context"
	"log/slog"

	"github.com/JaimeStill/briefer/pkg/lifecycle"
)

// Driver is a fixed pool of workers consuming a bounded task queue.
type Driver struct {
	queue   chan Task
	workers int
	handle  func(ctx context.Context, t Task)
	logger  *slog.Logger
}

// NewDriver creates a Driver. handle runs each task on a worker goroutine
// and receives the lifecycle context.
func NewDriver(workers, queueSize int, handle func(ctx context.Context, t Task), logger *slog.Logger) *Driver {
	return &Driver{
		queue:   make(chan Task, max(queueSize, 1)),
		workers: max(workers, 1),
		handle:  handle,
		logger:  logger.With("system", "driver"),
	}
}

// Start launches the workers. They exit when the lifecycle context is
// cancelled; tasks still queued at that point are not run.
func (d *Driver) Start(lc *lifecycle.Coordinator) {
	for i := range d.workers {
		lc.Go(func(ctx context.Context) {
			d.work(ctx, i)
		})
	}
	d.logger.Info("workers started", "workers", d.workers, "queue_size", cap(d.queue))
}

// Submit enqueues t without blocking.
func (d *Driver) Submit(t Task) error {
	select {
	case d.queue <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of queued tasks.
func (d *Driver) Pending() int {
	return len(d.queue)
}

func (d *Driver) work(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("worker stopped", "worker", worker)
			return
		case t := <-d.queue:
			d.logger.Debug("task received", "worker", worker, "job_id", t.JobID)
			d.handle(ctx, t)
		}
	}
}
