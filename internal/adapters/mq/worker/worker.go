// Package worker runs queued leaderboard rebuilds.
package worker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/prono/internal/adapters/mq/queue"
	"github.com/okian/prono/pkg/logger"
	"github.com/okian/prono/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Builder rebuilds and publishes one contest's leaderboard.
type Builder interface {
	Rebuild(ctx context.Context, req queue.Request) error
}

// Pending is cleared for a contest once its request is picked up.
type Pending interface {
	Unrecord(ctx context.Context, id string)
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// Worker processes requests until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue drains.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	builder Builder
	pending Pending
	name    string

	processed atomic.Int64
	failed    atomic.Int64

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
// pending may be nil.
func NewInMemoryWorker(q Queue, builder Builder, pending Pending, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		builder:  builder,
		pending:  pending,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			if err := w.process(ctx, req); err != nil {
				w.failed.Add(1)
			}
			w.processed.Add(1)
		}
	}
}

// Shutdown stops the worker after its current request.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Processed returns the number of requests handled, failed ones included.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of requests whose build failed.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

func (w *InMemoryWorker) process(ctx context.Context, req queue.Request) error {
	metrics.AddWorkerActive(1)
	defer metrics.AddWorkerActive(-1)

	ctx = logger.WithRequestID(ctx, req.ID)

	// Changes arriving while this build runs must queue a fresh one.
	if w.pending != nil {
		w.pending.Unrecord(ctx, req.ContestID)
	}

	start := time.Now()
	err := w.builder.Rebuild(ctx, req)
	if err != nil {
		w.logger.Error(ctx, "rebuild failed",
			logger.String("contest_id", req.ContestID),
			logger.Duration("queued_for", start.Sub(req.RequestedAt)),
			logger.Error(err),
		)
		return fmt.Errorf("rebuild contest %s: %w", req.ContestID, err)
	}
	w.logger.Debug(ctx, "rebuild done",
		logger.String("contest_id", req.ContestID),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a new worker pool. workerCount below 1 means one worker.
// opts apply to every worker; a logger given with WithLogger is also used by
// the pool, so the global logger is only needed when none is given.
func NewPool(workerCount int, q Queue, builder Builder, pending Pending, opts ...Option) *Pool {
	workerCount = max(workerCount, 1)

	var base InMemoryWorker
	for _, opt := range opts {
		opt(&base)
	}
	log := base.logger
	if log == nil {
		log = logger.Get()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  log.Named("worker-pool"),
	}

	for i := range workerCount {
		name := "worker-" + strconv.Itoa(i)
		workerOpts := append(slices.Clone(opts), WithName(name), WithLogger(log.Named(name)))
		pool.workers[i] = NewInMemoryWorker(q, builder, pending, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Processed sums the requests handled by all workers.
func (p *Pool) Processed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Processed()
	}
	return n
}

// Failed sums the failed builds of all workers.
func (p *Pool) Failed() int64 {
	var n int64
	for _, w := range p.workers {
		n += w.Failed()
	}
	return n
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, fmt.Errorf("worker %d: %w", i, shutdownCtx.Err()))
		}
	}
	return errors.Join(errs...)
}
