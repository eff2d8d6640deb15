// Package service orchestrates leaderboard builds: it reads contest
// snapshots, runs the pure aggregator, publishes the result and keeps the
// asynchronous recompute path (pending set, queue, workers) running.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	eventqueue "github.com/okian/prono/internal/adapters/mq/queue"
	workerpool "github.com/okian/prono/internal/adapters/mq/worker"
	repository "github.com/okian/prono/internal/adapters/repository"
	"github.com/okian/prono/internal/domain/dedupe"
	"github.com/okian/prono/internal/domain/leaderboard"
	"github.com/okian/prono/internal/domain/model"
	"github.com/okian/prono/pkg/logger"
	"github.com/okian/prono/pkg/metrics"
)

// Default service configuration.
const (
	defaultQueueSize   = 1024
	defaultPendingSize = 4096
	microsPerMilli     = 1000
)

// Source supplies a consistent snapshot of one contest.
type Source interface {
	Snapshot(ctx context.Context, contestID string) (leaderboard.Snapshot, error)
}

// Sink receives built leaderboards. Withdraw takes down a contest's board
// once its current data is rejected.
type Sink interface {
	Publish(ctx context.Context, lb leaderboard.Leaderboard) error
	Withdraw(ctx context.Context, contestID string, reason error) error
	Latest(ctx context.Context, contestID string) (leaderboard.Leaderboard, error)
}

// Service builds and publishes contest leaderboards.
type Service struct {
	mu sync.RWMutex

	// Core components
	source     Source
	sink       Sink
	aggregator *leaderboard.Aggregator
	pending    dedupe.Pending
	queue      *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	pendingSize int

	// State
	started bool

	builds   atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64

	logger logger.Logger
}

// BuildResult is the outcome of one contest in BuildAll.
type BuildResult struct {
	ContestID   string
	Leaderboard leaderboard.Leaderboard
	Err         error
}

// New constructs a Service. Without WithSource/WithSink it reads and
// publishes through a fresh in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		aggregator:  leaderboard.New(),
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		pendingSize: defaultPendingSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.source == nil || s.sink == nil {
		store := repository.NewMemoryStore()
		if s.source == nil {
			s.source = store
		}
		if s.sink == nil {
			s.sink = store
		}
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Start creates the pending set, the queue and the worker pool that serve
// Recompute. Build works without it.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting leaderboard service...")

	s.pending = dedupe.NewPending(dedupe.WithMaxSize(s.pendingSize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s, s.pending, workerpool.WithLogger(s.logger))
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("pendingSize", s.pendingSize),
	)
	return nil
}

// Stop closes the queue and waits for queued recomputes to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping leaderboard service...")

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "leaderboard service stopped")
}

// Build reads a snapshot of the contest, builds its leaderboard and
// publishes it. Nothing is published when the build fails or ctx ends
// before publishing.
func (s *Service) Build(ctx context.Context, contestID string) (leaderboard.Leaderboard, error) {
	start := time.Now()
	log := s.logger.Named("build")

	if err := ctx.Err(); err != nil {
		return leaderboard.Leaderboard{}, err
	}

	snap, err := s.source.Snapshot(ctx, contestID)
	if err != nil {
		s.record(metrics.OutcomeFailed, err, start)
		log.Error(ctx, "snapshot failed", logger.String("contest", contestID), logger.Error(err))
		return leaderboard.Leaderboard{}, fmt.Errorf("snapshot contest %q: %w", contestID, err)
	}

	lb, err := s.aggregator.Build(snap)
	if err != nil {
		outcome := metrics.OutcomeFailed
		if model.IsRejection(err) {
			outcome = metrics.OutcomeRejected
			// A board built from earlier data no longer matches the contest.
			if werr := s.sink.Withdraw(ctx, contestID, err); werr != nil {
				log.Error(ctx, "withdraw failed", logger.String("contest", contestID), logger.Error(werr))
			}
		}
		s.record(outcome, err, start)
		log.Warn(ctx, "leaderboard rejected",
			logger.String("contest", contestID),
			logger.String("kind", model.Kind(err)),
			logger.Error(err),
		)
		return leaderboard.Leaderboard{}, err
	}

	// The compute is not interruptible; a caller that gave up meanwhile
	// gets nothing published.
	if err := ctx.Err(); err != nil {
		s.record(metrics.OutcomeFailed, err, start)
		return leaderboard.Leaderboard{}, err
	}

	if err := s.sink.Publish(ctx, lb); err != nil {
		s.record(metrics.OutcomeFailed, err, start)
		log.Error(ctx, "publish failed", logger.String("contest", contestID), logger.Error(err))
		return leaderboard.Leaderboard{}, fmt.Errorf("publish contest %q: %w", contestID, err)
	}

	s.record(metrics.OutcomeSuccess, nil, start)
	metrics.RecordPredictionsScored(len(snap.Predictions))
	metrics.UpdateLeaderboardSize(contestID, lb.Len())
	log.Debug(ctx, "leaderboard published",
		logger.String("contest", contestID),
		logger.Int("rows", lb.Len()),
		logger.Duration("took", time.Since(start)),
	)
	return lb, nil
}

func (s *Service) record(outcome string, err error, start time.Time) {
	switch outcome {
	case metrics.OutcomeSuccess:
		s.builds.Add(1)
	case metrics.OutcomeRejected:
		s.rejected.Add(1)
	default:
		s.failed.Add(1)
	}
	ms := float64(time.Since(start).Microseconds()) / microsPerMilli
	metrics.RecordBuild(outcome, model.Kind(err), ms)
}

// Rebuild serves queued recompute requests.
func (s *Service) Rebuild(ctx context.Context, req eventqueue.Request) error {
	_, err := s.Build(ctx, req.ContestID)
	return err
}

// Recompute asks for an asynchronous rebuild of the contest. It reports
// false without error when a rebuild is already pending, since that build
// will read the latest data anyway.
func (s *Service) Recompute(ctx context.Context, contestID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return false, ErrNotStarted
	}

	if s.pending.SeenAndRecord(ctx, contestID) {
		metrics.RecordRecomputeRequest(true)
		s.logger.Debug(ctx, "recompute already pending", logger.String("contest", contestID))
		return false, nil
	}
	metrics.RecordRecomputeRequest(false)

	req := eventqueue.Request{ID: uuid.NewString(), ContestID: contestID, RequestedAt: time.Now()}
	if err := s.queue.Enqueue(ctx, req); err != nil {
		s.pending.Unrecord(ctx, contestID)
		s.logger.Warn(ctx, "recompute not queued",
			logger.String("contest", contestID),
			logger.Error(err),
		)
		return false, fmt.Errorf("queue recompute of contest %q: %w", contestID, err)
	}

	s.logger.Debug(logger.WithRequestID(ctx, req.ID), "recompute queued", logger.String("contest", contestID))
	return true, nil
}

// BuildAll builds independent contests in parallel, at most workerCount at
// a time. Results keep the order of contestIDs; a failing contest does not
// stop the others.
func (s *Service) BuildAll(ctx context.Context, contestIDs []string) []BuildResult {
	results := make([]BuildResult, len(contestIDs))

	var g errgroup.Group
	g.SetLimit(s.workerCount)
	for i, id := range contestIDs {
		g.Go(func() error {
			lb, err := s.Build(ctx, id)
			results[i] = BuildResult{ContestID: id, Leaderboard: lb, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Latest returns the last published leaderboard of a contest.
func (s *Service) Latest(ctx context.Context, contestID string) (leaderboard.Leaderboard, error) {
	return s.sink.Latest(ctx, contestID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"pendingSize": s.pendingSize,
		"builds":      s.builds.Load(),
		"rejected":    s.rejected.Load(),
		"failed":      s.failed.Load(),
	}

	if s.started {
		queueLen := s.queue.Len(context.Background())
		stats["queueLength"] = queueLen
		stats["pending"] = s.pending.Size()
		stats["processed"] = s.workerPool.Processed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
