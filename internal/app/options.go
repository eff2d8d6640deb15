package service

import (
	"github.com/okian/prono/internal/domain/leaderboard"
	"github.com/okian/prono/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where contest snapshots are read from.
func WithSource(src Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithSink sets where built leaderboards are published.
func WithSink(sink Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithStore uses one store as both source and sink.
func WithStore(store interface {
	Source
	Sink
}) Option {
	return func(s *Service) {
		if store != nil {
			s.source = store
			s.sink = store
		}
	}
}

// WithAggregator sets the leaderboard aggregator, e.g. one with custom
// points or multiplier tables.
func WithAggregator(a *leaderboard.Aggregator) Option {
	return func(s *Service) {
		if a != nil {
			s.aggregator = a
		}
	}
}

// WithWorkerCount sets the number of recompute workers and the BuildAll
// parallelism.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPendingSize sets how many contests can be pending at once.
func WithPendingSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pendingSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
