// Package queue carries recompute requests from callers to build workers.
//
// The in-memory implementation is a bounded channel; enqueue never blocks.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/prono/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
)

// Request asks for one contest's leaderboard to be rebuilt.
type Request struct {
	// ID correlates log lines of one request.
	ID          string
	ContestID   string
	RequestedAt time.Time
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a request. It fails with ErrFull or ErrClosed instead of
	// blocking.
	Enqueue(ctx context.Context, r Request) error

	// Dequeue returns a channel that receives requests as they become
	// available. The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Request

	// Len returns the current number of queued requests.
	Len(ctx context.Context) int

	// Close stops accepting requests. Queued requests can still be dequeued.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	requests chan Request
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.requests = make(chan Request, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Capacity returns the maximum number of queued requests.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Enqueue adds a request to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, r Request) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueEnqueueError()
		return err
	}

	select {
	case q.requests <- r:
		metrics.UpdateQueueSize(len(q.requests))
		return nil
	default:
		metrics.RecordQueueEnqueueError()
		return ErrFull
	}
}

// Dequeue returns a channel that will receive requests as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Request {
	out := make(chan Request)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case r, ok := <-q.requests:
				if !ok {
					return
				}
				metrics.UpdateQueueSize(len(q.requests))
				select {
				case out <- r:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued requests.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.requests)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.requests)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
