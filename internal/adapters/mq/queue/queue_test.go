package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func req(contestID string) Request {
	return Request{ID: "req-" + contestID, ContestID: contestID, RequestedAt: time.Now()}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}

	if err := q.Enqueue(ctx, req("esc-2025")); err != nil {
		t.Fatalf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.ContestID != "esc-2025" || got.ID != "req-esc-2025" {
		t.Errorf("unexpected request %+v", got)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for _, c := range []string{"a", "b"} {
		if err := q.Enqueue(ctx, req(c)); err != nil {
			t.Fatalf("expected enqueue to succeed, got %v", err)
		}
	}
	if err := q.Enqueue(ctx, req("c")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, req("a")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	const producers, perProducer = 10, 100

	var consumed sync.WaitGroup
	consumed.Add(producers * perProducer)
	for range producers {
		go func() {
			for range q.Dequeue(ctx) {
				consumed.Done()
			}
		}()
	}

	var produced sync.WaitGroup
	for i := range producers {
		produced.Add(1)
		go func() {
			defer produced.Done()
			for j := range perProducer {
				r := req(fmt.Sprintf("c%d_%d", i, j))
				for q.Enqueue(ctx, r) != nil {
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}
	produced.Wait()

	done := make(chan struct{})
	go func() { consumed.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumers did not drain the queue")
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	for _, c := range []string{"a", "b"} {
		if err := q.Enqueue(ctx, req(c)); err != nil {
			t.Fatalf("expected enqueue to succeed, got %v", err)
		}
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, req("c")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// queued requests still drain, then the channel closes
	var got []string
	timeout := time.After(time.Second)
	ch := q.Dequeue(ctx)
	for {
		select {
		case r, ok := <-ch:
			if !ok {
				if len(got) != 2 {
					t.Errorf("expected 2 drained requests, got %v", got)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			got = append(got, r.ContestID)
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}
