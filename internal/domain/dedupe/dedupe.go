package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Pending tracks contests that already have a recompute queued, so a burst
// of change notifications for one contest collapses into a single build.
type Pending interface {
	// SeenAndRecord reports whether id is already pending and marks it
	// pending if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord clears id once its build has been picked up, so changes
	// arriving during the build queue a fresh one.
	Unrecord(ctx context.Context, id string)

	// Size returns the number of pending ids.
	Size() int64
}

// pendingSet is a bounded insertion-ordered set. When full, the oldest id
// is forgotten: a later request for it queues a second, equally valid build.
type pendingSet struct {
	mu      sync.Mutex
	ids     map[string]*list.Element
	order   *list.List // front = oldest
	maxSize int        // 0 or negative = unbounded
	size    atomic.Int64
}

// NewPending creates an in-memory pending set.
func NewPending(opts ...Option) Pending {
	p := &pendingSet{
		maxSize: 4096,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.ids = make(map[string]*list.Element)
	p.order = list.New()
	return p
}

func (p *pendingSet) SeenAndRecord(_ context.Context, id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.ids[id]; ok {
		return true
	}
	if p.maxSize > 0 && len(p.ids) >= p.maxSize {
		oldest := p.order.Front()
		delete(p.ids, oldest.Value.(string))
		p.order.Remove(oldest)
		p.size.Add(-1)
	}
	p.ids[id] = p.order.PushBack(id)
	p.size.Add(1)
	return false
}

func (p *pendingSet) Unrecord(_ context.Context, id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if el, ok := p.ids[id]; ok {
		delete(p.ids, id)
		p.order.Remove(el)
		p.size.Add(-1)
	}
}

func (p *pendingSet) Size() int64 {
	return p.size.Load()
}
