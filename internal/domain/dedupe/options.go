// Package dedupe coalesces duplicate recompute requests.
package dedupe

// Option applies a configuration option to the pending set.
type Option func(*pendingSet)

// WithMaxSize bounds the number of pending ids.
// If maxSize > 0: the oldest id is forgotten when full.
// If maxSize <= 0: unbounded.
func WithMaxSize(maxSize int) Option {
	return func(p *pendingSet) {
		p.maxSize = maxSize
	}
}
