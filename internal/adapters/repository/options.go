package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the time source used to stamp submissions that carry no
// time of their own.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.clock = now
		}
	}
}
