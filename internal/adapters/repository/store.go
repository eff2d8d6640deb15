// Package repository holds contest snapshots and published leaderboards in
// memory.
package repository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/okian/prono/internal/domain/leaderboard"
	"github.com/okian/prono/internal/domain/model"
)

type contestState struct {
	contest     model.Contest
	entries     []model.Entry
	results     []model.Result
	predictions map[string]model.Prediction // by user id
}

// MemoryStore is an in-memory contest store. Reads return deep copies taken
// under one lock, so a build always sees a consistent snapshot.
type MemoryStore struct {
	mu        sync.RWMutex
	contests  map[string]*contestState
	published map[string]leaderboard.Leaderboard
	withdrawn map[string]error // rejection that removed the published board
	clock     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		contests:  make(map[string]*contestState),
		published: make(map[string]leaderboard.Leaderboard),
		withdrawn: make(map[string]error),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutContest creates or replaces a contest and its entries. Existing results
// and predictions are kept.
func (s *MemoryStore) PutContest(_ context.Context, c model.Contest, entries []model.Entry) error {
	if c.ID == "" {
		return ErrInvalidContest
	}
	for _, e := range entries {
		if e.ContestID != c.ID {
			return fmt.Errorf("%w: entry %q belongs to %q", ErrInvalidContest, e.ID, e.ContestID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.contests[c.ID]
	if !ok {
		st = &contestState{predictions: make(map[string]model.Prediction)}
		s.contests[c.ID] = st
	}
	st.contest = c
	st.entries = slices.Clone(entries)
	return nil
}

// PutResults replaces the official results of a contest.
func (s *MemoryStore) PutResults(_ context.Context, contestID string, results []model.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.contests[contestID]
	if !ok {
		return fmt.Errorf("contest %q: %w", contestID, ErrNotFound)
	}
	st.results = slices.Clone(results)
	return nil
}

// SubmitPrediction upserts a user's prediction. The contest deadline is
// enforced and the first submission time is kept across edits.
func (s *MemoryStore) SubmitPrediction(_ context.Context, p model.Prediction) (model.Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.contests[p.ContestID]
	if !ok {
		return model.Prediction{}, fmt.Errorf("contest %q: %w", p.ContestID, ErrNotFound)
	}

	var existing *model.Prediction
	if prev, ok := st.predictions[p.UserID]; ok {
		existing = &prev
	}
	at := p.SubmittedAt
	if at.IsZero() {
		at = s.clock()
	}
	stored, err := model.Upsert(existing, p, st.contest, at)
	if err != nil {
		return model.Prediction{}, err
	}
	st.predictions[p.UserID] = stored
	return stored.Clone(), nil
}

// ContestIDs returns every known contest in ascending order.
func (s *MemoryStore) ContestIDs(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.contests))
}

// Snapshot returns a consistent copy of everything a build reads.
func (s *MemoryStore) Snapshot(ctx context.Context, contestID string) (leaderboard.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return leaderboard.Snapshot{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.contests[contestID]
	if !ok {
		return leaderboard.Snapshot{}, fmt.Errorf("contest %q: %w", contestID, ErrNotFound)
	}

	snap := leaderboard.Snapshot{
		Contest:     st.contest,
		EntryIDs:    make([]string, len(st.entries)),
		Results:     slices.Clone(st.results),
		Predictions: make([]model.Prediction, 0, len(st.predictions)),
	}
	for i, e := range st.entries {
		snap.EntryIDs[i] = e.ID
	}
	for _, user := range slices.Sorted(maps.Keys(st.predictions)) {
		snap.Predictions = append(snap.Predictions, st.predictions[user].Clone())
	}
	return snap, nil
}

// Publish stores lb as the latest leaderboard of its contest.
func (s *MemoryStore) Publish(_ context.Context, lb leaderboard.Leaderboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[lb.ContestID] = lb.Clone()
	delete(s.withdrawn, lb.ContestID)
	return nil
}

// Withdraw removes the published leaderboard of a contest whose current data
// no longer builds. Latest reports reason until the next Publish.
func (s *MemoryStore) Withdraw(_ context.Context, contestID string, reason error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.published, contestID)
	s.withdrawn[contestID] = reason
	return nil
}

// Latest returns the last published leaderboard of a contest.
func (s *MemoryStore) Latest(_ context.Context, contestID string) (leaderboard.Leaderboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if reason, ok := s.withdrawn[contestID]; ok {
		return leaderboard.Leaderboard{}, fmt.Errorf("contest %q: %w, %w: %w", contestID, ErrNoLeaderboard, ErrWithdrawn, reason)
	}
	lb, ok := s.published[contestID]
	if !ok {
		return leaderboard.Leaderboard{}, fmt.Errorf("contest %q: %w", contestID, ErrNoLeaderboard)
	}
	return lb.Clone(), nil
}

// Load replaces the content of a contest from a full snapshot, as read from
// a fixture file. Predictions keep their SubmittedAt and skip the deadline.
func (s *MemoryStore) Load(_ context.Context, snap leaderboard.Snapshot, entries []model.Entry) error {
	if snap.Contest.ID == "" {
		return ErrInvalidContest
	}
	st := &contestState{
		contest:     snap.Contest,
		entries:     slices.Clone(entries),
		results:     slices.Clone(snap.Results),
		predictions: make(map[string]model.Prediction, len(snap.Predictions)),
	}
	if st.entries == nil {
		for _, id := range snap.EntryIDs {
			st.entries = append(st.entries, model.Entry{ID: id, ContestID: snap.Contest.ID})
		}
	}
	for _, p := range snap.Predictions {
		if _, dup := st.predictions[p.UserID]; dup {
			return fmt.Errorf("user %q, contest %q: %w", p.UserID, snap.Contest.ID, model.ErrDuplicatePrediction)
		}
		st.predictions[p.UserID] = p.Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.contests[snap.Contest.ID] = st
	return nil
}
