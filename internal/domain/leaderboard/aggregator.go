// Package leaderboard builds the ranked, multiplier-adjusted leaderboard of a
// contest from a consistent snapshot of its entries, results and predictions.
//
// Building is pure: no I/O, no shared state, no caching. Callers recompute on
// every change and may build different contests, or the same one, in
// parallel.
package leaderboard

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/okian/prono/internal/domain/model"
	"github.com/okian/prono/internal/domain/multiplier"
	"github.com/okian/prono/internal/domain/scoring"
)

// Snapshot is everything one build reads. The caller guarantees the parts
// were read consistently.
type Snapshot struct {
	Contest     model.Contest
	EntryIDs    []string
	Results     []model.Result
	Predictions []model.Prediction
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Contest:  s.Contest,
		EntryIDs: slices.Clone(s.EntryIDs),
		Results:  slices.Clone(s.Results),
	}
	if s.Predictions != nil {
		out.Predictions = make([]model.Prediction, len(s.Predictions))
		for i, p := range s.Predictions {
			out.Predictions[i] = p.Clone()
		}
	}
	return out
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithScorer sets the prediction scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(a *Aggregator) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithResolver sets the multiplier resolver.
func WithResolver(r *multiplier.Resolver) Option {
	return func(a *Aggregator) {
		if r != nil {
			a.resolver = r
		}
	}
}

// Aggregator combines a Scorer and a Resolver into leaderboards.
type Aggregator struct {
	scorer   *scoring.Scorer
	resolver *multiplier.Resolver
}

// New creates an aggregator with the default scoring and multiplier tables
// unless overridden.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		scorer:   scoring.NewScorer(),
		resolver: multiplier.NewResolver(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build validates the snapshot and produces its leaderboard. Any invalid
// result or prediction rejects the whole build; a partial leaderboard is
// never returned. Users without a prediction are simply absent.
func (a *Aggregator) Build(snap Snapshot) (Leaderboard, error) {
	results, err := checkResults(snap)
	if err != nil {
		return Leaderboard{}, err
	}

	predictions := slices.Clone(snap.Predictions)
	slices.SortFunc(predictions, func(x, y model.Prediction) int {
		return cmp.Compare(x.UserID, y.UserID)
	})

	raw := make(map[string]int, len(predictions))
	byUser := make(map[string]model.Prediction, len(predictions))
	for _, p := range predictions {
		if p.ContestID != snap.Contest.ID {
			return Leaderboard{}, &model.MismatchedEntrySetError{Owner: p.UserID,
				Reason: fmt.Sprintf("prediction for contest %q in build of %q", p.ContestID, snap.Contest.ID)}
		}
		if _, dup := byUser[p.UserID]; dup {
			return Leaderboard{}, fmt.Errorf("user %q, contest %q: %w", p.UserID, snap.Contest.ID, model.ErrDuplicatePrediction)
		}
		total, err := a.scorer.ScorePrediction(p, results)
		if err != nil {
			return Leaderboard{}, err
		}
		raw[p.UserID] = total
		byUser[p.UserID] = p
	}

	assignments, err := a.resolver.Resolve(raw)
	if err != nil {
		if errors.Is(err, model.ErrEmptyLeaderboard) {
			return Leaderboard{}, fmt.Errorf("contest %q: %w", snap.Contest.ID, err)
		}
		return Leaderboard{}, err
	}

	rows := make([]model.ScoredPrediction, 0, len(raw))
	for user, total := range raw {
		as := assignments[user]
		rows = append(rows, model.ScoredPrediction{
			UserID:      user,
			ContestID:   snap.Contest.ID,
			RawScore:    total,
			Placement:   as.Rank,
			Multiplier:  as.Multiplier,
			FinalScore:  float64(total) * as.Multiplier,
			SubmittedAt: byUser[user].SubmittedAt,
		})
	}
	slices.SortFunc(rows, compareRows)
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return Leaderboard{ContestID: snap.Contest.ID, Rows: rows}, nil
}

// compareRows orders by final score descending, then earliest submission,
// then user id.
func compareRows(x, y model.ScoredPrediction) int {
	if c := cmp.Compare(y.FinalScore, x.FinalScore); c != 0 {
		return c
	}
	if c := x.SubmittedAt.Compare(y.SubmittedAt); c != 0 {
		return c
	}
	return cmp.Compare(x.UserID, y.UserID)
}

// checkResults enforces the completeness gate and the permutation invariant
// on the official results.
func checkResults(snap Snapshot) (model.ResultSet, error) {
	for _, r := range snap.Results {
		if r.ContestID != snap.Contest.ID {
			return nil, &model.MismatchedEntrySetError{Owner: model.OwnerResults,
				Reason: fmt.Sprintf("result for entry %q belongs to contest %q", r.EntryID, r.ContestID)}
		}
	}
	results, err := model.Results(snap.Results)
	if err != nil {
		return nil, err
	}

	var missing []string
	seen := make(map[string]struct{}, len(snap.EntryIDs))
	for _, id := range snap.EntryIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := results[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, &model.IncompleteResultsError{ContestID: snap.Contest.ID, Missing: missing}
	}

	if err := model.ValidatePermutation(snap.EntryIDs, results); err != nil {
		return nil, ownedByResults(err)
	}
	return results, nil
}

func ownedByResults(err error) error {
	var ip *model.InvalidPositionError
	if errors.As(err, &ip) {
		ip.Owner = model.OwnerResults
	}
	var mm *model.MismatchedEntrySetError
	if errors.As(err, &mm) {
		mm.Owner = model.OwnerResults
	}
	return err
}
