package model

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// ValidatePermutation checks that positions covers exactly entryIDs and
// assigns each a distinct position in 1..N, N being the number of entries.
// Entries are visited in ascending id order so the reported error is stable.
func ValidatePermutation(entryIDs []string, positions map[string]int) error {
	want := make(map[string]struct{}, len(entryIDs))
	for _, id := range entryIDs {
		want[id] = struct{}{}
	}

	var missing, unexpected []string
	for id := range want {
		if _, ok := positions[id]; !ok {
			missing = append(missing, id)
		}
	}
	for id := range positions {
		if _, ok := want[id]; !ok {
			unexpected = append(unexpected, id)
		}
	}
	if len(missing) > 0 || len(unexpected) > 0 {
		slices.Sort(missing)
		slices.Sort(unexpected)
		return &MismatchedEntrySetError{Missing: missing, Unexpected: unexpected}
	}

	n := len(want)
	holder := make([]string, n+1)
	ids := make([]string, 0, n)
	for id := range want {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p := positions[id]
		if p < 1 || p > n {
			return &InvalidPositionError{EntryID: id, Position: p, N: n, Reason: "out of range"}
		}
		if holder[p] != "" {
			return &InvalidPositionError{EntryID: id, Position: p, N: n,
				Reason: fmt.Sprintf("already taken by %q", holder[p])}
		}
		holder[p] = id
	}
	return nil
}

// Results folds result rows into a ResultSet. A second row for the same entry
// is rejected: every entry has exactly one official result.
func Results(rows []Result) (ResultSet, error) {
	rs := make(ResultSet, len(rows))
	for _, r := range rows {
		if _, dup := rs[r.EntryID]; dup {
			return nil, &InvalidPositionError{Owner: OwnerResults, EntryID: r.EntryID,
				Position: r.Position, Reason: "entry has more than one result"}
		}
		rs[r.EntryID] = r.Position
	}
	return rs, nil
}

// PredictionRow is the storage shape of a prediction: one row per
// (user, contest, entry).
type PredictionRow struct {
	UserID    string
	ContestID string
	EntryID   string
	Position  int
	CreatedAt time.Time
}

// AssemblePredictions groups rows into one Prediction per (contest, user).
// SubmittedAt is the earliest row time so later edits do not move a user in
// tie-breaks. Output is ordered by contest then user.
func AssemblePredictions(rows []PredictionRow) ([]Prediction, error) {
	type key struct{ contest, user string }
	byKey := make(map[key]*Prediction)
	var keys []key

	for _, r := range rows {
		k := key{contest: r.ContestID, user: r.UserID}
		p, ok := byKey[k]
		if !ok {
			p = &Prediction{
				UserID:      r.UserID,
				ContestID:   r.ContestID,
				Positions:   make(map[string]int),
				SubmittedAt: r.CreatedAt,
			}
			byKey[k] = p
			keys = append(keys, k)
		}
		if _, dup := p.Positions[r.EntryID]; dup {
			return nil, &InvalidPositionError{Owner: r.UserID, EntryID: r.EntryID,
				Position: r.Position, Reason: "entry predicted more than once"}
		}
		p.Positions[r.EntryID] = r.Position
		if r.CreatedAt.Before(p.SubmittedAt) {
			p.SubmittedAt = r.CreatedAt
		}
	}

	slices.SortFunc(keys, func(a, b key) int {
		if c := cmp.Compare(a.contest, b.contest); c != 0 {
			return c
		}
		return cmp.Compare(a.user, b.user)
	})

	out := make([]Prediction, 0, len(keys))
	for _, k := range keys {
		out = append(out, *byKey[k])
	}
	return out, nil
}

// Upsert applies an incoming submission on top of the user's existing
// prediction for the contest. Positions are replaced wholesale but the
// original SubmittedAt is kept. Submissions at or after the deadline fail
// with ErrContestClosed.
func Upsert(existing *Prediction, incoming Prediction, contest Contest, at time.Time) (Prediction, error) {
	if !contest.Open(at) {
		return Prediction{}, fmt.Errorf("user %q, contest %q: %w", incoming.UserID, contest.ID, ErrContestClosed)
	}
	if incoming.ContestID != contest.ID {
		return Prediction{}, &MismatchedEntrySetError{Owner: incoming.UserID,
			Reason: fmt.Sprintf("prediction for contest %q submitted to %q", incoming.ContestID, contest.ID)}
	}

	out := incoming.Clone()
	out.SubmittedAt = at
	if existing != nil && existing.UserID == incoming.UserID && existing.ContestID == contest.ID &&
		!existing.SubmittedAt.IsZero() {
		out.SubmittedAt = existing.SubmittedAt
	}
	return out, nil
}
