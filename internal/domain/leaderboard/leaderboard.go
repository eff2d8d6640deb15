package leaderboard

import (
	"encoding/json"
	"slices"

	"github.com/okian/prono/internal/domain/model"
	"github.com/okian/prono/internal/domain/types"
)

// Leaderboard is the ordered outcome of one build. Rows[i].Rank == i+1.
type Leaderboard struct {
	ContestID string
	Rows      []model.ScoredPrediction
}

// Len returns the number of ranked users.
func (l Leaderboard) Len() int { return len(l.Rows) }

// Find returns the row of userID.
func (l Leaderboard) Find(userID string) (model.ScoredPrediction, bool) {
	for _, r := range l.Rows {
		if r.UserID == userID {
			return r, true
		}
	}
	return model.ScoredPrediction{}, false
}

// Top returns the first n rows, or all of them when n exceeds the size.
func (l Leaderboard) Top(n int) []model.ScoredPrediction {
	n = min(max(n, 0), len(l.Rows))
	return append(make([]model.ScoredPrediction, 0, n), l.Rows[:n]...)
}

// Clone returns a copy that shares no state with l.
func (l Leaderboard) Clone() Leaderboard {
	return Leaderboard{ContestID: l.ContestID, Rows: slices.Clone(l.Rows)}
}

// Standings converts the rows to their serialized form, in order.
func (l Leaderboard) Standings() []types.Standing {
	out := make([]types.Standing, len(l.Rows))
	for i, r := range l.Rows {
		out[i] = types.Standing{
			UserID:     r.UserID,
			RawScore:   r.RawScore,
			Multiplier: r.Multiplier,
			FinalScore: r.FinalScore,
			Rank:       r.Rank,
			Placement:  r.Placement,
		}
	}
	return out
}

// MarshalJSON renders the leaderboard as a JSON array of standings.
func (l Leaderboard) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Standings())
}
