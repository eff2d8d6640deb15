// Package model contains domain models passed between layers.
package model

import (
	"maps"
	"slices"
	"time"
)

// Contest identifies one scoring event. Owned by the contest store; the
// engine only reads it.
type Contest struct {
	ID                 string
	Year               int
	HostCountryCode    string
	SubmissionDeadline time.Time // predictions are locked from this instant
}

// Open reports whether predictions are still accepted at the given instant.
// A zero deadline never closes.
func (c Contest) Open(at time.Time) bool {
	return c.SubmissionDeadline.IsZero() || at.Before(c.SubmissionDeadline)
}

// Entry is one competing country within a contest.
type Entry struct {
	ID          string
	ContestID   string
	CountryCode string
	Title       string
	Artist      string
}

// Prediction is one user's full ranking for one contest.
type Prediction struct {
	UserID    string
	ContestID string
	// Positions maps entry id to predicted position (1..N).
	Positions map[string]int
	// SubmittedAt is the original submission time, kept across upserts.
	SubmittedAt time.Time
}

// Clone returns a copy that shares no state with p.
func (p Prediction) Clone() Prediction {
	p.Positions = maps.Clone(p.Positions)
	return p
}

// Result is the official final position of one entry.
type Result struct {
	ContestID string
	EntryID   string
	Position  int
}

// ResultSet maps entry id to final position.
type ResultSet map[string]int

// EntryIDs returns the entries covered by the set in ascending order.
func (rs ResultSet) EntryIDs() []string {
	return slices.Sorted(maps.Keys(rs))
}

// ScoredPrediction is the derived score of one prediction. It is recomputed
// from inputs and never edited by hand.
type ScoredPrediction struct {
	UserID      string
	ContestID   string
	RawScore    int
	Placement   int // competition rank by raw score; drives the multiplier
	Multiplier  float64
	FinalScore  float64
	Rank        int // 1-based position on the leaderboard
	SubmittedAt time.Time
}
