package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for rejected builds. Typed errors below unwrap to these so
// callers can use errors.Is for the kind and errors.As for the detail.
var (
	ErrInvalidPosition     = errors.New("invalid position")
	ErrMismatchedEntrySet  = errors.New("mismatched entry set")
	ErrIncompleteResults   = errors.New("incomplete results")
	ErrEmptyLeaderboard    = errors.New("empty leaderboard")
	ErrDuplicatePrediction = errors.New("duplicate prediction")
	ErrContestClosed       = errors.New("contest closed for predictions")
)

// Owner labels used on typed errors.
const (
	OwnerResults = "results"
)

// InvalidPositionError reports a position outside 1..N or one used twice.
type InvalidPositionError struct {
	Owner    string // OwnerResults or a user id
	EntryID  string
	Position int
	N        int
	Reason   string
}

func (e *InvalidPositionError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInvalidPosition.Error())
	if e.Owner != "" {
		fmt.Fprintf(&b, " in %s", e.Owner)
	}
	if e.EntryID != "" {
		fmt.Fprintf(&b, ": entry %q", e.EntryID)
	}
	fmt.Fprintf(&b, " position %d", e.Position)
	if e.N > 0 {
		fmt.Fprintf(&b, " (n=%d)", e.N)
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	return b.String()
}

func (e *InvalidPositionError) Unwrap() error { return ErrInvalidPosition }

// MismatchedEntrySetError reports a ranking whose entries differ from the
// contest's entry set.
type MismatchedEntrySetError struct {
	Owner      string
	Missing    []string // contest entries absent from the ranking
	Unexpected []string // ranked entries that are not in the contest
	Reason     string
}

func (e *MismatchedEntrySetError) Error() string {
	var b strings.Builder
	b.WriteString(ErrMismatchedEntrySet.Error())
	if e.Owner != "" {
		fmt.Fprintf(&b, " in %s", e.Owner)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ","))
	}
	if len(e.Unexpected) > 0 {
		fmt.Fprintf(&b, ": unexpected %s", strings.Join(e.Unexpected, ","))
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	return b.String()
}

func (e *MismatchedEntrySetError) Unwrap() error { return ErrMismatchedEntrySet }

// IncompleteResultsError reports contest entries that have no official result.
type IncompleteResultsError struct {
	ContestID string
	Missing   []string
}

func (e *IncompleteResultsError) Error() string {
	return fmt.Sprintf("%s for contest %q: no result for %s",
		ErrIncompleteResults.Error(), e.ContestID, strings.Join(e.Missing, ","))
}

func (e *IncompleteResultsError) Unwrap() error { return ErrIncompleteResults }

// Kind returns a stable label for err, suitable for metric labels and exit
// codes.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidPosition):
		return "invalid_position"
	case errors.Is(err, ErrMismatchedEntrySet):
		return "mismatched_entry_set"
	case errors.Is(err, ErrIncompleteResults):
		return "incomplete_results"
	case errors.Is(err, ErrEmptyLeaderboard):
		return "empty_leaderboard"
	case errors.Is(err, ErrDuplicatePrediction):
		return "duplicate_prediction"
	case errors.Is(err, ErrContestClosed):
		return "contest_closed"
	default:
		return "internal"
	}
}

// IsRejection reports whether err is one of the validation kinds above, as
// opposed to an operational failure of the caller's plumbing.
func IsRejection(err error) bool {
	k := Kind(err)
	return k != "none" && k != "internal"
}
