package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("contest not found")
	ErrNoLeaderboard  = errors.New("no leaderboard published")
	ErrWithdrawn      = errors.New("withdrawn")
	ErrInvalidContest = errors.New("invalid contest")
)
