// Package types contains the output types shared with consumers of a leaderboard
package types

// Standing represents one leaderboard row as serialized to consumers
type Standing struct {
	UserID     string  `json:"userId"`
	RawScore   int     `json:"rawScore"`
	Multiplier float64 `json:"multiplier"`
	FinalScore float64 `json:"finalScore"`
	Rank       int     `json:"rank"`
	Placement  int     `json:"placement"`
}
