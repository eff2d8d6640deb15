// Package multiplier ranks users by raw score and assigns the bonus
// multiplier that goes with each rank.
package multiplier

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/okian/prono/internal/domain/model"
)

// Table maps competition ranks to multipliers.
type Table struct {
	// ByRank[r-1] is the multiplier for rank r.
	ByRank []float64
	// Last goes to the bottom group once the field is larger than ByRank.
	Last float64
	// Default covers every other rank.
	Default float64
}

// DefaultTable is the published bonus scale.
var DefaultTable = Table{ //nolint:gochecknoglobals // read-only default
	ByRank:  []float64{3.00, 2.50, 2.00},
	Last:    1.50,
	Default: 1.00,
}

// ErrInvalidTable is returned by Validate.
var ErrInvalidTable = errors.New("invalid multiplier table")

// Validate rejects non-positive multipliers.
func (t Table) Validate() error {
	for i, m := range t.ByRank {
		if m <= 0 {
			return fmt.Errorf("%w: rank %d multiplier %v", ErrInvalidTable, i+1, m)
		}
	}
	if t.Last <= 0 {
		return fmt.Errorf("%w: last place multiplier %v", ErrInvalidTable, t.Last)
	}
	if t.Default <= 0 {
		return fmt.Errorf("%w: default multiplier %v", ErrInvalidTable, t.Default)
	}
	return nil
}

// Assignment is a user's competition rank and the multiplier it earns.
type Assignment struct {
	Rank       int
	Multiplier float64
}

// Option applies a configuration option to the Resolver.
type Option func(*Resolver)

// WithTable sets the multiplier table. Invalid tables are ignored.
func WithTable(t Table) Option {
	return func(r *Resolver) {
		if t.Validate() == nil {
			t.ByRank = slices.Clone(t.ByRank)
			r.table = t
		}
	}
}

// Resolver assigns multipliers. Safe for concurrent use.
type Resolver struct {
	table Table
}

// NewResolver creates a resolver using DefaultTable unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{table: DefaultTable}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns a copy of the configured table.
func (r *Resolver) Table() Table {
	t := r.table
	t.ByRank = slices.Clone(t.ByRank)
	return t
}

// Resolve ranks users by raw total, highest first, using standard
// competition ranking (1,1,3,...), and assigns each a multiplier.
//
// Tied users share the best rank of their group, so a tie spanning a
// boundary earns the higher multiplier and the ranks it skips award nothing.
// The bottom group receives Last only when the field outnumbers ByRank and
// the bottom rank lies past it; small fields never see a last-place bonus.
func (r *Resolver) Resolve(rawTotals map[string]int) (map[string]Assignment, error) {
	if len(rawTotals) == 0 {
		return nil, model.ErrEmptyLeaderboard
	}

	users := make([]string, 0, len(rawTotals))
	for u := range rawTotals {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b string) int {
		if c := cmp.Compare(rawTotals[b], rawTotals[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	ranks := make([]int, len(users))
	for i, u := range users {
		if i > 0 && rawTotals[u] == rawTotals[users[i-1]] {
			ranks[i] = ranks[i-1]
			continue
		}
		ranks[i] = i + 1
	}

	top := len(r.table.ByRank)
	maxRank := ranks[len(ranks)-1]
	lastApplies := len(users) > top && maxRank > top

	out := make(map[string]Assignment, len(users))
	for i, u := range users {
		out[u] = Assignment{Rank: ranks[i], Multiplier: r.multiplierFor(ranks[i], maxRank, lastApplies)}
	}
	return out, nil
}

func (r *Resolver) multiplierFor(rank, maxRank int, lastApplies bool) float64 {
	switch {
	case rank <= len(r.table.ByRank):
		return r.table.ByRank[rank-1]
	case lastApplies && rank == maxRank:
		return r.table.Last
	default:
		return r.table.Default
	}
}
