// Package scoring turns a predicted ranking into points against the official
// results.
package scoring

import (
	"errors"
	"fmt"

	"github.com/okian/prono/internal/domain/model"
)

// Table holds the points awarded by distance |predicted - actual|: index 0 is
// an exact hit. Distances at or beyond len(Table) score zero.
type Table []int

// DefaultTable is the published points scale.
var DefaultTable = Table{100, 70, 50, 30, 10} //nolint:gochecknoglobals // read-only default

// Sentinel kinds for table configuration.
var (
	ErrEmptyTable    = errors.New("points table is empty")
	ErrNegativePts   = errors.New("points table has a negative value")
	ErrNotDecreasing = errors.New("points table increases with distance")
)

// Validate checks the table is usable: non-empty, non-negative and
// non-increasing with distance.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for d, pts := range t {
		if pts < 0 {
			return fmt.Errorf("%w: distance %d", ErrNegativePts, d)
		}
		if d > 0 && pts > t[d-1] {
			return fmt.Errorf("%w: distance %d", ErrNotDecreasing, d)
		}
	}
	return nil
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithTable sets the points table. Invalid tables are ignored.
func WithTable(t Table) Option {
	return func(s *Scorer) {
		if t.Validate() == nil {
			s.table = append(Table(nil), t...)
		}
	}
}

// Scorer scores predictions. It holds no mutable state and is safe for
// concurrent use.
type Scorer struct {
	table Table
}

// NewScorer creates a scorer using DefaultTable unless overridden.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{table: DefaultTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns a copy of the configured points table.
func (s *Scorer) Table() Table {
	return append(Table(nil), s.table...)
}

// Points returns the points for one entry placed at predicted when it
// finished at actual, in a contest of n entries. Both positions must lie in
// 1..n.
func (s *Scorer) Points(predicted, actual, n int) (int, error) {
	if predicted < 1 || predicted > n {
		return 0, &model.InvalidPositionError{Position: predicted, N: n, Reason: "predicted position out of range"}
	}
	if actual < 1 || actual > n {
		return 0, &model.InvalidPositionError{Position: actual, N: n, Reason: "actual position out of range"}
	}
	d := predicted - actual
	if d < 0 {
		d = -d
	}
	if d >= len(s.table) {
		return 0, nil
	}
	return s.table[d], nil
}

// ScorePrediction sums Points over every entry of p. The prediction must be
// a 1..N permutation over exactly the entries in results; anything else is
// rejected rather than scored partially.
func (s *Scorer) ScorePrediction(p model.Prediction, results model.ResultSet) (int, error) {
	if err := model.ValidatePermutation(results.EntryIDs(), p.Positions); err != nil {
		return 0, withOwner(err, p.UserID)
	}

	n := len(results)
	total := 0
	for entryID, predicted := range p.Positions {
		pts, err := s.Points(predicted, results[entryID], n)
		if err != nil {
			return 0, withOwner(err, p.UserID)
		}
		total += pts
	}
	return total, nil
}

// Points scores one entry with DefaultTable.
func Points(predicted, actual, n int) (int, error) {
	return defaultScorer.Points(predicted, actual, n)
}

var defaultScorer = NewScorer() //nolint:gochecknoglobals // stateless

// withOwner stamps the offending user on typed validation errors.
func withOwner(err error, owner string) error {
	var ip *model.InvalidPositionError
	if errors.As(err, &ip) && ip.Owner == "" {
		ip.Owner = owner
	}
	var mm *model.MismatchedEntrySetError
	if errors.As(err, &mm) && mm.Owner == "" {
		mm.Owner = owner
	}
	return err
}
