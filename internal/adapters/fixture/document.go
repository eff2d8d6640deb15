// Package fixture reads and writes contest snapshot files.
//
// A file holds one or more contests, each with its entries, official
// results and user predictions. Files are YAML; JSON files load too since
// the parser accepts them. Shape is checked on load. Whether the results and
// predictions are consistent with the entries is left to the leaderboard
// build, which reports it with its own error kinds.
package fixture

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/prono/internal/domain/leaderboard"
	"github.com/okian/prono/internal/domain/model"
)

// validate is the package-level validator instance used for documents.
var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// Document is the on-disk layout of a snapshot file.
type Document struct {
	Contests []ContestDoc `koanf:"contests" yaml:"contests" validate:"required,min=1,unique=ID,dive"`
}

// ContestDoc describes one contest.
type ContestDoc struct {
	ID   string `koanf:"id" yaml:"id" validate:"required"`
	Year int    `koanf:"year" yaml:"year,omitempty" validate:"omitempty,gte=1956"`
	Host string `koanf:"host" yaml:"host,omitempty" validate:"omitempty,len=2"`
	// Deadline is zero for contests that never close.
	Deadline    time.Time       `koanf:"deadline" yaml:"deadline,omitempty"`
	Entries     []EntryDoc      `koanf:"entries" yaml:"entries" validate:"unique=ID,dive"`
	Results     []ResultDoc     `koanf:"results" yaml:"results,omitempty" validate:"dive"`
	Predictions []PredictionDoc `koanf:"predictions" yaml:"predictions,omitempty" validate:"dive"`
	// Picks is the row form of predictions, one row per user and entry, as
	// exported from a prediction table. Rows are folded per user on decode.
	Picks []PickDoc `koanf:"picks" yaml:"picks,omitempty" validate:"dive"`
}

// EntryDoc describes one competing entry.
type EntryDoc struct {
	ID      string `koanf:"id" yaml:"id" validate:"required"`
	Country string `koanf:"country" yaml:"country,omitempty"`
	Title   string `koanf:"title" yaml:"title,omitempty"`
	Artist  string `koanf:"artist" yaml:"artist,omitempty"`
}

// ResultDoc is one official final position.
type ResultDoc struct {
	Entry    string `koanf:"entry" yaml:"entry" validate:"required"`
	Position int    `koanf:"position" yaml:"position"`
}

// PredictionDoc is one user's ranking, entry id to position.
type PredictionDoc struct {
	User        string         `koanf:"user" yaml:"user" validate:"required"`
	SubmittedAt time.Time      `koanf:"submitted_at" yaml:"submitted_at,omitempty"`
	Positions   map[string]int `koanf:"positions" yaml:"positions"`
}

// PickDoc is one predicted position of one user.
type PickDoc struct {
	User      string    `koanf:"user" yaml:"user" validate:"required"`
	Entry     string    `koanf:"entry" yaml:"entry" validate:"required"`
	Position  int       `koanf:"position" yaml:"position"`
	CreatedAt time.Time `koanf:"created_at" yaml:"created_at,omitempty"`
}

// Contest is one decoded contest, ready for a store.
type Contest struct {
	Snapshot leaderboard.Snapshot
	Entries  []model.Entry
}

// ID returns the contest id.
func (c Contest) ID() string { return c.Snapshot.Contest.ID }

// Validate checks the shape of the document.
func (d Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// Decode validates d and converts it to domain values.
func (d Document) Decode() ([]Contest, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	out := make([]Contest, 0, len(d.Contests))
	for _, cd := range d.Contests {
		c, err := cd.contest()
		if err != nil {
			return nil, fmt.Errorf("%w: contest %q: %w", ErrInvalidDocument, cd.ID, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (cd ContestDoc) contest() (Contest, error) {
	c := Contest{Snapshot: leaderboard.Snapshot{
		Contest: model.Contest{
			ID:                 cd.ID,
			Year:               cd.Year,
			HostCountryCode:    cd.Host,
			SubmissionDeadline: utc(cd.Deadline),
		},
	}}

	if len(cd.Entries) > 0 {
		c.Entries = make([]model.Entry, len(cd.Entries))
		c.Snapshot.EntryIDs = make([]string, len(cd.Entries))
	}
	for i, e := range cd.Entries {
		c.Entries[i] = model.Entry{ID: e.ID, ContestID: cd.ID, CountryCode: e.Country, Title: e.Title, Artist: e.Artist}
		c.Snapshot.EntryIDs[i] = e.ID
	}

	if len(cd.Results) > 0 {
		c.Snapshot.Results = make([]model.Result, len(cd.Results))
	}
	for i, r := range cd.Results {
		c.Snapshot.Results[i] = model.Result{ContestID: cd.ID, EntryID: r.Entry, Position: r.Position}
	}

	if len(cd.Predictions) > 0 {
		c.Snapshot.Predictions = make([]model.Prediction, len(cd.Predictions))
	}
	for i, p := range cd.Predictions {
		positions := make(map[string]int, len(p.Positions))
		maps.Copy(positions, p.Positions)
		c.Snapshot.Predictions[i] = model.Prediction{UserID: p.User, ContestID: cd.ID, Positions: positions, SubmittedAt: utc(p.SubmittedAt)}
	}

	if len(cd.Picks) == 0 {
		return c, nil
	}
	rows := make([]model.PredictionRow, len(cd.Picks))
	for i, pk := range cd.Picks {
		rows[i] = model.PredictionRow{UserID: pk.User, ContestID: cd.ID, EntryID: pk.Entry, Position: pk.Position, CreatedAt: utc(pk.CreatedAt)}
	}
	folded, err := model.AssemblePredictions(rows)
	if err != nil {
		return Contest{}, err
	}
	c.Snapshot.Predictions = append(c.Snapshot.Predictions, folded...)
	return c, nil
}

// NewDocument converts contests back to their file layout. Predictions are
// written in user order.
func NewDocument(contests []Contest) Document {
	d := Document{Contests: make([]ContestDoc, 0, len(contests))}
	for _, c := range contests {
		snap := c.Snapshot
		cd := ContestDoc{
			ID:       snap.Contest.ID,
			Year:     snap.Contest.Year,
			Host:     snap.Contest.HostCountryCode,
			Deadline: utc(snap.Contest.SubmissionDeadline),
		}

		entries := c.Entries
		if entries == nil {
			for _, id := range snap.EntryIDs {
				entries = append(entries, model.Entry{ID: id})
			}
		}
		for _, e := range entries {
			cd.Entries = append(cd.Entries, EntryDoc{ID: e.ID, Country: e.CountryCode, Title: e.Title, Artist: e.Artist})
		}
		for _, r := range snap.Results {
			cd.Results = append(cd.Results, ResultDoc{Entry: r.EntryID, Position: r.Position})
		}

		preds := slices.Clone(snap.Predictions)
		slices.SortStableFunc(preds, func(a, b model.Prediction) int {
			return cmp.Compare(a.UserID, b.UserID)
		})
		for _, p := range preds {
			cd.Predictions = append(cd.Predictions, PredictionDoc{
				User:        p.UserID,
				SubmittedAt: utc(p.SubmittedAt),
				Positions:   p.Positions,
			})
		}
		d.Contests = append(d.Contests, cd)
	}
	return d
}

func utc(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC()
}
