package fixture

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/okian/prono/internal/domain/leaderboard"
	"github.com/okian/prono/internal/domain/model"
)

// Generator defaults.
const (
	defaultYear      = 2025
	defaultSkill     = 0.5
	submissionWindow = 14 * 24 * time.Hour
)

// countryCodes name generated entries; more entries fall back to E<n>.
var countryCodes = []string{ //nolint:gochecknoglobals // read-only lookup
	"SE", "UA", "GB", "FR", "IT", "ES", "DE", "NO", "NL", "IS", "CH", "AT",
	"IL", "FI", "PL", "LT", "EE", "LV", "CY", "GR", "PT", "HR", "RS", "SI",
	"AL", "AM", "AZ", "GE", "MT", "IE", "BE", "DK", "LU", "SM", "AU", "CZ",
}

// GenerateConfig controls Generate.
type GenerateConfig struct {
	Contests int `validate:"gte=1,lte=1000"`
	Entries  int `validate:"gte=1,lte=200"`
	Users    int `validate:"gte=0,lte=1000000"`
	// Seed makes the output reproducible.
	Seed uint64
	// Year of the first contest; later contests follow one a year.
	Year int `validate:"omitempty,gte=1956"`
	// Skill in [0,1] pulls predictions towards the official order.
	Skill float64 `validate:"gte=0,lte=1"`
}

// DefaultGenerateConfig returns settings for a small contest.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Contests: 1, Entries: 26, Users: 100, Year: defaultYear, Skill: defaultSkill}
}

// Generate produces random, complete contests: every contest has official
// results and every user predicts every contest before its deadline. The
// same config always yields the same contests.
func Generate(cfg GenerateConfig) ([]Contest, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGenerate, err)
	}
	if cfg.Year == 0 {
		cfg.Year = defaultYear
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	rng := rand.New(src)

	users := make([]string, cfg.Users)
	for i := range users {
		id, err := uuid.NewRandomFromReader(src)
		if err != nil {
			return nil, fmt.Errorf("generate user id: %w", err)
		}
		users[i] = id.String()
	}

	contests := make([]Contest, cfg.Contests)
	for i := range contests {
		contests[i] = generateContest(rng, cfg, cfg.Year+i, users)
	}
	return contests, nil
}

func generateContest(rng *rand.Rand, cfg GenerateConfig, year int, users []string) Contest {
	id := fmt.Sprintf("esc-%d", year)
	deadline := time.Date(year, time.May, 17, 19, 0, 0, 0, time.UTC)

	c := Contest{
		Snapshot: leaderboard.Snapshot{
			Contest: model.Contest{
				ID:                 id,
				Year:               year,
				HostCountryCode:    countryCodes[rng.IntN(len(countryCodes))],
				SubmissionDeadline: deadline,
			},
			EntryIDs: make([]string, cfg.Entries),
			Results:  make([]model.Result, cfg.Entries),
		},
		Entries: make([]model.Entry, cfg.Entries),
	}

	for i := range cfg.Entries {
		code := fmt.Sprintf("E%02d", i+1)
		if i < len(countryCodes) {
			code = countryCodes[i]
		}
		c.Entries[i] = model.Entry{ID: code, ContestID: id, CountryCode: code}
		c.Snapshot.EntryIDs[i] = code
	}

	// official order: entry at actual[p] finishes p+1
	actual := rng.Perm(cfg.Entries)
	finish := make(map[string]int, cfg.Entries)
	for p, e := range actual {
		entryID := c.Snapshot.EntryIDs[e]
		finish[entryID] = p + 1
		c.Snapshot.Results[p] = model.Result{ContestID: id, EntryID: entryID, Position: p + 1}
	}

	if len(users) > 0 {
		c.Snapshot.Predictions = make([]model.Prediction, len(users))
	}
	spread := (1 - cfg.Skill) * float64(cfg.Entries)
	for u, user := range users {
		c.Snapshot.Predictions[u] = model.Prediction{
			UserID:      user,
			ContestID:   id,
			Positions:   guess(rng, c.Snapshot.EntryIDs, finish, spread),
			SubmittedAt: deadline.Add(-time.Minute - time.Duration(rng.Int64N(int64(submissionWindow/time.Minute)))*time.Minute),
		}
	}
	return c
}

// guess perturbs the official order with gaussian noise and ranks the
// entries by the noisy value.
func guess(rng *rand.Rand, entryIDs []string, finish map[string]int, spread float64) map[string]int {
	type keyed struct {
		id  string
		key float64
	}
	ks := make([]keyed, len(entryIDs))
	for i, id := range entryIDs {
		ks[i] = keyed{id: id, key: float64(finish[id]) + rng.NormFloat64()*spread}
	}
	slices.SortFunc(ks, func(a, b keyed) int {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	positions := make(map[string]int, len(ks))
	for p, k := range ks {
		positions[k.id] = p + 1
	}
	return positions
}
