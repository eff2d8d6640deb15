// Package config defines process configuration and its loading.
//
// Conventions:
// - New() returns a Config holding the defaults.
// - Load layers a YAML file and PRONO_* environment variables on top.
// - Errors wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"runtime"
	"slices"

	"github.com/okian/prono/internal/domain/multiplier"
	"github.com/okian/prono/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// WorkerCount sets the number of build workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the recompute request queue.
	QueueSize int `koanf:"queue_size"`

	// PendingSize bounds the number of contests with a queued recompute.
	PendingSize int `koanf:"pending_size"`

	// PointsByDistance is the points table indexed by |predicted - actual|.
	PointsByDistance []int `koanf:"points_by_distance"`

	// RankMultipliers[r-1] is the multiplier for competition rank r.
	RankMultipliers []float64 `koanf:"rank_multipliers"`

	// LastPlaceMultiplier goes to the bottom group of larger fields.
	LastPlaceMultiplier float64 `koanf:"last_place_multiplier"`

	// DefaultMultiplier covers all other ranks.
	DefaultMultiplier float64 `koanf:"default_multiplier"`

	// TopLimit caps rendered leaderboards; 0 renders every row.
	TopLimit int `koanf:"top_limit"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		WorkerCount:         runtime.NumCPU(),
		QueueSize:           1024,
		PendingSize:         4096,
		PointsByDistance:    slices.Clone([]int(scoring.DefaultTable)),
		RankMultipliers:     slices.Clone(multiplier.DefaultTable.ByRank),
		LastPlaceMultiplier: multiplier.DefaultTable.Last,
		DefaultMultiplier:   multiplier.DefaultTable.Default,
		TopLimit:            0,
	}
}

// ScoringTable returns the configured points table.
func (c *Config) ScoringTable() scoring.Table {
	return scoring.Table(slices.Clone(c.PointsByDistance))
}

// MultiplierTable returns the configured multiplier table.
func (c *Config) MultiplierTable() multiplier.Table {
	return multiplier.Table{
		ByRank:  slices.Clone(c.RankMultipliers),
		Last:    c.LastPlaceMultiplier,
		Default: c.DefaultMultiplier,
	}
}
