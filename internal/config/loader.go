package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override; EnvConfigPath names the
// optional YAML file.
const (
	EnvPrefix     = "PRONO_"
	EnvConfigPath = "PRONO_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PRONO_CONFIG is set
//  3. env (prefix PRONO_); lists are comma separated
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PRONO_QUEUE_SIZE -> queue_size; underscores are kept to match the tags.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if _, ok := listKeys[key]; ok {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	// Decoding into a pre-filled slice keeps its tail; start empty when overridden.
	if k.Exists("points_by_distance") {
		cfg.PointsByDistance = nil
	}
	if k.Exists("rank_multipliers") {
		cfg.RankMultipliers = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// listKeys are read from the environment as comma separated values.
var listKeys = map[string]struct{}{ //nolint:gochecknoglobals // read-only lookup
	"points_by_distance": {},
	"rank_multipliers":   {},
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks ranges and the scoring tables.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.PendingSize < 1 {
		return fmt.Errorf("%w: pending_size must be positive, got %d", ErrInvalidConfig, c.PendingSize)
	}
	if c.TopLimit < 0 {
		return fmt.Errorf("%w: top_limit must not be negative, got %d", ErrInvalidConfig, c.TopLimit)
	}
	if err := c.ScoringTable().Validate(); err != nil {
		return fmt.Errorf("%w: points_by_distance: %w", ErrInvalidConfig, err)
	}
	if err := c.MultiplierTable().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
