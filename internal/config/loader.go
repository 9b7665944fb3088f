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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FAIRWAY_CONFIG is set
//  3. env (prefix FAIRWAY_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FAIRWAY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: FAIRWAY_DB_PATH, FAIRWAY_PRICE_FLOOR, ...
	// Underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider("FAIRWAY_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "fairway_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.PriceFloor <= 0 || c.PriceCeiling <= c.PriceFloor:
		return fmt.Errorf("%w: price range [%d, %d] is not ascending", ErrInvalidConfig, c.PriceFloor, c.PriceCeiling)
	case c.PriceIncrement <= 0:
		return fmt.Errorf("%w: price_increment must be positive", ErrInvalidConfig)
	case c.SalaryCap <= 0:
		return fmt.Errorf("%w: salary_cap must be positive", ErrInvalidConfig)
	case c.MinSampleEvents <= 0:
		return fmt.Errorf("%w: min_sample_events must be positive", ErrInvalidConfig)
	case c.CurveExponent <= 0:
		return fmt.Errorf("%w: curve_exponent must be positive", ErrInvalidConfig)
	case c.Normalization != "composite" && c.Normalization != "rank":
		return fmt.Errorf("%w: normalization must be composite or rank, got %q", ErrInvalidConfig, c.Normalization)
	}
	return nil
}
