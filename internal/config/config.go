// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with documented defaults.
// - Scoring thresholds and pricing constants live here, not as ambient
//   globals, so alternate scoring-system versions can be tested side by side.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBPath locates the SQLite database holding league state.
	DBPath string `koanf:"db_path"`

	// Schedule is the cron expression for recurring pricing runs; empty
	// disables the scheduler.
	Schedule string `koanf:"schedule"`

	// MetricsAddr exposes Prometheus metrics in schedule mode, e.g.
	// ":9090"; empty disables the endpoint.
	MetricsAddr string `koanf:"metrics_addr"`

	// Scoring formula constants. Changing any of these is a versioned
	// scoring-system change that requires a recomputation run.
	FirstPoints    float64 `koanf:"first_points"`
	SecondPoints   float64 `koanf:"second_points"`
	ThirdPoints    float64 `koanf:"third_points"`
	StablefordHigh float64 `koanf:"stableford_high"`
	StablefordLow  float64 `koanf:"stableford_low"`
	MedalLow       float64 `koanf:"medal_low"`
	MedalHigh      float64 `koanf:"medal_high"`
	BonusHigh      float64 `koanf:"bonus_high"`
	BonusLow       float64 `koanf:"bonus_low"`

	// Composite score weights: cumulative volume dominates, peak
	// performance and reliability both move price meaningfully.
	WeightTotal       float64 `koanf:"weight_total"`
	WeightAverage     float64 `koanf:"weight_average"`
	WeightWins        float64 `koanf:"weight_wins"`
	WeightPodiums     float64 `koanf:"weight_podiums"`
	WeightConsistency float64 `koanf:"weight_consistency"`

	// Small-sample damping.
	MinSampleEvents int     `koanf:"min_sample_events"`
	BaselineAverage float64 `koanf:"baseline_average"`

	// Price curve, in minor currency units.
	PriceFloor     int64   `koanf:"price_floor"`
	PriceCeiling   int64   `koanf:"price_ceiling"`
	PriceIncrement int64   `koanf:"price_increment"`
	SalaryCap      int64   `koanf:"salary_cap"`
	CurveExponent  float64 `koanf:"curve_exponent"`

	// Normalization selects the pricing normalization base:
	// "composite" or "rank".
	Normalization string `koanf:"normalization"`
}

// New creates a Config with documented defaults.
func New() *Config {
	return &Config{
		LogLevel:    "info",
		DBPath:      "fairway.db",
		Schedule:    "",
		MetricsAddr: "",

		FirstPoints:    10,
		SecondPoints:   7,
		ThirdPoints:    5,
		StablefordHigh: 36,
		StablefordLow:  32,
		MedalLow:       72,
		MedalHigh:      76,
		BonusHigh:      3,
		BonusLow:       1,

		WeightTotal:       1.0,
		WeightAverage:     5,
		WeightWins:        8,
		WeightPodiums:     3,
		WeightConsistency: 20,

		MinSampleEvents: 5,
		BaselineAverage: 3,

		PriceFloor:     5_000_000,
		PriceCeiling:   15_000_000,
		PriceIncrement: 100_000,
		SalaryCap:      60_000_000,
		CurveExponent:  1.5,

		Normalization: "composite",
	}
}
