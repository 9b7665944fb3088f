// Package scoring converts a single tournament result into a point
// breakdown. The calculator is stateless and pure: no I/O, no clock, the
// only failure mode is a malformed input, which is a contract violation.
package scoring

import (
	"fmt"

	"github.com/birdieworks/fairway/internal/domain/model"
)

// Default scoring constants. These are game-design values, not runtime
// tuning knobs; changing them is a versioned scoring-system change that
// requires a recomputation run.
const (
	defaultFirstPoints  = 10
	defaultSecondPoints = 7
	defaultThirdPoints  = 5

	defaultStablefordHigh = 36 // >= earns the high bonus
	defaultStablefordLow  = 32 // >= earns the low bonus
	defaultMedalLow       = 72 // <= earns the high bonus
	defaultMedalHigh      = 76 // <= earns the low bonus

	defaultBonusHigh = 3
	defaultBonusLow  = 1
)

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithPodiumPoints overrides the base points for 1st, 2nd and 3rd place.
func WithPodiumPoints(first, second, third float64) Option {
	return func(c *Calculator) {
		if first > 0 && second > 0 && third > 0 {
			c.firstPoints = first
			c.secondPoints = second
			c.thirdPoints = third
		}
	}
}

// WithStablefordThresholds overrides the stableford bonus tiers.
// high is the score earning the full bonus, low the reduced one.
func WithStablefordThresholds(high, low float64) Option {
	return func(c *Calculator) {
		if high > low {
			c.stablefordHigh = high
			c.stablefordLow = low
		}
	}
}

// WithMedalThresholds overrides the medal (stroke play) bonus tiers.
// low is the stroke count earning the full bonus, high the reduced one.
func WithMedalThresholds(low, high float64) Option {
	return func(c *Calculator) {
		if low < high {
			c.medalLow = low
			c.medalHigh = high
		}
	}
}

// WithBonusPoints overrides the bonus point values for the two tiers.
func WithBonusPoints(high, low float64) Option {
	return func(c *Calculator) {
		if high > low && low > 0 {
			c.bonusHigh = high
			c.bonusLow = low
		}
	}
}

// Calculator scores tournament results under one versioned formula.
type Calculator struct {
	firstPoints  float64
	secondPoints float64
	thirdPoints  float64

	stablefordHigh float64
	stablefordLow  float64
	medalLow       float64
	medalHigh      float64

	bonusHigh float64
	bonusLow  float64
}

// NewCalculator creates a calculator with the default formula constants.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		firstPoints:    defaultFirstPoints,
		secondPoints:   defaultSecondPoints,
		thirdPoints:    defaultThirdPoints,
		stablefordHigh: defaultStablefordHigh,
		stablefordLow:  defaultStablefordLow,
		medalLow:       defaultMedalLow,
		medalHigh:      defaultMedalHigh,
		bonusHigh:      defaultBonusHigh,
		bonusLow:       defaultBonusLow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Score converts one result into its point breakdown. A golfer who did not
// participate scores zero across the board regardless of the other fields.
func (c *Calculator) Score(res model.TournamentResult) (model.PointBreakdown, error) {
	if err := c.validate(res); err != nil {
		return model.PointBreakdown{}, err
	}
	if !res.Participated {
		return model.PointBreakdown{}, nil
	}
	base := c.BasePoints(res.Position)
	bonus := c.BonusPoints(res.RawScore, res.Format)
	return model.PointBreakdown{
		Base:       base,
		Bonus:      bonus,
		Multiplied: (base + bonus) * res.Multiplier,
	}, nil
}

// BasePoints returns podium points for a finishing position. Only the top
// three positions score; anything else, including nil, is zero.
func (c *Calculator) BasePoints(position *int) float64 {
	if position == nil {
		return 0
	}
	switch *position {
	case model.PositionFirst:
		return c.firstPoints
	case model.PositionSecond:
		return c.secondPoints
	case model.PositionThird:
		return c.thirdPoints
	default:
		return 0
	}
}

// BonusPoints returns the performance bonus for a raw score under the given
// format. An unknown raw score earns nothing: unknown is neither bad nor
// rewarded.
func (c *Calculator) BonusPoints(raw *float64, format model.Format) float64 {
	if raw == nil {
		return 0
	}
	switch format {
	case model.FormatStableford:
		switch {
		case *raw >= c.stablefordHigh:
			return c.bonusHigh
		case *raw >= c.stablefordLow:
			return c.bonusLow
		default:
			return 0
		}
	case model.FormatMedal:
		switch {
		case *raw <= c.medalLow:
			return c.bonusHigh
		case *raw <= c.medalHigh:
			return c.bonusLow
		default:
			return 0
		}
	default:
		return 0
	}
}

// BonusEligible reports whether a raw score earns any bonus at all under
// the given format. The pricing engine uses this to count bonus rounds with
// the same thresholds the calculator scores with.
func (c *Calculator) BonusEligible(raw *float64, format model.Format) bool {
	return c.BonusPoints(raw, format) > 0
}

// LowestBonusFloor returns the numeric floor of the lowest bonus tier for a
// format. Recomputation substitutes this value for legacy rows whose old
// boolean flag said the threshold was exceeded but no numeric score
// survived.
func (c *Calculator) LowestBonusFloor(format model.Format) float64 {
	if format == model.FormatMedal {
		return c.medalHigh
	}
	return c.stablefordLow
}

func (c *Calculator) validate(res model.TournamentResult) error {
	if res.Position != nil {
		switch *res.Position {
		case model.PositionFirst, model.PositionSecond, model.PositionThird:
		default:
			return validationErr("position", fmt.Sprintf("must be 1-3 or unset, got %d", *res.Position))
		}
	}
	if res.Multiplier <= 0 {
		return validationErr("multiplier", fmt.Sprintf("must be positive, got %g", res.Multiplier))
	}
	switch res.Format {
	case model.FormatStableford, model.FormatMedal:
	default:
		return validationErr("format", fmt.Sprintf("unknown scoring format %q", res.Format))
	}
	return nil
}
