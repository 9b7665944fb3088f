package pricing

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights sets the composite score weights: cumulative points, damped
// per-event average, wins, podiums and consistency rate, in that order.
func WithWeights(total, average, wins, podiums, consistency float64) Option {
	return func(e *Engine) {
		e.wTotal = total
		e.wAverage = average
		e.wWins = wins
		e.wPodiums = podiums
		e.wConsistency = consistency
	}
}

// WithSampleDamping sets the minimum sample size below which per-event
// averages are blended toward the league baseline.
func WithSampleDamping(minSample int, baseline float64) Option {
	return func(e *Engine) {
		if minSample > 0 {
			e.minSample = minSample
		}
		if baseline >= 0 {
			e.baseline = baseline
		}
	}
}

// WithPriceRange sets the money range prices are mapped onto, in minor
// currency units.
func WithPriceRange(floor, ceiling int64) Option {
	return func(e *Engine) {
		if floor > 0 && ceiling > floor {
			e.floorPrice = floor
			e.ceilingPrice = ceiling
		}
	}
}

// WithCurveExponent sets the power-curve exponent. Values above 1 spread
// top performers apart; LegacyCurveExponent is accepted only as an explicit
// backward-compatibility choice.
func WithCurveExponent(exponent float64) Option {
	return func(e *Engine) {
		if exponent > 0 {
			e.exponent = exponent
		}
	}
}

// WithPriceIncrement sets the currency increment prices are rounded to.
func WithPriceIncrement(increment int64) Option {
	return func(e *Engine) {
		if increment > 0 {
			e.increment = increment
		}
	}
}

// WithSalaryCap sets the league salary cap used by the budget audit.
func WithSalaryCap(cap int64) Option {
	return func(e *Engine) {
		if cap > 0 {
			e.salaryCap = cap
		}
	}
}

// WithNormalization selects the normalization base for the run.
func WithNormalization(mode NormalizationMode) Option {
	return func(e *Engine) {
		e.mode = mode
	}
}
