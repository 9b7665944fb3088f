// Package pricing maps accumulated golfer performance onto a bounded price
// curve. The engine is pure: it reads an in-memory snapshot of scored
// history, current prices and rosters, and returns new prices plus an
// integrity report for an external persistence collaborator to apply.
package pricing

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/birdieworks/fairway/internal/domain/model"
	"github.com/birdieworks/fairway/internal/domain/types"
)

// NormalizationMode selects how composite scores are mapped into [0,1]
// before the curve.
type NormalizationMode string

const (
	// NormalizeComposite scales each golfer against the population's
	// maximum composite score.
	NormalizeComposite NormalizationMode = "composite"
	// NormalizeRank scales each golfer by linear position within the
	// observed current price range, preserving the existing market shape
	// across incremental repricings.
	NormalizeRank NormalizationMode = "rank"
)

// Default pricing configuration constants, in minor currency units where
// money is involved.
const (
	defaultWeightTotal       = 1.0
	defaultWeightAverage     = 5.0
	defaultWeightWins        = 8.0
	defaultWeightPodiums     = 3.0
	defaultWeightConsistency = 20.0

	defaultMinSample   = 5
	defaultBaselineAvg = 3.0

	// Consistency is meaningless below this many events.
	minConsistencySample = 3

	defaultFloorPrice     = 5_000_000
	defaultCeilingPrice   = 15_000_000
	defaultPriceIncrement = 100_000
	defaultSalaryCap      = 60_000_000

	// defaultCurveExponent keeps the curve convex so top performers are
	// spread apart rather than compressed together.
	defaultCurveExponent = 1.5

	// LegacyCurveExponent is the historical sub-unity exponent. It
	// compresses the top of the market and is retained only for runs that
	// must reproduce legacy prices; do not use it for new seasons.
	LegacyCurveExponent = 0.7
)

// GolferHistory is the pricing input for one golfer: identity, the price
// currently on record, and the golfer's full scored result history.
type GolferHistory struct {
	GolferID     string
	CurrentPrice int64
	History      []model.ScoredResult
}

// Run is the complete, side-effect-free result of one pricing run.
type Run struct {
	RunID    uuid.UUID
	Prices   []types.GolferPrice
	Profiles []model.PerformanceProfile
	Report   types.Report
}

// Engine computes bounded, rank-preserving prices from scored history.
type Engine struct {
	wTotal       float64
	wAverage     float64
	wWins        float64
	wPodiums     float64
	wConsistency float64

	minSample int
	baseline  float64

	floorPrice   int64
	ceilingPrice int64
	increment    int64
	salaryCap    int64
	exponent     float64

	mode NormalizationMode
}

// New creates a pricing engine with the default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		wTotal:       defaultWeightTotal,
		wAverage:     defaultWeightAverage,
		wWins:        defaultWeightWins,
		wPodiums:     defaultWeightPodiums,
		wConsistency: defaultWeightConsistency,
		minSample:    defaultMinSample,
		baseline:     defaultBaselineAvg,
		floorPrice:   defaultFloorPrice,
		ceilingPrice: defaultCeilingPrice,
		increment:    defaultPriceIncrement,
		salaryCap:    defaultSalaryCap,
		exponent:     defaultCurveExponent,
		mode:         NormalizeComposite,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reprice computes a new price for every golfer in the population and
// audits the result against current rankings and existing rosters. An
// empty population is a no-op, not an error.
func (e *Engine) Reprice(ctx context.Context, golfers []GolferHistory, rosters []model.Roster) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pricing run canceled: %w", err)
	}
	run := &Run{RunID: uuid.New()}
	if len(golfers) == 0 {
		return run, nil
	}

	profiles := make([]model.PerformanceProfile, len(golfers))
	for i, g := range golfers {
		profiles[i] = e.Profile(g)
	}

	normalized, err := e.normalize(golfers, profiles)
	if err != nil {
		return nil, err
	}

	prices := make([]types.GolferPrice, len(golfers))
	for i, g := range golfers {
		prices[i] = types.GolferPrice{
			GolferID:  g.GolferID,
			OldPrice:  g.CurrentPrice,
			NewPrice:  e.curvePrice(normalized[i]),
			Composite: profiles[i].Composite,
		}
	}

	run.Prices = prices
	run.Profiles = profiles
	run.Report.RankInversions = e.rankInversions(prices)
	run.Report.OverBudgetRosters = e.auditRosters(prices, rosters)
	return run, nil
}

// Profile rebuilds one golfer's aggregate performance profile from scratch.
// Only participated results count; wins and podiums come from finishing
// positions, bonus rounds from scored bonus points.
func (e *Engine) Profile(g GolferHistory) model.PerformanceProfile {
	p := model.PerformanceProfile{GolferID: g.GolferID}
	for _, sr := range g.History {
		if !sr.Result.Participated {
			continue
		}
		p.TimesPlayed++
		p.TotalPoints += sr.Breakdown.Multiplied
		if sr.Result.Position != nil {
			if *sr.Result.Position == model.PositionFirst {
				p.Wins++
			}
			p.Podiums++
		}
		if sr.Breakdown.Bonus > 0 {
			p.BonusRounds++
		}
	}
	p.AveragePerEvent = e.dampedAverage(p.TotalPoints, p.TimesPlayed)
	p.Composite = e.composite(p)
	return p
}

// dampedAverage blends a small-sample per-event average toward the league
// baseline in proportion to the missing sample count, so one lucky result
// cannot produce an extreme price.
func (e *Engine) dampedAverage(total float64, played int) float64 {
	raw := 0.0
	if played > 0 {
		raw = total / float64(played)
	}
	if played >= e.minSample {
		return raw
	}
	missing := float64(e.minSample - played)
	return (raw*float64(played) + e.baseline*missing) / float64(e.minSample)
}

func (e *Engine) composite(p model.PerformanceProfile) float64 {
	consistency := 0.0
	if p.TimesPlayed >= minConsistencySample {
		consistency = float64(p.BonusRounds) / float64(p.TimesPlayed)
	}
	return p.TotalPoints*e.wTotal +
		p.AveragePerEvent*e.wAverage +
		float64(p.Wins)*e.wWins +
		float64(p.Podiums)*e.wPodiums +
		consistency*e.wConsistency
}

func (e *Engine) normalize(golfers []GolferHistory, profiles []model.PerformanceProfile) ([]float64, error) {
	switch e.mode {
	case NormalizeComposite:
		return normalizeByComposite(profiles), nil
	case NormalizeRank:
		return normalizeByPriceRank(golfers), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNormalization, e.mode)
	}
}

// normalizeByComposite scales every composite against the population
// maximum. When every composite is zero the whole population is tied at the
// maximum and normalizes to 1, so ties still price identically.
func normalizeByComposite(profiles []model.PerformanceProfile) []float64 {
	maxComposite := 0.0
	for _, p := range profiles {
		if p.Composite > maxComposite {
			maxComposite = p.Composite
		}
	}
	out := make([]float64, len(profiles))
	for i, p := range profiles {
		if maxComposite <= 0 {
			out[i] = 1
			continue
		}
		out[i] = math.Max(0, p.Composite/maxComposite)
	}
	return out
}

// normalizeByPriceRank scales each golfer by linear position within the
// observed current price range. A zero range (first-ever run, or all prices
// identical) substitutes a denominator of 1 rather than dividing by zero.
func normalizeByPriceRank(golfers []GolferHistory) []float64 {
	minPrice, maxPrice := golfers[0].CurrentPrice, golfers[0].CurrentPrice
	for _, g := range golfers[1:] {
		if g.CurrentPrice < minPrice {
			minPrice = g.CurrentPrice
		}
		if g.CurrentPrice > maxPrice {
			maxPrice = g.CurrentPrice
		}
	}
	denom := float64(maxPrice - minPrice)
	if denom == 0 {
		denom = 1
	}
	out := make([]float64, len(golfers))
	for i, g := range golfers {
		out[i] = float64(g.CurrentPrice-minPrice) / denom
	}
	return out
}

// curvePrice maps a normalized score in [0,1] onto the money range through
// the power curve and rounds to the nearest currency increment.
func (e *Engine) curvePrice(normalized float64) int64 {
	spread := float64(e.ceilingPrice - e.floorPrice)
	price := float64(e.floorPrice) + math.Pow(normalized, e.exponent)*spread
	return int64(math.Round(price/float64(e.increment))) * e.increment
}

// rankInversions compares the new price ordering against the pre-run one.
// A pair inverts when a golfer strictly cheaper than another before the run
// comes out strictly more expensive after it. Inversions are reported for
// an operator to judge, never auto-corrected.
func (e *Engine) rankInversions(prices []types.GolferPrice) []types.RankInversion {
	prior := make([]types.GolferPrice, len(prices))
	copy(prior, prices)
	sort.SliceStable(prior, func(i, j int) bool {
		if prior[i].OldPrice != prior[j].OldPrice {
			return prior[i].OldPrice > prior[j].OldPrice
		}
		return prior[i].GolferID < prior[j].GolferID
	})

	var inversions []types.RankInversion
	for i := 0; i < len(prior); i++ {
		for j := i + 1; j < len(prior); j++ {
			// Ties in the prior ordering carry no order to invert.
			if prior[i].OldPrice == prior[j].OldPrice {
				continue
			}
			if prior[i].NewPrice < prior[j].NewPrice {
				inversions = append(inversions, types.RankInversion{
					GolferA:   prior[i].GolferID,
					GolferB:   prior[j].GolferID,
					PriceA:    prior[i].NewPrice,
					PriceB:    prior[j].NewPrice,
					PriorRank: i + 1,
				})
			}
		}
	}
	return inversions
}

// auditRosters sums new prices per existing roster and flags totals
// strictly above the salary cap. A roster at exactly the cap is legal.
// Roster members outside the priced population contribute nothing.
func (e *Engine) auditRosters(prices []types.GolferPrice, rosters []model.Roster) []types.RosterAudit {
	byID := make(map[string]int64, len(prices))
	for _, p := range prices {
		byID[p.GolferID] = p.NewPrice
	}
	var flagged []types.RosterAudit
	for _, r := range rosters {
		var total int64
		for _, id := range r.GolferIDs {
			total += byID[id]
		}
		if total > e.salaryCap {
			flagged = append(flagged, types.RosterAudit{
				TeamID:  r.TeamID,
				Total:   total,
				Cap:     e.salaryCap,
				Overrun: total - e.salaryCap,
			})
		}
	}
	return flagged
}
