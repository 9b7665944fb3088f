// Package service orchestrates the atomic read-compute-write batch cycle:
// load a snapshot through the persistence collaborator, run the pure
// scoring/pricing/recompute math, write the results back, and surface the
// integrity report.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/birdieworks/fairway/internal/adapters/repository"
	"github.com/birdieworks/fairway/internal/config"
	"github.com/birdieworks/fairway/internal/domain/model"
	"github.com/birdieworks/fairway/internal/domain/pricing"
	"github.com/birdieworks/fairway/internal/domain/recompute"
	"github.com/birdieworks/fairway/internal/domain/scoring"
	"github.com/birdieworks/fairway/pkg/logger"
	"github.com/birdieworks/fairway/pkg/metrics"
)

// Service wires the pure domain components to the persistence collaborator.
// All computation is single-threaded over one in-memory snapshot; nothing
// here interleaves with live scoring writes.
type Service struct {
	store  repository.Store
	calc   *scoring.Calculator
	engine *pricing.Engine
	rec    *recompute.Recomputer

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence collaborator.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithCalculator sets the scoring calculator version.
func WithCalculator(calc *scoring.Calculator) Option {
	return func(s *Service) {
		if calc != nil {
			s.calc = calc
		}
	}
}

// WithPricingEngine sets the pricing engine.
func WithPricingEngine(engine *pricing.Engine) Option {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// New constructs a Service. The recomputer is always bound to the same
// calculator the service scores with, so preview, apply and live scoring
// share one formula version.
func New(opts ...Option) *Service {
	s := &Service{
		calc:   scoring.NewCalculator(),
		engine: pricing.New(),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.rec = recompute.New(s.calc)
	return s
}

// FromConfig builds the calculator and engine options a Config describes.
func FromConfig(cfg *config.Config) []Option {
	mode := pricing.NormalizeComposite
	if cfg.Normalization == "rank" {
		mode = pricing.NormalizeRank
	}
	calc := scoring.NewCalculator(
		scoring.WithPodiumPoints(cfg.FirstPoints, cfg.SecondPoints, cfg.ThirdPoints),
		scoring.WithStablefordThresholds(cfg.StablefordHigh, cfg.StablefordLow),
		scoring.WithMedalThresholds(cfg.MedalLow, cfg.MedalHigh),
		scoring.WithBonusPoints(cfg.BonusHigh, cfg.BonusLow),
	)
	engine := pricing.New(
		pricing.WithWeights(cfg.WeightTotal, cfg.WeightAverage, cfg.WeightWins, cfg.WeightPodiums, cfg.WeightConsistency),
		pricing.WithSampleDamping(cfg.MinSampleEvents, cfg.BaselineAverage),
		pricing.WithPriceRange(cfg.PriceFloor, cfg.PriceCeiling),
		pricing.WithCurveExponent(cfg.CurveExponent),
		pricing.WithPriceIncrement(cfg.PriceIncrement),
		pricing.WithSalaryCap(cfg.SalaryCap),
		pricing.WithNormalization(mode),
	)
	return []Option{WithCalculator(calc), WithPricingEngine(engine)}
}

// RunPricing executes one full pricing cycle: snapshot, reprice, persist,
// report. The computation itself is pure; only the snapshot load and the
// price write touch I/O.
func (s *Service) RunPricing(ctx context.Context) (*pricing.Run, error) {
	start := time.Now()
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	run, err := s.engine.Reprice(ctx, histories(snap), snap.Rosters)
	if err != nil {
		return nil, fmt.Errorf("reprice: %w", err)
	}

	if len(run.Prices) > 0 {
		if err := s.store.SavePrices(ctx, run.Prices); err != nil {
			return nil, fmt.Errorf("save prices: %w", err)
		}
	}

	metrics.RecordPricingRun()
	metrics.RecordPricingRunDuration(time.Since(start))
	metrics.UpdateGolfersPriced(len(run.Prices))
	metrics.RecordRankInversions(len(run.Report.RankInversions))
	metrics.UpdateOverCapRosters(len(run.Report.OverBudgetRosters))

	s.logger.Info(ctx, "pricing run complete",
		logger.String("run_id", run.RunID.String()),
		logger.Int("golfers", len(run.Prices)),
		logger.Int("rank_inversions", len(run.Report.RankInversions)),
		logger.Int("over_cap_rosters", len(run.Report.OverBudgetRosters)))
	for _, inv := range run.Report.RankInversions {
		s.logger.Warn(ctx, "rank inversion",
			logger.String("golfer_a", inv.GolferA),
			logger.String("golfer_b", inv.GolferB),
			logger.Int64("price_a", inv.PriceA),
			logger.Int64("price_b", inv.PriceB))
	}
	for _, audit := range run.Report.OverBudgetRosters {
		s.logger.Warn(ctx, "roster over salary cap",
			logger.String("team_id", audit.TeamID),
			logger.Int64("total", audit.Total),
			logger.Int64("overrun", audit.Overrun))
	}
	return run, nil
}

// Recompute re-derives every stored point breakdown. Preview and apply
// share the identical compute path; only apply writes.
func (s *Service) Recompute(ctx context.Context, mode recompute.Mode) (*recompute.Outcome, error) {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	outcome, err := s.rec.Compute(snap.Results, snap.SourceScores)
	if err != nil {
		return nil, fmt.Errorf("recompute: %w", err)
	}

	sum := outcome.Summary
	s.logger.Info(ctx, "recomputation computed",
		logger.String("mode", string(mode)),
		logger.Int("rows", sum.Rows),
		logger.Int("matched", sum.Matched),
		logger.Int("unmatched", sum.Unmatched),
		logger.Float64("points_before", sum.PointsBefore),
		logger.Float64("points_after", sum.PointsAfter),
		logger.Float64("drift", sum.Drift()))
	if sum.FallbackApplied > 0 {
		s.logger.Warn(ctx, "fallback policy applied to unmatched rows",
			logger.Int("fallback_rows", sum.FallbackApplied))
	}

	if mode.Writes() {
		updates := make([]repository.BreakdownUpdate, len(snap.Results))
		for i, rec := range snap.Results {
			updates[i] = repository.BreakdownUpdate{
				GolferID:     rec.Result.GolferID,
				TournamentID: rec.Result.TournamentID,
				Breakdown:    outcome.Breakdowns[i],
			}
		}
		if err := s.store.SaveBreakdowns(ctx, updates); err != nil {
			return nil, fmt.Errorf("save breakdowns: %w", err)
		}
	}

	metrics.RecordRecomputeRun()
	metrics.RecordRecomputeRows(sum.Matched, sum.FallbackApplied)
	metrics.UpdateRecomputePointDrift(sum.Drift())
	return outcome, nil
}

// Rebuild runs a recomputation followed by a pricing run and merges both
// into one structured report, so the aggregate point drift lands next to
// the rank and budget audits it explains.
func (s *Service) Rebuild(ctx context.Context, mode recompute.Mode) (*pricing.Run, *recompute.Outcome, error) {
	outcome, err := s.Recompute(ctx, mode)
	if err != nil {
		return nil, nil, err
	}
	run, err := s.RunPricing(ctx)
	if err != nil {
		return nil, outcome, err
	}
	run.Report.PointDriftTotal = outcome.Summary.Drift()
	return run, outcome, nil
}

// histories groups the snapshot's scored results per golfer. Every golfer
// in the population is priced, including those with no history yet.
func histories(snap *model.Snapshot) []pricing.GolferHistory {
	byGolfer := make(map[string][]model.ScoredResult, len(snap.Golfers))
	for _, rec := range snap.Results {
		byGolfer[rec.Result.GolferID] = append(byGolfer[rec.Result.GolferID], model.ScoredResult{
			Result:    rec.Result,
			Breakdown: rec.Breakdown,
		})
	}
	out := make([]pricing.GolferHistory, len(snap.Golfers))
	for i, g := range snap.Golfers {
		out[i] = pricing.GolferHistory{
			GolferID:     g.ID,
			CurrentPrice: g.Price,
			History:      byGolfer[g.ID],
		}
	}
	return out
}

// nopLogger is the default until WithLogger is applied.
type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...logger.Field)  {}
func (nopLogger) Error(context.Context, string, ...logger.Field) {}
func (nopLogger) Debug(context.Context, string, ...logger.Field) {}
func (nopLogger) Warn(context.Context, string, ...logger.Field)  {}
func (nopLogger) Named(string) logger.Logger                     { return nopLogger{} }
