package pricing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/birdieworks/fairway/internal/domain/model"
	"github.com/birdieworks/fairway/internal/domain/pricing"
	. "github.com/smartystreets/goconvey/convey"
)

func intPtr(v int) *int { return &v }

// scored builds a participated, already-scored stableford result.
func scored(pos *int, base, bonus, multiplier float64) model.ScoredResult {
	return model.ScoredResult{
		Result: model.TournamentResult{
			Participated: true,
			Position:     pos,
			Format:       model.FormatStableford,
			Multiplier:   multiplier,
		},
		Breakdown: model.PointBreakdown{
			Base:       base,
			Bonus:      bonus,
			Multiplied: (base + bonus) * multiplier,
		},
	}
}

func TestEngine_Profile(t *testing.T) {
	Convey("Given a default pricing engine", t, func() {
		engine := pricing.New()

		Convey("When profiling a golfer with one winning stableford round", func() {
			// 1st place (10) + high bonus (3) at multiplier 1.
			g := pricing.GolferHistory{
				GolferID: "g1",
				History:  []model.ScoredResult{scored(intPtr(1), 10, 3, 1)},
			}
			p := engine.Profile(g)

			Convey("Then the aggregates are rebuilt from scratch", func() {
				So(p.TotalPoints, ShouldEqual, 13)
				So(p.TimesPlayed, ShouldEqual, 1)
				So(p.Wins, ShouldEqual, 1)
				So(p.Podiums, ShouldEqual, 1)
				So(p.BonusRounds, ShouldEqual, 1)
			})

			Convey("And the single sample is damped toward the baseline", func() {
				// (13*1 + 3*4) / 5
				So(p.AveragePerEvent, ShouldEqual, 5)
			})

			Convey("And consistency is gated off below three events", func() {
				// total*1 + avg*5 + wins*8 + podiums*3, consistency term absent
				So(p.Composite, ShouldEqual, 13+5*5+8+3)
			})
		})

		Convey("When profiling a golfer with three bonus rounds", func() {
			g := pricing.GolferHistory{
				GolferID: "g2",
				History: []model.ScoredResult{
					scored(nil, 0, 3, 1),
					scored(nil, 0, 3, 1),
					scored(nil, 0, 3, 1),
				},
			}
			p := engine.Profile(g)

			Convey("Then the consistency rate reaches the composite", func() {
				So(p.TimesPlayed, ShouldEqual, 3)
				So(p.BonusRounds, ShouldEqual, 3)
				// total 9, avg (3*3+3*2)/5 = 3, consistency 1
				So(p.Composite, ShouldEqual, 9+3*5+20)
			})
		})

		Convey("When the history contains non-participated rounds", func() {
			g := pricing.GolferHistory{
				GolferID: "g3",
				History: []model.ScoredResult{
					scored(intPtr(1), 10, 0, 1),
					{Result: model.TournamentResult{Participated: false}, Breakdown: model.PointBreakdown{}},
				},
			}
			p := engine.Profile(g)

			Convey("Then they do not count as played events", func() {
				So(p.TimesPlayed, ShouldEqual, 1)
				So(p.TotalPoints, ShouldEqual, 10)
			})
		})

		Convey("When profiling a golfer with no history at all", func() {
			p := engine.Profile(pricing.GolferHistory{GolferID: "g4"})

			Convey("Then the average is the fully damped baseline", func() {
				So(p.TimesPlayed, ShouldEqual, 0)
				So(p.AveragePerEvent, ShouldEqual, 3)
			})
		})
	})
}

func TestEngine_Reprice(t *testing.T) {
	ctx := context.Background()

	Convey("Given a default pricing engine", t, func() {
		engine := pricing.New()

		Convey("When the population is empty", func() {
			run, err := engine.Reprice(ctx, nil, nil)

			Convey("Then the run is an empty no-op, not an error", func() {
				So(err, ShouldBeNil)
				So(run.Prices, ShouldBeEmpty)
				So(run.Report.RankInversions, ShouldBeEmpty)
				So(run.Report.OverBudgetRosters, ShouldBeEmpty)
			})
		})

		Convey("When the population is a single golfer", func() {
			golfers := []pricing.GolferHistory{{
				GolferID: "solo",
				History:  []model.ScoredResult{scored(intPtr(1), 10, 3, 1)},
			}}
			run, err := engine.Reprice(ctx, golfers, nil)

			Convey("Then the golfer normalizes to 1 and receives the ceiling price", func() {
				So(err, ShouldBeNil)
				So(run.Prices, ShouldHaveLength, 1)
				So(run.Prices[0].NewPrice, ShouldEqual, 15_000_000)
			})
		})

		Convey("When two golfers have identical composite scores", func() {
			history := []model.ScoredResult{scored(intPtr(2), 7, 1, 1)}
			golfers := []pricing.GolferHistory{
				{GolferID: "a", History: history},
				{GolferID: "b", History: history},
			}
			run, err := engine.Reprice(ctx, golfers, nil)

			Convey("Then their prices are equal regardless of insertion order", func() {
				So(err, ShouldBeNil)
				So(run.Prices[0].NewPrice, ShouldEqual, run.Prices[1].NewPrice)
			})
		})

		Convey("When one golfer strictly outperforms another", func() {
			golfers := []pricing.GolferHistory{
				{GolferID: "star", History: []model.ScoredResult{
					scored(intPtr(1), 10, 3, 2),
					scored(intPtr(1), 10, 3, 1),
					scored(intPtr(2), 7, 1, 1),
				}},
				{GolferID: "journeyman", History: []model.ScoredResult{
					scored(nil, 0, 1, 1),
				}},
			}
			run, err := engine.Reprice(ctx, golfers, nil)

			Convey("Then composite normalization never inverts their prices", func() {
				So(err, ShouldBeNil)
				So(run.Prices[0].Composite, ShouldBeGreaterThan, run.Prices[1].Composite)
				So(run.Prices[0].NewPrice, ShouldBeGreaterThanOrEqualTo, run.Prices[1].NewPrice)
			})
		})

		Convey("When every price lands on the currency increment", func() {
			golfers := []pricing.GolferHistory{
				{GolferID: "a", History: []model.ScoredResult{scored(intPtr(1), 10, 3, 1)}},
				{GolferID: "b", History: []model.ScoredResult{scored(intPtr(3), 5, 0, 1)}},
				{GolferID: "c"},
			}
			run, err := engine.Reprice(ctx, golfers, nil)

			So(err, ShouldBeNil)
			for _, p := range run.Prices {
				So(p.NewPrice%100_000, ShouldEqual, 0)
			}
		})
	})
}

func TestEngine_RankNormalization(t *testing.T) {
	ctx := context.Background()

	Convey("Given an engine in rank-based normalization mode", t, func() {
		engine := pricing.New(pricing.WithNormalization(pricing.NormalizeRank))

		Convey("When current prices span a real range", func() {
			golfers := []pricing.GolferHistory{
				{GolferID: "cheap", CurrentPrice: 5_000_000},
				{GolferID: "mid", CurrentPrice: 10_000_000},
				{GolferID: "dear", CurrentPrice: 15_000_000},
			}
			run, err := engine.Reprice(ctx, golfers, nil)

			Convey("Then the market shape is preserved across the run", func() {
				So(err, ShouldBeNil)
				So(run.Prices[0].NewPrice, ShouldEqual, 5_000_000)
				So(run.Prices[2].NewPrice, ShouldEqual, 15_000_000)
				So(run.Prices[1].NewPrice, ShouldBeBetween, 5_000_000, 15_000_000)
			})
		})

		Convey("When all current prices are identical (first-ever run)", func() {
			golfers := []pricing.GolferHistory{
				{GolferID: "a", CurrentPrice: 0},
				{GolferID: "b", CurrentPrice: 0},
			}
			run, err := engine.Reprice(ctx, golfers, nil)

			Convey("Then the zero range substitutes a safe denominator instead of dividing by zero", func() {
				So(err, ShouldBeNil)
				So(run.Prices[0].NewPrice, ShouldEqual, 5_000_000)
				So(run.Prices[1].NewPrice, ShouldEqual, 5_000_000)
			})
		})

		Convey("When the normalization mode is unknown", func() {
			bad := pricing.New(pricing.WithNormalization("alphabetical"))
			_, err := bad.Reprice(ctx, []pricing.GolferHistory{{GolferID: "a"}}, nil)

			So(errors.Is(err, pricing.ErrUnknownNormalization), ShouldBeTrue)
		})
	})
}

func TestEngine_RankInversions(t *testing.T) {
	ctx := context.Background()

	Convey("Given two golfers whose performance no longer matches their prices", t, func() {
		engine := pricing.New()
		golfers := []pricing.GolferHistory{
			{GolferID: "fading", CurrentPrice: 10_000_000},
			{GolferID: "rising", CurrentPrice: 8_000_000, History: []model.ScoredResult{
				scored(intPtr(1), 10, 3, 1),
			}},
		}
		run, err := engine.Reprice(ctx, golfers, nil)

		Convey("Then the inversion is reported, not corrected", func() {
			So(err, ShouldBeNil)
			So(run.Report.RankInversions, ShouldHaveLength, 1)
			inv := run.Report.RankInversions[0]
			So(inv.GolferA, ShouldEqual, "fading")
			So(inv.GolferB, ShouldEqual, "rising")
			So(inv.PriceB, ShouldBeGreaterThan, inv.PriceA)
		})
	})

	Convey("Given golfers tied on their prior price", t, func() {
		engine := pricing.New()
		golfers := []pricing.GolferHistory{
			{GolferID: "a", CurrentPrice: 8_000_000},
			{GolferID: "b", CurrentPrice: 8_000_000, History: []model.ScoredResult{
				scored(intPtr(1), 10, 3, 1),
			}},
		}
		run, err := engine.Reprice(ctx, golfers, nil)

		Convey("Then a prior tie carries no order to invert", func() {
			So(err, ShouldBeNil)
			So(run.Report.RankInversions, ShouldBeEmpty)
		})
	})
}

func TestEngine_BudgetAudit(t *testing.T) {
	ctx := context.Background()

	Convey("Given a single golfer who prices at the ceiling", t, func() {
		golfers := []pricing.GolferHistory{{
			GolferID: "solo",
			History:  []model.ScoredResult{scored(intPtr(1), 10, 3, 1)},
		}}
		roster := []model.Roster{{TeamID: "team-1", GolferIDs: []string{"solo"}}}

		Convey("When the roster total is exactly the cap", func() {
			engine := pricing.New(pricing.WithSalaryCap(15_000_000))
			run, err := engine.Reprice(ctx, golfers, roster)

			Convey("Then the roster is not flagged", func() {
				So(err, ShouldBeNil)
				So(run.Report.OverBudgetRosters, ShouldBeEmpty)
			})
		})

		Convey("When the roster total exceeds the cap", func() {
			engine := pricing.New(pricing.WithSalaryCap(14_900_000))
			run, err := engine.Reprice(ctx, golfers, roster)

			Convey("Then the roster is flagged with its overrun", func() {
				So(err, ShouldBeNil)
				So(run.Report.OverBudgetRosters, ShouldHaveLength, 1)
				audit := run.Report.OverBudgetRosters[0]
				So(audit.TeamID, ShouldEqual, "team-1")
				So(audit.Total, ShouldEqual, 15_000_000)
				So(audit.Overrun, ShouldEqual, 100_000)
			})
		})
	})
}

func TestEngine_LegacyCurve(t *testing.T) {
	ctx := context.Background()

	Convey("Given the legacy sub-unity curve exponent", t, func() {
		legacy := pricing.New(pricing.WithCurveExponent(pricing.LegacyCurveExponent))
		convex := pricing.New()

		golfers := []pricing.GolferHistory{
			{GolferID: "top", History: []model.ScoredResult{scored(intPtr(1), 10, 3, 1)}},
			{GolferID: "mid", History: []model.ScoredResult{scored(intPtr(3), 5, 0, 1)}},
		}

		legacyRun, err := legacy.Reprice(ctx, golfers, nil)
		So(err, ShouldBeNil)
		convexRun, err := convex.Reprice(ctx, golfers, nil)
		So(err, ShouldBeNil)

		Convey("Then it compresses the top of the market relative to the convex default", func() {
			legacyGap := legacyRun.Prices[0].NewPrice - legacyRun.Prices[1].NewPrice
			convexGap := convexRun.Prices[0].NewPrice - convexRun.Prices[1].NewPrice
			So(legacyGap, ShouldBeLessThan, convexGap)
		})
	})
}
