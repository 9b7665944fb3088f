package recompute_test

import (
	"errors"
	"testing"
	"time"

	"github.com/birdieworks/fairway/internal/domain/model"
	"github.com/birdieworks/fairway/internal/domain/recompute"
	"github.com/birdieworks/fairway/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// record builds a stored legacy row: participated, no numeric raw score,
// already carrying a previously persisted breakdown.
func record(golferID, name string, playedOn string, flag *bool, prior model.PointBreakdown) model.ResultRecord {
	return model.ResultRecord{
		Result: model.TournamentResult{
			GolferID:     golferID,
			TournamentID: "t-" + playedOn,
			PlayedOn:     day(playedOn),
			Participated: true,
			Format:       model.FormatStableford,
			Multiplier:   1,
		},
		Breakdown:  prior,
		GolferName: name,
		LegacyFlag: flag,
	}
}

func TestRecomputer_Compute(t *testing.T) {
	Convey("Given a recomputer over the default formula", t, func() {
		rec := recompute.New(scoring.NewCalculator())

		Convey("When a source row matches by normalized date and name", func() {
			records := []model.ResultRecord{
				record("g1", "Harry Vardon", "2026-05-10", boolPtr(false), model.PointBreakdown{}),
			}
			sources := []model.SourceScore{
				{GolferName: "  harry   VARDON ", PlayedOn: day("2026-05-10"), RawScore: 37},
			}
			out, err := rec.Compute(records, sources)

			Convey("Then the real value is used and earns its bonus", func() {
				So(err, ShouldBeNil)
				So(out.Summary.Matched, ShouldEqual, 1)
				So(out.Summary.Unmatched, ShouldEqual, 0)
				So(out.Summary.FallbackApplied, ShouldEqual, 0)
				So(out.Breakdowns[0].Bonus, ShouldEqual, 3)
			})
		})

		Convey("When no source row matches", func() {
			records := []model.ResultRecord{
				record("g1", "Old Tom", "2026-05-10", boolPtr(true), model.PointBreakdown{}),
				record("g2", "Young Tom", "2026-05-10", boolPtr(false), model.PointBreakdown{}),
				record("g3", "Unknown Tom", "2026-05-10", nil, model.PointBreakdown{}),
			}
			out, err := rec.Compute(records, nil)

			Convey("Then a true legacy flag falls back to the lowest bonus tier floor", func() {
				So(err, ShouldBeNil)
				So(out.Summary.Unmatched, ShouldEqual, 3)
				So(out.Summary.FallbackApplied, ShouldEqual, 1)
				So(out.Breakdowns[0].Bonus, ShouldEqual, 1)
			})

			Convey("And false or never-recorded flags stay unknown with no bonus", func() {
				So(err, ShouldBeNil)
				So(out.Breakdowns[1].Bonus, ShouldEqual, 0)
				So(out.Breakdowns[2].Bonus, ShouldEqual, 0)
			})
		})

		Convey("When a record already carries a new-era numeric raw score", func() {
			r := record("g1", "Bobby Jones", "2026-06-01", nil, model.PointBreakdown{})
			raw := 36.0
			r.Result.RawScore = &raw
			out, err := rec.Compute([]model.ResultRecord{r}, nil)

			Convey("Then the stored value survives the recomputation", func() {
				So(err, ShouldBeNil)
				So(out.Breakdowns[0].Bonus, ShouldEqual, 3)
			})
		})

		Convey("When computing point drift", func() {
			// Previously persisted under an older formula: 0 bonus points.
			prior := model.PointBreakdown{Base: 10, Bonus: 0, Multiplied: 10}
			r := record("g1", "Walter Hagen", "2026-07-01", boolPtr(true), prior)
			r.Result.Position = intPtr(1)
			out, err := rec.Compute([]model.ResultRecord{r}, nil)

			Convey("Then before and after totals expose the aggregate drift", func() {
				So(err, ShouldBeNil)
				So(out.Summary.PointsBefore, ShouldEqual, 10)
				So(out.Summary.PointsAfter, ShouldEqual, 11) // 10 base + 1 fallback bonus
				So(out.Summary.Drift(), ShouldEqual, 1)
			})
		})

		Convey("When running the same computation twice with unchanged inputs", func() {
			records := []model.ResultRecord{
				record("g1", "Gene Sarazen", "2026-04-05", boolPtr(true), model.PointBreakdown{}),
				record("g2", "Sam Snead", "2026-04-05", nil, model.PointBreakdown{}),
			}
			sources := []model.SourceScore{
				{GolferName: "Sam Snead", PlayedOn: day("2026-04-05"), RawScore: 33},
			}

			first, err := rec.Compute(records, sources)
			So(err, ShouldBeNil)
			second, err := rec.Compute(records, sources)
			So(err, ShouldBeNil)

			Convey("Then the outputs are identical (idempotent apply)", func() {
				So(second.Breakdowns, ShouldResemble, first.Breakdowns)
				So(second.Summary, ShouldResemble, first.Summary)
			})
		})

		Convey("When a stored row is malformed", func() {
			r := record("g1", "Bad Row", "2026-03-01", nil, model.PointBreakdown{})
			r.Result.Multiplier = 0
			_, err := rec.Compute([]model.ResultRecord{r}, nil)

			Convey("Then the contract violation surfaces with row context", func() {
				So(errors.Is(err, scoring.ErrInvalidResult), ShouldBeTrue)
			})
		})
	})
}

func TestMode(t *testing.T) {
	Convey("Given the two recomputation modes", t, func() {
		Convey("Then only apply writes", func() {
			So(recompute.ModePreview.Writes(), ShouldBeFalse)
			So(recompute.ModeApply.Writes(), ShouldBeTrue)
		})
	})
}
