package model_test

import (
	"testing"
	"time"

	model "github.com/birdieworks/fairway/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTournamentResult(t *testing.T) {
	convey.Convey("Given a TournamentResult struct", t, func() {
		convey.Convey("When creating a podium result", func() {
			position := model.PositionFirst
			raw := 37.0
			playedOn := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

			res := model.TournamentResult{
				GolferID:     "golfer-1",
				TournamentID: "open-2026",
				PlayedOn:     playedOn,
				Participated: true,
				Position:     &position,
				RawScore:     &raw,
				Format:       model.FormatStableford,
				Multiplier:   2,
			}

			convey.Convey("Then it should have the correct values", func() {
				convey.So(*res.Position, convey.ShouldEqual, 1)
				convey.So(*res.RawScore, convey.ShouldEqual, 37.0)
				convey.So(res.Format, convey.ShouldEqual, model.FormatStableford)
				convey.So(res.Multiplier, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a golfer finishes outside the podium", func() {
			res := model.TournamentResult{Participated: true}

			convey.Convey("Then position and raw score are simply unset", func() {
				convey.So(res.Position, convey.ShouldBeNil)
				convey.So(res.RawScore, convey.ShouldBeNil)
			})
		})
	})
}

func TestPointBreakdown(t *testing.T) {
	convey.Convey("Given a PointBreakdown struct", t, func() {
		convey.Convey("When a golfer did not participate", func() {
			bd := model.PointBreakdown{}

			convey.Convey("Then the zero value already satisfies the invariant", func() {
				convey.So(bd.Base, convey.ShouldEqual, 0)
				convey.So(bd.Bonus, convey.ShouldEqual, 0)
				convey.So(bd.Multiplied, convey.ShouldEqual, 0)
			})
		})
	})
}
