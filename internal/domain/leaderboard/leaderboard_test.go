package leaderboard_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/prono/internal/domain/leaderboard"
	"github.com/okian/prono/internal/domain/model"
	"github.com/okian/prono/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLeaderboardAccessors(t *testing.T) {
	Convey("Given a built leaderboard", t, func() {
		lb, err := leaderboard.New().Build(abcd())
		So(err, ShouldBeNil)

		Convey("When looking users up", func() {
			x, okX := lb.Find("X")
			_, okNobody := lb.Find("nobody")

			Convey("Then only ranked users are found", func() {
				So(okX, ShouldBeTrue)
				So(x.Rank, ShouldEqual, 1)
				So(okNobody, ShouldBeFalse)
			})
		})

		Convey("When taking the top rows", func() {
			Convey("Then n is clamped to the size", func() {
				So(len(lb.Top(1)), ShouldEqual, 1)
				So(lb.Top(1)[0].UserID, ShouldEqual, "X")
				So(len(lb.Top(10)), ShouldEqual, 2)
				So(lb.Top(0), ShouldBeEmpty)
				So(lb.Top(-3), ShouldBeEmpty)
			})

			Convey("And the returned rows are a copy", func() {
				top := lb.Top(2)
				top[0].UserID = "mutated"
				So(lb.Rows[0].UserID, ShouldEqual, "X")
			})
		})

		Convey("When converting to standings", func() {
			st := lb.Standings()

			Convey("Then order and values are kept", func() {
				So(st, ShouldResemble, []types.Standing{
					{UserID: "X", RawScore: 400, Multiplier: 3, FinalScore: 1200, Rank: 1, Placement: 1},
					{UserID: "Y", RawScore: 200, Multiplier: 2.5, FinalScore: 500, Rank: 2, Placement: 2},
				})
			})
		})

		Convey("When serialized", func() {
			b, err := json.Marshal(lb)

			Convey("Then it is a JSON array of standings", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual,
					`[{"userId":"X","rawScore":400,"multiplier":3,"finalScore":1200,"rank":1,"placement":1},`+
						`{"userId":"Y","rawScore":200,"multiplier":2.5,"finalScore":500,"rank":2,"placement":2}]`)
			})
		})

		Convey("When cloned", func() {
			cp := lb.Clone()
			cp.Rows[0].FinalScore = -1

			Convey("Then the original is unaffected", func() {
				So(lb.Rows[0].FinalScore, ShouldEqual, 1200.0)
			})
		})
	})

	Convey("Given a zero leaderboard", t, func() {
		var lb leaderboard.Leaderboard

		Convey("Then it serializes to an empty array", func() {
			b, err := json.Marshal(lb)
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "[]")
			So(lb.Len(), ShouldEqual, 0)
			_, ok := lb.Find("x")
			So(ok, ShouldBeFalse)
			So(lb.Top(3), ShouldResemble, []model.ScoredPrediction{})
		})
	})
}
