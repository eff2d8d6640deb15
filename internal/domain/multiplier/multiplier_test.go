package multiplier_test

import (
	"errors"
	"testing"

	"github.com/okian/prono/internal/domain/model"
	multiplier "github.com/okian/prono/internal/domain/multiplier"
	. "github.com/smartystreets/goconvey/convey"
)

type want struct {
	rank int
	mult float64
}

func assertAssignments(got map[string]multiplier.Assignment, expected map[string]want) {
	So(len(got), ShouldEqual, len(expected))
	for user, w := range expected {
		So(got[user].Rank, ShouldEqual, w.rank)
		So(got[user].Multiplier, ShouldEqual, w.mult)
	}
}

func TestResolve(t *testing.T) {
	Convey("Given the default multiplier table", t, func() {
		r := multiplier.NewResolver()

		Convey("When five users have distinct totals", func() {
			got, err := r.Resolve(map[string]int{"a": 500, "b": 400, "c": 300, "d": 200, "e": 100})

			Convey("Then the podium and last place get bonuses", func() {
				So(err, ShouldBeNil)
				assertAssignments(got, map[string]want{
					"a": {1, 3.0}, "b": {2, 2.5}, "c": {3, 2.0}, "d": {4, 1.0}, "e": {5, 1.5},
				})
			})
		})

		Convey("When the top two tie", func() {
			got, err := r.Resolve(map[string]int{"a": 500, "b": 500, "c": 400, "d": 300, "e": 100})

			Convey("Then both share rank 1 and rank 2 is skipped", func() {
				So(err, ShouldBeNil)
				assertAssignments(got, map[string]want{
					"a": {1, 3.0}, "b": {1, 3.0}, "c": {3, 2.0}, "d": {4, 1.0}, "e": {5, 1.5},
				})
			})
		})

		Convey("When a tie spans the podium boundary", func() {
			got, err := r.Resolve(map[string]int{"a": 500, "b": 400, "c": 300, "d": 300, "e": 100})

			Convey("Then both tied users take the higher multiplier", func() {
				So(err, ShouldBeNil)
				assertAssignments(got, map[string]want{
					"a": {1, 3.0}, "b": {2, 2.5}, "c": {3, 2.0}, "d": {3, 2.0}, "e": {5, 1.5},
				})
			})
		})

		Convey("When several users tie at the bottom", func() {
			got, err := r.Resolve(map[string]int{"a": 500, "b": 400, "c": 300, "d": 200, "e": 100, "f": 100})

			Convey("Then all of them receive the last place multiplier", func() {
				So(err, ShouldBeNil)
				So(got["e"], ShouldResemble, multiplier.Assignment{Rank: 5, Multiplier: 1.5})
				So(got["f"], ShouldResemble, multiplier.Assignment{Rank: 5, Multiplier: 1.5})
				So(got["d"].Multiplier, ShouldEqual, 1.0)
			})
		})

		Convey("When only three users take part", func() {
			got, err := r.Resolve(map[string]int{"a": 300, "b": 200, "c": 100})

			Convey("Then there is no last place bonus", func() {
				So(err, ShouldBeNil)
				assertAssignments(got, map[string]want{"a": {1, 3.0}, "b": {2, 2.5}, "c": {3, 2.0}})
			})
		})

		Convey("When four users tie so the bottom rank is inside the podium", func() {
			got, err := r.Resolve(map[string]int{"a": 300, "b": 200, "c": 200, "d": 200})

			Convey("Then the bottom group keeps its podium multiplier", func() {
				So(err, ShouldBeNil)
				assertAssignments(got, map[string]want{
					"a": {1, 3.0}, "b": {2, 2.5}, "c": {2, 2.5}, "d": {2, 2.5},
				})
			})
		})

		Convey("When everybody ties", func() {
			got, err := r.Resolve(map[string]int{"a": 0, "b": 0, "c": 0, "d": 0, "e": 0})

			Convey("Then everybody is first", func() {
				So(err, ShouldBeNil)
				for _, a := range got {
					So(a, ShouldResemble, multiplier.Assignment{Rank: 1, Multiplier: 3.0})
				}
			})
		})

		Convey("When a single user takes part", func() {
			got, err := r.Resolve(map[string]int{"solo": 42})

			Convey("Then they are first", func() {
				So(err, ShouldBeNil)
				So(got["solo"], ShouldResemble, multiplier.Assignment{Rank: 1, Multiplier: 3.0})
			})
		})

		Convey("When nobody takes part", func() {
			_, err := r.Resolve(nil)

			Convey("Then an empty leaderboard error is returned", func() {
				So(errors.Is(err, model.ErrEmptyLeaderboard), ShouldBeTrue)
			})
		})
	})
}

func TestTable(t *testing.T) {
	Convey("Given a custom table", t, func() {
		custom := multiplier.Table{ByRank: []float64{2}, Last: 0.5, Default: 1}
		r := multiplier.NewResolver(multiplier.WithTable(custom))

		Convey("When three users take part", func() {
			got, err := r.Resolve(map[string]int{"a": 3, "b": 2, "c": 1})

			Convey("Then it drives the assignment", func() {
				So(err, ShouldBeNil)
				assertAssignments(got, map[string]want{"a": {1, 2}, "b": {2, 1}, "c": {3, 0.5}})
			})
		})

		Convey("When the caller mutates the table afterwards", func() {
			custom.ByRank[0] = 9

			Convey("Then the resolver is unaffected", func() {
				So(r.Table().ByRank, ShouldResemble, []float64{2})
			})
		})
	})

	Convey("Given invalid tables", t, func() {
		So(multiplier.DefaultTable.Validate(), ShouldBeNil)
		So(errors.Is(multiplier.Table{ByRank: []float64{0}, Last: 1, Default: 1}.Validate(), multiplier.ErrInvalidTable), ShouldBeTrue)
		So(errors.Is(multiplier.Table{Last: -1, Default: 1}.Validate(), multiplier.ErrInvalidTable), ShouldBeTrue)
		So(errors.Is(multiplier.Table{Last: 1}.Validate(), multiplier.ErrInvalidTable), ShouldBeTrue)

		r := multiplier.NewResolver(multiplier.WithTable(multiplier.Table{}))
		So(r.Table(), ShouldResemble, multiplier.DefaultTable)
	})
}
