package model_test

import (
	"errors"
	"testing"
	"time"

	model "github.com/okian/prono/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestValidatePermutation(t *testing.T) {
	entries := []string{"A", "B", "C", "D"}

	convey.Convey("Given a contest with entries A..D", t, func() {
		convey.Convey("When the ranking is a full 1..4 permutation", func() {
			err := model.ValidatePermutation(entries, map[string]int{"A": 2, "B": 1, "C": 4, "D": 3})

			convey.Convey("Then it is accepted", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When an entry is missing and another is unknown", func() {
			err := model.ValidatePermutation(entries, map[string]int{"A": 1, "B": 2, "C": 3, "Z": 4})

			convey.Convey("Then a mismatched entry set is reported with both sides", func() {
				var mm *model.MismatchedEntrySetError
				convey.So(errors.As(err, &mm), convey.ShouldBeTrue)
				convey.So(mm.Missing, convey.ShouldResemble, []string{"D"})
				convey.So(mm.Unexpected, convey.ShouldResemble, []string{"Z"})
				convey.So(errors.Is(err, model.ErrMismatchedEntrySet), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a position leaves the 1..N range", func() {
			err := model.ValidatePermutation(entries, map[string]int{"A": 1, "B": 2, "C": 3, "D": 5})

			convey.Convey("Then an invalid position is reported", func() {
				var ip *model.InvalidPositionError
				convey.So(errors.As(err, &ip), convey.ShouldBeTrue)
				convey.So(ip.EntryID, convey.ShouldEqual, "D")
				convey.So(ip.Position, convey.ShouldEqual, 5)
				convey.So(ip.N, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When a position is zero", func() {
			err := model.ValidatePermutation(entries, map[string]int{"A": 0, "B": 2, "C": 3, "D": 4})

			convey.Convey("Then it is rejected", func() {
				convey.So(errors.Is(err, model.ErrInvalidPosition), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When two entries share a position", func() {
			err := model.ValidatePermutation(entries, map[string]int{"A": 1, "B": 1, "C": 3, "D": 4})

			convey.Convey("Then the later entry in id order is blamed", func() {
				var ip *model.InvalidPositionError
				convey.So(errors.As(err, &ip), convey.ShouldBeTrue)
				convey.So(ip.EntryID, convey.ShouldEqual, "B")
				convey.So(ip.Error(), convey.ShouldContainSubstring, `already taken by "A"`)
			})
		})
	})
}

func TestResults(t *testing.T) {
	convey.Convey("Given result rows", t, func() {
		convey.Convey("When every entry appears once", func() {
			rs, err := model.Results([]model.Result{
				{ContestID: "c", EntryID: "B", Position: 2},
				{ContestID: "c", EntryID: "A", Position: 1},
			})

			convey.Convey("Then the set maps entries to positions", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(rs["A"], convey.ShouldEqual, 1)
				convey.So(rs.EntryIDs(), convey.ShouldResemble, []string{"A", "B"})
			})
		})

		convey.Convey("When an entry has two results", func() {
			_, err := model.Results([]model.Result{
				{EntryID: "A", Position: 1},
				{EntryID: "A", Position: 2},
			})

			convey.Convey("Then it is rejected as an invalid position", func() {
				var ip *model.InvalidPositionError
				convey.So(errors.As(err, &ip), convey.ShouldBeTrue)
				convey.So(ip.Owner, convey.ShouldEqual, model.OwnerResults)
			})
		})
	})
}

func TestAssemblePredictions(t *testing.T) {
	t0 := time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)

	convey.Convey("Given prediction rows from storage", t, func() {
		rows := []model.PredictionRow{
			{UserID: "u2", ContestID: "c1", EntryID: "A", Position: 2, CreatedAt: t0.Add(time.Hour)},
			{UserID: "u1", ContestID: "c1", EntryID: "A", Position: 1, CreatedAt: t0.Add(2 * time.Hour)},
			{UserID: "u1", ContestID: "c1", EntryID: "B", Position: 2, CreatedAt: t0},
			{UserID: "u2", ContestID: "c1", EntryID: "B", Position: 1, CreatedAt: t0.Add(3 * time.Hour)},
		}

		convey.Convey("When they are assembled", func() {
			preds, err := model.AssemblePredictions(rows)

			convey.Convey("Then there is one prediction per user in id order", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(preds), convey.ShouldEqual, 2)
				convey.So(preds[0].UserID, convey.ShouldEqual, "u1")
				convey.So(preds[0].Positions, convey.ShouldResemble, map[string]int{"A": 1, "B": 2})
			})

			convey.Convey("And the earliest row time is the submission time", func() {
				convey.So(preds[0].SubmittedAt, convey.ShouldEqual, t0)
				convey.So(preds[1].SubmittedAt, convey.ShouldEqual, t0.Add(time.Hour))
			})
		})

		convey.Convey("When a user predicts the same entry twice", func() {
			rows = append(rows, model.PredictionRow{UserID: "u1", ContestID: "c1", EntryID: "A", Position: 2})
			_, err := model.AssemblePredictions(rows)

			convey.Convey("Then it is rejected", func() {
				convey.So(errors.Is(err, model.ErrInvalidPosition), convey.ShouldBeTrue)
			})
		})
	})
}
