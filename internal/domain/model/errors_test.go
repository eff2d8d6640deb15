package model_test

import (
	"errors"
	"fmt"
	"testing"

	model "github.com/okian/prono/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestKind(t *testing.T) {
	convey.Convey("Given errors from every rejection kind", t, func() {
		cases := map[string]error{
			"invalid_position":     &model.InvalidPositionError{Position: 7, N: 4},
			"mismatched_entry_set": fmt.Errorf("score u1: %w", &model.MismatchedEntrySetError{Missing: []string{"A"}}),
			"incomplete_results":   &model.IncompleteResultsError{ContestID: "c", Missing: []string{"C"}},
			"empty_leaderboard":    model.ErrEmptyLeaderboard,
			"duplicate_prediction": fmt.Errorf("u1: %w", model.ErrDuplicatePrediction),
			"contest_closed":       model.ErrContestClosed,
		}

		convey.Convey("Then each maps to its stable label and counts as a rejection", func() {
			for want, err := range cases {
				convey.So(model.Kind(err), convey.ShouldEqual, want)
				convey.So(model.IsRejection(err), convey.ShouldBeTrue)
			}
		})

		convey.Convey("And unknown errors are internal", func() {
			convey.So(model.Kind(errors.New("disk on fire")), convey.ShouldEqual, "internal")
			convey.So(model.IsRejection(errors.New("boom")), convey.ShouldBeFalse)
			convey.So(model.Kind(nil), convey.ShouldEqual, "none")
		})
	})
}

func TestErrorMessages(t *testing.T) {
	convey.Convey("Given typed errors with detail", t, func() {
		ip := &model.InvalidPositionError{Owner: "u1", EntryID: "SE", Position: 0, N: 26, Reason: "out of range"}
		mm := &model.MismatchedEntrySetError{Owner: "u2", Missing: []string{"FR", "IT"}}
		ir := &model.IncompleteResultsError{ContestID: "esc-2025", Missing: []string{"NO"}}

		convey.So(ip.Error(), convey.ShouldEqual, `invalid position in u1: entry "SE" position 0 (n=26): out of range`)
		convey.So(mm.Error(), convey.ShouldEqual, "mismatched entry set in u2: missing FR,IT")
		convey.So(ir.Error(), convey.ShouldEqual, `incomplete results for contest "esc-2025": no result for NO`)
	})
}
