package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/prono/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStanding(t *testing.T) {
	Convey("Given a Standing", t, func() {
		s := types.Standing{
			UserID:     "user-1",
			RawScore:   400,
			Multiplier: 3,
			FinalScore: 1200,
			Rank:       1,
			Placement:  1,
		}

		Convey("When it is serialized", func() {
			b, err := json.Marshal(s)

			Convey("Then it uses the camelCase field names", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual,
					`{"userId":"user-1","rawScore":400,"multiplier":3,"finalScore":1200,"rank":1,"placement":1}`)
			})
		})

		Convey("When a fractional final score is serialized", func() {
			s.RawScore = 30
			s.Multiplier = 1.5
			s.FinalScore = 45
			b, err := json.Marshal(s)

			Convey("Then the multiplier keeps its fraction", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldContainSubstring, `"multiplier":1.5`)
				So(string(b), ShouldContainSubstring, `"finalScore":45`)
			})
		})

		Convey("When it is decoded back", func() {
			var back types.Standing
			err := json.Unmarshal([]byte(`{"userId":"u","rawScore":10,"multiplier":2.5,"finalScore":25,"rank":2,"placement":2}`), &back)

			Convey("Then every field is populated", func() {
				So(err, ShouldBeNil)
				So(back, ShouldResemble, types.Standing{UserID: "u", RawScore: 10, Multiplier: 2.5, FinalScore: 25, Rank: 2, Placement: 2})
			})
		})
	})
}
