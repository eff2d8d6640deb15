package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/prono/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPending(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new pending set", t, func() {
		p := dedupe.NewPending()

		Convey("When nothing is recorded", func() {
			Convey("Then it is empty", func() {
				So(p.Size(), ShouldEqual, 0)
			})
		})

		Convey("When a contest is recorded for the first time", func() {
			seen := p.SeenAndRecord(ctx, "esc-2025")

			Convey("Then it was not pending", func() {
				So(seen, ShouldBeFalse)
				So(p.Size(), ShouldEqual, 1)
			})

			Convey("And a second request for it is coalesced", func() {
				So(p.SeenAndRecord(ctx, "esc-2025"), ShouldBeTrue)
				So(p.Size(), ShouldEqual, 1)
			})

			Convey("And once unrecorded a new request is accepted", func() {
				p.Unrecord(ctx, "esc-2025")
				So(p.Size(), ShouldEqual, 0)
				So(p.SeenAndRecord(ctx, "esc-2025"), ShouldBeFalse)
			})
		})

		Convey("When an unknown id is unrecorded", func() {
			p.Unrecord(ctx, "never")

			Convey("Then nothing changes", func() {
				So(p.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a bounded pending set", t, func() {
		p := dedupe.NewPending(dedupe.WithMaxSize(2))

		Convey("When a third contest is recorded", func() {
			p.SeenAndRecord(ctx, "a")
			p.SeenAndRecord(ctx, "b")
			p.SeenAndRecord(ctx, "c")

			Convey("Then the oldest is forgotten", func() {
				So(p.Size(), ShouldEqual, 2)
				So(p.SeenAndRecord(ctx, "b"), ShouldBeTrue)
				So(p.SeenAndRecord(ctx, "c"), ShouldBeTrue)
				So(p.SeenAndRecord(ctx, "a"), ShouldBeFalse)
			})
		})

		Convey("When a middle id is unrecorded", func() {
			p.SeenAndRecord(ctx, "a")
			p.SeenAndRecord(ctx, "b")
			p.Unrecord(ctx, "a")
			p.SeenAndRecord(ctx, "c")

			Convey("Then no eviction is needed", func() {
				So(p.Size(), ShouldEqual, 2)
				So(p.SeenAndRecord(ctx, "b"), ShouldBeTrue)
			})
		})
	})

	Convey("Given an unbounded pending set", t, func() {
		p := dedupe.NewPending(dedupe.WithMaxSize(0))

		Convey("When many contests are recorded", func() {
			for i := range 10_000 {
				p.SeenAndRecord(ctx, fmt.Sprintf("c-%d", i))
			}

			Convey("Then all of them stay pending", func() {
				So(p.Size(), ShouldEqual, 10_000)
				So(p.SeenAndRecord(ctx, "c-0"), ShouldBeTrue)
			})
		})
	})
}

func TestPendingConcurrent(t *testing.T) {
	Convey("Given many goroutines racing on one contest", t, func() {
		p := dedupe.NewPending()
		var first atomic.Int32
		var wg sync.WaitGroup

		for range 64 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if !p.SeenAndRecord(context.Background(), "hot") {
					first.Add(1)
				}
			}()
		}
		wg.Wait()

		Convey("Then exactly one wins", func() {
			So(first.Load(), ShouldEqual, 1)
			So(p.Size(), ShouldEqual, 1)
		})
	})
}
