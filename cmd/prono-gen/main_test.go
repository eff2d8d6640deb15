package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/prono/internal/adapters/fixture"
)

func TestRun(t *testing.T) {
	convey.Convey("Given generator flags and an output file", t, func() {
		path := filepath.Join(t.TempDir(), "gen.yaml")
		var stdout, stderr bytes.Buffer
		code := run([]string{"-contests", "2", "-entries", "8", "-users", "5", "-seed", "9", "-output", path}, &stdout, &stderr)

		convey.Convey("Then the file loads back with the requested sizes", func() {
			convey.So(code, convey.ShouldEqual, 0)
			convey.So(stdout.Len(), convey.ShouldEqual, 0)

			contests, err := fixture.Load(context.Background(), path)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(contests), convey.ShouldEqual, 2)
			convey.So(len(contests[1].Entries), convey.ShouldEqual, 8)
			convey.So(len(contests[1].Snapshot.Predictions), convey.ShouldEqual, 5)
		})
	})

	convey.Convey("Given the same seed twice on stdout", t, func() {
		var a, b, stderr bytes.Buffer
		args := []string{"-entries", "4", "-users", "3", "-seed", "1"}
		convey.So(run(args, &a, &stderr), convey.ShouldEqual, 0)
		convey.So(run(args, &b, &stderr), convey.ShouldEqual, 0)

		convey.Convey("Then the documents are identical", func() {
			convey.So(a.String(), convey.ShouldEqual, b.String())
			convey.So(a.String(), convey.ShouldContainSubstring, "id: esc-2025")
		})
	})

	convey.Convey("Given invalid settings", t, func() {
		var stdout, stderr bytes.Buffer
		code := run([]string{"-entries", "0"}, &stdout, &stderr)

		convey.Convey("Then it fails with the reason", func() {
			convey.So(code, convey.ShouldEqual, 1)
			convey.So(stderr.String(), convey.ShouldContainSubstring, "invalid generator settings")
		})
	})
}
