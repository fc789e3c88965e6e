package cache

import (
	"testing"
	"time"

	"github.com/scrubline/scrubline/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCache(t *testing.T) {
	Convey("Given an in-memory filesystem", t, func() {
		filesystem.SetMemMapFs()

		Convey("A written value should be read back", func() {
			So(Write("bandwidth", 4_200_000.0), ShouldBeNil)

			var estimate float64
			So(Read("bandwidth", &estimate), ShouldBeTrue)
			So(estimate, ShouldEqual, 4_200_000.0)
		})

		Convey("A missing key should not be found", func() {
			var estimate float64
			So(Read("missing", &estimate), ShouldBeFalse)
		})

		Convey("An expired entry should be ignored", func() {
			So(Write("old", 1.0), ShouldBeNil)
			stale := time.Now().Add(-TTL - time.Hour)
			So(filesystem.API().Chtimes(path("old"), stale, stale), ShouldBeNil)

			var v float64
			So(Read("old", &v), ShouldBeFalse)
		})

		Convey("A corrupt entry should be ignored", func() {
			So(filesystem.API().WriteFile(path("corrupt"), []byte("{"), 0o644), ShouldBeNil)

			var v float64
			So(Read("corrupt", &v), ShouldBeFalse)
		})
	})
}
