package timeline

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

var demoChapters = []Chapter{
	{Title: "Introduction & Course Overview", Start: 0, End: 14},
	{Title: "Curiosity's Role in Critical & Creative Thinking", Start: 15, End: 57},
	{Title: "Analytical vs Creative Thinking Explained", Start: 58, End: 116},
	{Title: "Building Your Bank of Dots", Start: 117, End: 138},
	{Title: "Practical Strategies to Stay Curious", Start: 139, End: 225},
	{Title: "Benefits of Curiosity", Start: 226, End: 312},
	{Title: "Conclusion & Recap", Start: 313, End: 348},
}

func TestFormatTime(t *testing.T) {
	Convey("FormatTime", t, func() {
		Convey("Should floor and pad both fields", func() {
			So(FormatTime(0), ShouldEqual, "00:00")
			So(FormatTime(59.999), ShouldEqual, "00:59")
			So(FormatTime(60), ShouldEqual, "01:00")
			So(FormatTime(348), ShouldEqual, "05:48")
			So(FormatTime(723.4), ShouldEqual, "12:03")
		})

		Convey("Should not truncate minutes past two digits", func() {
			So(FormatTime(6000), ShouldEqual, "100:00")
		})

		Convey("Should treat invalid input as zero", func() {
			So(FormatTime(-3), ShouldEqual, "00:00")
			So(FormatTime(math.NaN()), ShouldEqual, "00:00")
			So(FormatTime(math.Inf(1)), ShouldEqual, "00:00")
		})
	})
}

func TestIndex(t *testing.T) {
	Convey("Given the demo chapters", t, func() {
		index, err := NewIndex(demoChapters, 348)
		So(err, ShouldBeNil)

		Convey("Gaps should be absorbed by the earlier chapter", func() {
			chapters := index.Chapters()
			So(chapters, ShouldHaveLength, 7)
			for i := 1; i < len(chapters); i++ {
				So(chapters[i-1].End, ShouldEqual, chapters[i].Start)
			}
			So(chapters[0].End, ShouldEqual, 15)
			So(chapters[6].End, ShouldEqual, 348)
		})

		Convey("The caller's slice should be left untouched", func() {
			So(demoChapters[0].End, ShouldEqual, 14)
		})

		Convey("ChapterAt should honour half-open intervals", func() {
			So(index.ChapterAt(0).MustGet().Title, ShouldEqual, "Introduction & Course Overview")
			So(index.ChapterAt(14.5).MustGet().Title, ShouldEqual, "Introduction & Course Overview")
			So(index.ChapterAt(15).MustGet().Title, ShouldEqual, "Curiosity's Role in Critical & Creative Thinking")
			So(index.ChapterAt(116).MustGet().Title, ShouldEqual, "Analytical vs Creative Thinking Explained")
			So(index.ChapterAt(117).MustGet().Title, ShouldEqual, "Building Your Bank of Dots")
		})

		Convey("The video length should belong to the last chapter", func() {
			So(index.ChapterAt(348).MustGet().Title, ShouldEqual, "Conclusion & Recap")
		})

		Convey("Every time in range should map to exactly one chapter", func() {
			for tt := 0.0; tt <= 348; tt += 0.25 {
				matches := 0
				for _, c := range index.Chapters() {
					if c.Contains(tt) || (tt == 348 && c.End == 348) {
						matches++
					}
				}
				So(matches, ShouldEqual, 1)
				So(index.ChapterAt(tt).IsPresent(), ShouldBeTrue)
			}
		})

		Convey("Out of range times should have no chapter", func() {
			So(index.ChapterAt(-0.1).IsPresent(), ShouldBeFalse)
			So(index.ChapterAt(348.1).IsPresent(), ShouldBeFalse)
			So(index.ChapterAt(math.NaN()).IsPresent(), ShouldBeFalse)
			So(index.IndexAt(400), ShouldEqual, -1)
		})

		Convey("Next and Previous should step through neighbours", func() {
			So(index.Next(20).MustGet().Title, ShouldEqual, "Analytical vs Creative Thinking Explained")
			So(index.Previous(20).MustGet().Title, ShouldEqual, "Introduction & Course Overview")
			So(index.Previous(5).IsPresent(), ShouldBeFalse)
			So(index.Next(340).IsPresent(), ShouldBeFalse)
		})

		Convey("Find should match titles fuzzily", func() {
			So(index.Find("bank dots").MustGet().Start, ShouldEqual, 117)
			So(index.Find("RECAP").MustGet().Title, ShouldEqual, "Conclusion & Recap")
			So(index.Find("zzz").IsPresent(), ShouldBeFalse)
			So(index.Find("  ").IsPresent(), ShouldBeFalse)
		})
	})

	Convey("Given invalid chapters", t, func() {
		Convey("Overlapping chapters should be rejected", func() {
			_, err := NewIndex([]Chapter{{"a", 0, 10}, {"b", 5, 20}}, 20)
			So(errors.Is(err, ErrOverlap), ShouldBeTrue)
		})

		Convey("Unordered chapters should be rejected", func() {
			_, err := NewIndex([]Chapter{{"a", 0, 10}, {"c", 15, 20}, {"b", 10, 15}}, 20)
			So(errors.Is(err, ErrChapterOrder), ShouldBeTrue)
		})

		Convey("Empty chapters should be rejected", func() {
			_, err := NewIndex([]Chapter{{"a", 0, 0}}, 20)
			So(errors.Is(err, ErrChapterEmpty), ShouldBeTrue)
		})

		Convey("Chapters past the video should be rejected", func() {
			_, err := NewIndex([]Chapter{{"a", 0, 30}}, 20)
			So(errors.Is(err, ErrChapterBounds), ShouldBeTrue)
		})

		Convey("A first chapter not starting at zero should be rejected", func() {
			_, err := NewIndex([]Chapter{{"a", 3, 20}}, 20)
			So(errors.Is(err, ErrChapterBounds), ShouldBeTrue)
		})

		Convey("A non positive length should be rejected", func() {
			_, err := NewIndex(nil, 0)
			So(errors.Is(err, ErrInvalidLength), ShouldBeTrue)
		})
	})

	Convey("Given no chapters", t, func() {
		index, err := NewIndex(nil, 60)
		So(err, ShouldBeNil)
		So(index.ChapterAt(10).IsPresent(), ShouldBeFalse)
	})
}

func TestMapPointer(t *testing.T) {
	Convey("MapPointer", t, func() {
		Convey("Should map linearly inside the timeline", func() {
			So(MapPointer(150, 0, 300, 348), ShouldEqual, 174)
			So(MapPointer(60, 10, 100, 200), ShouldEqual, 100)
		})

		Convey("Should clamp outside the timeline", func() {
			So(MapPointer(-50, 0, 300, 348), ShouldEqual, 0)
			So(MapPointer(900, 0, 300, 348), ShouldEqual, 348)
		})

		Convey("Should stay within [0, length] for any pointer", func() {
			for x := -500.0; x <= 1000; x += 7.5 {
				got := MapPointer(x, 20, 300, 348)
				So(got, ShouldBeBetweenOrEqual, 0, 348)
			}
		})

		Convey("Should return zero on degenerate geometry", func() {
			So(MapPointer(10, 0, 0, 348), ShouldEqual, 0)
			So(MapPointer(10, 0, -5, 348), ShouldEqual, 0)
			So(MapPointer(10, 0, 300, 0), ShouldEqual, 0)
			So(MapPointer(math.NaN(), 0, 300, 348), ShouldEqual, 0)
		})

		Convey("TimeToOffset should invert the mapping", func() {
			So(TimeToOffset(174, 300, 348), ShouldEqual, 150)
			So(TimeToOffset(999, 300, 348), ShouldEqual, 300)
			So(TimeToOffset(10, 300, 0), ShouldEqual, 0)
		})
	})
}

func TestPlace(t *testing.T) {
	Convey("Given a 300 wide timeline with 2 padding and an 80 wide tooltip", t, func() {
		const width, pad, w = 300.0, 2.0, 80.0

		Convey("Near the left edge it should pin to the padding", func() {
			p := Place(5, w, width, pad)
			So(p.Visible, ShouldBeTrue)
			So(p.Transform, ShouldEqual, LeftAligned)
			So(p.Anchor, ShouldEqual, 2)
			So(p.Arrow, ShouldEqual, 8)
			So(p.Left(), ShouldEqual, 2)
		})

		Convey("Near the right edge it should pin to the padding", func() {
			p := Place(295, w, width, pad)
			So(p.Transform, ShouldEqual, RightAligned)
			So(p.Anchor, ShouldEqual, 298)
			So(p.Arrow, ShouldEqual, 72)
			So(p.Left(), ShouldEqual, 218)
		})

		Convey("In the middle it should center on the pointer", func() {
			p := Place(150, w, width, pad)
			So(p.Transform, ShouldEqual, Center)
			So(p.Anchor, ShouldEqual, 150)
			So(p.Arrow, ShouldEqual, 40)
			So(p.Left(), ShouldEqual, 110)
		})

		Convey("The arrow should track the pointer when pinned but not clamped", func() {
			p := Place(30, w, width, pad)
			So(p.Transform, ShouldEqual, LeftAligned)
			So(p.Arrow, ShouldEqual, 28)
		})

		Convey("The arrow should always stay within the inner 80%", func() {
			for x := -20.0; x <= 320; x += 3 {
				p := Place(x, w, width, pad)
				So(p.Arrow, ShouldBeBetweenOrEqual, 8, 72)
			}
		})

		Convey("A tooltip wider than the timeline should be narrowed and pinned left", func() {
			for _, x := range []float64{0, 50, 100} {
				p := Place(x, 120, 100, pad)
				So(p.Transform, ShouldEqual, LeftAligned)
				So(p.Width, ShouldEqual, 96)
				So(p.Left(), ShouldEqual, 2)
				So(p.Left()+p.Width, ShouldBeLessThanOrEqualTo, 100-pad)
				So(p.Arrow, ShouldBeBetweenOrEqual, 0.1*96, 0.9*96)
			}
			So(Place(50, 120, 100, pad).Arrow, ShouldEqual, 48)
		})

		Convey("An unmeasured tooltip should be hidden", func() {
			So(Place(150, 0, width, pad).Visible, ShouldBeFalse)
			So(Place(150, -1, width, pad).Visible, ShouldBeFalse)
		})

		Convey("Labeled should fill chapter and time", func() {
			index, _ := NewIndex(demoChapters, 348)
			p := Place(150, w, width, pad).Labeled(index.ChapterAt(174), 174)
			So(p.ChapterTitle, ShouldEqual, "Practical Strategies to Stay Curious")
			So(p.TimeLabel, ShouldEqual, "02:54")
		})
	})
}
