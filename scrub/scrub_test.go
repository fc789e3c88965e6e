package scrub

import (
	"testing"

	"github.com/scrubline/scrubline/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeCapture struct {
	handlers []Handlers
	released int
}

func (c *fakeCapture) Capture(h Handlers) func() {
	c.handlers = append(c.handlers, h)
	return func() { c.released++ }
}

func (c *fakeCapture) active() int {
	return len(c.handlers) - c.released
}

func (c *fakeCapture) move(x float64) { c.handlers[len(c.handlers)-1].Move(x) }
func (c *fakeCapture) up(x float64)   { c.handlers[len(c.handlers)-1].Up(x) }

type fakeSeeker struct {
	seeks     []float64
	scrubs    []float64
	began     int
	ended     int
	scrubbing bool
}

func (s *fakeSeeker) Seek(t float64)    { s.seeks = append(s.seeks, t) }
func (s *fakeSeeker) BeginScrub()       { s.began++; s.scrubbing = true }
func (s *fakeSeeker) ScrubTo(t float64) { s.scrubs = append(s.scrubs, t) }
func (s *fakeSeeker) EndScrub()         { s.ended++; s.scrubbing = false }

func TestMachine(t *testing.T) {
	Convey("Given a machine over a 348s video on a 300 wide timeline at x=10", t, func() {
		index, err := timeline.NewIndex([]timeline.Chapter{
			{Title: "Intro", Start: 0, End: 100},
			{Title: "Body", Start: 100, End: 348},
		}, 348)
		So(err, ShouldBeNil)

		geometry := Geometry{Left: 10, Width: 300}
		capture := &fakeCapture{}
		seeker := &fakeSeeker{}
		machine := New(Options{
			Geometry:    func() Geometry { return geometry },
			Index:       index,
			EdgePadding: 2,
			Measure:     func(title, label string) float64 { return 80 },
		}, capture, seeker)

		Convey("It should start idle with a hidden tooltip", func() {
			So(machine.State(), ShouldEqual, Idle)
			So(machine.Tooltip().Visible, ShouldBeFalse)
			So(machine.Cursor(), ShouldEqual, CursorDefault)
		})

		Convey("Hovering should preview without seeking", func() {
			machine.PointerMove(160)
			So(machine.State(), ShouldEqual, Hovering)
			So(machine.Tooltip().Visible, ShouldBeTrue)
			So(machine.Tooltip().TimeLabel, ShouldEqual, "02:54")
			So(machine.Tooltip().ChapterTitle, ShouldEqual, "Body")
			So(machine.Tooltip().Transform, ShouldEqual, timeline.Center)
			So(seeker.seeks, ShouldBeEmpty)
			So(seeker.scrubs, ShouldBeEmpty)

			Convey("Leaving should return to idle", func() {
				machine.PointerLeave()
				So(machine.State(), ShouldEqual, Idle)
				So(machine.Tooltip().Visible, ShouldBeFalse)
			})
		})

		Convey("Hovering near an edge should pin the tooltip", func() {
			machine.PointerMove(12)
			So(machine.Tooltip().Transform, ShouldEqual, timeline.LeftAligned)
			So(machine.Tooltip().ChapterTitle, ShouldEqual, "Intro")
		})

		Convey("A plain timeline press should seek immediately", func() {
			machine.PressTimeline(160)
			So(seeker.seeks, ShouldResemble, []float64{174})
			So(machine.State(), ShouldEqual, Hovering)
			So(capture.active(), ShouldEqual, 0)
		})

		Convey("Pressing the handle should start a scrub with one capture", func() {
			machine.PointerMove(100)
			machine.PressHandle(100)
			So(machine.State(), ShouldEqual, Scrubbing)
			So(machine.Cursor(), ShouldEqual, CursorGrabbing)
			So(capture.active(), ShouldEqual, 1)
			So(seeker.began, ShouldEqual, 1)
			So(seeker.seeks, ShouldBeEmpty)

			Convey("A second press should not register another capture", func() {
				machine.PressHandle(120)
				machine.PressTimeline(120)
				So(capture.active(), ShouldEqual, 1)
				So(seeker.began, ShouldEqual, 1)
				So(seeker.seeks, ShouldBeEmpty)
			})

			Convey("Uncaptured events should not disturb the scrub", func() {
				machine.PointerLeave()
				machine.PointerMove(50)
				So(machine.State(), ShouldEqual, Scrubbing)
				So(seeker.scrubs, ShouldBeEmpty)
			})

			Convey("Captured moves should scrub anywhere, clamped", func() {
				capture.move(160)
				capture.move(-400)
				capture.move(9000)
				So(seeker.scrubs, ShouldResemble, []float64{174, 0, 348})
				So(machine.Tooltip().TimeLabel, ShouldEqual, "05:48")
			})

			Convey("Moves should use the geometry at the time of the event", func() {
				geometry = Geometry{Left: 10, Width: 150}
				capture.move(85)
				So(seeker.scrubs, ShouldResemble, []float64{174})
			})

			Convey("Releasing should land on the release position and clean up", func() {
				capture.move(60)
				capture.up(160)
				So(seeker.scrubs[len(seeker.scrubs)-1], ShouldEqual, 174)
				So(machine.State(), ShouldEqual, Idle)
				So(machine.Tooltip().Visible, ShouldBeFalse)
				So(capture.active(), ShouldEqual, 0)
				So(seeker.ended, ShouldEqual, 1)
				So(seeker.scrubbing, ShouldBeFalse)

				Convey("Late captured events should be ignored", func() {
					capture.move(200)
					capture.up(200)
					So(seeker.ended, ShouldEqual, 1)
					So(capture.active(), ShouldEqual, 0)
				})
			})

			Convey("Disposing mid-scrub should leave no capture behind", func() {
				machine.Dispose()
				So(capture.active(), ShouldEqual, 0)
				So(machine.State(), ShouldEqual, Idle)
				So(seeker.ended, ShouldEqual, 1)

				machine.Dispose()
				So(capture.released, ShouldEqual, 1)
			})
		})

		Convey("Degenerate geometry should map to zero", func() {
			geometry = Geometry{Left: 10, Width: 0}
			machine.PressTimeline(160)
			So(seeker.seeks, ShouldResemble, []float64{0})
		})
	})
}
