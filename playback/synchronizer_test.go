package playback

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/scrubline/scrubline/media"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeEngine struct {
	id        string
	source    string
	surface   media.Surface
	startLoad []float64
	recovered int
	desired   []int
	destroyed int
	done      chan struct{}
}

func (e *fakeEngine) ID() string { return e.id }
func (e *fakeEngine) LoadSource(url string) error { e.source = url; return nil }
func (e *fakeEngine) AttachMedia(s media.Surface) error {
	e.surface = s
	return nil
}
func (e *fakeEngine) StartLoad(at float64) error { e.startLoad = append(e.startLoad, at); return nil }
func (e *fakeEngine) RecoverMediaError() error { e.recovered++; return nil }
func (e *fakeEngine) SetDesiredQualityLevel(i int) error {
	if i < media.AutoLevel || i > 2 {
		return fmt.Errorf("level %d out of range", i)
	}
	e.desired = append(e.desired, i)
	return nil
}
func (e *fakeEngine) Destroy() error { e.destroyed++; return nil }
func (e *fakeEngine) Events() <-chan media.Event { return nil }
func (e *fakeEngine) Done() <-chan struct{} { return e.done }

type fakeSurface struct {
	time       float64
	volume     float64
	playing    bool
	seeks      []float64
	closed     int
	fullscreen int
}

func (s *fakeSurface) ID() string { return "surface" }
func (s *fakeSurface) Load(string, float64) error { return nil }
func (s *fakeSurface) Play() error { s.playing = true; return nil }
func (s *fakeSurface) Pause() error { s.playing = false; return nil }
func (s *fakeSurface) CurrentTime() float64 { return s.time }
func (s *fakeSurface) SetCurrentTime(t float64) error { s.time = t; s.seeks = append(s.seeks, t); return nil }
func (s *fakeSurface) Volume() float64 { return s.volume }
func (s *fakeSurface) SetVolume(v float64) error { s.volume = v; return nil }
func (s *fakeSurface) ReadyState() media.ReadyState { return media.HaveEnoughData }
func (s *fakeSurface) ReloadDecoders() error { return nil }
func (s *fakeSurface) ToggleFullscreen() error { s.fullscreen++; return nil }
func (s *fakeSurface) Events() <-chan media.Event { return nil }
func (s *fakeSurface) Done() <-chan struct{} { return nil }
func (s *fakeSurface) Close() error { s.closed++; return nil }

type pendingTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
}

type manualScheduler struct {
	tasks []*pendingTask
}

func (m *manualScheduler) AfterFunc(d time.Duration, fn func()) func() {
	task := &pendingTask{delay: d, fn: fn}
	m.tasks = append(m.tasks, task)
	return func() { task.cancelled = true }
}

// fire runs every pending, non-cancelled task.
func (m *manualScheduler) fire() {
	tasks := m.tasks
	m.tasks = nil
	for _, task := range tasks {
		if !task.cancelled {
			task.fn()
		}
	}
}

func (m *manualScheduler) pending() int {
	count := 0
	for _, task := range m.tasks {
		if !task.cancelled {
			count++
		}
	}
	return count
}

func TestVolume(t *testing.T) {
	Convey("Volume cycle", t, func() {
		Convey("Should go half, muted, full, half", func() {
			v := 0.5
			var seen []float64
			for i := 0; i < 3; i++ {
				v = NextVolume(v)
				seen = append(seen, v)
			}
			So(seen, ShouldResemble, []float64{0, 1, 0.5})
		})

		Convey("Should classify levels", func() {
			So(LevelOf(0), ShouldEqual, VolumeMuted)
			So(LevelOf(0.2), ShouldEqual, VolumeHalf)
			So(LevelOf(0.5), ShouldEqual, VolumeHalf)
			So(LevelOf(0.51), ShouldEqual, VolumeFull)
			So(LevelOf(7), ShouldEqual, VolumeFull)
		})
	})
}

func TestRetryPolicy(t *testing.T) {
	Convey("Retry delays", t, func() {
		p := DefaultRetryPolicy()
		So(p.Delay(1), ShouldEqual, time.Second)
		So(p.Delay(2), ShouldEqual, 2*time.Second)
		So(p.Delay(3), ShouldEqual, 4*time.Second)
		So(p.Delay(4), ShouldEqual, 8*time.Second)
		So(p.Delay(9), ShouldEqual, 8*time.Second)
		So(p.Delay(0), ShouldEqual, time.Second)
	})
}

func TestSynchronizer(t *testing.T) {
	Convey("Given a started synchronizer", t, func() {
		var engines []*fakeEngine
		factory := func() (media.Engine, error) {
			e := &fakeEngine{id: fmt.Sprintf("engine-%d", len(engines)), done: make(chan struct{})}
			engines = append(engines, e)
			return e, nil
		}

		surface := &fakeSurface{}
		scheduler := &manualScheduler{}
		sync := New(factory, surface, Options{
			URL:       "https://example.com/playlist.m3u8",
			Length:    348,
			Volume:    0.5,
			Retry:     DefaultRetryPolicy(),
			Scheduler: scheduler,
		})
		So(sync.Start(), ShouldBeNil)
		engine := engines[0]

		fromEngine := func(ev media.Event) {
			ev.Origin = engine.id
			sync.Handle(ev)
		}
		fromSurface := func(ev media.Event) {
			ev.Origin = surface.ID()
			sync.Handle(ev)
		}
		load := func() {
			fromEngine(media.Event{Type: media.EventSourceReady})
			fromSurface(media.Event{Type: media.EventMetadataLoaded, Duration: 348})
		}

		Convey("It should load the configured source", func() {
			So(engine.source, ShouldEqual, "https://example.com/playlist.m3u8")
			So(sync.Snapshot().IsLoaded, ShouldBeFalse)
			So(sync.Snapshot().ActiveQualityIndex, ShouldEqual, media.AutoLevel)
		})

		Convey("Source ready should attach the surface", func() {
			fromEngine(media.Event{Type: media.EventSourceReady})
			So(engine.surface, ShouldEqual, surface)
		})

		Convey("Metadata should mark the stream loaded and push the volume", func() {
			load()
			state := sync.Snapshot()
			So(state.IsLoaded, ShouldBeTrue)
			So(state.Duration, ShouldEqual, 348)
			So(surface.volume, ShouldEqual, 0.5)
		})

		Convey("Play and pause should mirror into the state", func() {
			sync.TogglePlay()
			So(sync.Snapshot().IsPlaying, ShouldBeFalse)

			load()
			sync.TogglePlay()
			So(sync.Snapshot().IsPlaying, ShouldBeTrue)
			So(surface.playing, ShouldBeTrue)

			sync.SurfaceClick()
			So(sync.Snapshot().IsPlaying, ShouldBeFalse)

			fromSurface(media.Event{Type: media.EventPauseChanged, Paused: false})
			So(sync.Snapshot().IsPlaying, ShouldBeTrue)
		})

		Convey("Time updates should drive the current time", func() {
			load()
			fromSurface(media.Event{Type: media.EventTimeUpdate, Time: 12.5})
			So(sync.Snapshot().CurrentTime, ShouldEqual, 12.5)
		})

		Convey("While scrubbing", func() {
			load()
			sync.TogglePlay()
			sync.BeginScrub()
			sync.ScrubTo(200)

			Convey("Seeks should apply immediately and optimistically", func() {
				So(surface.seeks, ShouldResemble, []float64{200})
				So(sync.Snapshot().CurrentTime, ShouldEqual, 200)
				So(sync.Snapshot().Scrubbing, ShouldBeTrue)
			})

			Convey("Time updates should not override the displayed time", func() {
				fromSurface(media.Event{Type: media.EventTimeUpdate, Time: 13})
				So(sync.Snapshot().CurrentTime, ShouldEqual, 200)
			})

			Convey("A surface click should not toggle playback", func() {
				sync.SurfaceClick()
				So(sync.Snapshot().IsPlaying, ShouldBeTrue)
			})

			Convey("Ending the scrub should resume time updates at the final position", func() {
				sync.ScrubTo(250)
				sync.EndScrub()
				So(sync.Snapshot().CurrentTime, ShouldEqual, 250)
				So(surface.time, ShouldEqual, 250)

				fromSurface(media.Event{Type: media.EventTimeUpdate, Time: 250.2})
				So(sync.Snapshot().CurrentTime, ShouldEqual, 250.2)
			})

			Convey("Ended should not move the playhead", func() {
				sync.ScrubTo(348)
				fromSurface(media.Event{Type: media.EventEnded})

				state := sync.Snapshot()
				So(state.IsPlaying, ShouldBeFalse)
				So(state.CurrentTime, ShouldEqual, 348)
				So(surface.seeks, ShouldResemble, []float64{200, 348})

				sync.EndScrub()
				So(sync.Snapshot().CurrentTime, ShouldEqual, 348)
				So(surface.time, ShouldEqual, 348)
			})
		})

		Convey("Seeks should be clamped to the video", func() {
			load()
			sync.Seek(-10)
			sync.Seek(1000)
			So(surface.seeks, ShouldResemble, []float64{0, 348})
		})

		Convey("A seek before load should be applied once loaded", func() {
			sync.Seek(42)
			So(surface.seeks, ShouldBeEmpty)
			load()
			So(surface.seeks, ShouldResemble, []float64{42})
		})

		Convey("The volume button should cycle and reach the surface", func() {
			load()
			var seen []float64
			for i := 0; i < 3; i++ {
				sync.CycleVolume()
				seen = append(seen, surface.volume)
			}
			So(seen, ShouldResemble, []float64{0, 1, 0.5})
			So(sync.Snapshot().Volume, ShouldEqual, 0.5)
		})

		Convey("Ending should stop and rewind", func() {
			load()
			sync.TogglePlay()
			fromSurface(media.Event{Type: media.EventTimeUpdate, Time: 347.9})
			fromSurface(media.Event{Type: media.EventEnded})

			state := sync.Snapshot()
			So(state.IsPlaying, ShouldBeFalse)
			So(state.CurrentTime, ShouldEqual, 0)
			So(surface.time, ShouldEqual, 0)
		})

		Convey("Quality levels should follow the engine", func() {
			levels := []media.Level{{Index: 0, Height: 360}, {Index: 1, Height: 720}, {Index: 2, Height: 1080}}
			fromEngine(media.Event{Type: media.EventManifestParsed, Levels: levels, Level: media.AutoLevel})
			So(sync.Snapshot().QualityLevels, ShouldHaveLength, 3)

			fromEngine(media.Event{Type: media.EventLevelSwitched, Level: 1})
			So(sync.Snapshot().ActiveQualityIndex, ShouldEqual, 1)
			So(sync.Snapshot().AutoQuality, ShouldBeTrue)

			So(sync.SelectQuality(2), ShouldBeNil)
			So(engine.desired, ShouldResemble, []int{2})
			So(sync.Snapshot().AutoQuality, ShouldBeFalse)
			So(sync.Snapshot().ActiveQualityIndex, ShouldEqual, 2)

			So(sync.SelectQuality(7), ShouldNotBeNil)
			So(sync.Snapshot().ActiveQualityIndex, ShouldEqual, 2)

			Convey("Snapshots should not share the level slice", func() {
				snapshot := sync.Snapshot()
				snapshot.QualityLevels[0].Height = 1
				So(sync.Snapshot().QualityLevels[0].Height, ShouldEqual, 360)
			})
		})

		Convey("Non-fatal errors should change nothing", func() {
			load()
			fromEngine(media.Error(engine.id, media.ErrorNetwork, false, "segment retry"))
			So(sync.Snapshot().Failed, ShouldBeFalse)
			So(sync.Snapshot().Recovering, ShouldBeFalse)
			So(scheduler.pending(), ShouldEqual, 0)
		})

		Convey("Fatal network errors should restart with backoff", func() {
			load()
			fromSurface(media.Event{Type: media.EventTimeUpdate, Time: 30})
			fromEngine(media.Error(engine.id, media.ErrorNetwork, true, "timeout"))

			So(sync.Snapshot().Recovering, ShouldBeTrue)
			So(scheduler.tasks[0].delay, ShouldEqual, time.Second)

			Convey("Duplicates while a restart is pending should coalesce", func() {
				fromSurface(media.Error(surface.ID(), media.ErrorNetwork, true, "loading failed"))
				So(scheduler.pending(), ShouldEqual, 1)
			})

			Convey("The restart should resume at the current time", func() {
				scheduler.fire()
				So(engine.startLoad, ShouldResemble, []float64{30})
			})

			Convey("The budget should run out after three restarts", func() {
				var delays []time.Duration
				delays = append(delays, scheduler.tasks[0].delay)
				scheduler.fire()
				for i := 0; i < 2; i++ {
					fromEngine(media.Error(engine.id, media.ErrorNetwork, true, "timeout"))
					delays = append(delays, scheduler.tasks[0].delay)
					scheduler.fire()
				}
				So(delays, ShouldResemble, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second})
				So(engine.startLoad, ShouldHaveLength, 3)

				fromEngine(media.Error(engine.id, media.ErrorNetwork, true, "timeout"))
				state := sync.Snapshot()
				So(state.Failed, ShouldBeTrue)
				So(state.FailureReason, ShouldContainSubstring, "timeout")
				So(engine.destroyed, ShouldEqual, 1)
				So(sync.Engine(), ShouldBeNil)
			})

			Convey("Stable playback should restore the budget", func() {
				scheduler.fire()
				for tt := 30.0; tt <= 41; tt += 0.5 {
					fromSurface(media.Event{Type: media.EventTimeUpdate, Time: tt})
				}
				So(sync.Snapshot().Recovering, ShouldBeFalse)

				for i := 0; i < 3; i++ {
					fromEngine(media.Error(engine.id, media.ErrorNetwork, true, "timeout"))
					scheduler.fire()
				}
				So(sync.Snapshot().Failed, ShouldBeFalse)
			})

			Convey("Teardown should cancel the pending restart", func() {
				sync.Teardown()
				scheduler.fire()
				So(engine.startLoad, ShouldBeEmpty)
			})
		})

		Convey("Media errors should be recovered once", func() {
			load()
			fromSurface(media.Error(surface.ID(), media.ErrorMedia, true, "decode"))
			So(engine.recovered, ShouldEqual, 1)
			So(sync.Snapshot().Failed, ShouldBeFalse)

			fromSurface(media.Error(surface.ID(), media.ErrorMedia, true, "decode"))
			So(engine.recovered, ShouldEqual, 1)
			So(sync.Snapshot().Failed, ShouldBeTrue)
		})

		Convey("Other fatal errors should be unrecoverable", func() {
			load()
			sync.TogglePlay()
			fromEngine(media.Error(engine.id, media.ErrorOther, true, "unsupported"))

			state := sync.Snapshot()
			So(state.Failed, ShouldBeTrue)
			So(state.IsPlaying, ShouldBeFalse)
			So(state.FailureReason, ShouldEqual, "unsupported")
			So(engine.destroyed, ShouldEqual, 1)

			Convey("Events from the destroyed engine should be ignored", func() {
				fromEngine(media.Event{Type: media.EventLevelSwitched, Level: 2})
				So(sync.Snapshot().ActiveQualityIndex, ShouldEqual, media.AutoLevel)
			})

			Convey("Reload should start a fresh engine and resume", func() {
				fromSurface(media.Event{Type: media.EventTimeUpdate, Time: 99})
				So(sync.Reload(), ShouldBeNil)
				So(engines, ShouldHaveLength, 2)
				So(sync.Snapshot().Failed, ShouldBeFalse)

				engine = engines[1]
				load()
				So(surface.seeks[len(surface.seeks)-1], ShouldEqual, 99)
			})
		})

		Convey("Teardown should be idempotent and reset state", func() {
			load()
			sync.TogglePlay()
			sync.Teardown()
			first := sync.Snapshot()
			sync.Teardown()

			So(sync.Snapshot(), ShouldResemble, first)
			So(first.IsLoaded, ShouldBeFalse)
			So(first.IsPlaying, ShouldBeFalse)
			So(first.Volume, ShouldEqual, 0.5)
			So(engine.destroyed, ShouldEqual, 1)
			So(surface.closed, ShouldEqual, 1)

			Convey("Late events should be ignored", func() {
				fromSurface(media.Event{Type: media.EventTimeUpdate, Time: 5})
				fromEngine(media.Event{Type: media.EventSourceReady})
				So(sync.Snapshot(), ShouldResemble, first)
			})

			Convey("Operations should be refused", func() {
				So(errors.Is(sync.Reload(), ErrTornDown), ShouldBeTrue)
				So(errors.Is(sync.SelectQuality(0), ErrTornDown), ShouldBeTrue)
			})

			Convey("Start should not spawn a new engine", func() {
				So(errors.Is(sync.Start(), ErrTornDown), ShouldBeTrue)
				So(engines, ShouldHaveLength, 1)
				So(sync.Snapshot(), ShouldResemble, first)
			})
		})
	})
}
