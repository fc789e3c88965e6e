// Package scrub implements the pointer state machine of the timeline: hover
// previews, click-to-seek and dragging the playhead with a global capture.
package scrub

import (
	"github.com/samber/mo"
	"github.com/scrubline/scrubline/timeline"
)

// State is the pointer interaction state of the timeline.
type State int

const (
	Idle State = iota
	Hovering
	Scrubbing
)

func (s State) String() string {
	switch s {
	case Hovering:
		return "hovering"
	case Scrubbing:
		return "scrubbing"
	default:
		return "idle"
	}
}

// Cursor is the pointer shape the view should show.
type Cursor int

const (
	CursorDefault Cursor = iota
	CursorPointer
	CursorGrabbing
)

// Geometry is the timeline's horizontal extent in pointer coordinates.
type Geometry struct {
	Left, Width float64
}

// Handlers receive every pointer event while a capture is held, wherever the pointer is.
type Handlers struct {
	Move func(x float64)
	Up   func(x float64)
}

// Capture registers global pointer handlers. The returned func releases them.
type Capture interface {
	Capture(h Handlers) (release func())
}

// Seeker applies the machine's decisions to playback.
type Seeker interface {
	Seek(t float64)
	BeginScrub()
	ScrubTo(t float64)
	EndScrub()
}

// Options configure a Machine.
type Options struct {
	// Geometry is consulted on every event, never cached.
	Geometry func() Geometry
	Index    *timeline.Index
	// Measure returns the rendered width of a tooltip with the given text.
	Measure     func(title, label string) float64
	EdgePadding float64
}

// Machine tracks whether the timeline is idle, hovered or being scrubbed.
// It is not safe for concurrent use; all calls must come from the UI loop.
type Machine struct {
	options Options
	capture Capture
	seeker  Seeker

	state   State
	tooltip timeline.Placement
	release func()
	last    float64
}

// New returns an idle Machine.
func New(options Options, capture Capture, seeker Seeker) *Machine {
	return &Machine{
		options: options,
		capture: capture,
		seeker:  seeker,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Scrubbing reports whether a drag is in progress.
func (m *Machine) Scrubbing() bool {
	return m.state == Scrubbing
}

// Tooltip returns the current tooltip placement; it is invisible while idle.
func (m *Machine) Tooltip() timeline.Placement {
	return m.tooltip
}

// LastTime is the media time of the last pointer position seen on the timeline.
func (m *Machine) LastTime() float64 {
	return m.last
}

// Cursor returns the cursor shape for the current state.
func (m *Machine) Cursor() Cursor {
	switch m.state {
	case Scrubbing:
		return CursorGrabbing
	case Hovering:
		return CursorPointer
	default:
		return CursorDefault
	}
}

// PointerMove handles an uncaptured move over the timeline.
func (m *Machine) PointerMove(x float64) {
	if m.state == Scrubbing {
		return
	}

	m.state = Hovering
	m.preview(x)
}

// PointerLeave handles the pointer leaving the timeline.
func (m *Machine) PointerLeave() {
	if m.state != Hovering {
		return
	}

	m.state = Idle
	m.tooltip = timeline.Placement{}
}

// PressTimeline seeks to the pressed position. Presses on the handle must go to PressHandle instead.
func (m *Machine) PressTimeline(x float64) {
	if m.state == Scrubbing {
		return
	}

	m.state = Hovering
	t := m.preview(x)
	m.seeker.Seek(t)
}

// PressHandle starts a drag of the playhead.
func (m *Machine) PressHandle(x float64) {
	if m.state == Scrubbing {
		return
	}

	m.state = Scrubbing
	m.release = m.capture.Capture(Handlers{
		Move: m.drag,
		Up:   m.drop,
	})
	m.seeker.BeginScrub()
	m.preview(x)
}

// Dispose releases any held capture and returns to Idle.
func (m *Machine) Dispose() {
	wasScrubbing := m.state == Scrubbing
	m.releaseCapture()
	m.state = Idle
	m.tooltip = timeline.Placement{}

	if wasScrubbing {
		m.seeker.EndScrub()
	}
}

func (m *Machine) drag(x float64) {
	if m.state != Scrubbing {
		return
	}

	m.seeker.ScrubTo(m.preview(x))
}

func (m *Machine) drop(x float64) {
	if m.state != Scrubbing {
		return
	}

	m.seeker.ScrubTo(m.timeAt(x))
	m.releaseCapture()
	m.state = Idle
	m.tooltip = timeline.Placement{}
	m.seeker.EndScrub()
}

func (m *Machine) releaseCapture() {
	if m.release != nil {
		m.release()
		m.release = nil
	}
}

func (m *Machine) timeAt(x float64) float64 {
	g := m.geometry()
	m.last = timeline.MapPointer(x, g.Left, g.Width, m.length())
	return m.last
}

// preview maps x to a time and recomputes the tooltip for it.
func (m *Machine) preview(x float64) float64 {
	t := m.timeAt(x)
	g := m.geometry()

	var title string
	chapter := m.chapterAt(t)
	if c, ok := chapter.Get(); ok {
		title = c.Title
	}
	label := timeline.FormatTime(t)

	var width float64
	if m.options.Measure != nil {
		width = m.options.Measure(title, label)
	}

	relative := timeline.TimeToOffset(t, g.Width, m.length())
	m.tooltip = timeline.Place(relative, width, g.Width, m.options.EdgePadding).Labeled(chapter, t)
	return t
}

func (m *Machine) geometry() Geometry {
	if m.options.Geometry == nil {
		return Geometry{}
	}
	return m.options.Geometry()
}

func (m *Machine) length() float64 {
	if m.options.Index == nil {
		return 0
	}
	return m.options.Index.Length()
}

func (m *Machine) chapterAt(t float64) mo.Option[timeline.Chapter] {
	if m.options.Index == nil {
		return mo.None[timeline.Chapter]()
	}
	return m.options.Index.ChapterAt(t)
}
