package tui

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/scrubline/scrubline/playback"
	"github.com/scrubline/scrubline/scrub"
	"github.com/scrubline/scrubline/timeline"
)

// Rows of the player view, relative to the padded content origin.
const (
	rowTitle = iota
	_
	rowStatus
	_
	rowTooltip
	rowArrow
	rowTimeline
	rowTime
	_
	rowControls
	rowFailure = rowControls + 2
)

type control int

const (
	controlPlay control = iota
	controlVolume
	controlQuality
	controlChapters
	controlFullscreen
)

// region is a clickable span [from, to) of a row, in terminal cells.
type region struct {
	control  control
	from, to int
}

// layout maps the player view onto terminal cells. View and mouse routing
// both derive from it so they cannot disagree.
type layout struct {
	originX, originY int

	timeline  scrub.Geometry
	timelineY int
	statusY   int
	controlsY int
	controls  []region
}

func (b *statefulBubble) layout(rendered []renderedControl) layout {
	originX, originY := paddingStyle.GetPaddingLeft(), paddingStyle.GetPaddingTop()

	l := layout{
		originX:   originX,
		originY:   originY,
		timeline:  scrub.Geometry{Left: float64(originX), Width: float64(b.width)},
		timelineY: originY + rowTimeline,
		statusY:   originY + rowStatus,
		controlsY: originY + rowControls,
	}

	x := originX
	for _, c := range rendered {
		w := lipgloss.Width(c.text)
		l.controls = append(l.controls, region{control: c.control, from: x, to: x + w})
		x += w + controlGap
	}

	return l
}

func (l layout) onTimeline(x, y int) bool {
	return y == l.timelineY && float64(x) >= l.timeline.Left && float64(x) < l.timeline.Left+l.timeline.Width
}

func (l layout) controlAt(x, y int) (control, bool) {
	if y != l.controlsY {
		return 0, false
	}

	for _, r := range l.controls {
		if x >= r.from && x < r.to {
			return r.control, true
		}
	}

	return 0, false
}

// headColumn is the timeline cell holding the playhead, relative to the timeline.
func headColumn(t float64, width int, length float64) int {
	if width <= 0 {
		return 0
	}

	col := int(math.Floor(timeline.TimeToOffset(t, float64(width), length)))
	return min(max(col, 0), width-1)
}

// onHandle reports whether column x grabs the playhead rather than seeking.
func (l layout) onHandle(x int, state playback.State, length float64) bool {
	head := int(l.timeline.Left) + headColumn(state.CurrentTime, int(l.timeline.Width), length)
	return x >= head-1 && x <= head+1
}
