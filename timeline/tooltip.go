package timeline

import (
	"math"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Transform describes how the tooltip body hangs off its anchor.
type Transform int

const (
	// Center puts the anchor in the middle of the tooltip.
	Center Transform = iota
	// LeftAligned puts the anchor at the tooltip's left edge.
	LeftAligned
	// RightAligned puts the anchor at the tooltip's right edge.
	RightAligned
)

func (t Transform) String() string {
	switch t {
	case LeftAligned:
		return "left"
	case RightAligned:
		return "right"
	default:
		return "center"
	}
}

const (
	arrowMin = 0.1
	arrowMax = 0.9
)

// Placement is the derived position of the hover tooltip. All offsets are
// relative to the timeline's left edge, except Arrow, which is relative to
// the tooltip's own left edge.
type Placement struct {
	Visible      bool
	ChapterTitle string
	TimeLabel    string
	Anchor       float64
	Transform    Transform
	Arrow        float64
	Width        float64
}

// Place positions a tooltip of tooltipWidth for a pointer at pointerX.
// The tooltip is centered on the pointer unless that would cross
// edgePadding at either end of the timeline, in which case it is pinned to
// the padded edge and only the arrow keeps following the pointer, bounded to
// the inner 80% of the tooltip. A tooltip wider than the padded span is
// narrowed to that span and pinned to the left padding; callers render it
// truncated to Width.
func Place(pointerX, tooltipWidth, timelineWidth, edgePadding float64) Placement {
	if tooltipWidth <= 0 || math.IsNaN(tooltipWidth) || math.IsNaN(pointerX) {
		return Placement{}
	}

	fitted := false
	if span := timelineWidth - 2*edgePadding; span > 0 && tooltipWidth > span {
		tooltipWidth = span
		fitted = true
	}

	half := tooltipWidth / 2
	arrow := func(fromLeft float64) float64 {
		return lo.Clamp(fromLeft, arrowMin*tooltipWidth, arrowMax*tooltipWidth)
	}

	p := Placement{
		Visible:   true,
		Anchor:    pointerX,
		Transform: Center,
		Arrow:     half,
		Width:     tooltipWidth,
	}

	switch {
	case fitted || pointerX-half < edgePadding:
		p.Anchor = edgePadding
		p.Transform = LeftAligned
		p.Arrow = arrow(pointerX - p.Anchor)
	case pointerX+half > timelineWidth-edgePadding:
		p.Anchor = timelineWidth - edgePadding
		p.Transform = RightAligned
		p.Arrow = arrow(pointerX - (p.Anchor - tooltipWidth))
	}

	return p
}

// Left returns the tooltip body's left edge relative to the timeline.
func (p Placement) Left() float64 {
	switch p.Transform {
	case LeftAligned:
		return p.Anchor
	case RightAligned:
		return p.Anchor - p.Width
	default:
		return p.Anchor - p.Width/2
	}
}

// Labeled fills the tooltip text for media time t.
func (p Placement) Labeled(chapter mo.Option[Chapter], t float64) Placement {
	p.ChapterTitle = chapter.OrEmpty().Title
	p.TimeLabel = FormatTime(t)
	return p
}
