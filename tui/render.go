package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/samber/mo"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/timeline"
)

type cellKind int

const (
	cellUnplayed cellKind = iota
	cellPlayed
	cellGap
	cellHead
)

type cell struct {
	kind    cellKind
	hovered bool
}

// timelineCells lays the chapters out over width cells. The first cell of
// every chapter after the first is a gap, the playhead overrides anything
// and the chapter under hover is flagged.
func timelineCells(index *timeline.Index, width int, current float64, hover mo.Option[float64]) []cell {
	if width <= 0 {
		return nil
	}

	cells := make([]cell, width)
	length := index.Length()
	head := headColumn(current, width, length)

	for i := range cells {
		if i < head {
			cells[i].kind = cellPlayed
		}
	}

	gaps := make(map[int]struct{})
	for _, c := range index.Chapters()[1:] {
		col := int(math.Floor(timeline.TimeToOffset(c.Start, float64(width), length)))
		if col > 0 && col < width {
			gaps[col] = struct{}{}
			cells[col].kind = cellGap
		}
	}

	if t, ok := hover.Get(); ok {
		if hovered := index.IndexAt(t); hovered >= 0 {
			c := index.Chapters()[hovered]
			from := int(math.Floor(timeline.TimeToOffset(c.Start, float64(width), length)))
			to := int(math.Floor(timeline.TimeToOffset(c.End, float64(width), length)))
			for i := max(from, 0); i < min(to, width); i++ {
				cells[i].hovered = true
			}
			if hovered == index.Len()-1 {
				cells[width-1].hovered = true
			}
		}
	}

	cells[head].kind = cellHead
	return cells
}

var (
	playedStyle   = lipgloss.NewStyle().Foreground(style.PlayedColor)
	unplayedStyle = lipgloss.NewStyle().Foreground(style.UnplayedColor)
	hoveredStyle  = lipgloss.NewStyle().Foreground(style.HoverColor)
	headStyle     = lipgloss.NewStyle().Foreground(style.HeadColor).Bold(true)
	tooltipStyle  = style.Colored(style.TooltipFg, style.TooltipBg)
	arrowStyle    = lipgloss.NewStyle().Foreground(style.TooltipBg)
)

func renderTimeline(cells []cell, scrubbing bool) string {
	var sb strings.Builder

	for _, c := range cells {
		switch c.kind {
		case cellHead:
			if scrubbing {
				sb.WriteString(headStyle.Render("◆"))
			} else {
				sb.WriteString(headStyle.Render("●"))
			}
		case cellGap:
			sb.WriteString(" ")
		case cellPlayed:
			if c.hovered {
				sb.WriteString(playedStyle.Render("█"))
			} else {
				sb.WriteString(playedStyle.Render("━"))
			}
		default:
			if c.hovered {
				sb.WriteString(hoveredStyle.Render("━"))
			} else {
				sb.WriteString(unplayedStyle.Render("─"))
			}
		}
	}

	return sb.String()
}

func tooltipText(title, label string) string {
	if title == "" {
		return " " + label + " "
	}
	return " " + title + "  " + label + " "
}

// measureTooltip is the rendered width of a tooltip, in cells.
func measureTooltip(title, label string) float64 {
	return float64(lipgloss.Width(tooltipText(title, label)))
}

// renderTooltip returns the tooltip body and its arrow line, both relative to the timeline's left edge.
func renderTooltip(p timeline.Placement) (body, arrow string) {
	if !p.Visible {
		return "", ""
	}

	left := max(int(math.Round(p.Left())), 0)
	tip := max(int(math.Round(p.Left()+p.Arrow)), 0)

	text := truncate.StringWithTail(tooltipText(p.ChapterTitle, p.TimeLabel), uint(max(int(p.Width), 0)), "…")
	body = strings.Repeat(" ", left) + tooltipStyle.Render(text)
	arrow = strings.Repeat(" ", tip) + arrowStyle.Render("▾")
	return body, arrow
}
