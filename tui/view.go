package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/mo"
	"github.com/scrubline/scrubline/icon"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/playback"
	"github.com/scrubline/scrubline/scrub"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/timeline"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)

	controlStyle       = lipgloss.NewStyle().Foreground(style.Subtext)
	activeControlStyle = lipgloss.NewStyle().Foreground(style.AccentColor).Bold(true)
)

const (
	volumeBarWidth = 10
	controlGap     = 3
)

type renderedControl struct {
	control control
	text    string
}

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case playerState:
		output = b.viewPlayer()
	case qualityState:
		output = b.viewQuality()
	case chaptersState:
		output = b.viewChapters()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewQuality() string {
	return listExtraPaddingStyle.Render(b.qualityC.View())
}

func (b *statefulBubble) viewChapters() string {
	return listExtraPaddingStyle.Render(b.chaptersC.View())
}

func (b *statefulBubble) viewPlayer() string {
	state := b.sync.Snapshot()

	lines := make([]string, rowControls+1)
	lines[rowTitle] = truncate.StringWithTail(style.Title(b.source.Name()), uint(max(b.width, 0)), "…")
	lines[rowStatus] = b.viewStatus(state)

	scrubbing := b.machine.Scrubbing()
	tooltip, arrow := renderTooltip(b.machine.Tooltip())
	lines[rowTooltip] = tooltip
	lines[rowArrow] = arrow

	var hover mo.Option[float64]
	if b.machine.State() != scrub.Idle {
		hover = mo.Some(b.machine.LastTime())
	}
	lines[rowTimeline] = renderTimeline(timelineCells(b.index, b.width, state.CurrentTime, hover), scrubbing)
	lines[rowTime] = b.viewTime(state)

	var controls []string
	for _, c := range b.renderControls(state) {
		controls = append(controls, c.text)
	}
	lines[rowControls] = strings.Join(controls, strings.Repeat(" ", controlGap))

	if state.Failed {
		reason := lipgloss.NewStyle().Foreground(style.ErrorColor).Render(icon.Get(icon.Fail) + " " + state.FailureReason)
		lines = append(lines, "", wrap.String(reason, b.width), style.Faint("press r to reload"))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewStatus(state playback.State) string {
	switch {
	case state.Failed:
		return lipgloss.NewStyle().Foreground(style.ErrorColor).Render("Playback failed")
	case state.Recovering:
		return b.spinnerC.View() + " " + icon.Get(icon.Retry) + " Reconnecting"
	case !state.IsLoaded:
		return b.spinnerC.View() + " Buffering"
	case state.Scrubbing:
		return style.Fg(style.Lavender)("Seeking")
	case state.IsPlaying:
		return style.Fg(style.SuccessColor)(icon.Get(icon.Play) + " Playing")
	default:
		return style.Faint(icon.Get(icon.Pause) + " Paused")
	}
}

func (b *statefulBubble) viewTime(state playback.State) string {
	length := b.index.Length()
	if state.Duration > 0 {
		length = state.Duration
	}

	line := fmt.Sprintf("%s / %s", timeline.FormatTime(state.CurrentTime), timeline.FormatTime(length))
	if c, ok := b.index.ChapterAt(state.CurrentTime).Get(); ok {
		line += style.Faint(" • ") + style.Fg(style.SecondaryColor)(c.Title)
	}

	return truncate.StringWithTail(line, uint(max(b.width, 0)), "…")
}

func (b *statefulBubble) renderControls(state playback.State) []renderedControl {
	render := func(active bool, s string) string {
		if active {
			return activeControlStyle.Render(s)
		}
		return controlStyle.Render(s)
	}

	play := icon.Get(icon.Play) + " Play"
	if state.IsPlaying {
		play = icon.Get(icon.Pause) + " Pause"
	}

	var volumeIcon icon.Icon
	switch playback.LevelOf(state.Volume) {
	case playback.VolumeMuted:
		volumeIcon = icon.VolumeMuted
	case playback.VolumeHalf:
		volumeIcon = icon.VolumeHalf
	default:
		volumeIcon = icon.VolumeFull
	}

	return []renderedControl{
		{controlPlay, render(state.IsPlaying, play)},
		{controlVolume, render(false, icon.Get(volumeIcon)+" ") + b.volumeC.ViewAs(state.Volume)},
		{controlQuality, render(false, icon.Get(icon.Quality)+" "+qualityLabel(state))},
		{controlChapters, render(false, icon.Get(icon.Chapter)+" Chapters")},
		{controlFullscreen, render(false, icon.Get(icon.Fullscreen))},
	}
}

// qualityLabel names the active rendition, e.g. "Auto (720p)".
func qualityLabel(state playback.State) string {
	var active string
	if i := state.ActiveQualityIndex; i >= 0 && i < len(state.QualityLevels) {
		active = state.QualityLevels[i].Label()
	}

	switch {
	case state.AutoQuality && active != "":
		return fmt.Sprintf("Auto (%s)", active)
	case state.AutoQuality:
		return "Auto"
	case active != "":
		return active
	default:
		return media.Level{Index: state.ActiveQualityIndex}.Label()
	}
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(style.ErrorColor).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Critical Failure: %v", b.lastError))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
			errorMsg,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
