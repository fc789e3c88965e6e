package tui

import (
	"fmt"

	"github.com/scrubline/scrubline/icon"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/style"
	"github.com/scrubline/scrubline/timeline"
)

// autoQuality is the list entry for automatic rendition selection.
type autoQuality struct{}

// listItem implements the list.Item interface for quality levels and chapters.
type listItem struct {
	internal interface{}
	marked   bool
}

func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case autoQuality:
		title = "Auto"
	case media.Level:
		title = e.Label()
	case timeline.Chapter:
		title = e.Title
	default:
		title = t.FilterValue()
	}

	if title != "" && t.marked {
		title = fmt.Sprintf("%s %s", title, icon.Get(icon.Success))
	}

	return
}

func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case autoQuality:
		description = "Pick a rendition from the measured bandwidth"
	case media.Level:
		description = fmt.Sprintf("%d kbps", e.Bitrate/1000)
		if e.Width > 0 && e.Height > 0 {
			description = fmt.Sprintf("%dx%d • %s", e.Width, e.Height, description)
		}
		if e.Codecs != "" {
			description += " • " + style.Faint(e.Codecs)
		}
	case timeline.Chapter:
		description = fmt.Sprintf("%s - %s", timeline.FormatTime(e.Start), timeline.FormatTime(e.End))
	}

	return
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case autoQuality:
		return "auto"
	case media.Level:
		return e.Label()
	case timeline.Chapter:
		return e.Title
	default:
		return ""
	}
}
