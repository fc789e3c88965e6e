package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/scrubline/scrubline/media"
)

type mediaEventMsg struct {
	source string
	event  media.Event
}

type engineDoneMsg struct {
	id string
}

type surfaceExitMsg struct{}

// waitForEngine delivers the next event of engine, or engineDoneMsg once it is destroyed.
func waitForEngine(engine media.Engine) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-engine.Events():
			return mediaEventMsg{source: engine.ID(), event: ev}
		case <-engine.Done():
			return engineDoneMsg{id: engine.ID()}
		}
	}
}

// waitForSurface delivers the next event of surface, or surfaceExitMsg once it is gone.
func waitForSurface(surface media.Surface) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-surface.Events():
			return mediaEventMsg{source: surface.ID(), event: ev}
		case <-surface.Done():
			return surfaceExitMsg{}
		}
	}
}
