package tui

import (
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/scrubline/scrubline/log"
)

const volumeStep = 0.1

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = tea.Batch(cmd, uiCmd)
	}

	switch msg := msg.(type) {
	case error:
		b.raiseError(msg)
		return b, cmd
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case spinner.TickMsg:
		var tick tea.Cmd
		b.spinnerC, tick = b.spinnerC.Update(msg)
		return b, tea.Batch(cmd, tick)
	case scheduledMsg:
		msg.run()
		if b.sync != nil {
			return b, tea.Batch(cmd, b.syncPumps())
		}
		return b, cmd
	case mediaEventMsg:
		if b.sync == nil {
			return b, cmd
		}
		b.sync.Handle(msg.event)
		return b, tea.Batch(cmd, b.rearm(msg.source), b.syncPumps())
	case engineDoneMsg:
		log.Debugf("engine %s stopped", msg.id)
		return b, cmd
	case surfaceExitMsg:
		log.Info("player exited")
		b.teardown()
		return b, tea.Quit
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.forceQuit) {
			b.teardown()
			return b, tea.Quit
		}
	}

	var stateCmd tea.Cmd
	switch b.state {
	case loadingState:
		stateCmd = b.updateLoading(msg)
	case playerState:
		stateCmd = b.updatePlayer(msg)
	case qualityState:
		stateCmd = b.updateQuality(msg)
	case chaptersState:
		stateCmd = b.updateChapters(msg)
	case errorState:
		stateCmd = b.updateError(msg)
	}

	return b, tea.Batch(cmd, stateCmd)
}

func (b *statefulBubble) updateLoading(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case surfaceReadyMsg:
		return b.startPlayback(msg.surface)
	case tea.KeyMsg:
		if bubblesKey.Matches(msg, b.keymap.back, b.keymap.quit) {
			b.teardown()
			return tea.Quit
		}
	}

	return nil
}

func (b *statefulBubble) updatePlayer(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.MouseMsg:
		return b.updateMouse(msg)
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			b.teardown()
			return tea.Quit
		case bubblesKey.Matches(msg, b.keymap.playPause):
			b.sync.TogglePlay()
		case bubblesKey.Matches(msg, b.keymap.seekBackward):
			b.sync.SeekBy(-b.seekStep())
		case bubblesKey.Matches(msg, b.keymap.seekForward):
			b.sync.SeekBy(b.seekStep())
		case bubblesKey.Matches(msg, b.keymap.prevChapter):
			b.previousChapter()
		case bubblesKey.Matches(msg, b.keymap.nextChapter):
			return b.nextChapter()
		case bubblesKey.Matches(msg, b.keymap.volumeCycle):
			b.sync.CycleVolume()
		case bubblesKey.Matches(msg, b.keymap.volumeUp):
			b.sync.SetVolume(b.sync.Snapshot().Volume + volumeStep)
		case bubblesKey.Matches(msg, b.keymap.volumeDown):
			b.sync.SetVolume(b.sync.Snapshot().Volume - volumeStep)
		case bubblesKey.Matches(msg, b.keymap.quality):
			return b.openQuality()
		case bubblesKey.Matches(msg, b.keymap.chapters):
			return b.openChapters()
		case bubblesKey.Matches(msg, b.keymap.fullscreen):
			b.sync.ToggleFullscreen()
		case bubblesKey.Matches(msg, b.keymap.reload):
			return b.reload()
		case bubblesKey.Matches(msg, b.keymap.showHelp):
			b.helpC.ShowAll = !b.helpC.ShowAll
		}
	}

	return nil
}

// updateMouse routes a mouse event: a held capture sees everything,
// otherwise the event goes to whatever lies under the pointer.
func (b *statefulBubble) updateMouse(msg tea.MouseMsg) tea.Cmd {
	x := float64(msg.X) + 0.5

	if b.bus.captured() {
		switch msg.Action {
		case tea.MouseActionMotion:
			b.bus.move(x)
		case tea.MouseActionRelease:
			b.bus.up(x)
		}
		return nil
	}

	state := b.sync.Snapshot()
	l := b.layout(b.renderControls(state))

	switch msg.Action {
	case tea.MouseActionMotion:
		if l.onTimeline(msg.X, msg.Y) {
			b.machine.PointerMove(x)
		} else {
			b.machine.PointerLeave()
		}
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			b.sync.SetVolume(state.Volume + volumeStep)
		case tea.MouseButtonWheelDown:
			b.sync.SetVolume(state.Volume - volumeStep)
		case tea.MouseButtonLeft:
			switch {
			case l.onTimeline(msg.X, msg.Y) && l.onHandle(msg.X, state, b.index.Length()):
				b.machine.PressHandle(x)
			case l.onTimeline(msg.X, msg.Y):
				b.machine.PressTimeline(x)
			case msg.Y == l.statusY:
				b.sync.SurfaceClick()
			default:
				if c, ok := l.controlAt(msg.X, msg.Y); ok {
					return b.press(c)
				}
			}
		}
	}

	return nil
}

func (b *statefulBubble) updateQuality(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && b.qualityC.FilterState() != list.Filtering {
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
			return nil
		case bubblesKey.Matches(msg, b.keymap.confirm):
			item, ok := b.qualityC.SelectedItem().(*listItem)
			if !ok {
				return nil
			}
			b.previousState()
			return b.selectQuality(item)
		}
	}

	var cmd tea.Cmd
	b.qualityC, cmd = b.qualityC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateChapters(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && b.chaptersC.FilterState() != list.Filtering {
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.chaptersC.FilterState() != list.Unfiltered {
				break
			}
			b.previousState()
			return nil
		case bubblesKey.Matches(msg, b.keymap.confirm):
			item, ok := b.chaptersC.SelectedItem().(*listItem)
			if !ok {
				return nil
			}
			b.previousState()
			return b.seekChapter(item)
		}
	}

	var cmd tea.Cmd
	b.chaptersC, cmd = b.chaptersC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && bubblesKey.Matches(msg, b.keymap.quit, b.keymap.back) {
		b.teardown()
		return tea.Quit
	}

	return nil
}
