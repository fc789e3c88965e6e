package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// scheduledTask is run on the UI loop unless cancelled first.
// cancelled is only touched from the loop.
type scheduledTask struct {
	fn        func()
	cancelled bool
}

type scheduledMsg struct {
	task *scheduledTask
}

// teaScheduler implements playback.Scheduler by posting back into the program,
// so callbacks never race with Update.
type teaScheduler struct {
	send func(tea.Msg)
}

func (s *teaScheduler) AfterFunc(d time.Duration, fn func()) func() {
	task := &scheduledTask{fn: fn}
	timer := time.AfterFunc(d, func() {
		if s.send != nil {
			s.send(scheduledMsg{task: task})
		}
	})

	return func() {
		task.cancelled = true
		timer.Stop()
	}
}

func (m scheduledMsg) run() {
	if !m.task.cancelled {
		m.task.fn()
	}
}
