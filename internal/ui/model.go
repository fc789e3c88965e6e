// Package ui provides ephemeral notifications shown next to the help line.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// notificationLifetime is how long a notification stays on screen.
const notificationLifetime = 3 * time.Second

// Model holds the current notification, if any.
type Model struct {
	notification string
	notifiedAt   time.Time
}

type notifyMsg string

// ClearNotificationMsg resets the notification once its lifetime is over.
type ClearNotificationMsg struct {
	at time.Time
}

var notificationStyle = lipgloss.NewStyle().Faint(true)

// Notify returns a tea.Cmd that shows text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return notifyMsg(text)
	}
}

// clearNotification fires once the notification shown at shownAt has expired.
func clearNotification(shownAt time.Time) tea.Cmd {
	return tea.Tick(notificationLifetime, func(time.Time) tea.Msg {
		return ClearNotificationMsg{at: shownAt}
	})
}

// Notification returns the text currently shown.
func (m *Model) Notification() string {
	return m.notification
}

// Update consumes notification messages; everything else is ignored.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notifyMsg:
		m.notification = string(msg)
		m.notifiedAt = time.Now()
		return clearNotification(m.notifiedAt)
	case ClearNotificationMsg:
		// a newer notification restarts the clock
		if msg.at.Equal(m.notifiedAt) {
			m.notification = ""
		}
	}
	return nil
}

// View appends the notification to the last line of mainContent.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	lines := strings.Split(mainContent, "\n")
	lines[len(lines)-1] = lines[len(lines)-1] + "  " + notificationStyle.Render(m.notification)
	return strings.Join(lines, "\n")
}
