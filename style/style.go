// Package style wraps lipgloss into small render helpers and holds the palette.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/scrubline/scrubline/color"
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Colored is a style with fg and bg set. Empty colors are left unset.
func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a func that renders its argument in c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

var (
	Faint = func(s string) string { return New().Faint(true).Render(s) }
	Bold  = func(s string) string { return New().Bold(true).Render(s) }
)

// Title renders a padded heading block, as used above lists and in the source view.
func Title(s string) string {
	return Colored(color.New("230"), color.New("62")).Padding(0, 1).Render(s)
}

func ErrorTitle(s string) string {
	return Colored(color.New("230"), color.Red).Padding(0, 1).Render(s)
}
