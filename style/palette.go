package style

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha.
var (
	Base      = lipgloss.Color("#1e1e2e")
	Surface   = lipgloss.Color("#313244")
	Overlay   = lipgloss.Color("#6c7086")
	Subtext   = lipgloss.Color("#a6adc8")
	Text      = lipgloss.Color("#cdd6f4")
	Rosewater = lipgloss.Color("#f5e0dc")
	Mauve     = lipgloss.Color("#cba6f7")
	Red       = lipgloss.Color("#f38ba8")
	Peach     = lipgloss.Color("#fab387")
	Green     = lipgloss.Color("#a6e3a1")
	Blue      = lipgloss.Color("#89b4fa")
	Lavender  = lipgloss.Color("#b4befe")
)

var (
	AccentColor    = Mauve
	SecondaryColor = Lavender
	SuccessColor   = Green
	ErrorColor     = Red
	HiRed          = Red
)

// Timeline roles.
var (
	PlayedColor   = AccentColor
	UnplayedColor = Overlay
	HoverColor    = Text
	HeadColor     = Rosewater
	TooltipFg     = Base
	TooltipBg     = Lavender
)
