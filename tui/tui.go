// Package tui is the terminal front end: a chapter-aware timeline that
// controls an external media surface.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"
	"github.com/scrubline/scrubline/hls"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/player"
	"github.com/scrubline/scrubline/source"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Source *source.Source
	// StartAt is where playback begins, e.g. the start of a chapter picked on the command line.
	StartAt mo.Option[float64]

	// Surface starts the media surface. It defaults to mpv.
	Surface func(title string) (media.Surface, error)
	// Engines creates streaming engines. It defaults to the HLS engine.
	Engines media.EngineFactory
}

func startMPV(title string) (media.Surface, error) {
	mpv, err := player.Start(player.OptionsFromConfig(title))
	if err != nil {
		return nil, err
	}
	return mpv, nil
}

// Run initializes and executes the primary Bubble Tea application loop.
func Run(options *Options) error {
	if options.Surface == nil {
		options.Surface = startMPV
	}
	if options.Engines == nil {
		options.Engines = hls.Factory(hls.OptionsFromConfig())
	}

	bubble, err := newBubble(options)
	if err != nil {
		return err
	}
	defer bubble.teardown()

	program := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithMouseAllMotion())
	bubble.scheduler.send = program.Send

	_, err = program.Run()
	return err
}
