// Package media defines the boundary between playback logic and the
// components that actually stream and render video: a streaming Engine that
// resolves renditions and a Surface that decodes and displays them.
package media

import "fmt"

// AutoLevel selects renditions automatically from the measured bandwidth.
const AutoLevel = -1

// Level is one rendition advertised by the master playlist.
type Level struct {
	Index   int
	Width   int
	Height  int
	Bitrate int
	Codecs  string
	Name    string
	URI     string
}

// Label is a short human readable description, e.g. "720p".
func (l Level) Label() string {
	switch {
	case l.Height > 0:
		return fmt.Sprintf("%dp", l.Height)
	case l.Name != "":
		return l.Name
	case l.Bitrate > 0:
		return fmt.Sprintf("%d kbps", l.Bitrate/1000)
	default:
		return fmt.Sprintf("level %d", l.Index)
	}
}

// ReadyState mirrors how much of the current media the surface can play.
type ReadyState int

const (
	HaveNothing ReadyState = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

// Engine resolves a playlist into renditions and feeds them to a Surface.
type Engine interface {
	// ID uniquely identifies the instance; its events carry it as Origin.
	ID() string
	LoadSource(url string) error
	AttachMedia(surface Surface) error
	// StartLoad (re)starts loading at startAt seconds, refetching the playlist when needed.
	StartLoad(startAt float64) error
	RecoverMediaError() error
	// SetDesiredQualityLevel pins a level, or AutoLevel for automatic selection.
	SetDesiredQualityLevel(index int) error
	Destroy() error
	Events() <-chan Event
	// Done is closed once the engine is destroyed.
	Done() <-chan struct{}
}

// EngineFactory creates a fresh engine, used on start and after unrecoverable failures.
type EngineFactory func() (Engine, error)

// Surface decodes and renders media.
type Surface interface {
	ID() string
	Load(url string, startAt float64) error
	Play() error
	Pause() error
	CurrentTime() float64
	SetCurrentTime(t float64) error
	Volume() float64
	SetVolume(v float64) error
	ReadyState() ReadyState
	// ReloadDecoders tears down and recreates the decoding pipeline in place.
	ReloadDecoders() error
	ToggleFullscreen() error
	Events() <-chan Event
	Done() <-chan struct{}
	Close() error
}
