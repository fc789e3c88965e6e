// Package playback owns the displayed playback state and reconciles it with
// events from the streaming engine and the media surface.
package playback

import (
	"errors"
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/scrubline/scrubline/log"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/util"
)

// ErrTornDown is returned by operations attempted after Teardown.
var ErrTornDown = errors.New("playback has been torn down")

// maxTickGap is the largest time step still counted as continuous playback.
const maxTickGap = 1.5

// State is a snapshot of everything the view renders.
type State struct {
	IsLoaded    bool
	IsPlaying   bool
	CurrentTime float64
	Duration    float64
	Volume      float64

	QualityLevels      []media.Level
	ActiveQualityIndex int
	AutoQuality        bool

	Scrubbing     bool
	Recovering    bool
	Failed        bool
	FailureReason string
}

// Options configure a Synchronizer.
type Options struct {
	URL       string
	Length    float64
	Volume    float64
	Retry     RetryPolicy
	Scheduler Scheduler
}

// Synchronizer is the single writer of State. It is not safe for concurrent
// use: every call, including scheduled callbacks, must come from one loop.
type Synchronizer struct {
	factory media.EngineFactory
	surface media.Surface
	options Options

	engine   media.Engine
	state    State
	alive    bool
	tornDown bool

	networkAttempts int
	mediaRecovered  bool
	progress        float64
	lastTick        float64
	resumeAt        float64
	cancelRetry     func()
}

// New returns a Synchronizer; nothing is loaded until Start.
func New(factory media.EngineFactory, surface media.Surface, options Options) *Synchronizer {
	if options.Retry.MaxAttempts == 0 && options.Retry.BaseDelay == 0 {
		options.Retry = DefaultRetryPolicy()
	}
	options.Volume = lo.Clamp(options.Volume, 0, 1)

	s := &Synchronizer{
		factory: factory,
		surface: surface,
		options: options,
	}
	s.state = s.initialState()
	return s
}

func (s *Synchronizer) initialState() State {
	return State{
		Volume:             s.options.Volume,
		ActiveQualityIndex: media.AutoLevel,
		AutoQuality:        true,
	}
}

// Start creates the engine and begins loading the source. A torn down
// Synchronizer cannot be started again.
func (s *Synchronizer) Start() error {
	if s.tornDown {
		return ErrTornDown
	}
	if s.alive {
		return nil
	}

	s.alive = true
	return s.spawn()
}

func (s *Synchronizer) spawn() error {
	engine, err := s.factory()
	if err != nil {
		s.fail(fmt.Sprintf("create engine: %v", err))
		return err
	}

	s.engine = engine
	log.Infof("engine %s loading %s", engine.ID(), s.options.URL)

	if err := engine.LoadSource(s.options.URL); err != nil {
		s.fail(fmt.Sprintf("load source: %v", err))
		return err
	}

	return nil
}

// Engine returns the live engine, or nil after an unrecoverable failure or teardown.
func (s *Synchronizer) Engine() media.Engine {
	return s.engine
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer) Snapshot() State {
	snapshot := s.state
	snapshot.QualityLevels = append([]media.Level(nil), s.state.QualityLevels...)
	return snapshot
}

// Alive reports whether Teardown has not happened yet.
func (s *Synchronizer) Alive() bool {
	return s.alive
}

// Handle applies an engine or surface event. Events from destroyed engines or
// arriving after teardown are dropped.
func (s *Synchronizer) Handle(ev media.Event) {
	if !s.alive {
		log.Tracef("dropping %s after teardown", ev)
		return
	}

	if !s.isCurrent(ev.Origin) {
		log.Tracef("dropping %s from stale instance %s", ev, ev.Origin)
		return
	}

	switch ev.Type {
	case media.EventSourceReady:
		if err := s.engine.AttachMedia(s.surface); err != nil {
			s.fail(fmt.Sprintf("attach media: %v", err))
		}
	case media.EventManifestParsed:
		s.state.QualityLevels = append([]media.Level(nil), ev.Levels...)
		s.state.ActiveQualityIndex = ev.Level
		log.Infof("manifest parsed: %d levels", len(ev.Levels))
	case media.EventLevelSwitched:
		s.state.ActiveQualityIndex = ev.Level
		log.Debugf("switched to level %d", ev.Level)
	case media.EventMetadataLoaded:
		s.onMetadata(ev.Duration)
	case media.EventTimeUpdate:
		s.onTime(ev.Time)
	case media.EventPauseChanged:
		if s.state.IsLoaded {
			s.state.IsPlaying = !ev.Paused
		}
	case media.EventEnded:
		s.state.IsPlaying = false
		// an active scrub owns the playhead
		if !s.state.Scrubbing {
			s.rewind()
		}
	case media.EventError:
		s.onError(ev)
	}
}

func (s *Synchronizer) isCurrent(origin string) bool {
	if origin == s.surface.ID() {
		return true
	}
	return s.engine != nil && origin == s.engine.ID()
}

func (s *Synchronizer) onMetadata(duration float64) {
	s.state.IsLoaded = true
	if duration > 0 && util.Finite(duration) {
		s.state.Duration = duration
	}

	if err := s.surface.SetVolume(s.state.Volume); err != nil {
		log.Warnf("apply volume: %v", err)
	}

	if s.resumeAt > 0 {
		t := s.resumeAt
		s.resumeAt = 0
		s.seekSurface(t)
	}
}

func (s *Synchronizer) onTime(t float64) {
	if !util.Finite(t) {
		return
	}

	if delta := t - s.lastTick; delta > 0 && delta <= maxTickGap {
		s.progress += delta
	}
	s.lastTick = t

	if s.state.Recovering && s.progress >= s.options.Retry.StableAfter.Seconds() {
		log.Infof("playback stable for %.0fs, restoring retry budget", s.progress)
		s.state.Recovering = false
		s.networkAttempts = 0
		s.mediaRecovered = false
	}

	if !s.state.Scrubbing {
		s.state.CurrentTime = t
	}
}

func (s *Synchronizer) onError(ev media.Event) {
	if !ev.Fatal {
		log.Warnf("non-fatal %s error: %s", ev.Category, ev.Details)
		return
	}

	if s.state.Failed {
		return
	}

	log.Errorf("fatal %s error: %s", ev.Category, ev.Details)

	switch ev.Category {
	case media.ErrorNetwork:
		if s.cancelRetry != nil {
			log.Debugf("restart already scheduled, ignoring %s", ev)
			return
		}

		if s.networkAttempts >= s.options.Retry.MaxAttempts {
			s.fail(fmt.Sprintf("network error after %d restarts: %s", s.networkAttempts, ev.Details))
			return
		}

		s.networkAttempts++
		s.beginRecovery()

		engine := s.engine
		delay := s.options.Retry.Delay(s.networkAttempts)
		log.Infof("restarting load in %s (attempt %d/%d)", delay, s.networkAttempts, s.options.Retry.MaxAttempts)

		s.cancelRetry = s.options.Scheduler.AfterFunc(delay, func() {
			s.cancelRetry = nil
			if !s.alive || s.engine != engine {
				return
			}

			if err := engine.StartLoad(s.state.CurrentTime); err != nil {
				s.fail(fmt.Sprintf("restart load: %v", err))
			}
		})
	case media.ErrorMedia:
		if s.mediaRecovered {
			s.fail(fmt.Sprintf("media error persisted after recovery: %s", ev.Details))
			return
		}

		s.mediaRecovered = true
		s.beginRecovery()
		if err := s.engine.RecoverMediaError(); err != nil {
			s.fail(fmt.Sprintf("recover media error: %v", err))
		}
	default:
		s.fail(ev.Details)
	}
}

func (s *Synchronizer) beginRecovery() {
	s.state.Recovering = true
	s.progress = 0
}

// fail destroys the engine and marks the stream unrecoverable.
func (s *Synchronizer) fail(reason string) {
	log.Errorf("playback failed: %s", reason)

	s.stopRetry()
	s.destroyEngine()

	if err := s.surface.Pause(); err != nil {
		log.Debugf("pause after failure: %v", err)
	}

	s.state.Failed = true
	s.state.FailureReason = reason
	s.state.IsPlaying = false
	s.state.Recovering = false
}

func (s *Synchronizer) stopRetry() {
	if s.cancelRetry != nil {
		s.cancelRetry()
		s.cancelRetry = nil
	}
}

func (s *Synchronizer) destroyEngine() {
	if s.engine == nil {
		return
	}

	if err := s.engine.Destroy(); err != nil {
		log.Warnf("destroy engine %s: %v", s.engine.ID(), err)
	}
	s.engine = nil
}

func (s *Synchronizer) rewind() {
	s.state.CurrentTime = 0
	s.lastTick = 0
	if err := s.surface.SetCurrentTime(0); err != nil {
		log.Warnf("rewind after end: %v", err)
	}
}

// Reload replaces a failed engine with a fresh one, resuming at the last known time.
func (s *Synchronizer) Reload() error {
	if !s.alive {
		return ErrTornDown
	}

	if !s.state.Failed {
		return nil
	}

	s.resumeAt = s.state.CurrentTime
	s.networkAttempts = 0
	s.mediaRecovered = false
	s.state.Failed = false
	s.state.FailureReason = ""
	s.state.IsLoaded = false
	s.state.QualityLevels = nil
	s.state.ActiveQualityIndex = media.AutoLevel
	s.state.AutoQuality = true

	return s.spawn()
}

// TogglePlay flips between playing and paused.
func (s *Synchronizer) TogglePlay() {
	if s.state.IsPlaying {
		s.Pause()
	} else {
		s.Play()
	}
}

// SurfaceClick toggles playback unless the click ends a scrub.
func (s *Synchronizer) SurfaceClick() {
	if s.state.Scrubbing {
		return
	}
	s.TogglePlay()
}

// Play resumes playback once the stream is loaded.
func (s *Synchronizer) Play() {
	if !s.ready() {
		return
	}

	if err := s.surface.Play(); err != nil {
		log.Warnf("play: %v", err)
		return
	}
	s.state.IsPlaying = true
}

// Pause suspends playback.
func (s *Synchronizer) Pause() {
	if !s.ready() {
		return
	}

	if err := s.surface.Pause(); err != nil {
		log.Warnf("pause: %v", err)
		return
	}
	s.state.IsPlaying = false
}

func (s *Synchronizer) ready() bool {
	return s.alive && s.state.IsLoaded && !s.state.Failed
}

// Seek moves playback to t, updating CurrentTime immediately.
func (s *Synchronizer) Seek(t float64) {
	if !s.alive || math.IsNaN(t) {
		return
	}

	t = math.Max(t, 0)
	if s.options.Length > 0 {
		t = math.Min(t, s.options.Length)
	}

	s.state.CurrentTime = t
	if !s.state.IsLoaded {
		s.resumeAt = t
		return
	}
	s.seekSurface(t)
}

func (s *Synchronizer) seekSurface(t float64) {
	s.state.CurrentTime = t
	s.lastTick = t
	if err := s.surface.SetCurrentTime(t); err != nil {
		log.Warnf("seek to %.3f: %v", t, err)
	}
}

// SeekBy moves playback relative to the current time.
func (s *Synchronizer) SeekBy(dt float64) {
	s.Seek(s.state.CurrentTime + dt)
}

// BeginScrub stops time updates from overriding the displayed time.
func (s *Synchronizer) BeginScrub() {
	if s.alive {
		s.state.Scrubbing = true
	}
}

// ScrubTo seeks during a drag.
func (s *Synchronizer) ScrubTo(t float64) {
	s.Seek(t)
}

// EndScrub restores time updates.
func (s *Synchronizer) EndScrub() {
	s.state.Scrubbing = false
}

// CycleVolume advances the volume button's cycle.
func (s *Synchronizer) CycleVolume() {
	s.SetVolume(NextVolume(s.state.Volume))
}

// SetVolume sets the volume, clamped to [0, 1]; it is applied to the surface once loaded.
func (s *Synchronizer) SetVolume(v float64) {
	if !s.alive || math.IsNaN(v) {
		return
	}

	s.state.Volume = lo.Clamp(v, 0, 1)
	if !s.state.IsLoaded {
		return
	}

	if err := s.surface.SetVolume(s.state.Volume); err != nil {
		log.Warnf("set volume: %v", err)
	}
}

// SelectQuality pins a quality level, or media.AutoLevel for automatic selection.
func (s *Synchronizer) SelectQuality(index int) error {
	if !s.alive {
		return ErrTornDown
	}

	if s.engine == nil {
		return errors.New("no stream loaded")
	}

	if err := s.engine.SetDesiredQualityLevel(index); err != nil {
		return err
	}

	s.state.AutoQuality = index == media.AutoLevel
	if !s.state.AutoQuality {
		s.state.ActiveQualityIndex = index
	}

	return nil
}

// ToggleFullscreen toggles the surface's fullscreen mode.
func (s *Synchronizer) ToggleFullscreen() {
	if !s.alive {
		return
	}

	if err := s.surface.ToggleFullscreen(); err != nil {
		log.Warnf("toggle fullscreen: %v", err)
	}
}

// Teardown releases the engine and surface and resets the state. It is idempotent.
func (s *Synchronizer) Teardown() {
	if !s.alive {
		return
	}

	s.alive = false
	s.tornDown = true
	s.stopRetry()
	s.destroyEngine()

	if err := s.surface.Close(); err != nil {
		log.Warnf("close surface: %v", err)
	}

	s.networkAttempts = 0
	s.mediaRecovered = false
	s.progress = 0
	s.lastTick = 0
	s.resumeAt = 0
	s.state = s.initialState()
}
