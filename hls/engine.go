package hls

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/scrubline/scrubline/internal/cache"
	"github.com/scrubline/scrubline/key"
	"github.com/scrubline/scrubline/log"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/network"
	"github.com/spf13/viper"
)

// ErrDestroyed is returned by every operation on a destroyed engine.
var ErrDestroyed = errors.New("engine destroyed")

const (
	maxPlaylistBytes = 8 << 20
	maxProbeBytes    = 4 << 20
	minSampleBytes   = 16 << 10
	eventBuffer      = 64
	jobBuffer        = 16
)

// Options configure an Engine.
type Options struct {
	Client *http.Client
	// StartLevel is the desired level before the user picks one; media.AutoLevel selects automatically.
	StartLevel int
	// DefaultEstimate is the bandwidth in bits per second assumed before anything was measured.
	DefaultEstimate float64
	// BandwidthFactor is the share of the estimate a level may use in automatic mode.
	BandwidthFactor float64
	// Probe downloads one segment of the lowest level to measure bandwidth before choosing automatically.
	Probe bool
	// EstimateKey, when set, names the cache entry the measured bandwidth is saved to on Destroy.
	EstimateKey string
}

const estimateKey = "bandwidth-estimate"

// OptionsFromConfig reads the stream.* keys. The bandwidth measured in a recent
// session takes precedence over the configured default estimate.
func OptionsFromConfig() Options {
	options := Options{
		Client:          network.Client,
		StartLevel:      viper.GetInt(key.StreamStartLevel),
		DefaultEstimate: float64(viper.GetInt(key.StreamABRDefaultEstimate)),
		BandwidthFactor: float64(viper.GetInt(key.StreamABRBandwidthFactor)) / 100,
		Probe:           true,
		EstimateKey:     estimateKey,
	}

	var remembered float64
	if cache.Read(estimateKey, &remembered) && remembered > 0 {
		log.Debugf("using remembered bandwidth estimate %.0f bps", remembered)
		options.DefaultEstimate = remembered
	}

	return options
}

// Engine is a media.Engine for HLS. Network and surface I/O run on a single
// worker goroutine, so loads are applied in the order they were requested.
type Engine struct {
	id        string
	log       log.Instance
	options   Options
	estimator *Estimator

	events chan media.Event
	jobs   chan func()
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	source   *url.URL
	manifest *Manifest
	surface  media.Surface
	desired  int
	current  int
	loaded   bool
	probed   bool
}

// New starts an engine's worker. Call Destroy to stop it.
func New(options Options) *Engine {
	if options.Client == nil {
		options.Client = network.Client
	}
	if options.BandwidthFactor <= 0 {
		options.BandwidthFactor = 0.8
	}
	if options.DefaultEstimate <= 0 {
		options.DefaultEstimate = 500_000
	}

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	e := &Engine{
		id:        id,
		log:       log.For("engine", id),
		options:   options,
		estimator: NewEstimator(options.DefaultEstimate, minSampleBytes),
		events:    make(chan media.Event, eventBuffer),
		jobs:      make(chan func(), jobBuffer),
		ctx:       ctx,
		cancel:    cancel,
		desired:   options.StartLevel,
		current:   media.AutoLevel,
	}

	go e.run()
	return e
}

// Factory returns a media.EngineFactory producing engines with options.
func Factory(options Options) media.EngineFactory {
	return func() (media.Engine, error) {
		return New(options), nil
	}
}

func (e *Engine) run() {
	for {
		select {
		case <-e.ctx.Done():
			return
		case job := <-e.jobs:
			job()
		}
	}
}

func (e *Engine) enqueue(job func()) error {
	select {
	case <-e.ctx.Done():
		return ErrDestroyed
	default:
	}

	select {
	case e.jobs <- job:
		return nil
	case <-e.ctx.Done():
		return ErrDestroyed
	}
}

func (e *Engine) emit(ev media.Event) {
	ev.Origin = e.id
	select {
	case e.events <- ev:
	case <-e.ctx.Done():
	}
}

func (e *Engine) fatal(category media.ErrorCategory, format string, args ...any) {
	details := fmt.Sprintf(format, args...)
	e.log.Errorf("%s", details)
	e.emit(media.Error(e.id, category, true, details))
}

// ID implements media.Engine.
func (e *Engine) ID() string {
	return e.id
}

// Events implements media.Engine.
func (e *Engine) Events() <-chan media.Event {
	return e.events
}

// Done implements media.Engine.
func (e *Engine) Done() <-chan struct{} {
	return e.ctx.Done()
}

// LoadSource implements media.Engine. It reports SourceReady immediately and
// fetches the playlist in the background.
func (e *Engine) LoadSource(rawURL string) error {
	source, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("invalid source url: %w", err)
	}

	switch source.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("unsupported source scheme %q", source.Scheme)
	}

	e.mu.Lock()
	e.source = source
	e.manifest = nil
	e.loaded = false
	e.mu.Unlock()

	if e.ctx.Err() != nil {
		return ErrDestroyed
	}

	e.emit(media.Event{Type: media.EventSourceReady})
	return e.enqueue(func() {
		if e.refresh() {
			e.maybeLoad(0)
		}
	})
}

// AttachMedia implements media.Engine.
func (e *Engine) AttachMedia(surface media.Surface) error {
	if surface == nil {
		return errors.New("nil surface")
	}

	e.mu.Lock()
	e.surface = surface
	e.mu.Unlock()

	return e.enqueue(func() {
		e.maybeLoad(0)
	})
}

// StartLoad implements media.Engine. The playlist is fetched again, so a
// restart after a network failure also recovers a lost playlist.
func (e *Engine) StartLoad(startAt float64) error {
	return e.enqueue(func() {
		if e.refresh() {
			e.load(startAt)
		}
	})
}

// RecoverMediaError implements media.Engine by reloading the surface's decoders.
func (e *Engine) RecoverMediaError() error {
	return e.enqueue(func() {
		surface := e.attached()
		if surface == nil {
			return
		}

		e.log.Infof("reloading decoders")
		if err := surface.ReloadDecoders(); err != nil {
			e.fatal(media.ErrorOther, "reload decoders: %v", err)
		}
	})
}

// SetDesiredQualityLevel implements media.Engine.
func (e *Engine) SetDesiredQualityLevel(index int) error {
	e.mu.Lock()
	if index != media.AutoLevel {
		if e.manifest == nil {
			e.mu.Unlock()
			return errors.New("quality levels are not known yet")
		}
		if index < 0 || index >= len(e.manifest.Levels) {
			e.mu.Unlock()
			return fmt.Errorf("quality level %d out of range [0, %d)", index, len(e.manifest.Levels))
		}
	}
	e.desired = index
	e.mu.Unlock()

	return e.enqueue(func() {
		e.mu.Lock()
		loaded, surface := e.loaded, e.surface
		e.mu.Unlock()

		if loaded && surface != nil {
			e.load(surface.CurrentTime())
		}
	})
}

// Destroy implements media.Engine. It is idempotent and leaves the surface open.
func (e *Engine) Destroy() error {
	if e.ctx.Err() != nil {
		return nil
	}
	e.cancel()

	if e.options.EstimateKey == "" {
		return nil
	}

	if estimate, ok := e.estimator.Measured(); ok {
		if err := cache.Write(e.options.EstimateKey, estimate); err != nil {
			e.log.Warnf("remember bandwidth: %v", err)
		}
	}

	return nil
}

func (e *Engine) attached() media.Surface {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface
}

// refresh fetches and parses the playlist, announcing it the first time.
// It reports whether a manifest is available afterwards.
func (e *Engine) refresh() bool {
	e.mu.Lock()
	source := e.source
	first := e.manifest == nil
	e.mu.Unlock()

	if source == nil {
		return false
	}

	body, err := e.fetch(source.String(), maxPlaylistBytes)
	if err != nil {
		if e.ctx.Err() == nil {
			e.fatal(media.ErrorNetwork, "load playlist: %v", err)
		}
		return false
	}

	manifest, err := ParseManifest(bytes.NewReader(body), source)
	if err != nil {
		e.fatal(media.ErrorNetwork, "parse playlist: %v", err)
		return false
	}

	e.mu.Lock()
	if !first && e.manifest != nil && len(e.manifest.Levels) == len(manifest.Levels) {
		e.mu.Unlock()
		return true
	}
	e.manifest = manifest
	desired := e.desired
	if desired >= len(manifest.Levels) {
		desired = media.AutoLevel
		e.desired = desired
	}
	e.mu.Unlock()

	e.emit(media.Event{
		Type:   media.EventManifestParsed,
		Levels: append([]media.Level(nil), manifest.Levels...),
		Level:  desired,
	})
	return true
}

// maybeLoad loads a level once both the manifest and the surface are present.
func (e *Engine) maybeLoad(startAt float64) {
	e.mu.Lock()
	ready := e.manifest != nil && e.surface != nil && !e.loaded
	e.mu.Unlock()

	if ready {
		e.load(startAt)
	}
}

// load hands the selected level to the surface at startAt.
func (e *Engine) load(startAt float64) {
	e.mu.Lock()
	manifest, surface, desired := e.manifest, e.surface, e.desired
	e.mu.Unlock()

	if manifest == nil || surface == nil {
		return
	}

	level := desired
	if level == media.AutoLevel {
		e.probe(manifest)
		level = ChooseLevel(manifest.Levels, e.estimator.Estimate(), e.options.BandwidthFactor)
	}

	target := manifest.Levels[level]
	e.log.Infof("loading level %d (%s) at %.3f", level, target.Label(), startAt)

	if err := surface.Load(target.URI, startAt); err != nil {
		e.fatal(media.ErrorOther, "load level %d: %v", level, err)
		return
	}

	e.mu.Lock()
	e.loaded = true
	switched := e.current != level
	e.current = level
	e.mu.Unlock()

	if switched {
		e.emit(media.Event{Type: media.EventLevelSwitched, Level: level})
	}
}

// probe measures bandwidth once by downloading the first segment of the lowest level.
func (e *Engine) probe(manifest *Manifest) {
	e.mu.Lock()
	done := e.probed
	e.probed = true
	e.mu.Unlock()

	if done || !e.options.Probe || !manifest.Master || len(manifest.Levels) < 2 {
		return
	}

	lowest := manifest.Levels[0]
	base, err := url.Parse(lowest.URI)
	if err != nil {
		return
	}

	body, err := e.fetch(lowest.URI, maxPlaylistBytes)
	if err != nil {
		e.emit(media.Error(e.id, media.ErrorNetwork, false, fmt.Sprintf("bandwidth probe: %v", err)))
		return
	}

	segment, err := firstSegment(bytes.NewReader(body), base)
	if err != nil {
		e.log.Debugf("bandwidth probe skipped: %v", err)
		return
	}

	if _, err := e.fetch(segment, maxProbeBytes); err != nil {
		e.emit(media.Error(e.id, media.ErrorNetwork, false, fmt.Sprintf("bandwidth probe: %v", err)))
		return
	}

	e.log.Debugf("estimated bandwidth %.0f bps", e.estimator.Estimate())
}

// fetch downloads at most limit bytes and feeds the transfer to the estimator.
func (e *Engine) fetch(target string, limit int64) ([]byte, error) {
	began := time.Now()

	resp, err := network.Get(e.ctx, e.options.Client, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", target, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}

	e.estimator.Sample(len(body), time.Since(began))
	return body, nil
}
