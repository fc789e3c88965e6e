package player

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/scrubline/scrubline/key"
	"github.com/scrubline/scrubline/log"
	"github.com/scrubline/scrubline/media"
	"github.com/scrubline/scrubline/timeline"
	"github.com/spf13/viper"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
	eventBuffer       = 64
)

// ErrClosed is returned by commands sent after Close.
var ErrClosed = errors.New("player closed")

// Options configure the mpv process.
type Options struct {
	// Path is the mpv executable.
	Path       string
	Args       []string
	Fullscreen bool
	Title      string
}

// OptionsFromConfig reads the player.* keys.
func OptionsFromConfig(title string) Options {
	return Options{
		Path:       viper.GetString(key.PlayerPath),
		Args:       viper.GetStringSlice(key.PlayerArgs),
		Fullscreen: viper.GetBool(key.PlayerFullscreen),
		Title:      title,
	}
}

// MPV is a media.Surface backed by an mpv process controlled over JSON-IPC.
type MPV struct {
	id         string
	log        log.Instance
	options    Options
	socketPath string
	cmd        *exec.Cmd
	listener   *EventListener

	events    chan media.Event
	exited    chan struct{} // closed when mpv process exits
	closed    chan struct{}
	closeOnce sync.Once

	mu sync.Mutex // serializes IPC commands

	stateMu sync.Mutex
	tracker tracker
	volume  float64
	current string
}

// Start launches mpv idle and paused, and waits until it accepts IPC commands.
func Start(options Options) (*MPV, error) {
	if options.Path == "" {
		options.Path = "mpv"
	}

	id := uuid.NewString()
	m := &MPV{
		id:         id,
		log:        log.For("mpv", id),
		options:    options,
		socketPath: socketPath(id),
		events:     make(chan media.Event, eventBuffer),
		exited:     make(chan struct{}),
		closed:     make(chan struct{}),
		tracker:    tracker{origin: id},
		volume:     1,
	}

	m.cmd = exec.Command(options.Path, buildArgs(options, m.socketPath)...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", options.Path, err)
	}

	// reap the process to prevent zombies
	go func() {
		_ = m.cmd.Wait()
		m.log.Infof("exited")
		close(m.exited)
	}()

	if err := m.waitForSocket(); err != nil {
		m.abort()
		return nil, fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = NewEventListener(m.socketPath, m.handle)
	if err := m.listener.Start(); err != nil {
		m.abort()
		return nil, err
	}

	return m, nil
}

// buildArgs keeps the user's mpv.conf in charge of rendering; only IPC and
// window behaviour are forced.
func buildArgs(options Options, socket string) []string {
	args := []string{
		"--no-terminal",
		"--really-quiet",
		fmt.Sprintf("--input-ipc-server=%s", socket),
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=yes",
		"--pause",
	}

	if title := sanitizeTitle(options.Title); title != "" {
		args = append(args,
			fmt.Sprintf("--force-media-title=%s", title),
			fmt.Sprintf("--title=%s", title),
		)
	}

	if options.Fullscreen {
		args = append(args, "--fullscreen")
	}

	return append(args, lo.Filter(options.Args, func(arg string, _ int) bool {
		return strings.HasPrefix(arg, "--")
	})...)
}

func (m *MPV) waitForSocket() error {
	for i := 0; i < socketWaitRetries; i++ {
		time.Sleep(socketWaitDelay)

		select {
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		default:
		}

		conn, err := dial(m.socketPath, dialTimeout)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) abort() {
	select {
	case <-m.exited:
	default:
		m.log.Warnf("killing: socket never became ready")
		_ = killProcess(m.cmd)
	}
	removeSocket(m.socketPath)
}

func (m *MPV) handle(ev mpvEvent) {
	m.stateMu.Lock()
	out := m.tracker.translate(ev)
	m.stateMu.Unlock()

	for _, e := range out {
		select {
		case m.events <- e:
		case <-m.closed:
			return
		case <-m.exited:
			return
		}
	}
}

func (m *MPV) command(command ...interface{}) (interface{}, error) {
	select {
	case <-m.closed:
		return nil, ErrClosed
	case <-m.exited:
		return nil, ErrClosed
	default:
	}
	return m.sendCommand(command...)
}

// ID implements media.Surface.
func (m *MPV) ID() string {
	return m.id
}

// Socket returns the IPC socket path.
func (m *MPV) Socket() string {
	return m.socketPath
}

// Load replaces the current file, starting at startAt seconds.
func (m *MPV) Load(rawURL string, startAt float64) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if _, err := m.command("set_property", "start", fmt.Sprintf("%.3f", lo.Max([]float64{startAt, 0}))); err != nil {
		return err
	}

	if _, err := m.command("loadfile", target, "replace"); err != nil {
		return err
	}

	m.stateMu.Lock()
	m.current = target
	m.stateMu.Unlock()
	return nil
}

// Play implements media.Surface.
func (m *MPV) Play() error {
	_, err := m.command("set_property", "pause", false)
	return err
}

// Pause implements media.Surface.
func (m *MPV) Pause() error {
	_, err := m.command("set_property", "pause", true)
	return err
}

// CurrentTime returns the last observed position.
func (m *MPV) CurrentTime() float64 {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.tracker.time
}

// SetCurrentTime seeks to an absolute position.
func (m *MPV) SetCurrentTime(t float64) error {
	if _, err := m.command("seek", t, "absolute"); err != nil {
		return err
	}

	m.stateMu.Lock()
	m.tracker.time = t
	m.stateMu.Unlock()
	return nil
}

// Volume returns the last volume set, in [0, 1].
func (m *MPV) Volume() float64 {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.volume
}

// SetVolume maps [0, 1] onto mpv's percentage scale.
func (m *MPV) SetVolume(v float64) error {
	v = lo.Clamp(v, 0, 1)
	if _, err := m.command("set_property", "volume", v*100); err != nil {
		return err
	}

	m.stateMu.Lock()
	m.volume = v
	m.stateMu.Unlock()
	return nil
}

// ReadyState implements media.Surface.
func (m *MPV) ReadyState() media.ReadyState {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.tracker.ready
}

// ReloadDecoders recreates the video and audio decoders, falling back to
// reopening the current file at the current position.
func (m *MPV) ReloadDecoders() error {
	_, videoErr := m.command("video-reload")
	_, audioErr := m.command("audio-reload")
	if videoErr == nil && audioErr == nil {
		return nil
	}

	m.log.Warnf("decoder reload failed (video: %v, audio: %v), reopening", videoErr, audioErr)

	m.stateMu.Lock()
	current, at := m.current, m.tracker.time
	m.stateMu.Unlock()

	if current == "" {
		return errors.Join(videoErr, audioErr)
	}
	return m.Load(current, at)
}

// ToggleFullscreen implements media.Surface.
func (m *MPV) ToggleFullscreen() error {
	_, err := m.command("cycle", "fullscreen")
	return err
}

// SetChapters shows chapter markers on mpv's own seek bar.
func (m *MPV) SetChapters(chapters []timeline.Chapter) error {
	list := lo.Map(chapters, func(c timeline.Chapter, _ int) map[string]interface{} {
		return map[string]interface{}{"title": c.Title, "time": c.Start}
	})

	_, err := m.command("set_property", "chapter-list", list)
	return err
}

// Events implements media.Surface.
func (m *MPV) Events() <-chan media.Event {
	return m.events
}

// Done is closed when the mpv process exits.
func (m *MPV) Done() <-chan struct{} {
	return m.exited
}

// Close quits mpv, escalating to signals if it does not exit in time.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)

		if m.listener != nil {
			m.listener.Stop()
		}

		select {
		case <-m.exited:
		default:
			_, _ = m.sendCommand("quit")
		}

		select {
		case <-m.exited:
		case <-time.After(quitTimeout):
			_ = terminate(m.cmd)
			select {
			case <-m.exited:
			case <-time.After(time.Second):
				_ = killProcess(m.cmd)
			}
		}

		removeSocket(m.socketPath)
	})

	return nil
}

// sanitizeMediaTarget validates that a URL is safe to pass to mpv.
func sanitizeMediaTarget(link string) (string, error) {
	// checked before trimming, a trailing newline must not slip through
	if strings.ContainsAny(link, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	// URLs must not look like flags
	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
