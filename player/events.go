package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"strings"
	"sync"

	"github.com/scrubline/scrubline/log"
	"github.com/scrubline/scrubline/media"
)

// mpvEvent is one asynchronous line from the IPC socket.
type mpvEvent struct {
	Event     string          `json:"event"`
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
	Prefix    string          `json:"prefix"`
	Level     string          `json:"level"`
	Text      string          `json:"text"`
}

var observedProperties = []string{"time-pos", "pause", "duration", "eof-reached", "seeking"}

// EventListener keeps a persistent IPC connection open and forwards mpv events.
type EventListener struct {
	socketPath string
	conn       net.Conn
	handle     func(mpvEvent)
	done       chan struct{}
	mu         sync.Mutex
	listening  bool
}

// NewEventListener creates a listener for the given socket.
func NewEventListener(socketPath string, handle func(mpvEvent)) *EventListener {
	return &EventListener{
		socketPath: socketPath,
		handle:     handle,
		done:       make(chan struct{}),
	}
}

// Start subscribes to property changes and error logs, then reads in the background.
func (el *EventListener) Start() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	if el.listening {
		return nil
	}

	conn, err := dial(el.socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}

	// observe_property <id> <property>; replies arrive on this same connection
	for i, name := range observedProperties {
		if err := writeCommand(conn, "observe_property", i+1, name); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	if err := writeCommand(conn, "request_log_messages", "error"); err != nil {
		conn.Close()
		return fmt.Errorf("request log messages: %w", err)
	}

	el.conn = conn
	el.listening = true
	go el.readLoop()

	log.Infof("mpv event listener started on %s (observing: %s)", el.socketPath, strings.Join(observedProperties, ", "))
	return nil
}

// Stop closes the connection, which ends the read loop.
func (el *EventListener) Stop() {
	el.mu.Lock()
	defer el.mu.Unlock()

	if !el.listening {
		return
	}

	if el.conn != nil {
		el.conn.Close()
	}
	el.listening = false
}

// Done is closed once the read loop has ended.
func (el *EventListener) Done() <-chan struct{} {
	return el.done
}

func (el *EventListener) readLoop() {
	defer close(el.done)

	scanner := bufio.NewScanner(el.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var event mpvEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			log.Debugf("skipping unparseable mpv line: %v", err)
			continue
		}

		// command replies have no event name
		if event.Event == "" {
			continue
		}

		el.handle(event)
	}

	if err := scanner.Err(); err != nil {
		log.Warnf("event listener read error: %v", err)
	}
}

func writeCommand(conn net.Conn, command ...interface{}) error {
	payload, err := json.Marshal(ipcCommand{Command: command})
	if err != nil {
		return err
	}

	_, err = conn.Write(append(payload, '\n'))
	return err
}

// timeStep is the smallest position change reported as a time update.
const timeStep = 0.25

// tracker folds raw mpv events into surface state and media events.
type tracker struct {
	origin   string
	time     float64
	sent     float64
	duration float64
	ready    media.ReadyState
	loaded   bool
}

func (t *tracker) translate(ev mpvEvent) []media.Event {
	var out []media.Event
	push := func(e media.Event) {
		e.Origin = t.origin
		out = append(out, e)
	}

	switch ev.Event {
	case "start-file":
		t.ready = media.HaveNothing
		t.loaded = false
		t.time, t.sent, t.duration = 0, 0, 0
	case "file-loaded":
		t.ready = media.HaveMetadata
		t.loaded = true
		push(media.Event{Type: media.EventMetadataLoaded, Duration: t.duration})
	case "playback-restart":
		if t.loaded {
			t.ready = media.HaveEnoughData
		}
	case "end-file":
		if ev.Reason == "error" {
			push(media.Error(t.origin, classifyFileError(ev.FileError), true, "playback failed: "+ev.FileError))
		}
	case "log-message":
		if ev.Level == "error" || ev.Level == "fatal" {
			text := strings.TrimSpace(ev.Text)
			push(media.Error(t.origin, classifyLog(ev.Prefix, text), false, ev.Prefix+": "+text))
		}
	case "property-change":
		t.property(ev, push)
	}

	return out
}

func (t *tracker) property(ev mpvEvent, push func(media.Event)) {
	switch ev.Name {
	case "time-pos":
		v, ok := decodeFloat(ev.Data)
		if !ok {
			return
		}
		t.time = v
		if math.Abs(v-t.sent) < timeStep {
			return
		}
		t.sent = v
		push(media.Event{Type: media.EventTimeUpdate, Time: v})
	case "duration":
		v, ok := decodeFloat(ev.Data)
		if !ok || v <= 0 || v == t.duration {
			return
		}
		t.duration = v
		if t.loaded {
			push(media.Event{Type: media.EventMetadataLoaded, Duration: v})
		}
	case "pause":
		if v, ok := decodeBool(ev.Data); ok {
			push(media.Event{Type: media.EventPauseChanged, Paused: v})
		}
	case "eof-reached":
		if v, ok := decodeBool(ev.Data); ok && v {
			push(media.Event{Type: media.EventEnded})
		}
	case "seeking":
		v, ok := decodeBool(ev.Data)
		if !ok || !t.loaded {
			return
		}
		if v {
			t.ready = media.HaveMetadata
		} else {
			t.ready = media.HaveEnoughData
		}
	}
}

func classifyFileError(fileError string) media.ErrorCategory {
	e := strings.ToLower(fileError)
	switch {
	case strings.Contains(e, "loading failed"), strings.Contains(e, "network"), strings.Contains(e, "http"):
		return media.ErrorNetwork
	case strings.Contains(e, "unrecognized file format"), strings.Contains(e, "no audio or video"),
		strings.Contains(e, "demux"), strings.Contains(e, "decod"):
		return media.ErrorMedia
	default:
		return media.ErrorOther
	}
}

func classifyLog(prefix, text string) media.ErrorCategory {
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(prefix, "stream"),
		prefix == "ffmpeg" && (strings.Contains(lower, "http") || strings.Contains(lower, "tcp") || strings.Contains(lower, "tls")):
		return media.ErrorNetwork
	case prefix == "vd", prefix == "ad", prefix == "demux", prefix == "lavf",
		strings.HasPrefix(prefix, "ffmpeg/"):
		return media.ErrorMedia
	default:
		return media.ErrorOther
	}
}

func decodeFloat(raw json.RawMessage) (float64, bool) {
	var v *float64
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return 0, false
	}
	return *v, true
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	var v *bool
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return false, false
	}
	return *v, true
}
