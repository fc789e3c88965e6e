package media

import "fmt"

// EventType enumerates everything engines and surfaces report.
type EventType int

const (
	EventSourceReady EventType = iota
	EventManifestParsed
	EventLevelSwitched
	EventError
	EventMetadataLoaded
	EventTimeUpdate
	EventEnded
	EventPauseChanged
)

func (t EventType) String() string {
	switch t {
	case EventSourceReady:
		return "source-ready"
	case EventManifestParsed:
		return "manifest-parsed"
	case EventLevelSwitched:
		return "level-switched"
	case EventError:
		return "error"
	case EventMetadataLoaded:
		return "metadata-loaded"
	case EventTimeUpdate:
		return "time-update"
	case EventEnded:
		return "ended"
	case EventPauseChanged:
		return "pause-changed"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// ErrorCategory classifies failures by how they can be recovered.
type ErrorCategory int

const (
	// ErrorNetwork covers playlist and segment transport failures.
	ErrorNetwork ErrorCategory = iota
	// ErrorMedia covers demux and decode failures.
	ErrorMedia
	// ErrorOther is anything else. Fatal ones are unrecoverable.
	ErrorOther
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrorNetwork:
		return "network"
	case ErrorMedia:
		return "media"
	default:
		return "other"
	}
}

// Event is a tagged union; only the fields relevant to Type are set.
type Event struct {
	Type   EventType
	Origin string

	Levels []Level
	Level  int

	Time     float64
	Duration float64
	Paused   bool

	Category ErrorCategory
	Fatal    bool
	Details  string
}

func (e Event) String() string {
	switch e.Type {
	case EventError:
		return fmt.Sprintf("%s(%s, fatal=%t): %s", e.Type, e.Category, e.Fatal, e.Details)
	case EventManifestParsed:
		return fmt.Sprintf("%s(%d levels, first=%d)", e.Type, len(e.Levels), e.Level)
	case EventLevelSwitched:
		return fmt.Sprintf("%s(%d)", e.Type, e.Level)
	case EventTimeUpdate:
		return fmt.Sprintf("%s(%.3f)", e.Type, e.Time)
	case EventMetadataLoaded:
		return fmt.Sprintf("%s(%.3f)", e.Type, e.Duration)
	case EventPauseChanged:
		return fmt.Sprintf("%s(%t)", e.Type, e.Paused)
	default:
		return e.Type.String()
	}
}

// Error builds an error event.
func Error(origin string, category ErrorCategory, fatal bool, details string) Event {
	return Event{Type: EventError, Origin: origin, Category: category, Fatal: fatal, Details: details}
}
