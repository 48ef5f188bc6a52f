// Package log keeps the reflection audit trail, one JSON object per line
// in events.jsonl beside the database.
package log

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Audit event names, one per step of a reflection.
const (
	EventDeepLinkReceived    = "deeplink_received"
	EventDeepLinkIgnored     = "deeplink_ignored"
	EventDeepLinkFailed      = "deeplink_failed"
	EventAppNotFound         = "app_not_found"
	EventReflectionStarted   = "reflection_started"
	EventCountdownCompleted  = "countdown_completed"
	EventReflectionBypassed  = "reflection_bypassed"
	EventReflectionCancelled = "reflection_cancelled"
	EventQuestionAnswered    = "question_answered"
	EventProceededToApp      = "proceeded_to_app"
	EventAlternativeChosen   = "alternative_chosen"
	EventReflectionDeclined  = "reflection_declined"
	EventLaunchFailed        = "launch_failed"
)

// EventsFile is the audit log name inside the data directory.
const EventsFile = "events.jsonl"

// LogEvent is one line of events.jsonl. Unused fields are omitted.
type LogEvent struct {
	Time        time.Time `json:"time"`
	Event       string    `json:"event"`
	SessionID   string    `json:"session,omitempty"`
	AppID       string    `json:"app_id,omitempty"`
	AppName     string    `json:"app_name,omitempty"`
	URL         string    `json:"url,omitempty"`
	Question    string    `json:"question,omitempty"`
	Alternative string    `json:"alternative,omitempty"`
	Phase       string    `json:"phase,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Error       string    `json:"error,omitempty"`
	Elapsed     int       `json:"elapsed_seconds,omitempty"`
	DurationMs  int64     `json:"duration_ms,omitempty"`
}

// Sink receives audit events.
type Sink interface {
	Append(event LogEvent) error
}

// Nop discards every event.
type Nop struct{}

// Append does nothing.
func (Nop) Append(LogEvent) error { return nil }

// Logger appends events to a JSONL file. It is safe for concurrent use.
type Logger struct {
	path string
	mu   sync.Mutex
}

// NewLogger returns a Logger for dir/events.jsonl, creating dir when needed.
// An existing file is appended to.
func NewLogger(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Logger{path: filepath.Join(dir, EventsFile)}, nil
}

// Path returns the log file location.
func (l *Logger) Path() string { return l.path }

// Append adds event as one line, stamping it with the current UTC time
// when Time is unset. The file is only held open for the write.
func (l *Logger) Append(event LogEvent) error {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	// Encode writes the trailing newline.
	encErr := json.NewEncoder(f).Encode(event)
	closeErr := f.Close()
	if encErr != nil {
		return fmt.Errorf("append %s event: %w", event.Event, encErr)
	}
	return closeErr
}

// ReadAll returns every event in file order. A missing file is an empty log.
func (l *Logger) ReadAll() ([]LogEvent, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	var events []LogEvent
	dec := json.NewDecoder(f)
	for {
		var e LogEvent
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("event %d in %s: %w", len(events)+1, EventsFile, err)
		}
		events = append(events, e)
	}
}

// Memory keeps events in a slice. Tests and the headless runner use it.
type Memory struct {
	mu     sync.Mutex
	events []LogEvent
}

// Append records event.
func (m *Memory) Append(event LogEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns the recorded events in order.
func (m *Memory) Events() []LogEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEvent(nil), m.events...)
}

// Names returns the event names in order.
func (m *Memory) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Event
	}
	return out
}

var (
	_ Sink = (*Logger)(nil)
	_ Sink = (*Memory)(nil)
	_ Sink = Nop{}
)
