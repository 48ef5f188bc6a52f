package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	when := time.Date(2024, 3, 12, 14, 0, 0, 0, time.UTC)
	if err := l.Append(LogEvent{Time: when, Event: EventReflectionStarted, SessionID: "1", AppID: "42"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Append(LogEvent{Event: EventReflectionBypassed, SessionID: "1", Elapsed: 3}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].Time.Equal(when) {
		t.Errorf("Time: got %v, want %v", events[0].Time, when)
	}
	if events[1].Time.IsZero() {
		t.Error("zero time should be filled in")
	}
	if events[1].Event != EventReflectionBypassed || events[1].Elapsed != 3 {
		t.Errorf("second event: got %+v", events[1])
	}
	if l.Path() != filepath.Join(dir, EventsFile) {
		t.Errorf("Path: got %q", l.Path())
	}
}

func TestReadAllMissingFile(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestReadAllRejectsCorruptLine(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, EventsFile), []byte("{\"event\":\"ok\"}\nnot json\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	if _, err := l.ReadAll(); err == nil {
		t.Error("expected parse error")
	}
}

func TestMemorySink(t *testing.T) {
	var m Memory
	_ = m.Append(LogEvent{Event: EventDeepLinkReceived})
	_ = m.Append(LogEvent{Event: EventAppNotFound})
	names := m.Names()
	if len(names) != 2 || names[0] != EventDeepLinkReceived || names[1] != EventAppNotFound {
		t.Errorf("Names: got %v", names)
	}
	if len(m.Events()) != 2 {
		t.Errorf("Events: got %d", len(m.Events()))
	}
}
