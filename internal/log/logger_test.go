package log

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func TestRingLoggerEvictsOldest(t *testing.T) {
	l := NewRingLogger(3)
	for i := 1; i <= 5; i++ {
		l.Log(GameEvent{Turn: i, Details: fmt.Sprintf("line %d", i)})
	}

	events := l.Events()
	if len(events) != 3 {
		t.Fatalf("Expected 3 retained events, got %d", len(events))
	}
	for i, want := range []string{"line 3", "line 4", "line 5"} {
		if events[i].Details != want {
			t.Errorf("events[%d] = %q, want %q", i, events[i].Details, want)
		}
	}
	if events[2].Seq != 5 {
		t.Errorf("Expected newest seq 5, got %d", events[2].Seq)
	}
	if l.LastSeq() != 5 {
		t.Errorf("Expected LastSeq 5, got %d", l.LastSeq())
	}
}

func TestRingLoggerDefaultCapacity(t *testing.T) {
	l := NewRingLogger(0)
	if l.Cap() != DefaultCapacity {
		t.Fatalf("Expected capacity %d, got %d", DefaultCapacity, l.Cap())
	}
	for i := 0; i < DefaultCapacity+30; i++ {
		l.Log(GameEvent{})
	}
	if l.Len() != DefaultCapacity {
		t.Errorf("Expected %d retained events, got %d", DefaultCapacity, l.Len())
	}
	if first := l.Events()[0].Seq; first != 31 {
		t.Errorf("Expected oldest retained seq 31, got %d", first)
	}
}

func TestRingLoggerSince(t *testing.T) {
	l := NewRingLogger(10)
	for i := 0; i < 4; i++ {
		l.Log(GameEvent{Type: EventDraw})
	}
	l.Log(GameEvent{Type: EventKLChange})

	since := l.Since(3)
	if len(since) != 2 {
		t.Fatalf("Expected 2 events after seq 3, got %d", len(since))
	}
	if got := l.EventsOfType(EventKLChange); len(got) != 1 {
		t.Errorf("Expected 1 KL event, got %d", len(got))
	}
}

func TestTextLoggerWritesFormattedLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewDrawEvent(2, "Draw", 0, "Commander", "Gleam Scout"))

	out := buf.String()
	if !strings.Contains(out, "Commander draws Gleam Scout") {
		t.Errorf("Unexpected output %q", out)
	}
	if !strings.HasPrefix(out, "T2 ") {
		t.Errorf("Expected turn prefix, got %q", out)
	}
	if l.LastEvent().Type != EventDraw {
		t.Errorf("Expected last event Draw, got %s", l.LastEvent().Type)
	}
}

func TestTeeForwardsToAll(t *testing.T) {
	a, b := NewMemoryLogger(), NewRingLogger(2)
	tee := Tee{a, b}
	tee.Log(GameEvent{Type: EventGodCharge})
	tee.Log(GameEvent{Type: EventGodCharge})
	tee.Log(GameEvent{Type: EventGodCharge})

	if len(a.Events()) != 3 || b.Len() != 2 {
		t.Errorf("Expected 3/2 events, got %d/%d", len(a.Events()), b.Len())
	}
	if len(tee.Events()) != 3 {
		t.Errorf("Expected Tee to report the first logger's events")
	}
}
