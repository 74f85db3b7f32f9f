package sim

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fleetfusion/internal/fleet"
)

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()
	ts := time.Unix(0, 0).UTC()
	ev := fleet.AgentEvent{ID: "e1", Timestamp: ts, Type: fleet.EventAlert, Message: "stalled", Severity: fleet.SeverityWarning}
	row := fleet.StateRow{TruckID: "TRK-1", Status: fleet.StatusDelayed, Velocity: 12, Lon: 73.1, Lat: 18.2, Timestamp: ts}

	eventPath := filepath.Join(dir, "events.jsonl")
	statePath := filepath.Join(dir, "events.jsonl.states")
	fw, err := NewFileWriter(eventPath, statePath)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	if err := fw.WriteEvents([]fleet.AgentEvent{ev, ev}); err != nil {
		t.Fatalf("WriteEvents: %v", err)
	}
	if err := fw.WriteStates([]fleet.StateRow{row}); err != nil {
		t.Fatalf("WriteStates: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(eventPath)
	if err != nil {
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var got fleet.AgentEvent
		if err := json.Unmarshal(sc.Bytes(), &got); err != nil {
			t.Fatalf("decode event: %v", err)
		}
		if got.ID != ev.ID || got.Severity != ev.Severity || !got.Timestamp.Equal(ts) {
			t.Fatalf("unexpected event: %#v", got)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("event lines = %d, want 2", lines)
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatalf("read states: %v", err)
	}
	var got fleet.StateRow
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if got.TruckID != row.TruckID || got.Velocity != row.Velocity || got.Status != row.Status {
		t.Fatalf("unexpected state: %#v", got)
	}
}

func TestFileWriterWithoutStates(t *testing.T) {
	dir := t.TempDir()
	fw, err := NewFileWriter(filepath.Join(dir, "events.jsonl"), "")
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	defer fw.Close()
	if err := fw.WriteStates([]fleet.StateRow{{TruckID: "x"}}); err != nil {
		t.Fatalf("WriteStates should be a no-op: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the event file, got %d entries", len(entries))
	}
}

func TestFileWriterBadPath(t *testing.T) {
	if _, err := NewFileWriter(filepath.Join(t.TempDir(), "missing", "events.jsonl"), ""); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
