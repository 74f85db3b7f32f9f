package sim

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"fleetfusion/internal/fleet"
)

func TestReplayLog(t *testing.T) {
	evs := []fleet.AgentEvent{
		{ID: "e1", Type: fleet.EventSystem, Severity: fleet.SeverityInfo, Timestamp: time.Unix(0, 0)},
		{ID: "e2", Type: fleet.EventAlert, Severity: fleet.SeverityWarning, Timestamp: time.Unix(1, 0)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, ev := range evs {
		if err := enc.Encode(ev); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &MockWriter{}
	if err := ReplayLog(&buf, cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.Events) != len(evs) {
		t.Fatalf("expected %d events, got %d", len(evs), len(cw.Events))
	}
	for i, ev := range evs {
		if cw.Events[i].ID != ev.ID {
			t.Fatalf("event %d mismatch: %+v vs %+v", i, cw.Events[i], ev)
		}
	}
}

func TestReplayLogRejectsInvalid(t *testing.T) {
	in := strings.NewReader(`{"id":"x","type":"gossip","severity":"info"}` + "\n")
	err := ReplayLog(in, &MockWriter{}, 0)
	if !errors.Is(err, fleet.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
}

func TestReplayLogSpeed(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.Encode(fleet.AgentEvent{ID: "a", Type: fleet.EventSystem, Severity: fleet.SeverityInfo, Timestamp: time.Unix(0, 0)})
	enc.Encode(fleet.AgentEvent{ID: "b", Type: fleet.EventSystem, Severity: fleet.SeverityInfo, Timestamp: time.Unix(1, 0)})
	start := time.Now()
	if err := ReplayLog(&buf, &MockWriter{}, 20); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond || elapsed > time.Second {
		t.Fatalf("elapsed %v, want about 50ms", elapsed)
	}
}
