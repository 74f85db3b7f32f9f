package sim

import (
	"errors"
	"testing"

	"fleetfusion/internal/fleet"
)

type failingWriter struct{ closed int }

func (f *failingWriter) WriteEvent(fleet.AgentEvent) error  { return errors.New("boom") }
func (f *failingWriter) WriteStates([]fleet.StateRow) error { return errors.New("boom") }
func (f *failingWriter) Close() error                        { f.closed++; return nil }

func TestMultiWriterContinuesPastFailures(t *testing.T) {
	bad := &failingWriter{}
	good := &MockWriter{}
	mw := NewMultiWriter([]EventWriter{bad, good}, []StateWriter{bad, good})

	if err := mw.WriteEvent(fleet.AgentEvent{ID: "e1"}); err == nil {
		t.Fatalf("expected joined error")
	}
	if err := mw.WriteEvents([]fleet.AgentEvent{{ID: "e2"}, {ID: "e3"}}); err == nil {
		t.Fatalf("expected joined error")
	}
	if err := mw.WriteStates([]fleet.StateRow{{TruckID: "t"}}); err == nil {
		t.Fatalf("expected joined error")
	}
	if len(good.Events) != 3 || len(good.States) != 1 {
		t.Fatalf("healthy writer missed records: %d events, %d states", len(good.Events), len(good.States))
	}
}

func TestMultiWriterCloseOnce(t *testing.T) {
	w := &failingWriter{}
	mw := NewMultiWriter([]EventWriter{w}, []StateWriter{w})
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if w.closed != 1 {
		t.Fatalf("closed %d times, want 1", w.closed)
	}
}
