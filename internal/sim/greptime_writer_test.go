package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"fleetfusion/internal/fleet"
)

type mockGreptimeClient struct {
	table *table.Table
	err   error
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, m.err
}

func TestGreptimeWriterEvents(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, eventTable: DefaultEventTable}

	ev := fleet.AgentEvent{ID: "e1", Type: fleet.EventArbitrage, Severity: fleet.SeverityCritical, Message: "offer", Timestamp: ts}
	if err := w.WriteEvent(ev); err != nil {
		t.Fatalf("WriteEvent: %v", err)
	}
	if m.table == nil {
		t.Fatalf("expected table to be captured")
	}
	rows := m.table.GetRows()
	if len(rows.Schema) != 5 {
		t.Fatalf("unexpected schema length: %d", len(rows.Schema))
	}
	if rows.Schema[0].SemanticType != gpb.SemanticType_TAG {
		t.Fatalf("event_type should be a tag, got %v", rows.Schema[0].SemanticType)
	}
	if got := rows.Rows[0].Values[0].GetStringValue(); got != "arbitrage" {
		t.Fatalf("event_type = %s, want arbitrage", got)
	}
	if got := rows.Rows[0].Values[3].GetStringValue(); got != "offer" {
		t.Fatalf("message = %s, want offer", got)
	}
}

func TestGreptimeWriterStates(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, stateTable: DefaultStateTable}

	rows := []fleet.StateRow{
		{TruckID: "TRK-402", Driver: "Priya Sharma", Status: fleet.StatusCritical, Velocity: 0, Lon: 73.75, Lat: 18.47, Timestamp: time.Unix(0, 0)},
		{TruckID: "TRK-403", Status: fleet.StatusOnTime, Velocity: 62, Timestamp: time.Unix(0, 0)},
	}
	if err := w.WriteStates(rows); err != nil {
		t.Fatalf("WriteStates: %v", err)
	}
	got := m.table.GetRows()
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(got.Rows))
	}
	if v := got.Rows[0].Values[2].GetStringValue(); v != "critical" {
		t.Fatalf("status = %s, want critical", v)
	}
	if v := got.Rows[1].Values[3].GetF64Value(); v != 62 {
		t.Fatalf("velocity = %v, want 62", v)
	}
}

func TestGreptimeWriterPropagatesError(t *testing.T) {
	m := &mockGreptimeClient{err: errors.New("unavailable")}
	w := &GreptimeDBWriter{client: m, eventTable: DefaultEventTable}
	if err := w.WriteEvent(fleet.AgentEvent{ID: "e", Type: fleet.EventSystem, Severity: fleet.SeverityInfo}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGreptimeWriterEmptyBatch(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m}
	if err := w.WriteStates(nil); err != nil || m.table != nil {
		t.Fatalf("empty batch should not write")
	}
}
