package sim

import (
	"context"
	"fmt"
	"log"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"fleetfusion/internal/fleet"
)

// Default table names used when none are configured.
const (
	DefaultEventTable = "agent_events"
	DefaultStateTable = "fleet_state"
)

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes agent events and fleet states to GreptimeDB via
// the ingester client. Tables are created on first write.
type GreptimeDBWriter struct {
	client     greptimeClient
	eventTable string
	stateTable string
	timeout    time.Duration
}

// NewGreptimeDBWriter connects to the GreptimeDB gRPC endpoint.
func NewGreptimeDBWriter(endpoint, database, eventTable, stateTable string) (*GreptimeDBWriter, error) {
	if eventTable == "" {
		eventTable = DefaultEventTable
	}
	if stateTable == "" {
		stateTable = DefaultStateTable
	}
	cfg := greptime.NewConfig(endpoint).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeDBWriter{
		client:     client,
		eventTable: eventTable,
		stateTable: stateTable,
		timeout:    5 * time.Second,
	}, nil
}

func (w *GreptimeDBWriter) context() (context.Context, context.CancelFunc) {
	if w.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), w.timeout)
}

// WriteEvent inserts a single agent event.
func (w *GreptimeDBWriter) WriteEvent(ev fleet.AgentEvent) error {
	return w.WriteEvents([]fleet.AgentEvent{ev})
}

// WriteEvents inserts multiple agent events.
func (w *GreptimeDBWriter) WriteEvents(evs []fleet.AgentEvent) error {
	if len(evs) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("event_type", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTagColumn("severity", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("event_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("message", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	for _, ev := range evs {
		if err := tbl.AddRow(string(ev.Type), string(ev.Severity), ev.ID, ev.Message, ev.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl, len(evs))
}

// WriteStates inserts fleet state rows.
func (w *GreptimeDBWriter) WriteStates(rows []fleet.StateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	if err := tbl.AddTagColumn("truck_id", types.STRING); err != nil {
		return err
	}
	for _, c := range []struct {
		name string
		typ  types.ColumnType
	}{
		{"driver", types.STRING},
		{"status", types.STRING},
		{"velocity", types.FLOAT64},
		{"cargo_value", types.FLOAT64},
		{"lon", types.FLOAT64},
		{"lat", types.FLOAT64},
	} {
		if err := tbl.AddFieldColumn(c.name, c.typ); err != nil {
			return err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}
	for _, r := range rows {
		if err := tbl.AddRow(r.TruckID, r.Driver, string(r.Status), r.Velocity, r.CargoValue, r.Lon, r.Lat, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, n int) error {
	ctx, cancel := w.context()
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		log.Printf("[GreptimeDBWriter] Write failed: %v", err)
		return err
	}
	log.Printf("[GreptimeDBWriter] wrote %d rows", n)
	return nil
}
