// Fleet entity records shared by the simulator, sinks and web views
package fleet

import (
	"time"
)

// Coordinate is a [lon, lat] pair, the order used by GeoJSON and OSRM.
type Coordinate [2]float64

// Lon returns the longitude.
func (c Coordinate) Lon() float64 { return c[0] }

// Lat returns the latitude.
func (c Coordinate) Lat() float64 { return c[1] }

// Status is the delivery state of a truck.
type Status string

// Truck status constants.
const (
	StatusOnTime   Status = "on-time"
	StatusDelayed  Status = "delayed"
	StatusCritical Status = "critical"
	StatusResolved Status = "resolved"
)

// EventType classifies an agent event.
type EventType string

// Agent event types.
const (
	EventSystem      EventType = "system"
	EventSensor      EventType = "sensor"
	EventAlert       EventType = "alert"
	EventArbitrage   EventType = "arbitrage"
	EventSuccess     EventType = "success"
	EventOpportunity EventType = "opportunity"
)

// Severity grades an agent event.
type Severity string

// Severity levels.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Truck is a tracked vehicle.
type Truck struct {
	ID          string       `json:"id" yaml:"id"`
	CargoValue  float64      `json:"cargoValue" yaml:"cargo_value"`
	Velocity    float64      `json:"velocity" yaml:"velocity"`
	Status      Status       `json:"status" yaml:"status"`
	Position    Coordinate   `json:"position" yaml:"position"`
	Destination Coordinate   `json:"destination" yaml:"destination"`
	Route       []Coordinate `json:"route" yaml:"route"`
	Driver      string       `json:"driver" yaml:"driver"`
}

// AgentEvent is an immutable entry of the agent log.
type AgentEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
}

// ArbitrageOpportunity is a detected cost-saving alternative to a projected
// penalty. TruckID refers to a truck in the fleet but does not own it.
type ArbitrageOpportunity struct {
	TruckID          string  `json:"truckId" yaml:"truck_id"`
	ProjectedPenalty float64 `json:"projectedPenalty" yaml:"projected_penalty"`
	SolutionType     string  `json:"solutionType" yaml:"solution_type"`
	SolutionCost     float64 `json:"solutionCost" yaml:"solution_cost"`
	NetSavings       float64 `json:"netSavings" yaml:"net_savings"`
	Details          string  `json:"details" yaml:"details"`
}

// StateRow is one truck state sample written to sinks.
type StateRow struct {
	TruckID    string    `json:"truck_id"`
	Driver     string    `json:"driver"`
	Status     Status    `json:"status"`
	Velocity   float64   `json:"velocity"`
	CargoValue float64   `json:"cargo_value"`
	Lon        float64   `json:"lon"`
	Lat        float64   `json:"lat"`
	Timestamp  time.Time `json:"ts"`
}

// StateRowOf converts a truck into a sink row stamped at ts.
func StateRowOf(t Truck, ts time.Time) StateRow {
	return StateRow{
		TruckID:    t.ID,
		Driver:     t.Driver,
		Status:     t.Status,
		Velocity:   t.Velocity,
		CargoValue: t.CargoValue,
		Lon:        t.Position.Lon(),
		Lat:        t.Position.Lat(),
		Timestamp:  ts,
	}
}
