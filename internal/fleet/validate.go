package fleet

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid is matched by every validation failure via errors.Is.
var ErrInvalid = errors.New("invalid fleet record")

// ValidationError names the offending field of a rejected record.
type ValidationError struct {
	Record string
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s.%s=%v: %s", e.Record, e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalid.
func (e *ValidationError) Unwrap() error { return ErrInvalid }

func invalid(record, field string, value any, reason string) error {
	return &ValidationError{Record: record, Field: field, Value: value, Reason: reason}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOnTime, StatusDelayed, StatusCritical, StatusResolved:
		return true
	}
	return false
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventSystem, EventSensor, EventAlert, EventArbitrage, EventSuccess, EventOpportunity:
		return true
	}
	return false
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

func validCoordinate(c Coordinate) bool {
	return finite(c[0]) && finite(c[1])
}

// Validate checks numeric fields and the status enum. Out-of-set values are
// rejected, never clamped.
func (t Truck) Validate() error {
	if t.ID == "" {
		return invalid("truck", "id", t.ID, "must not be empty")
	}
	if !finite(t.CargoValue) || t.CargoValue < 0 {
		return invalid("truck", "cargoValue", t.CargoValue, "must be finite and non-negative")
	}
	if !finite(t.Velocity) || t.Velocity < 0 {
		return invalid("truck", "velocity", t.Velocity, "must be finite and non-negative")
	}
	if !t.Status.Valid() {
		return invalid("truck", "status", t.Status, "unknown status")
	}
	if !validCoordinate(t.Position) {
		return invalid("truck", "position", t.Position, "must be finite")
	}
	if !validCoordinate(t.Destination) {
		return invalid("truck", "destination", t.Destination, "must be finite")
	}
	for i, c := range t.Route {
		if !validCoordinate(c) {
			return invalid("truck", fmt.Sprintf("route[%d]", i), c, "must be finite")
		}
	}
	return nil
}

// Validate checks the event enums.
func (e AgentEvent) Validate() error {
	if !e.Type.Valid() {
		return invalid("event", "type", e.Type, "unknown event type")
	}
	if !e.Severity.Valid() {
		return invalid("event", "severity", e.Severity, "unknown severity")
	}
	return nil
}

// Validate checks that the monetary fields are finite.
func (a ArbitrageOpportunity) Validate() error {
	if a.TruckID == "" {
		return invalid("arbitrage", "truckId", a.TruckID, "must not be empty")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"projectedPenalty", a.ProjectedPenalty},
		{"solutionCost", a.SolutionCost},
		{"netSavings", a.NetSavings},
	} {
		if !finite(f.v) {
			return invalid("arbitrage", f.name, f.v, "must be finite")
		}
	}
	return nil
}

// ValidateFleet validates every truck and rejects duplicate ids.
func ValidateFleet(trucks []Truck) error {
	seen := make(map[string]struct{}, len(trucks))
	for _, t := range trucks {
		if err := t.Validate(); err != nil {
			return err
		}
		if _, dup := seen[t.ID]; dup {
			return invalid("truck", "id", t.ID, "duplicate id")
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}
