package sim

import "fleetfusion/internal/fleet"

// EventWriter receives every agent event in the order it was logged.
type EventWriter interface {
	WriteEvent(fleet.AgentEvent) error
}

// StateWriter receives the fleet each time it changes.
type StateWriter interface {
	WriteStates([]fleet.StateRow) error
}

// Optional: event writers may support batch mode.
type batchEventWriter interface {
	WriteEvents([]fleet.AgentEvent) error
}
