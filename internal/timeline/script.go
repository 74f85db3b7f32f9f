package timeline

import (
	"time"

	"fleetfusion/internal/fleet"
)

// Update is the partial result of a transform. Zero fields leave the
// corresponding state untouched.
type Update struct {
	// Trucks replaces the fleet when non-nil.
	Trucks []fleet.Truck
	// Events are prepended to the log in the given order.
	Events []fleet.AgentEvent
	// Arbitrage fills the opportunity slot when non-nil.
	Arbitrage *fleet.ArbitrageOpportunity
	// ClearArbitrage empties the opportunity slot.
	ClearArbitrage bool
}

// Transform derives an update from the fleet as it is when the entry fires.
// Transforms must not retain or mutate trucks.
type Transform func(trucks []fleet.Truck) Update

// Entry is one scheduled step of a script.
type Entry struct {
	Name      string
	Delay     time.Duration
	Transform Transform
}

// Script is an ordered list of delayed transforms plus the fleet it starts from.
type Script struct {
	Name        string
	Description string
	Fleet       []fleet.Truck
	Entries     []Entry
}

// Copy returns an independent copy so one activation cannot affect the next.
func (s Script) Copy() Script {
	cp := s
	cp.Fleet = fleet.Clone(s.Fleet)
	cp.Entries = append([]Entry(nil), s.Entries...)
	return cp
}

// Duration is the delay of the last entry.
func (s Script) Duration() time.Duration {
	var d time.Duration
	for _, e := range s.Entries {
		if e.Delay > d {
			d = e.Delay
		}
	}
	return d
}

// PatchTruck returns a transform that rewrites one truck by id and emits the
// given events.
func PatchTruck(id string, patch func(fleet.Truck) fleet.Truck, events ...fleet.AgentEvent) Transform {
	return func(trucks []fleet.Truck) Update {
		next, _ := fleet.UpdateByID(trucks, id, patch)
		return Update{Trucks: next, Events: events}
	}
}

// Emit returns a transform that only appends events.
func Emit(events ...fleet.AgentEvent) Transform {
	return func([]fleet.Truck) Update {
		return Update{Events: events}
	}
}

// Offer returns a transform that fills the opportunity slot.
func Offer(a fleet.ArbitrageOpportunity, events ...fleet.AgentEvent) Transform {
	return func([]fleet.Truck) Update {
		opp := a
		return Update{Arbitrage: &opp, Events: events}
	}
}
