package timeline

import (
	"time"

	"fleetfusion/internal/fleet"
)

// DefaultScript names the script used when none is configured.
const DefaultScript = "pune-corridor"

// TrackedTruckID is the truck the built-in scripts revolve around.
const TrackedTruckID = "TRK-402"

func trackedTruck() fleet.Truck {
	return fleet.Truck{
		ID:          TrackedTruckID,
		CargoValue:  120000,
		Velocity:    68,
		Status:      fleet.StatusOnTime,
		Position:    fleet.Coordinate{73.7567, 18.4704},
		Destination: fleet.Coordinate{73.9067, 18.5704},
		Route: []fleet.Coordinate{
			{73.7567, 18.4704},
			{73.7867, 18.4904},
			{73.8267, 18.5204},
			{73.8667, 18.5504},
			{73.9067, 18.5704},
		},
		Driver: "Priya Sharma",
	}
}

func halt(status fleet.Status) func(fleet.Truck) fleet.Truck {
	return func(t fleet.Truck) fleet.Truck {
		t.Velocity = 0
		t.Status = status
		return t
	}
}

// BuiltIn returns the predefined scripts keyed by name.
func BuiltIn() map[string]Script {
	return map[string]Script{
		DefaultScript: {
			Name:        DefaultScript,
			Description: "A loaded truck stalls on the Pune ring road until a relief truck is offered.",
			Fleet:       []fleet.Truck{trackedTruck()},
			Entries: []Entry{
				{
					Name:  "sensors-online",
					Delay: 2 * time.Second,
					Transform: Emit(fleet.AgentEvent{
						Type: fleet.EventSensor, Severity: fleet.SeverityInfo,
						Message: "GPS sensors operational",
					}),
				},
				{
					Name:  "velocity-drop",
					Delay: 5 * time.Second,
					Transform: PatchTruck(TrackedTruckID, halt(fleet.StatusDelayed), fleet.AgentEvent{
						Type: fleet.EventAlert, Severity: fleet.SeverityWarning,
						Message: "TRK-402 velocity dropped to 0 km/h",
					}),
				},
				{
					Name:  "sla-breach",
					Delay: 8 * time.Second,
					Transform: PatchTruck(TrackedTruckID, halt(fleet.StatusCritical), fleet.AgentEvent{
						Type: fleet.EventAlert, Severity: fleet.SeverityCritical,
						Message: "TRK-402 CRITICAL - SLA threshold exceeded",
					}),
				},
				{
					Name:  "relief-offer",
					Delay: 12 * time.Second,
					Transform: Offer(fleet.ArbitrageOpportunity{
						TruckID:          TrackedTruckID,
						ProjectedPenalty: 2500,
						SolutionType:     "Relief Truck via Spot Market",
						SolutionCost:     800,
						NetSavings:       1700,
						Details:          "Deploy backup truck - ETA 45 min",
					}, fleet.AgentEvent{
						Type: fleet.EventArbitrage, Severity: fleet.SeverityCritical,
						Message: "ARBITRAGE OPPORTUNITY - Net Savings: $1,700",
					}),
				},
			},
		},
	}
}

// Lookup returns a built-in script by name.
func Lookup(name string) (Script, bool) {
	s, ok := BuiltIn()[name]
	return s, ok
}
