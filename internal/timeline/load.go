package timeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"fleetfusion/internal/fleet"
)

// File is the YAML form of a script.
type File struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description,omitempty"`
	Fleet       []fleet.Truck `yaml:"fleet"`
	Steps       []Step        `yaml:"steps"`
}

// Step declares one scheduled change.
type Step struct {
	Name           string                      `yaml:"name,omitempty"`
	After          time.Duration               `yaml:"after"`
	Truck          *TruckPatch                 `yaml:"truck,omitempty"`
	Event          *EventSpec                  `yaml:"event,omitempty"`
	Arbitrage      *fleet.ArbitrageOpportunity `yaml:"arbitrage,omitempty"`
	ClearArbitrage bool                        `yaml:"clear_arbitrage,omitempty"`
}

// TruckPatch overrides selected fields of one truck.
type TruckPatch struct {
	ID         string            `yaml:"id"`
	Velocity   *float64          `yaml:"velocity,omitempty"`
	Status     *fleet.Status     `yaml:"status,omitempty"`
	CargoValue *float64          `yaml:"cargo_value,omitempty"`
	Position   *fleet.Coordinate `yaml:"position,omitempty"`
}

// EventSpec describes an event to emit; id and timestamp are assigned when
// it fires.
type EventSpec struct {
	Type     fleet.EventType `yaml:"type"`
	Severity fleet.Severity  `yaml:"severity"`
	Message  string          `yaml:"message"`
}

// Load reads a YAML script definition from disk.
func Load(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML script.
func Parse(b []byte) (*Script, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	s := f.Script()
	return &s, nil
}

// Validate rejects steps that reference unknown trucks or carry values
// outside the fleet enums.
func (f File) Validate() error {
	if err := fleet.ValidateFleet(f.Fleet); err != nil {
		return fmt.Errorf("script %q fleet: %w", f.Name, err)
	}
	for i, st := range f.Steps {
		if st.After < 0 {
			return fmt.Errorf("script %q step %d: negative delay %s", f.Name, i, st.After)
		}
		if st.Truck != nil {
			probe, ok := fleet.Find(f.Fleet, st.Truck.ID)
			if !ok {
				return fmt.Errorf("script %q step %d: unknown truck %q", f.Name, i, st.Truck.ID)
			}
			if err := st.Truck.apply(probe).Validate(); err != nil {
				return fmt.Errorf("script %q step %d: %w", f.Name, i, err)
			}
		}
		if st.Event != nil {
			ev := fleet.AgentEvent{Type: st.Event.Type, Severity: st.Event.Severity}
			if err := ev.Validate(); err != nil {
				return fmt.Errorf("script %q step %d: %w", f.Name, i, err)
			}
		}
		if st.Arbitrage != nil {
			if err := st.Arbitrage.Validate(); err != nil {
				return fmt.Errorf("script %q step %d: %w", f.Name, i, err)
			}
			if _, ok := fleet.Find(f.Fleet, st.Arbitrage.TruckID); !ok {
				return fmt.Errorf("script %q step %d: arbitrage for unknown truck %q", f.Name, i, st.Arbitrage.TruckID)
			}
		}
	}
	return nil
}

func (p TruckPatch) apply(t fleet.Truck) fleet.Truck {
	if p.Velocity != nil {
		t.Velocity = *p.Velocity
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CargoValue != nil {
		t.CargoValue = *p.CargoValue
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	return t
}

// Script converts the file into runnable entries.
func (f File) Script() Script {
	s := Script{Name: f.Name, Description: f.Description, Fleet: fleet.Clone(f.Fleet)}
	for _, st := range f.Steps {
		s.Entries = append(s.Entries, Entry{Name: st.Name, Delay: st.After, Transform: st.Transform()})
	}
	return s
}

// Transform builds the transform for a step.
func (st Step) Transform() Transform {
	var events []fleet.AgentEvent
	if st.Event != nil {
		events = []fleet.AgentEvent{{Type: st.Event.Type, Severity: st.Event.Severity, Message: st.Event.Message}}
	}
	patch := st.Truck
	var opp *fleet.ArbitrageOpportunity
	if st.Arbitrage != nil {
		a := *st.Arbitrage
		opp = &a
	}
	clearSlot := st.ClearArbitrage
	return func(trucks []fleet.Truck) Update {
		u := Update{Events: events, ClearArbitrage: clearSlot}
		if patch != nil {
			u.Trucks, _ = fleet.UpdateByID(trucks, patch.ID, patch.apply)
		}
		if opp != nil {
			a := *opp
			u.Arbitrage = &a
		}
		return u
	}
}
