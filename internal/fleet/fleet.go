package fleet

import "math"

// Clone returns a deep copy of trucks, including each route.
func Clone(trucks []Truck) []Truck {
	if trucks == nil {
		return nil
	}
	out := make([]Truck, len(trucks))
	for i, t := range trucks {
		out[i] = t
		if t.Route != nil {
			out[i].Route = append([]Coordinate(nil), t.Route...)
		}
	}
	return out
}

// UpdateByID returns a new fleet where the truck with the given id is
// replaced by fn(truck). All other trucks are carried over unchanged. The
// second result reports whether a truck matched.
func UpdateByID(trucks []Truck, id string, fn func(Truck) Truck) ([]Truck, bool) {
	out := make([]Truck, len(trucks))
	found := false
	for i, t := range trucks {
		if t.ID == id {
			out[i] = fn(t)
			found = true
			continue
		}
		out[i] = t
	}
	return out, found
}

// Find returns the truck with the given id.
func Find(trucks []Truck, id string) (Truck, bool) {
	for _, t := range trucks {
		if t.ID == id {
			return t, true
		}
	}
	return Truck{}, false
}

// CountByStatus tallies trucks per status.
func CountByStatus(trucks []Truck) map[Status]int {
	counts := make(map[Status]int, 4)
	for _, t := range trucks {
		counts[t.Status]++
	}
	return counts
}

// Velocity thresholds in km/h used by ClassifyVelocity.
const (
	CriticalBelowKmh = 10
	DelayedBelowKmh  = 40
)

// ClassifyVelocity derives a delivery status from the current speed.
func ClassifyVelocity(v float64) Status {
	switch {
	case v < CriticalBelowKmh:
		return StatusCritical
	case v < DelayedBelowKmh:
		return StatusDelayed
	default:
		return StatusOnTime
	}
}

const (
	etaDistanceKm   = 150
	etaStoppedBelow = 5
	// ETAStopped is reported for trucks that are effectively not moving.
	ETAStopped = 999.0
)

// ETAHours estimates hours to destination over a fixed corridor length.
func ETAHours(v float64) float64 {
	if v < etaStoppedBelow {
		return ETAStopped
	}
	return math.Round(etaDistanceKm/v*100) / 100
}
