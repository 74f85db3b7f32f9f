package fleet

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func sampleFleet() []Truck {
	return []Truck{
		{ID: "TRK-402", CargoValue: 120000, Velocity: 68, Status: StatusOnTime, Driver: "Priya Sharma",
			Position: Coordinate{73.7567, 18.4704}, Destination: Coordinate{73.9067, 18.5704},
			Route: []Coordinate{{73.7567, 18.4704}, {73.9067, 18.5704}}},
		{ID: "TRK-301", CargoValue: 80000, Velocity: 55, Status: StatusOnTime, Driver: "Arjun Mehta",
			Route: []Coordinate{{77.2, 28.6}}},
	}
}

func TestUpdateByIDLeavesOthersUnchanged(t *testing.T) {
	before := sampleFleet()
	after, ok := UpdateByID(before, "TRK-402", func(tr Truck) Truck {
		tr.Velocity = 0
		tr.Status = StatusDelayed
		return tr
	})
	if !ok {
		t.Fatalf("expected match")
	}
	if after[0].Velocity != 0 || after[0].Status != StatusDelayed {
		t.Fatalf("target not updated: %+v", after[0])
	}
	if !reflect.DeepEqual(after[1], before[1]) {
		t.Fatalf("untouched truck changed: %+v vs %+v", after[1], before[1])
	}
	if &after[1].Route[0] != &before[1].Route[0] {
		t.Fatalf("untouched truck route should be carried over by reference")
	}
	if before[0].Velocity != 68 {
		t.Fatalf("input slice must not be mutated")
	}
}

func TestUpdateByIDUnknown(t *testing.T) {
	before := sampleFleet()
	after, ok := UpdateByID(before, "TRK-999", func(tr Truck) Truck { tr.Velocity = 1; return tr })
	if ok {
		t.Fatalf("unexpected match")
	}
	if !reflect.DeepEqual(after, before) {
		t.Fatalf("fleet changed without a match")
	}
}

func TestCloneIsDeep(t *testing.T) {
	src := sampleFleet()
	cp := Clone(src)
	cp[0].Route[0] = Coordinate{0, 0}
	if src[0].Route[0] == (Coordinate{0, 0}) {
		t.Fatalf("clone shares route storage")
	}
	if Clone(nil) != nil {
		t.Fatalf("clone of nil should be nil")
	}
}

func TestClassifyVelocity(t *testing.T) {
	cases := []struct {
		v    float64
		want Status
	}{
		{0, StatusCritical},
		{9.9, StatusCritical},
		{10, StatusDelayed},
		{39, StatusDelayed},
		{40, StatusOnTime},
		{68, StatusOnTime},
	}
	for _, c := range cases {
		if got := ClassifyVelocity(c.v); got != c.want {
			t.Errorf("ClassifyVelocity(%v) = %s, want %s", c.v, got, c.want)
		}
	}
}

func TestETAHours(t *testing.T) {
	if got := ETAHours(0); got != ETAStopped {
		t.Fatalf("stopped truck eta = %v", got)
	}
	if got := ETAHours(60); got != 2.5 {
		t.Fatalf("eta at 60 = %v", got)
	}
	if got := ETAHours(68); got != 2.21 {
		t.Fatalf("eta at 68 = %v", got)
	}
}

func TestTruckValidateRejects(t *testing.T) {
	cases := map[string]func(*Truck){
		"status":   func(tr *Truck) { tr.Status = "lost" },
		"velocity": func(tr *Truck) { tr.Velocity = math.NaN() },
		"negative": func(tr *Truck) { tr.CargoValue = -1 },
		"route":    func(tr *Truck) { tr.Route = []Coordinate{{math.Inf(1), 0}} },
		"id":       func(tr *Truck) { tr.ID = "" },
	}
	for name, mutate := range cases {
		tr := sampleFleet()[0]
		mutate(&tr)
		err := tr.Validate()
		if !errors.Is(err, ErrInvalid) {
			t.Errorf("%s: expected ErrInvalid, got %v", name, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("%s: expected *ValidationError", name)
		}
	}
	if err := sampleFleet()[0].Validate(); err != nil {
		t.Fatalf("valid truck rejected: %v", err)
	}
}

func TestEventValidate(t *testing.T) {
	ok := AgentEvent{Type: EventSensor, Severity: SeverityInfo, Timestamp: time.Now()}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}
	if err := (AgentEvent{Type: "noise", Severity: SeverityInfo}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected type rejection, got %v", err)
	}
	if err := (AgentEvent{Type: EventAlert, Severity: "loud"}).Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected severity rejection, got %v", err)
	}
}

func TestArbitrageValidate(t *testing.T) {
	a := ArbitrageOpportunity{TruckID: "TRK-402", ProjectedPenalty: 2500, SolutionCost: 800, NetSavings: 1700}
	if err := a.Validate(); err != nil {
		t.Fatalf("valid opportunity rejected: %v", err)
	}
	a.SolutionCost = math.Inf(-1)
	if err := a.Validate(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected rejection, got %v", err)
	}
}

func TestValidateFleetDuplicate(t *testing.T) {
	f := sampleFleet()
	f[1].ID = f[0].ID
	if err := ValidateFleet(f); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestCountByStatusAndStateRow(t *testing.T) {
	f := sampleFleet()
	f[1].Status = StatusCritical
	counts := CountByStatus(f)
	if counts[StatusOnTime] != 1 || counts[StatusCritical] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
	ts := time.Unix(0, 0).UTC()
	row := StateRowOf(f[0], ts)
	if row.TruckID != "TRK-402" || row.Lon != 73.7567 || row.Lat != 18.4704 || !row.Timestamp.Equal(ts) {
		t.Fatalf("unexpected row %+v", row)
	}
}
