package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"fleetfusion/internal/fleet"
)

type stubFetcher bool

func (s stubFetcher) Fetch(context.Context, fleet.Coordinate, fleet.Coordinate) ([]fleet.Coordinate, bool) {
	if s {
		return []fleet.Coordinate{{1, 2}}, true
	}
	return nil, false
}

func TestRecorderCounters(t *testing.T) {
	m := NewMetrics("test")
	m.EventEmitted(fleet.EventAlert)
	m.EventEmitted(fleet.EventAlert)
	m.ArbitrageAction("accept")
	m.SimulatorActive(1)
	m.SimulatorActive(1)
	m.SimulatorActive(-1)

	if got := testutil.ToFloat64(m.EventsEmitted.WithLabelValues("alert")); got != 2 {
		t.Fatalf("alert events = %v", got)
	}
	if got := testutil.ToFloat64(m.ArbitrageActions.WithLabelValues("accept")); got != 1 {
		t.Fatalf("accepts = %v", got)
	}
	if got := testutil.ToFloat64(m.SimulatorsActive); got != 1 {
		t.Fatalf("active = %v", got)
	}
}

func TestInstrumentFetcher(t *testing.T) {
	m := NewMetrics("test")
	if _, ok := m.InstrumentFetcher(stubFetcher(true)).Fetch(context.Background(), fleet.Coordinate{}, fleet.Coordinate{}); !ok {
		t.Fatalf("wrapped fetch lost result")
	}
	m.InstrumentFetcher(stubFetcher(false)).Fetch(context.Background(), fleet.Coordinate{}, fleet.Coordinate{})

	if got := testutil.ToFloat64(m.RouteFetches.WithLabelValues("ok")); got != 1 {
		t.Fatalf("ok = %v", got)
	}
	if got := testutil.ToFloat64(m.RouteFetches.WithLabelValues("miss")); got != 1 {
		t.Fatalf("miss = %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics("")
	m.RecordLogin(false)
	m.RecordExport("csv")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`fleetfusion_web_login_attempts_total{result="failure"} 1`,
		`fleetfusion_web_exports_total{format="csv"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	NewMetrics("dup")
	NewMetrics("dup")
}
