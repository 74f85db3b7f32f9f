package console

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"fleetfusion/internal/fleet"
	"fleetfusion/internal/sim"
)

type fakeController struct {
	accepts, dismisses, restarts int
	pending                      bool
}

func (f *fakeController) Accept() bool {
	f.accepts++
	ok := f.pending
	f.pending = false
	return ok
}

func (f *fakeController) Dismiss() bool {
	f.dismisses++
	ok := f.pending
	f.pending = false
	return ok
}

func (f *fakeController) Restart() { f.restarts++ }

func key(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func snapshot(events ...string) snapshotMsg {
	snap := sim.Snapshot{
		Script: "pune-corridor",
		Active: true,
		Trucks: []fleet.Truck{{ID: "TRK-402", Driver: "Priya Sharma", Status: fleet.StatusCritical, CargoValue: 120000}},
		Stats:  sim.Stats{StatusCounts: map[fleet.Status]int{fleet.StatusCritical: 1}},
	}
	for i, msg := range events {
		snap.Events = append(snap.Events, fleet.AgentEvent{
			ID:        string(rune('a' + i)),
			Timestamp: time.Unix(int64(i), 0).UTC(),
			Type:      fleet.EventSystem,
			Severity:  fleet.SeverityInfo,
			Message:   msg,
		})
	}
	snap.Stats.TotalEvents = len(snap.Events)
	return snapshotMsg{snap}
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	mi, cmd := m.Update(msg)
	return mi.(model), cmd
}

func TestSnapshotFillsTableAndLog(t *testing.T) {
	m := newModel(&fakeController{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m, _ = update(t, m, snapshot("Agent initialized", "GPS sensors operational"))

	rows := m.table.Rows()
	if len(rows) != 1 || rows[0][0] != "TRK-402" {
		t.Fatalf("unexpected rows %v", rows)
	}
	if rows[0][4] != string(fleet.StatusCritical) {
		t.Errorf("expected zero velocity classified critical, got %s", rows[0][4])
	}
	if rows[0][5] != "999.0" {
		t.Errorf("expected sentinel ETA, got %s", rows[0][5])
	}
	if len(m.logs) != 2 {
		t.Fatalf("expected 2 log lines, got %d", len(m.logs))
	}
	if !strings.Contains(m.View(), "GPS sensors operational") {
		t.Error("expected event in view")
	}
}

func TestOfferPanelShownWhilePending(t *testing.T) {
	m := newModel(&fakeController{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	snap := snapshot("Agent initialized")
	snap.Arbitrage = &fleet.ArbitrageOpportunity{
		TruckID: "TRK-402", ProjectedPenalty: 2500, SolutionType: "Relief Truck via Spot Market",
		SolutionCost: 800, NetSavings: 1700, Details: "Deploy backup truck - ETA 45 min",
	}
	m, _ = update(t, m, snap)
	if !strings.Contains(m.View(), "Relief Truck via Spot Market") {
		t.Fatal("expected offer panel")
	}
	withOffer := m.vp.Height

	m, _ = update(t, m, snapshot("Agent initialized"))
	if strings.Contains(m.View(), "Relief Truck") {
		t.Error("offer panel should disappear once the slot is empty")
	}
	if m.vp.Height <= withOffer {
		t.Errorf("log should grow back, %d <= %d", m.vp.Height, withOffer)
	}
}

func TestActionKeys(t *testing.T) {
	ctl := &fakeController{pending: true}
	m := newModel(ctl)

	_, cmd := update(t, m, key('a'))
	if cmd == nil {
		t.Fatal("expected accept command")
	}
	msg := cmd().(actionMsg)
	if !msg.applied || msg.action != sim.ActionAccept || ctl.accepts != 1 {
		t.Fatalf("unexpected accept result %+v", msg)
	}
	m, _ = update(t, m, msg)
	if !strings.Contains(m.status, "applied") {
		t.Errorf("unexpected status %q", m.status)
	}

	_, cmd = update(t, m, key('d'))
	msg = cmd().(actionMsg)
	if msg.applied || ctl.dismisses != 1 {
		t.Fatalf("dismiss with nothing pending should not apply: %+v", msg)
	}
	m, _ = update(t, m, msg)
	if !strings.Contains(m.status, "ignored") {
		t.Errorf("unexpected status %q", m.status)
	}

	_, cmd = update(t, m, key('r'))
	cmd()
	if ctl.restarts != 1 {
		t.Errorf("expected one restart, got %d", ctl.restarts)
	}

	_, cmd = update(t, m, key('q'))
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit")
	}
}

func TestWrapToggle(t *testing.T) {
	m := newModel(&fakeController{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 20})
	m, _ = update(t, m, snapshot("one two three four five six seven"))
	lines := strings.Split(m.vp.View(), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[1]) != "" {
		t.Fatalf("expected single line before wrap")
	}
	m, _ = update(t, m, key('w'))
	if !m.wrap {
		t.Fatalf("wrap not toggled")
	}
	lines = strings.Split(m.vp.View(), "\n")
	if strings.TrimSpace(lines[1]) == "" {
		t.Fatalf("expected wrapped content on second line")
	}
}

func TestScrollToggle(t *testing.T) {
	m := newModel(&fakeController{})
	m.vp.Height = 1
	m.vp.Width = 40
	m, _ = update(t, m, snapshot("l1", "l2"))
	m.vp.Height = 1
	m.refreshViewport()
	if m.vp.YOffset != 1 {
		t.Fatalf("expected YOffset 1, got %d", m.vp.YOffset)
	}
	m, _ = update(t, m, key('s'))
	if m.autoscroll {
		t.Fatalf("autoscroll should be off")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.vp.YOffset != 0 {
		t.Fatalf("expected YOffset 0 after scrolling up, got %d", m.vp.YOffset)
	}
	m, _ = update(t, m, key('s'))
	if !m.autoscroll || m.vp.YOffset != 1 {
		t.Fatalf("expected autoscroll back at bottom, offset %d", m.vp.YOffset)
	}
}
