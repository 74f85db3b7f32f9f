// Simulator replaying a scripted timeline against an in-memory fleet
package sim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetfusion/internal/fleet"
	"fleetfusion/internal/timeline"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultSettleDelay     = 2 * time.Second
	DefaultNominalVelocity = 65.0
)

// Messages of the events the simulator emits on its own.
const (
	MsgInitialized = "Agent initialized"
	MsgExecuted    = "Solution executed"
	MsgDismissed   = "Arbitrage opportunity dismissed"
)

// Arbitrage actions reported to the Recorder.
const (
	ActionAccept  = "accept"
	ActionDismiss = "dismiss"
	ActionSettle  = "settle"
)

// Recorder receives simulator activity counters.
type Recorder interface {
	EventEmitted(fleet.EventType)
	ArbitrageAction(action string)
	SimulatorActive(delta int)
}

// Options tune a Simulator. The zero value is usable.
type Options struct {
	Clock           timeline.Clock
	SettleDelay     time.Duration
	NominalVelocity float64
	Events          EventWriter
	States          StateWriter
	Recorder        Recorder
	Logger          *slog.Logger
	// NewEventID overrides the event id generator.
	NewEventID func(time.Time) string
}

// Stats summarises the event log.
type Stats struct {
	TotalEvents  int                  `json:"totalEvents"`
	ActionsTaken int                  `json:"actionsTaken"`
	StatusCounts map[fleet.Status]int `json:"statusCounts"`
}

// Snapshot is a read-only copy of the simulator state.
type Snapshot struct {
	Script    string                      `json:"script"`
	Active    bool                        `json:"active"`
	Trucks    []fleet.Truck               `json:"trucks"`
	Events    []fleet.AgentEvent          `json:"events"`
	Arbitrage *fleet.ArbitrageOpportunity `json:"arbitrageOpportunity"`
	Stats     Stats                       `json:"stats"`
}

// Simulator owns the fleet, the event log and the opportunity slot. All
// mutation happens through script firings and the Accept/Dismiss actions.
type Simulator struct {
	script timeline.Script
	opts   Options
	sched  *timeline.Scheduler
	log    *slog.Logger

	mu        sync.Mutex
	gen       uint64
	active    bool
	stopCtx   func() bool
	trucks    []fleet.Truck
	events    []fleet.AgentEvent
	arbitrage *fleet.ArbitrageOpportunity
	subs      map[int]chan Snapshot
	nextSub   int

	// Sink batches in commit order, written outside mu.
	qmu      sync.Mutex
	qidle    *sync.Cond
	queue    []sinkBatch
	draining bool
}

type sinkBatch struct {
	events []fleet.AgentEvent
	rows   []fleet.StateRow
}

// New creates a simulator for script. The fleet is seeded immediately so a
// snapshot taken before activation shows the starting state.
func New(script timeline.Script, opts Options) *Simulator {
	if opts.Clock == nil {
		opts.Clock = timeline.RealClock{}
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.NominalVelocity <= 0 {
		opts.NominalVelocity = DefaultNominalVelocity
	}
	if opts.NewEventID == nil {
		opts.NewEventID = newEventID
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Simulator{
		script: script.Copy(),
		opts:   opts,
		sched:  timeline.NewScheduler(opts.Clock),
		log:    log.With("script", script.Name),
		subs:   make(map[int]chan Snapshot),
	}
	s.qidle = sync.NewCond(&s.qmu)
	s.seedLocked(s.script.Copy())
	return s
}

func newEventID(time.Time) string {
	return "evt-" + uuid.Must(uuid.NewV7()).String()
}

func (s *Simulator) seedLocked(script timeline.Script) {
	s.trucks = script.Fleet
	s.events = []fleet.AgentEvent{{
		ID:        "init",
		Timestamp: s.opts.Clock.Now(),
		Type:      fleet.EventSystem,
		Message:   MsgInitialized,
		Severity:  fleet.SeverityInfo,
	}}
	s.arbitrage = nil
}

// Activate seeds the fleet and schedules every script entry relative to
// now. An already active simulator is restarted. The activation is torn
// down automatically when ctx is done.
func (s *Simulator) Activate(ctx context.Context) {
	s.Deactivate()
	script := s.script.Copy()
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.active = true
	s.seedLocked(script)
	s.stopCtx = context.AfterFunc(ctx, func() { s.deactivate(gen) })
	for _, e := range script.Entries {
		entry := e
		s.sched.After(entry.Delay, func() { s.fire(gen, entry) })
	}
	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	s.record(snap.Events[:1])
	s.enqueueLocked(sinkBatch{events: snap.Events[:1], rows: s.stateRows(snap.Trucks)})
	s.mu.Unlock()
	if s.opts.Recorder != nil {
		s.opts.Recorder.SimulatorActive(1)
	}
	s.log.Info("simulator activated", "entries", len(script.Entries), "duration", script.Duration())
}

// Deactivate cancels every pending firing. Effects that already happened
// are kept. Calling it on an inactive simulator is a no-op.
func (s *Simulator) Deactivate() {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()
	s.deactivate(gen)
}

func (s *Simulator) deactivate(gen uint64) {
	s.mu.Lock()
	if !s.active || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.gen++
	stop := s.stopCtx
	s.stopCtx = nil
	cancelled := s.sched.CancelAll()
	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	if s.opts.Recorder != nil {
		s.opts.Recorder.SimulatorActive(-1)
	}
	s.log.Info("simulator deactivated", "cancelled", cancelled)
}

// Active reports whether a script activation is in progress.
func (s *Simulator) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ScriptName returns the name of the script being replayed.
func (s *Simulator) ScriptName() string { return s.script.Name }

func (s *Simulator) fire(gen uint64, e timeline.Entry) {
	s.mu.Lock()
	if !s.active || gen != s.gen {
		s.mu.Unlock()
		return
	}
	u := e.Transform(fleet.Clone(s.trucks))
	s.commitLocked(u, e.Name)
}

// commitLocked merges u into the state, queues the emitted records for the
// sinks in commit order and releases s.mu.
func (s *Simulator) commitLocked(u timeline.Update, origin string) {
	now := s.opts.Clock.Now()
	var rows []fleet.StateRow
	if u.Trucks != nil {
		s.trucks = fleet.Clone(u.Trucks)
		rows = s.stateRows(s.trucks)
	}
	emitted := make([]fleet.AgentEvent, 0, len(u.Events))
	for _, ev := range u.Events {
		if ev.ID == "" {
			ev.ID = s.opts.NewEventID(now)
		}
		if ev.Timestamp.IsZero() {
			ev.Timestamp = now
		}
		emitted = append(emitted, ev)
	}
	if len(emitted) > 0 {
		s.events = append(append(make([]fleet.AgentEvent, 0, len(emitted)+len(s.events)), emitted...), s.events...)
	}
	if u.ClearArbitrage {
		s.arbitrage = nil
	}
	if u.Arbitrage != nil {
		a := *u.Arbitrage
		s.arbitrage = &a
	}
	snap := s.snapshotLocked()
	s.notifyLocked(snap)
	s.record(emitted)
	s.enqueueLocked(sinkBatch{events: emitted, rows: rows})
	s.mu.Unlock()
	s.log.Debug("timeline update applied", "origin", origin, "events", len(emitted), "fleet_changed", rows != nil)
}

func (s *Simulator) stateRows(trucks []fleet.Truck) []fleet.StateRow {
	now := s.opts.Clock.Now().UTC()
	rows := make([]fleet.StateRow, len(trucks))
	for i, t := range trucks {
		rows[i] = fleet.StateRowOf(t, now)
	}
	return rows
}

func (s *Simulator) record(events []fleet.AgentEvent) {
	if s.opts.Recorder == nil {
		return
	}
	for _, ev := range events {
		s.opts.Recorder.EventEmitted(ev.Type)
	}
}

// enqueueLocked hands b to the sink drainer, starting it if idle. Sink I/O
// never happens while s.mu is held.
func (s *Simulator) enqueueLocked(b sinkBatch) {
	if s.opts.Events == nil && s.opts.States == nil {
		return
	}
	if len(b.events) == 0 && len(b.rows) == 0 {
		return
	}
	s.qmu.Lock()
	s.queue = append(s.queue, b)
	if !s.draining {
		s.draining = true
		go s.drain()
	}
	s.qmu.Unlock()
}

func (s *Simulator) drain() {
	for {
		s.qmu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.qidle.Broadcast()
			s.qmu.Unlock()
			return
		}
		b := s.queue[0]
		s.queue[0] = sinkBatch{}
		s.queue = s.queue[1:]
		s.qmu.Unlock()
		s.write(b)
	}
}

func (s *Simulator) write(b sinkBatch) {
	if s.opts.Events != nil {
		for _, ev := range b.events {
			if err := s.opts.Events.WriteEvent(ev); err != nil {
				s.log.Error("event write failed", "event_id", ev.ID, "err", err)
			}
		}
	}
	if len(b.rows) > 0 && s.opts.States != nil {
		if err := s.opts.States.WriteStates(b.rows); err != nil {
			s.log.Error("state write failed", "err", err)
		}
	}
}

// Drain blocks until every record committed so far has been handed to the
// sinks. Call it before closing them.
func (s *Simulator) Drain() {
	s.qmu.Lock()
	for s.draining {
		s.qidle.Wait()
	}
	s.qmu.Unlock()
}

// Accept executes the pending opportunity: a "solution executed" event is
// logged now and, after the settle delay, the truck referenced at accept
// time is restored to nominal and the slot is cleared. It reports false,
// changing nothing, when the slot is empty or the simulator is inactive.
func (s *Simulator) Accept() bool {
	s.mu.Lock()
	if !s.active || s.arbitrage == nil {
		s.mu.Unlock()
		return false
	}
	truckID := s.arbitrage.TruckID
	gen := s.gen
	// The settle step is bound to truckID even if the slot is replaced
	// before it fires.
	s.sched.After(s.opts.SettleDelay, func() { s.settle(gen, truckID) })
	s.commitLocked(timeline.Update{Events: []fleet.AgentEvent{{
		Type: fleet.EventSystem, Severity: fleet.SeverityInfo, Message: MsgExecuted,
	}}}, ActionAccept)
	if s.opts.Recorder != nil {
		s.opts.Recorder.ArbitrageAction(ActionAccept)
	}
	s.log.Info("arbitrage accepted", "truck_id", truckID, "settle_delay", s.opts.SettleDelay)
	return true
}

func (s *Simulator) settle(gen uint64, truckID string) {
	s.mu.Lock()
	if !s.active || gen != s.gen {
		s.mu.Unlock()
		return
	}
	nominal := s.opts.NominalVelocity
	trucks, found := fleet.UpdateByID(s.trucks, truckID, func(t fleet.Truck) fleet.Truck {
		t.Velocity = nominal
		t.Status = fleet.StatusOnTime
		return t
	})
	s.commitLocked(timeline.Update{Trucks: trucks, ClearArbitrage: true}, ActionSettle)
	if s.opts.Recorder != nil {
		s.opts.Recorder.ArbitrageAction(ActionSettle)
	}
	if !found {
		s.log.Warn("settled opportunity for unknown truck", "truck_id", truckID)
	}
}

// Dismiss clears the pending opportunity and logs it. It reports false,
// changing nothing, when the slot is empty or the simulator is inactive.
func (s *Simulator) Dismiss() bool {
	s.mu.Lock()
	if !s.active || s.arbitrage == nil {
		s.mu.Unlock()
		return false
	}
	truckID := s.arbitrage.TruckID
	s.commitLocked(timeline.Update{ClearArbitrage: true, Events: []fleet.AgentEvent{{
		Type: fleet.EventSystem, Severity: fleet.SeverityInfo, Message: MsgDismissed,
	}}}, ActionDismiss)
	if s.opts.Recorder != nil {
		s.opts.Recorder.ArbitrageAction(ActionDismiss)
	}
	s.log.Info("arbitrage dismissed", "truck_id", truckID)
	return true
}

// Snapshot returns a deep copy of the current state.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() Snapshot {
	snap := Snapshot{
		Script: s.script.Name,
		Active: s.active,
		Trucks: fleet.Clone(s.trucks),
		Events: append([]fleet.AgentEvent(nil), s.events...),
	}
	if s.arbitrage != nil {
		a := *s.arbitrage
		snap.Arbitrage = &a
	}
	snap.Stats = Stats{
		TotalEvents:  len(snap.Events),
		StatusCounts: fleet.CountByStatus(snap.Trucks),
	}
	for _, ev := range snap.Events {
		if ev.Type == fleet.EventSystem {
			snap.Stats.ActionsTaken++
		}
	}
	return snap
}

// Subscribe returns a channel that always holds the most recent snapshot
// after a change. Slow readers skip intermediate states; the simulator never
// blocks on them. The returned func unsubscribes and closes the channel.
func (s *Simulator) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

func (s *Simulator) notifyLocked(snap Snapshot) {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
