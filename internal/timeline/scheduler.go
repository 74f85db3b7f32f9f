package timeline

import (
	"sync"
	"time"
)

// Scheduler tracks the delayed callbacks of one activation so they can be
// cancelled together.
type Scheduler struct {
	clock  Clock
	mu     sync.Mutex
	next   uint64
	timers map[uint64]Timer
}

// NewScheduler creates a scheduler on top of clock. A nil clock means
// RealClock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{clock: clock, timers: make(map[uint64]Timer)}
}

// After schedules f to run once, d after now.
func (s *Scheduler) After(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := s.next
	s.timers[id] = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()
		if live {
			f()
		}
	})
}

// CancelAll stops every pending callback and returns how many were stopped.
// Safe to call repeatedly.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, t := range s.timers {
		if t.Stop() {
			n++
		}
		delete(s.timers, id)
	}
	return n
}

// Pending returns the number of callbacks that have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
