package sim

import (
	"errors"

	"fleetfusion/internal/fleet"
)

// MultiWriter fans events and fleet states out to several writers. A failing
// writer does not stop the others; the errors are joined.
type MultiWriter struct {
	events []EventWriter
	states []StateWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ews []EventWriter, sws []StateWriter) *MultiWriter {
	return &MultiWriter{events: ews, states: sws}
}

// WriteEvent sends an event to all event writers.
func (mw *MultiWriter) WriteEvent(ev fleet.AgentEvent) error {
	var errs []error
	for _, w := range mw.events {
		if err := w.WriteEvent(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteEvents sends several events to all writers, using batch if supported.
func (mw *MultiWriter) WriteEvents(evs []fleet.AgentEvent) error {
	var errs []error
	for _, w := range mw.events {
		if bw, ok := w.(batchEventWriter); ok {
			if err := bw.WriteEvents(evs); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		for _, ev := range evs {
			if err := w.WriteEvent(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// WriteStates sends fleet rows to all state writers.
func (mw *MultiWriter) WriteStates(rows []fleet.StateRow) error {
	var errs []error
	for _, w := range mw.states {
		if err := w.WriteStates(rows); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer implementing io.Closer.
func (mw *MultiWriter) Close() error {
	var errs []error
	seen := make(map[any]bool)
	closeOne := func(w any) {
		c, ok := w.(interface{ Close() error })
		if !ok || seen[w] {
			return
		}
		seen[w] = true
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, w := range mw.events {
		closeOne(w)
	}
	for _, w := range mw.states {
		closeOne(w)
	}
	return errors.Join(errs...)
}
