package sim

import (
	"encoding/json"
	"os"
	"sync"

	"fleetfusion/internal/fleet"
)

// FileWriter writes events and fleet states to JSONL files.
type FileWriter struct {
	mu        sync.Mutex
	eventFile *os.File
	stateFile *os.File
	eventEnc  *json.Encoder
	stateEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. statePath may be empty to skip the
// fleet state log.
func NewFileWriter(eventPath, statePath string) (*FileWriter, error) {
	ef, err := os.Create(eventPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{eventFile: ef, eventEnc: json.NewEncoder(ef)}
	if statePath != "" {
		sf, err := os.Create(statePath)
		if err != nil {
			ef.Close()
			return nil, err
		}
		fw.stateFile = sf
		fw.stateEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// WriteEvent logs a single event.
func (f *FileWriter) WriteEvent(ev fleet.AgentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eventEnc.Encode(ev)
}

// WriteEvents logs multiple events.
func (f *FileWriter) WriteEvents(evs []fleet.AgentEvent) error {
	for _, ev := range evs {
		if err := f.WriteEvent(ev); err != nil {
			return err
		}
	}
	return nil
}

// WriteStates logs fleet state rows, if enabled.
func (f *FileWriter) WriteStates(rows []fleet.StateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range rows {
		if err := f.stateEnc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.eventFile != nil {
		if e := f.eventFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.stateFile != nil {
		if e := f.stateFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
