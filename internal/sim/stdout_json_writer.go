package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fleetfusion/internal/fleet"
)

// JSONStdoutWriter prints events and fleet states as JSON lines.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// WriteEvent outputs an agent event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(ev fleet.AgentEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteStates outputs fleet rows in JSON format.
func (w *JSONStdoutWriter) WriteStates(rows []fleet.StateRow) error {
	for _, r := range rows {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w.out, string(data)); err != nil {
			return err
		}
	}
	return nil
}
