// ColorStdoutWriter prints human-friendly, colorized events to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"fleetfusion/internal/fleet"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints events and fleet changes using ANSI colors. The
// starting fleet is printed once before the first record.
type ColorStdoutWriter struct {
	mu     sync.Mutex
	fleet  []fleet.Truck
	out    io.Writer
	once   sync.Once
	script string
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(script string, trucks []fleet.Truck) *ColorStdoutWriter {
	return &ColorStdoutWriter{script: script, fleet: fleet.Clone(trucks), out: os.Stdout}
}

// NewStdoutWriter picks the colorized writer on a terminal and JSON lines
// otherwise, so piped output stays machine readable.
func NewStdoutWriter(script string, trucks []fleet.Truck) interface {
	EventWriter
	StateWriter
} {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return NewColorStdoutWriter(script, trucks)
	}
	return NewJSONStdoutWriter()
}

func (w *ColorStdoutWriter) printOverview() {
	fmt.Fprintf(w.out, "Script: %s\n", w.script)
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Truck\tDriver\tStatus\tVelocity\tCargo\n")
	for _, t := range w.fleet {
		fmt.Fprintf(tw, "%s\t%s\t%s%s%s\t%.0f km/h\t$%.0f\n", t.ID, t.Driver, statusColor(t.Status), t.Status, colorReset, t.Velocity, t.CargoValue)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

func statusColor(s fleet.Status) string {
	switch s {
	case fleet.StatusCritical:
		return colorRed
	case fleet.StatusDelayed:
		return colorYellow
	case fleet.StatusResolved:
		return colorCyan
	default:
		return colorGreen
	}
}

func severityColor(s fleet.Severity) string {
	switch s {
	case fleet.SeverityCritical:
		return colorRed
	case fleet.SeverityWarning:
		return colorYellow
	default:
		return colorGreen
	}
}

func typeColor(t fleet.EventType) string {
	switch t {
	case fleet.EventArbitrage, fleet.EventOpportunity:
		return colorMagenta
	case fleet.EventAlert:
		return colorRed
	case fleet.EventSensor:
		return colorCyan
	default:
		return colorBlue
	}
}

// WriteEvent outputs a single event in colorized format.
func (w *ColorStdoutWriter) WriteEvent(ev fleet.AgentEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.once.Do(w.printOverview)
	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, ev.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%s%-11s%s ", typeColor(ev.Type), ev.Type, colorReset)
	fmt.Fprintf(w.out, "%s%-8s%s ", severityColor(ev.Severity), ev.Severity, colorReset)
	fmt.Fprintln(w.out, ev.Message)
	return nil
}

// WriteStates prints one line per truck.
func (w *ColorStdoutWriter) WriteStates(rows []fleet.StateRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.once.Do(w.printOverview)
	for _, r := range rows {
		fmt.Fprintf(w.out, "%s[%s]%s %sFLEET%s truck=%s %sstatus=%s%s vel=%.1f lon=%.4f lat=%.4f\n",
			colorGray, r.Timestamp.Format(time.RFC3339), colorReset,
			colorBlue, colorReset, r.TruckID,
			statusColor(r.Status), r.Status, colorReset,
			r.Velocity, r.Lon, r.Lat)
	}
	return nil
}
