package analytics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Format is an export document type.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "json" or "csv", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Filename is the date-stamped download name, analytics-YYYY-MM-DD.<ext>,
// using the UTC calendar date of t.
func Filename(f Format, t time.Time) string {
	return "analytics-" + t.UTC().Format("2006-01-02") + "." + string(f)
}

// Write renders s in format f.
func Write(w io.Writer, f Format, s Snapshot) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatCSV:
		return WriteCSV(w, s)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteJSON renders s as indented JSON.
func WriteJSON(w io.Writer, s Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(s)
}

func dollars(v int) string { return "$" + strconv.Itoa(v) }

// WriteCSV renders s as sectioned CSV: summary, monthly savings, fleet
// status, top routes and the arbitrage history, separated by blank lines.
func WriteCSV(w io.Writer, s Snapshot) error {
	cw := csv.NewWriter(w)
	blank := []string{""}
	rows := [][]string{
		{"ANALYTICS SUMMARY"},
		{"Export Date", s.ExportDate.UTC().Format(time.RFC3339)},
		blank,
		{"Key Metrics"},
		{"Metric", "Value", "Change"},
		{"Total Deliveries", strconv.Itoa(s.Summary.TotalDeliveries), s.Summary.DeliveryGrowth},
		{"Active Trucks", strconv.Itoa(s.Summary.ActiveTrucks), s.Summary.TruckChange},
		{"Total Savings", dollars(s.Summary.TotalSavings), s.Summary.SavingsGrowth},
		{"Incidents Resolved", strconv.Itoa(s.Summary.IncidentsResolved), s.Summary.IncidentChange},
		blank,
		{"MONTHLY COST SAVINGS"},
		{"Month", "Savings", "Penalties Avoided"},
	}
	for _, m := range s.CostSavings.MonthlyData {
		rows = append(rows, []string{m.Month, dollars(m.Savings), dollars(m.Penalties)})
	}
	d := s.FleetStatus.StatusDistribution
	rows = append(rows,
		blank,
		[]string{"FLEET STATUS"},
		[]string{"Status", "Count"},
		[]string{"On Time", strconv.Itoa(d.OnTime)},
		[]string{"In Transit", strconv.Itoa(d.InTransit)},
		[]string{"Delayed", strconv.Itoa(d.Delayed)},
		[]string{"Critical", strconv.Itoa(d.Critical)},
		blank,
		[]string{"TOP ROUTES"},
		[]string{"Route", "Deliveries"},
	)
	for _, r := range s.TopRoutes {
		rows = append(rows, []string{r.Route, strconv.Itoa(r.Deliveries)})
	}
	rows = append(rows,
		blank,
		[]string{"RECENT ARBITRAGE OPPORTUNITIES"},
		[]string{"ID", "Truck", "Type", "Projected Penalty", "Solution", "Solution Cost", "Net Savings", "Status", "Time"},
	)
	for _, a := range s.RecentArbitrage {
		rows = append(rows, []string{
			a.ID, a.Truck, a.Type, dollars(a.ProjectedPenalty), a.Solution,
			dollars(a.SolutionCost), dollars(a.NetSavings), a.Status, a.Timestamp,
		})
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
