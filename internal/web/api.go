package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"fleetfusion/internal/analytics"
	"fleetfusion/internal/fleet"
	"fleetfusion/internal/tracking"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"simulator": s.sim.Active(),
		"script":    s.sim.ScriptName(),
	})
}

func (s *Server) handleFleet(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newFleetView(s.sim.Snapshot()))
}

type actionResult struct {
	Applied bool      `json:"applied"`
	Fleet   fleetView `json:"fleet"`
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	ok := s.sim.Accept()
	respondJSON(w, http.StatusOK, actionResult{Applied: ok, Fleet: newFleetView(s.sim.Snapshot())})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	ok := s.sim.Dismiss()
	respondJSON(w, http.StatusOK, actionResult{Applied: ok, Fleet: newFleetView(s.sim.Snapshot())})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.sim.Activate(s.context())
	respondJSON(w, http.StatusOK, actionResult{Applied: true, Fleet: newFleetView(s.sim.Snapshot())})
}

type routeResult struct {
	Available   bool               `json:"available"`
	Coordinates []fleet.Coordinate `json:"coordinates,omitempty"`
	Message     string             `json:"message,omitempty"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseCoordinate(q.Get("from"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "from: "+err.Error())
		return
	}
	to, err := parseCoordinate(q.Get("to"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "to: "+err.Error())
		return
	}
	if s.routes == nil {
		respondJSON(w, http.StatusOK, routeResult{Message: "no route available"})
		return
	}
	coords, ok := s.routes.Fetch(r.Context(), from, to)
	if !ok {
		respondJSON(w, http.StatusOK, routeResult{Message: "no route available"})
		return
	}
	respondJSON(w, http.StatusOK, routeResult{Available: true, Coordinates: coords})
}

// parseCoordinate reads "lon,lat".
func parseCoordinate(raw string) (fleet.Coordinate, error) {
	lonStr, latStr, ok := strings.Cut(raw, ",")
	if !ok {
		return fleet.Coordinate{}, fmt.Errorf("want lon,lat, got %q", raw)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return fleet.Coordinate{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return fleet.Coordinate{}, fmt.Errorf("latitude: %w", err)
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return fleet.Coordinate{}, fmt.Errorf("out of range: %q", raw)
	}
	return fleet.Coordinate{lon, lat}, nil
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.daily.Today(r.Context()))
}

func (s *Server) handleTrackJSON(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	view, err := s.tracker.Track(r.Context(), id)
	if errors.Is(err, tracking.ErrNotFound) {
		respondError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		s.log.Error("track order", "id", id, "err", err)
		respondError(w, http.StatusInternalServerError, "tracking unavailable")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(analytics.FormatJSON)
	}
	format, err := analytics.ParseFormat(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	now := s.now()
	var buf bytes.Buffer
	if err := analytics.Write(&buf, format, analytics.Default(now)); err != nil {
		s.log.Error("export analytics", "format", format, "err", err)
		respondError(w, http.StatusInternalServerError, "export failed")
		return
	}
	s.metrics.RecordExport(string(format))
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", analytics.Filename(format, now)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
