package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"fleetfusion/internal/analytics"
	"fleetfusion/internal/auth"
	"fleetfusion/internal/daily"
	"fleetfusion/internal/fleet"
	"fleetfusion/internal/sim"
	"fleetfusion/internal/tracking"
)

type landingPage struct {
	SignedIn bool
	Name     string
	Daily    daily.Metrics
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.sessions.Session(r)
	page := landingPage{SignedIn: ok, Daily: s.daily.Today(r.Context())}
	if ok {
		page.Name = claims.Name
	}
	s.render(w, http.StatusOK, "landing.html", page)
}

type loginPage struct {
	Email    string
	Callback string
	Error    string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	callback := auth.SafeCallback(r.URL.Query().Get(auth.CallbackParam))
	if s.sessions.Authenticated(r) {
		http.Redirect(w, r, callback, http.StatusFound)
		return
	}
	s.render(w, http.StatusOK, "login.html", loginPage{Callback: callback})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login.html", loginPage{
			Callback: auth.DefaultCallback,
			Error:    "Malformed sign-in request",
		})
		return
	}
	email := strings.TrimSpace(r.PostForm.Get("email"))
	callback := auth.SafeCallback(r.PostForm.Get(auth.CallbackParam))

	user, ok := s.users.Check(email, r.PostForm.Get("password"))
	s.metrics.RecordLogin(ok)
	if !ok {
		s.log.Info("sign-in rejected", "email", email)
		s.render(w, http.StatusUnauthorized, "login.html", loginPage{
			Email:    email,
			Callback: callback,
			Error:    "Invalid email or password",
		})
		return
	}
	if err := s.sessions.Issue(w, user); err != nil {
		s.log.Error("issue session", "err", err)
		s.render(w, http.StatusInternalServerError, "login.html", loginPage{
			Email:    email,
			Callback: callback,
			Error:    "Could not start a session, try again",
		})
		return
	}
	s.log.Info("signed in", "email", user.Email)
	http.Redirect(w, r, callback, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type dashboardPage struct {
	Name  string
	Fleet fleetView
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	page := dashboardPage{Fleet: newFleetView(s.sim.Snapshot())}
	if claims, ok := s.sessions.Session(r); ok {
		page.Name = claims.Name
	}
	s.render(w, http.StatusOK, "dashboard.html", page)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "analytics.html", analytics.Default(s.now()))
}

type trackPage struct {
	View  tracking.View
	Label string
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	view, err := s.tracker.Track(r.Context(), id)
	if errors.Is(err, tracking.ErrNotFound) {
		s.render(w, http.StatusNotFound, "notfound.html", notFoundPage{
			Title:  "Order Not Found",
			Detail: "No shipment matches " + id + ".",
		})
		return
	}
	if err != nil {
		s.log.Error("track order", "id", id, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.render(w, http.StatusOK, "track.html", trackPage{View: view, Label: view.Order.Status.Label()})
}

type notFoundPage struct {
	Title  string
	Detail string
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.URL.Path, "/api/") {
		respondError(w, http.StatusNotFound, "not found")
		return
	}
	s.render(w, http.StatusNotFound, "notfound.html", notFoundPage{
		Title:  "Page Not Found",
		Detail: "Nothing lives at " + r.URL.Path + ".",
	})
}

// fleetView is the dashboard payload: the snapshot plus the velocity
// classification and ETA of each truck.
type fleetView struct {
	sim.Snapshot
	Summary []truckSummary `json:"summary"`
}

type truckSummary struct {
	ID             string       `json:"id"`
	Status         fleet.Status `json:"status"`
	VelocityStatus fleet.Status `json:"velocityStatus"`
	ETAHours       float64      `json:"etaHours"`
}

func newFleetView(snap sim.Snapshot) fleetView {
	v := fleetView{Snapshot: snap, Summary: make([]truckSummary, 0, len(snap.Trucks))}
	for _, t := range snap.Trucks {
		v.Summary = append(v.Summary, truckSummary{
			ID:             t.ID,
			Status:         t.Status,
			VelocityStatus: fleet.ClassifyVelocity(t.Velocity),
			ETAHours:       fleet.ETAHours(t.Velocity),
		})
	}
	return v
}
