// Package web serves the FleetFusion pages and JSON APIs.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"fleetfusion/internal/auth"
	"fleetfusion/internal/daily"
	"fleetfusion/internal/observability"
	"fleetfusion/internal/routing"
	"fleetfusion/internal/sim"
	"fleetfusion/internal/tracking"
)

//go:embed templates/*.html
var content embed.FS

// Deps are the collaborators a Server is built from.
type Deps struct {
	// Simulator is the shared instance driven by the dashboard JSON API.
	Simulator *sim.Simulator
	// NewSimulator creates the private simulator of each stream connection.
	NewSimulator func() *sim.Simulator
	Sessions     *auth.Sessions
	Users        auth.CredentialChecker
	// Protected path prefixes. Nil means auth.DefaultProtected.
	Protected []string
	Routes    routing.Fetcher
	Tracker   *tracking.Tracker
	Daily     *daily.Provider
	Metrics   *observability.Metrics
	Logger    *slog.Logger
	// AccessLog receives combined-format request lines. Nil means stdout.
	AccessLog io.Writer
}

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	sim      *sim.Simulator
	newSim   func() *sim.Simulator
	sessions *auth.Sessions
	users    auth.CredentialChecker
	gate     *auth.Gate
	routes   routing.Fetcher
	tracker  *tracking.Tracker
	daily    *daily.Provider
	metrics  *observability.Metrics
	log      *slog.Logger
	access   io.Writer
	tpl      *template.Template
	upgrader websocket.Upgrader
	now      func() time.Time
	router   *mux.Router

	mu      sync.Mutex
	baseCtx context.Context
}

// NewServer validates deps and builds the router.
func NewServer(d Deps) (*Server, error) {
	switch {
	case d.Simulator == nil:
		return nil, errors.New("web: simulator is required")
	case d.NewSimulator == nil:
		return nil, errors.New("web: simulator factory is required")
	case d.Sessions == nil:
		return nil, errors.New("web: sessions are required")
	case d.Users == nil:
		return nil, errors.New("web: credential checker is required")
	case d.Daily == nil:
		return nil, errors.New("web: daily metrics provider is required")
	}
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	m := d.Metrics
	if m == nil {
		m = observability.NewMetrics("fleetfusion")
	}
	routes := d.Routes
	if routes != nil {
		routes = m.InstrumentFetcher(routes)
	}
	tracker := d.Tracker
	if tracker == nil {
		tracker = tracking.NewTracker(tracking.NewCatalog(), routes)
	}
	access := d.AccessLog
	if access == nil {
		access = os.Stdout
	}
	tpl, err := template.New("").Funcs(funcs).ParseFS(content, "templates/*.html")
	if err != nil {
		return nil, err
	}
	s := &Server{
		sim:      d.Simulator,
		newSim:   d.NewSimulator,
		sessions: d.Sessions,
		users:    d.Users,
		gate:     auth.NewGate(d.Sessions, d.Protected, log),
		routes:   routes,
		tracker:  tracker,
		daily:    d.Daily,
		metrics:  m,
		log:      log,
		access:   access,
		tpl:      tpl,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
		now:      time.Now,
		baseCtx:  context.Background(),
	}
	s.router = s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleLanding).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLoginPage).Methods(http.MethodGet)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/track/{id}", s.handleTrack).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/route", s.handleRoute).Methods(http.MethodGet)
	api.HandleFunc("/metrics/daily", s.handleDaily).Methods(http.MethodGet)
	api.HandleFunc("/track/{id}", s.handleTrackJSON).Methods(http.MethodGet)

	r.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	dash := r.PathPrefix("/dashboard/api").Subrouter()
	dash.HandleFunc("/fleet", s.handleFleet).Methods(http.MethodGet)
	dash.HandleFunc("/arbitrage/accept", s.handleAccept).Methods(http.MethodPost)
	dash.HandleFunc("/arbitrage/dismiss", s.handleDismiss).Methods(http.MethodPost)
	dash.HandleFunc("/simulation/restart", s.handleRestart).Methods(http.MethodPost)
	dash.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	r.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/analytics/export", s.handleExport).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	return r
}

// Router returns the bare route table without the gate or middleware.
func (s *Server) Router() *mux.Router { return s.router }

// Handler returns the router wrapped in the session gate, access logging
// and panic recovery.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.gate.Middleware(s.router)
	h = handlers.CombinedLoggingHandler(s.access, h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError)),
	)(h)
}

func (s *Server) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

// Start activates the shared simulator and serves on addr until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()
	s.sim.Activate(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
