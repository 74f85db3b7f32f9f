package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fleetfusion/internal/auth"
	"fleetfusion/internal/daily"
	"fleetfusion/internal/observability"
	"fleetfusion/internal/routing"
	"fleetfusion/internal/sim"
	"fleetfusion/internal/web"
)

var (
	serveAddr      string
	servePrintOnly bool
	serveSecure    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the FleetFusion web server",
	Long:  "serve starts the landing page, sign-in, dashboard, analytics, tracking and JSON APIs. The shared simulator writes to the configured sinks.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		script, err := loadScript(cfg.Simulator.Script)
		if err != nil {
			return err
		}

		ew, sw, cleanup, err := newWriters(cfg, script, servePrintOnly, servePrintOnly)
		if err != nil {
			return err
		}
		defer cleanup()

		metrics := observability.NewMetrics("fleetfusion")
		sharedOpts := simOptions(cfg, log.With("sim", "shared"))
		sharedOpts.Events, sharedOpts.States, sharedOpts.Recorder = ew, sw, metrics
		shared := sim.New(script, sharedOpts)
		defer shared.Drain()
		// Stream simulators are per viewer and stay off the sinks.
		streamOpts := simOptions(cfg, log.With("sim", "stream"))
		streamOpts.Recorder = metrics
		newStreamSim := func() *sim.Simulator { return sim.New(script, streamOpts) }

		if cfg.Server.Secret == "" {
			log.Warn("no session secret configured, sessions will not survive a restart")
		}
		sessions, err := auth.NewSessions(cfg.Server.Secret, cfg.Server.SessionTTL)
		if err != nil {
			return err
		}
		sessions.SetSecure(serveSecure)
		users, err := auth.NewStaticUsers(accounts(cfg.Server.Users))
		if err != nil {
			return err
		}

		store, closeStore, err := openDailyStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		routes := routing.NewClient(cfg.Routing.BaseURL,
			routing.WithTimeout(cfg.Routing.Timeout),
			routing.WithLogger(log),
		)

		srv, err := web.NewServer(web.Deps{
			Simulator:    shared,
			NewSimulator: newStreamSim,
			Sessions:     sessions,
			Users:        users,
			Protected:    cfg.Server.Protected,
			Routes:       routes,
			Daily:        daily.NewProvider(store, cfg.Location(), log),
			Metrics:      metrics,
			Logger:       log,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		err = srv.Start(ctx, cfg.Server.Addr)
		log.Info("fleetfusion stopped")
		return err
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&servePrintOnly, "print-only", false, "Print simulator output to STDOUT instead of the configured sinks")
	serveCmd.Flags().BoolVar(&serveSecure, "secure-cookies", false, "Mark session cookies as HTTPS only")
}
