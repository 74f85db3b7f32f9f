package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fleetfusion/internal/console"
	"fleetfusion/internal/logging"
)

var watchScript string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the simulator in a terminal UI",
	Long:  "watch plays a timeline script in real time in the terminal. Press a to execute a pending solution, d to dismiss it, r to restart.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if watchScript != "" {
			cfg.Simulator.Script = watchScript
		}
		script, err := loadScript(cfg.Simulator.Script)
		if err != nil {
			return err
		}
		ew, sw, cleanup, err := newWriters(cfg, script, false, false)
		if err != nil {
			return err
		}
		defer cleanup()

		// The terminal belongs to the UI.
		s := newSimulator(cfg, script, ew, sw, logging.Discard())
		defer s.Drain()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return console.Run(ctx, s)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchScript, "script", "", "Built-in script name or path to a YAML script")
}
