package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fleetfusion/internal/fleet"
	"fleetfusion/internal/logging"
	"fleetfusion/internal/sim"
	"fleetfusion/internal/timeline"
)

var (
	playScript    string
	playResolve   string
	playPrintOnly bool
)

const (
	resolveNone    = "none"
	resolveAccept  = "accept"
	resolveDismiss = "dismiss"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a timeline script to completion without waiting",
	Long:  "play runs a script on a simulated clock, optionally resolves the final arbitrage opportunity, and prints the fleet summary.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if playScript != "" {
			cfg.Simulator.Script = playScript
		}
		script, err := loadScript(cfg.Simulator.Script)
		if err != nil {
			return err
		}
		ew, sw, cleanup, err := newWriters(cfg, script, playPrintOnly, true)
		if err != nil {
			return err
		}
		defer cleanup()

		opts := simOptions(cfg, logging.Discard())
		opts.Events, opts.States = ew, sw
		snap, err := play(cmd.Context(), script, opts, playResolve)
		if err != nil {
			return err
		}
		printSummary(cmd.OutOrStdout(), snap)
		return nil
	},
}

// play runs script on a manual clock and applies resolve to the opportunity
// pending at the end of the script.
func play(ctx context.Context, script timeline.Script, opts sim.Options, resolve string) (sim.Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	clock := timeline.NewManualClock(time.Now())
	opts.Clock = clock
	s := sim.New(script, opts)
	s.Activate(ctx)
	defer s.Drain()
	defer s.Deactivate()

	clock.Advance(script.Duration())
	switch resolve {
	case resolveNone, "":
	case resolveAccept:
		if s.Accept() {
			settle := opts.SettleDelay
			if settle <= 0 {
				settle = sim.DefaultSettleDelay
			}
			clock.Advance(settle)
		}
	case resolveDismiss:
		s.Dismiss()
	default:
		return sim.Snapshot{}, fmt.Errorf("unknown resolution %q (want none, accept or dismiss)", resolve)
	}
	return s.Snapshot(), nil
}

func printSummary(w io.Writer, snap sim.Snapshot) {
	fmt.Fprintf(w, "\nScript %s: %d events, %d actions taken\n", snap.Script, snap.Stats.TotalEvents, snap.Stats.ActionsTaken)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Truck\tStatus\tVelocity\tClass\tETA")
	for _, t := range snap.Trucks {
		fmt.Fprintf(tw, "%s\t%s\t%.0f km/h\t%s\t%.1f h\n", t.ID, t.Status, t.Velocity, fleet.ClassifyVelocity(t.Velocity), fleet.ETAHours(t.Velocity))
	}
	tw.Flush()
	if a := snap.Arbitrage; a != nil {
		fmt.Fprintf(w, "Pending: %s for %s, net savings $%.0f\n", a.SolutionType, a.TruckID, a.NetSavings)
	}
}

func init() {
	playCmd.Flags().StringVar(&playScript, "script", "", "Built-in script name or path to a YAML script")
	playCmd.Flags().StringVar(&playResolve, "resolve", resolveAccept, "What to do with the final opportunity: none, accept or dismiss")
	playCmd.Flags().BoolVar(&playPrintOnly, "print-only", false, "Print events to STDOUT instead of the configured sinks")
}
