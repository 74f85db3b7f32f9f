package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleetfusion/internal/sim"
	"fleetfusion/internal/timeline"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an agent event log",
	Long:  "replay feeds agent events from a JSONL log file back into the configured sinks or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		// Replayed events are not written back to the log they came from.
		cfg.Sinks.LogFile = ""
		ew, _, cleanup, err := newWriters(cfg, timeline.Script{Name: "replay"}, replayPrintOnly, true)
		if err != nil {
			return err
		}
		defer cleanup()
		return sim.ReplayLogFile(replayInput, ew, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to agent event log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print events to STDOUT instead of the configured sinks")
	replayCmd.MarkFlagRequired("input")
}
