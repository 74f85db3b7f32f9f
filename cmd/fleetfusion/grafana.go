package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fleetfusion/internal/dashboard"
)

var grafanaOut string

var grafanaCmd = &cobra.Command{
	Use:   "grafana",
	Short: "Render Grafana dashboards for the GreptimeDB tables and service metrics",
	Long:  "grafana renders dashboards using GREPTIMEDB_DATASOURCE_UID and PROMETHEUS_DATASOURCE_UID.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		g := cfg.Sinks.Greptime
		if err := dashboard.Render(grafanaOut, dashboard.Options{EventTable: g.EventTable, StateTable: g.StateTable}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "dashboards written to %s\n", grafanaOut)
		return nil
	},
}

func init() {
	grafanaCmd.Flags().StringVar(&grafanaOut, "out", "build", "Output directory")
}
