package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"fleetfusion/internal/config"
	"fleetfusion/internal/logging"
	"fleetfusion/internal/timeline"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "fleetfusion",
	Short:        "FleetFusion logistics simulator",
	Long:         "FleetFusion replays scripted fleet incidents, serves the operator dashboard and exports analytics.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to FleetFusion configuration YAML")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(grafanaCmd)
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)
	return cfg, log, nil
}

// loadScript resolves a built-in script name or a YAML script path.
func loadScript(name string) (timeline.Script, error) {
	if s, ok := timeline.Lookup(name); ok {
		return s, nil
	}
	s, err := timeline.Load(name)
	if err != nil {
		return timeline.Script{}, fmt.Errorf("script %q is neither built in nor a readable file: %w", name, err)
	}
	return *s, nil
}
