package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"fleetfusion/internal/analytics"
)

var (
	exportFormat string
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the analytics snapshot to a date-stamped file",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := analytics.ParseFormat(exportFormat)
		if err != nil {
			return err
		}
		path, err := exportSnapshot(exportDir, format, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func exportSnapshot(dir string, format analytics.Format, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, analytics.Filename(format, now))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := analytics.Write(f, format, analytics.Default(now)); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Export format: json or csv")
	exportCmd.Flags().StringVar(&exportDir, "out", ".", "Directory to write the export to")
}
