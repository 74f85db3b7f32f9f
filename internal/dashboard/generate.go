// Package dashboard renders Grafana dashboards for the simulator sinks and
// the service metrics.
package dashboard

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"fleetfusion/internal/sim"
)

//go:embed templates/*.json.tmpl
var templates embed.FS

var templateFiles = []string{
	"grafana-fleet.json.tmpl",
	"grafana-service.json.tmpl",
}

// Options name the tables and metric namespace the dashboards query.
type Options struct {
	EventTable string
	StateTable string
	Namespace  string
}

func (o Options) withDefaults() Options {
	if o.EventTable == "" {
		o.EventTable = sim.DefaultEventTable
	}
	if o.StateTable == "" {
		o.StateTable = sim.DefaultStateTable
	}
	if o.Namespace == "" {
		o.Namespace = "fleetfusion"
	}
	return o
}

// Render executes the dashboard templates and writes them to outDir.
// Datasource uids are read from GREPTIMEDB_DATASOURCE_UID and
// PROMETHEUS_DATASOURCE_UID.
func Render(outDir string, opts Options) error {
	return render(outDir, opts.withDefaults(), os.LookupEnv)
}

func render(outDir string, opts Options, lookup func(string) (string, bool)) error {
	funcMap := template.FuncMap{
		"env": func(key string) (string, error) {
			v, _ := lookup(key)
			if v == "" {
				return "", fmt.Errorf("environment variable %s not set", key)
			}
			return v, nil
		},
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, tplName := range templateFiles {
		t, err := template.New(tplName).Funcs(funcMap).ParseFS(templates, "templates/"+tplName)
		if err != nil {
			return err
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(tplName, ".tmpl"))
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		if err := t.Execute(f, opts); err != nil {
			f.Close()
			return fmt.Errorf("render %s: %w", tplName, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
