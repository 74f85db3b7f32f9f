package main

import (
	"fmt"
	"io"
	"log/slog"

	"fleetfusion/internal/config"
	"fleetfusion/internal/sim"
	"fleetfusion/internal/timeline"
)

// newWriters sets up the simulator sinks from the configuration. printOnly
// skips the remote sinks; echo adds a stdout writer when no remote sink is
// active. It returns nil writers when nothing is configured, and a cleanup
// function closing whatever was opened.
func newWriters(cfg *config.Config, script timeline.Script, printOnly, echo bool) (sim.EventWriter, sim.StateWriter, func(), error) {
	var (
		ews     []sim.EventWriter
		sws     []sim.StateWriter
		closers []io.Closer
	)
	cleanup := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				slog.Warn("closing sink", "err", err)
			}
		}
	}
	fail := func(err error) (sim.EventWriter, sim.StateWriter, func(), error) {
		cleanup()
		return nil, nil, nil, err
	}

	if !printOnly {
		g := cfg.Sinks.Greptime
		if g.Endpoint != "" {
			w, err := sim.NewGreptimeDBWriter(g.Endpoint, g.Database, g.EventTable, g.StateTable)
			if err != nil {
				return fail(err)
			}
			ews, sws = append(ews, w), append(sws, w)
		}
		k := cfg.Sinks.Kafka
		if len(k.Brokers) > 0 {
			w, err := sim.NewKafkaWriter(k.Brokers, k.EventTopic, k.StateTopic)
			if err != nil {
				return fail(err)
			}
			ews, sws = append(ews, w), append(sws, w)
			closers = append(closers, w)
		}
	}
	if (printOnly || len(ews) == 0) && echo {
		w := sim.NewStdoutWriter(script.Name, script.Fleet)
		ews, sws = append(ews, w), append(sws, w)
	}
	if path := cfg.Sinks.LogFile; path != "" {
		fw, err := sim.NewFileWriter(path, path+".state")
		if err != nil {
			return fail(fmt.Errorf("open log file: %w", err))
		}
		ews, sws = append(ews, fw), append(sws, fw)
		closers = append(closers, fw)
	}

	switch len(ews) {
	case 0:
		return nil, nil, cleanup, nil
	case 1:
		return ews[0], sws[0], cleanup, nil
	}
	mw := sim.NewMultiWriter(ews, sws)
	return mw, mw, cleanup, nil
}
