package main

import (
	"fmt"
	"log/slog"

	"fleetfusion/internal/auth"
	"fleetfusion/internal/config"
	"fleetfusion/internal/daily"
	"fleetfusion/internal/sim"
	"fleetfusion/internal/timeline"
)

// simOptions builds simulator options from the configuration.
func simOptions(cfg *config.Config, log *slog.Logger) sim.Options {
	return sim.Options{
		SettleDelay:     cfg.Simulator.SettleDelay,
		NominalVelocity: cfg.Simulator.NominalVelocity,
		Logger:          log,
	}
}

func newSimulator(cfg *config.Config, script timeline.Script, ew sim.EventWriter, sw sim.StateWriter, log *slog.Logger) *sim.Simulator {
	opts := simOptions(cfg, log)
	opts.Events = ew
	opts.States = sw
	return sim.New(script, opts)
}

func accounts(users []config.User) []auth.Account {
	out := make([]auth.Account, 0, len(users))
	for _, u := range users {
		out = append(out, auth.Account{
			Email:        u.Email,
			Name:         u.Name,
			Password:     u.Password,
			PasswordHash: u.PasswordHash,
		})
	}
	return out
}

// openDailyStore returns the configured store and a close function.
func openDailyStore(cfg *config.Config) (daily.Store, func() error, error) {
	switch cfg.Daily.Store {
	case "", "memory":
		return daily.NewMemoryStore(), func() error { return nil }, nil
	case "sqlite":
		st, err := daily.OpenSQLite(cfg.Daily.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown daily store %q", cfg.Daily.Store)
	}
}
