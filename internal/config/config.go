// YAML config loader with CUE validation integration
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // daily.timezone must resolve on hosts without zoneinfo

	"gopkg.in/yaml.v3"
)

// User is an account allowed to sign in. Either Password or PasswordHash
// (bcrypt) must be set.
type User struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	Password     string `yaml:"password,omitempty"`
	PasswordHash string `yaml:"password_hash,omitempty"`
}

// Server configures the HTTP surface and its session gate.
type Server struct {
	Addr       string        `yaml:"addr"`
	Secret     string        `yaml:"secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	Protected  []string      `yaml:"protected"`
	Users      []User        `yaml:"users"`
}

// Simulator selects the timeline script and the arbitrage settle behavior.
// Script is either a built-in name or a path to a YAML script.
type Simulator struct {
	Script          string        `yaml:"script"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	NominalVelocity float64       `yaml:"nominal_velocity"`
}

// Routing points at an OSRM-compatible routing service.
type Routing struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Daily configures where the per-day landing metrics are kept.
type Daily struct {
	Store    string `yaml:"store"`
	Path     string `yaml:"path"`
	Timezone string `yaml:"timezone"`
}

// Greptime holds the GreptimeDB sink settings. An empty endpoint disables it.
type Greptime struct {
	Endpoint   string `yaml:"endpoint"`
	Database   string `yaml:"database"`
	EventTable string `yaml:"event_table"`
	StateTable string `yaml:"state_table"`
}

// Kafka holds the Kafka sink settings. No brokers disables it.
type Kafka struct {
	Brokers    []string `yaml:"brokers"`
	EventTopic string   `yaml:"event_topic"`
	StateTopic string   `yaml:"state_topic"`
}

// Sinks lists where simulator events and fleet states are written.
type Sinks struct {
	LogFile  string   `yaml:"log_file"`
	Greptime Greptime `yaml:"greptime"`
	Kafka    Kafka    `yaml:"kafka"`
}

// Config is the root FleetFusion configuration.
type Config struct {
	LogLevel  string    `yaml:"log_level"`
	Server    Server    `yaml:"server"`
	Simulator Simulator `yaml:"simulator"`
	Routing   Routing   `yaml:"routing"`
	Daily     Daily     `yaml:"daily"`
	Sinks     Sinks     `yaml:"sinks"`
}

// Default returns the configuration used when no file is given. It ships the
// demo account so the dashboard is reachable out of the box.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: Server{
			Addr:       ":8080",
			SessionTTL: 24 * time.Hour,
			Protected:  []string{"/dashboard", "/analytics"},
			Users: []User{{
				Email:    "demo@fleetfusion.com",
				Name:     "Demo Operator",
				Password: "demo123",
			}},
		},
		Simulator: Simulator{
			Script:          "pune-corridor",
			SettleDelay:     2 * time.Second,
			NominalVelocity: 65,
		},
		Routing: Routing{
			BaseURL: "https://router.project-osrm.org",
			Timeout: 10 * time.Second,
		},
		Daily: Daily{Store: "memory", Timezone: "Local"},
		Sinks: Sinks{
			Greptime: Greptime{Database: "public", EventTable: "agent_events", StateTable: "fleet_state"},
			Kafka:    Kafka{EventTopic: "fleetfusion.events"},
		},
	}
}

// Load reads path, validates it against the embedded CUE schema and merges
// it over Default. An empty path yields the defaults. Environment overrides
// are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := ValidateWithCue(path, data); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		log.Printf("[Config] loaded %s", path)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides deploy-time values from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("FLEETFUSION_ADDR"); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup("FLEETFUSION_SECRET"); ok && v != "" {
		c.Server.Secret = v
	}
	if v, ok := lookup("FLEETFUSION_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup("FLEETFUSION_SCRIPT"); ok && v != "" {
		c.Simulator.Script = v
	}
	if v, ok := lookup("SETTLE_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SETTLE_DELAY: %w", err)
		}
		c.Simulator.SettleDelay = d
	}
	if v, ok := lookup("OSRM_BASE_URL"); ok && v != "" {
		c.Routing.BaseURL = v
	}
	if v, ok := lookup("GREPTIMEDB_ENDPOINT"); ok {
		c.Sinks.Greptime.Endpoint = v
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.Sinks.Kafka.Brokers = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks cross-field rules the schema cannot express.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.SessionTTL <= 0 {
		errs = append(errs, errors.New("server.session_ttl must be positive"))
	}
	if c.Simulator.SettleDelay <= 0 {
		errs = append(errs, errors.New("simulator.settle_delay must be positive"))
	}
	if c.Daily.Store == "sqlite" && c.Daily.Path == "" {
		errs = append(errs, errors.New("daily.path is required for the sqlite store"))
	}
	if c.Daily.Timezone != "" {
		if _, err := time.LoadLocation(c.Daily.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("daily.timezone: %w", err))
		}
	}
	seen := map[string]bool{}
	for _, u := range c.Server.Users {
		if u.Password == "" && u.PasswordHash == "" {
			errs = append(errs, fmt.Errorf("user %s has no password", u.Email))
		}
		key := strings.ToLower(u.Email)
		if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate user %s", u.Email))
		}
		seen[key] = true
	}
	return errors.Join(errs...)
}

// Location resolves the daily metrics timezone.
func (c *Config) Location() *time.Location {
	if c.Daily.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Daily.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
