package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fleetfusion.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestLoadConfig_Valid(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
server:
  addr: ":9090"
  session_ttl: 2h
  protected: ["/dashboard"]
  users:
    - email: ops@example.com
      password: hunter22
simulator:
  script: testdata/pune.yaml
  settle_delay: 500ms
daily:
  store: sqlite
  path: daily.db
sinks:
  kafka:
    brokers: ["localhost:9092"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.SessionTTL != 2*time.Hour {
		t.Errorf("unexpected server: %+v", cfg.Server)
	}
	if len(cfg.Server.Users) != 1 || cfg.Server.Users[0].Email != "ops@example.com" {
		t.Errorf("file users should replace the demo user: %+v", cfg.Server.Users)
	}
	if cfg.Simulator.SettleDelay != 500*time.Millisecond || cfg.Simulator.NominalVelocity != 65 {
		t.Errorf("unexpected simulator: %+v", cfg.Simulator)
	}
	if cfg.Routing.BaseURL == "" {
		t.Errorf("routing default lost")
	}
	if cfg.Sinks.Kafka.EventTopic != "fleetfusion.events" || len(cfg.Sinks.Kafka.Brokers) != 1 {
		t.Errorf("unexpected kafka: %+v", cfg.Sinks.Kafka)
	}
}

func TestLoadConfig_EmptyPathUsesDefaults(t *testing.T) {
	t.Setenv("FLEETFUSION_SECRET", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulator.Script != "pune-corridor" || cfg.Server.Users[0].Email != "demo@fleetfusion.com" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfig_SampleFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "fleetfusion.yaml"))
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if cfg.Daily.Store != "sqlite" || cfg.Daily.Timezone != "Asia/Kolkata" {
		t.Errorf("unexpected daily: %+v", cfg.Daily)
	}
	if loc := cfg.Location(); loc.String() != "Asia/Kolkata" {
		t.Errorf("sample timezone resolved to %s", loc)
	}
}

func TestLoadConfig_SchemaRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field": "surprise: true\n",
		"bad level":     "log_level: loud\n",
		"bad duration":  "simulator:\n  settle_delay: soon\n",
		"bad store":     "daily:\n  store: postgres\n",
		"relative gate": "server:\n  protected: [dashboard]\n",
		"bad velocity":  "simulator:\n  nominal_velocity: -3\n",
		"bad routing":   "routing:\n  base_url: ftp://x\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestValidateCrossField(t *testing.T) {
	cfg := Default()
	cfg.Daily.Store = "sqlite"
	cfg.Server.Users = append(cfg.Server.Users, User{Email: "DEMO@fleetfusion.com", Password: "x"}, User{Email: "nopass@example.com"})
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"daily.path", "duplicate user", "no password"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FLEETFUSION_ADDR":    ":7000",
		"FLEETFUSION_SECRET":  "s3cret",
		"SETTLE_DELAY":        "3s",
		"GREPTIMEDB_ENDPOINT": "greptime:4001",
		"KAFKA_BROKERS":       "a:9092, b:9092,",
	}
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Server.Addr != ":7000" || cfg.Server.Secret != "s3cret" || cfg.Simulator.SettleDelay != 3*time.Second {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Sinks.Greptime.Endpoint != "greptime:4001" || len(cfg.Sinks.Kafka.Brokers) != 2 || cfg.Sinks.Kafka.Brokers[1] != "b:9092" {
		t.Errorf("sink overrides not applied: %+v", cfg.Sinks)
	}

	if err := Default().ApplyEnv(func(k string) (string, bool) {
		if k == "SETTLE_DELAY" {
			return "later", true
		}
		return noEnv(k)
	}); err == nil {
		t.Fatalf("expected error for bad SETTLE_DELAY")
	}
}

func TestLocation(t *testing.T) {
	cfg := Default()
	cfg.Daily.Timezone = "Asia/Kolkata"
	if cfg.Location().String() != "Asia/Kolkata" {
		t.Fatalf("location = %s", cfg.Location())
	}
}
