package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "environment: test\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Timezone != "Asia/Kolkata" {
		t.Fatalf("timezone default = %s", cfg.Timezone)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port default = %d", cfg.Server.Port)
	}
	if cfg.Scheduler.TickInterval != 30*time.Second {
		t.Fatalf("tick_interval default = %v", cfg.Scheduler.TickInterval)
	}
	if cfg.Kafka.Topic != "xfin.collection_events" {
		t.Fatalf("kafka topic default = %s", cfg.Kafka.Topic)
	}
	if cfg.Movers.SectorIndexSection != "BANKNIFTY" || len(cfg.Movers.SectorRoster) == 0 {
		t.Fatalf("movers defaults missing: %+v", cfg.Movers)
	}
	if cfg.Location() == nil {
		t.Fatalf("location must resolve")
	}
}

func TestLoadParsesSchedulerDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment: test
scheduler:
  tick_interval: 10s
  defaults:
    banks:
      interval_minutes: 5
      start_time: "09:15"
      end_time: "15:30"
      enabled: true
    fiidii:
      start_time: "18:30"
      enabled: true
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	banks, ok := cfg.Scheduler.Defaults["banks"]
	if !ok || banks.IntervalMinutes != 5 || banks.StartTime != "09:15" {
		t.Fatalf("banks default = %+v", banks)
	}
	if _, ok := cfg.Scheduler.Defaults["fiidii"]; !ok {
		t.Fatalf("fiidii default missing")
	}
}

func TestLoadRejectsMissingEnvironment(t *testing.T) {
	if _, err := Load(writeConfig(t, "timezone: UTC\n")); err == nil {
		t.Fatalf("expected validation error without environment")
	}
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\ntimezone: Mars/Olympus\n")); err == nil {
		t.Fatalf("expected validation error for unknown timezone")
	}
}

func TestLoadRejectsKafkaWithoutBrokers(t *testing.T) {
	body := "environment: test\nkafka:\n  enabled: true\n"
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error for enabled kafka with no brokers")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("XFIN_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ADDR", "redis-host:6380")

	cfg, err := LoadWithEnv(writeConfig(t, "environment: test\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d, want env override 9090", cfg.Server.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "k1:9092" {
		t.Fatalf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Redis.Host != "redis-host" || cfg.Redis.Port != 6380 {
		t.Fatalf("redis = %s:%d", cfg.Redis.Host, cfg.Redis.Port)
	}
}
