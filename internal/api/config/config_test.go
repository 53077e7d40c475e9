package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Fatalf("port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Scheduler.Interval != 5*time.Minute {
		t.Fatalf("interval = %s, want 5m", cfg.Scheduler.Interval)
	}
	if cfg.Classifier.PriorityThreshold != 4 || len(cfg.Classifier.Keywords) != 4 {
		t.Fatalf("classifier = %+v", cfg.Classifier)
	}
	if len(cfg.Forwarder.Sinks) != 1 || cfg.Forwarder.Sinks[0] != "log" {
		t.Fatalf("sinks = %v", cfg.Forwarder.Sinks)
	}
	if cfg.Forwarder.DeliveryTimeout != 10*time.Second {
		t.Fatalf("delivery timeout = %s", cfg.Forwarder.DeliveryTimeout)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: 9100
scheduler:
  interval: 30s
classifier:
  keywords: [outage]
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FORWARDER_FORWARDER_MAX_IN_FLIGHT", "3")
	t.Setenv("FORWARDER_SCHEDULER_RUN_ON_START", "true")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 || cfg.Scheduler.Interval != 30*time.Second {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	if len(cfg.Classifier.Keywords) != 1 || cfg.Classifier.Keywords[0] != "outage" {
		t.Fatalf("keywords = %v", cfg.Classifier.Keywords)
	}
	if cfg.Forwarder.MaxInFlight != 3 || !cfg.Scheduler.RunOnStart {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Forwarder, cfg.Scheduler)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("forwarder:\n  simulated_failure_rate: 1.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("Load() expected error for failure rate > 1")
	}
}

func TestLoadConfigSetsGlobal(t *testing.T) {
	Cfg = nil
	if err := LoadConfig(t.TempDir()); err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if Cfg == nil {
		t.Fatal("Cfg not set")
	}
}
