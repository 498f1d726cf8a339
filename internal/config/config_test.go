package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
env: "dev"
storage_path: "postgres://localhost/test"
backend:
  url: "http://backend"
scheduler:
  step_advance_delay: 1s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("BACKEND_LEGACY_CONFLICT_MESSAGES", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Env != "dev" || cfg.Backend.URL != "http://backend" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("redis addr = %q", cfg.RedisAddr)
	}
	if cfg.Backend.LegacyConflictMessages {
		t.Error("env override of legacy_conflict_messages ignored")
	}
	if cfg.Scheduler.StepAdvanceDelay != time.Second {
		t.Errorf("step delay = %v", cfg.Scheduler.StepAdvanceDelay)
	}
	if cfg.Scheduler.SearchDebounce != 300*time.Millisecond || cfg.HTTPServer.Address != "localhost:8080" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config")
	}
}
