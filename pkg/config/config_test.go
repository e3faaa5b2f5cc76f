package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Pipeline.MinDaysToday != 14 {
		t.Fatalf("expected min_days_today 14, got %d", cfg.Pipeline.MinDaysToday)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Fatalf("expected 4 workers, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Confidence.MissingThreshold != 0.3 {
		t.Fatalf("expected missing threshold 0.3, got %f", cfg.Confidence.MissingThreshold)
	}
	if cfg.Scheduler.Spec != "30 3 * * *" {
		t.Fatalf("unexpected cron spec %q", cfg.Scheduler.Spec)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9000
pipeline:
  min_days_today: 21
  workers: 8
scheduler:
  location: UTC
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Pipeline.MinDaysToday != 21 {
		t.Fatalf("expected min_days_today 21, got %d", cfg.Pipeline.MinDaysToday)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "UTC" {
		t.Fatalf("unexpected location %v", loc)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
environment: test
pipeline:
  workers: 0
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for zero workers")
	}

	path = writeConfig(t, `
environment: test
scheduler:
  location: Not/AZone
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for bad location")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	t.Setenv("PORT", "7070")
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")
	t.Setenv("REDIS_HOST", "redis.internal")

	cfg, err := LoadWithEnv(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected env port 7070, got %d", cfg.Server.Port)
	}
	if cfg.ClickHouse.Host != "ch.internal" {
		t.Fatalf("unexpected clickhouse host %q", cfg.ClickHouse.Host)
	}
	if cfg.Redis.Host != "redis.internal" {
		t.Fatalf("unexpected redis host %q", cfg.Redis.Host)
	}
}

func TestLocationSurfacesError(t *testing.T) {
	path := writeConfig(t, "environment: test\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc.String() != "Asia/Tokyo" {
		t.Fatalf("unexpected default location %v", loc)
	}

	cfg.Scheduler.Location = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Fatal("expected error for bad location")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
