package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"detox/internal/platform/config"
)

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	dir := filepath.Join(home, ".detox")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	cfg, err := config.New(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBDriver != config.DriverSQLite {
		t.Fatalf("expected sqlite driver, got %s", cfg.DBDriver)
	}
	if cfg.DBDSN != filepath.Join(home, ".detox", "detox.db") {
		t.Fatalf("unexpected db path %s", cfg.DBDSN)
	}
	if cfg.ScanTTL != 15*time.Minute || cfg.Location != time.UTC {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if _, err := config.New(""); err == nil {
		t.Fatalf("empty home should fail")
	}
}

func TestNewReadsYAMLFile(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	writeConfig(t, home, `
database:
  driver: mysql
  dsn: detox:secret@tcp(localhost:3306)/detox?parseTime=true
timezone: Asia/Kolkata
redis:
  addr: localhost:6379
http:
  addr: 127.0.0.1:9090
log:
  level: debug
  json: true
recognizers:
  manifest: ocr/recognizers.yaml
scans:
  ttl: 5m
`)
	cfg, err := config.New(home)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBDriver != config.DriverMySQL || cfg.RedisAddr != "localhost:6379" || cfg.HTTPAddr != "127.0.0.1:9090" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Location.String() != "Asia/Kolkata" || !cfg.LogJSON || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.RecognizerManifest != filepath.Join(home, "ocr", "recognizers.yaml") {
		t.Fatalf("relative manifest should resolve against home, got %s", cfg.RecognizerManifest)
	}
	if cfg.ScanTTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %s", cfg.ScanTTL)
	}
}

func TestNewRejectsUnknownFieldsAndDrivers(t *testing.T) {
	t.Parallel()
	home := t.TempDir()
	writeConfig(t, home, "colour: blue\n")
	if _, err := config.New(home); err == nil {
		t.Fatalf("unknown field should fail")
	}

	other := t.TempDir()
	writeConfig(t, other, "database:\n  driver: postgres\n")
	if _, err := config.New(other); err == nil {
		t.Fatalf("unsupported driver should fail")
	}
}
