package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.WeekHorizon != DefaultWeekHorizon || cfg.ColumnWidth != DefaultColumnWidth {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.FlushDelay() != 40*time.Millisecond {
		t.Fatalf("flush delay = %v", cfg.FlushDelay())
	}
}

func TestLoadParsesYaml(t *testing.T) {
	dir := t.TempDir()
	configYAML := strings.TrimSpace(`
listen_addr: "0.0.0.0:9000"
department: engineering
week_horizon: 8
column_width: 10
overscan: 3
flush_delay_ms: 25
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:9000" || cfg.Department != "engineering" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.WeekHorizon != 8 || cfg.ColumnWidth != 10 || cfg.Overscan != 3 {
		t.Fatalf("grid settings = %+v", cfg)
	}
	if cfg.FlushDelay() != 25*time.Millisecond {
		t.Fatalf("flush delay = %v", cfg.FlushDelay())
	}
}

func TestLoadValidation(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("column_width: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected validation error for narrow columns")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	in := Default()
	in.Department = "design"
	in.WeekHorizon = 6
	if err := Save(dir, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	out, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.Department != "design" || out.WeekHorizon != 6 {
		t.Fatalf("round trip = %+v", out)
	}
}
