package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shiftcal.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Timezone != "America/Los_Angeles" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shiftcal.yaml")

	cfg := DefaultConfig()
	cfg.Timezone = "Europe/Berlin"
	cfg.TimeFormat = "12h"
	cfg.ICS = []ICSConfig{{ID: "roster", Name: "Team Roster", URL: "https://example.test/cal.ics"}}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Timezone != "Europe/Berlin" || loaded.TimeFormat != "12h" {
		t.Errorf("loaded = %+v", loaded)
	}
	if len(loaded.ICS) != 1 || loaded.ICS[0].ID != "roster" {
		t.Errorf("ics sources = %+v", loaded.ICS)
	}
}

func TestNormalize(t *testing.T) {
	cfg := &Config{
		TimeFormat:   "13h",
		PaperSize:    "tabloid",
		Orientation:  "sideways",
		DayStartHour: -2,
		DayEndHour:   30,
	}
	cfg.Normalize()

	if cfg.TimeFormat != "24h" {
		t.Errorf("time format = %q", cfg.TimeFormat)
	}
	if cfg.PaperSize != "letter" || cfg.Orientation != "portrait" {
		t.Errorf("paper = %q/%q", cfg.PaperSize, cfg.Orientation)
	}
	if cfg.DayStartHour != 6 || cfg.DayEndHour != 23 {
		t.Errorf("hours = %d..%d, want 6..23", cfg.DayStartHour, cfg.DayEndHour)
	}
	if cfg.Listen == "" || cfg.RefreshCron == "" || cfg.DBPath == "" {
		t.Error("defaults not filled")
	}
	if cfg.ICS == nil {
		t.Error("nil ICS slice not normalized")
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if loc := cfg.Location(); loc == nil {
		t.Fatal("nil location")
	}

	cfg.Timezone = "UTC"
	if loc := cfg.Location(); loc.String() != "UTC" {
		t.Errorf("location = %v", loc)
	}
}
