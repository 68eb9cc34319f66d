package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BindAddr != "0.0.0.0:8080" {
		t.Fatalf("bind addr = %q", cfg.Server.BindAddr)
	}
	if !cfg.Alerts.StateChange {
		t.Fatal("state-change mode must default on")
	}
	if got := len(cfg.Alerts.Concentration.Instances); got != MaxConcentrationInstances {
		t.Fatalf("concentration slots = %d, want %d", got, MaxConcentrationInstances)
	}
	for _, inst := range cfg.Alerts.Concentration.Instances {
		if inst.Enabled {
			t.Fatalf("instance enabled by default: %+v", inst)
		}
	}
	if cfg.Alerts.Report.ShowTopX != "5,10,20" {
		t.Fatalf("report showTopX = %q", cfg.Alerts.Report.ShowTopX)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STATE_CHANGE_MODE", "false")
	t.Setenv("CONCENTRATION_2_ENABLED", "true")
	t.Setenv("CONCENTRATION_2_RULES", "2:50,3:60")
	t.Setenv("CONCENTRATION_2_EXCLUDE_PUSHOVER", "true")
	t.Setenv("TRAFFIC_ENABLED", "true")
	t.Setenv("TRAFFIC_THRESHOLD_PCT", "12.5")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Alerts.StateChange {
		t.Fatal("STATE_CHANGE_MODE=false not applied")
	}
	inst := cfg.Alerts.Concentration.Instances[1]
	if !inst.Enabled || inst.Rules != "2:50,3:60" || !inst.Audience.ExcludePushover {
		t.Fatalf("instance 2 = %+v", inst)
	}
	if cfg.Alerts.Concentration.Instances[0].Enabled {
		t.Fatal("instance 1 must stay disabled")
	}
	if !cfg.Alerts.Traffic.Enabled || cfg.Alerts.Traffic.ThresholdPct != 12.5 {
		t.Fatalf("traffic = %+v", cfg.Alerts.Traffic)
	}
}

func TestLoadFileOverridesEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("logging:\n  level: warn\nserver:\n  bindAddr: 127.0.0.1:9090\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("level = %q, want file value", cfg.Logging.Level)
	}
	if cfg.Server.BindAddr != "127.0.0.1:9090" {
		t.Fatalf("bind addr = %q", cfg.Server.BindAddr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing config file must error")
	}
}
