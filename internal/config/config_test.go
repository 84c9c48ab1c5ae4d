package config

import (
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.SeedRandomSeed != 42 {
		t.Errorf("expected default seed 42, got %d", cfg.SeedRandomSeed)
	}
	if cfg.ReminderCronSpec != "@hourly" {
		t.Errorf("expected default cron spec, got %s", cfg.ReminderCronSpec)
	}
	if cfg.StageDelayScale != 100 {
		t.Errorf("expected default delay scale 100, got %d", cfg.StageDelayScale)
	}
	if cfg.SettlementModeDef != "RTGS" {
		t.Errorf("expected default settlement mode RTGS, got %s", cfg.SettlementModeDef)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SETTLEMENT_MODE", "neft")
	t.Setenv("STAGE_DELAY_SCALE_PERCENT", "-5")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.ServerPort != "9090" {
		t.Errorf("expected port override, got %s", cfg.ServerPort)
	}
	if cfg.SettlementModeDef != "NEFT" {
		t.Errorf("expected normalized NEFT, got %s", cfg.SettlementModeDef)
	}
	if cfg.StageDelayScale != 100 {
		t.Errorf("expected negative scale coerced to 100, got %d", cfg.StageDelayScale)
	}
}
