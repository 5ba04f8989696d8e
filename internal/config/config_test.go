package config

import (
	"testing"
	"time"
	_ "time/tzdata"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := FromEnv(env(nil))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.DatabaseURL != defaultDatabaseURL || cfg.HTTPAddr != defaultHTTPAddr {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.MaintenanceSchedule != defaultMaintenanceSchedule {
		t.Errorf("schedule = %q", cfg.MaintenanceSchedule)
	}
	if cfg.DefaultTimezone != time.Local {
		t.Errorf("timezone = %v", cfg.DefaultTimezone)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("origins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.BotEnabled() {
		t.Error("bot should be disabled without a token")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Parallel()
	cfg, err := FromEnv(env(map[string]string{
		"DATABASE_URL":         " /data/tasks.db ",
		"TELEGRAM_TOKEN":       "123:abc",
		"MAINTENANCE_SCHEDULE": "@hourly",
		"DEFAULT_TIMEZONE":     "Europe/Berlin",
		"CORS_ALLOWED_ORIGINS": "https://a.example, ,https://b.example",
	}))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.DatabaseURL != "/data/tasks.db" || !cfg.BotEnabled() {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.DefaultTimezone.String() != "Europe/Berlin" {
		t.Errorf("timezone = %v", cfg.DefaultTimezone)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Parallel()
	if _, err := FromEnv(env(map[string]string{"MAINTENANCE_SCHEDULE": "0 5 * *"})); err == nil {
		t.Error("expected error for a five-field spec")
	}
	if _, err := FromEnv(env(map[string]string{"DEFAULT_TIMEZONE": "Mars/Olympus"})); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
