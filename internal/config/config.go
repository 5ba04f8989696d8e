package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL         string
	HTTPAddr            string
	TelegramToken       string
	MaintenanceSchedule string
	DailySummaryTime    string
	DefaultTimezone     *time.Location
	CORSAllowedOrigins  []string
}

const (
	defaultDatabaseURL         = "daily_tasks.db"
	defaultHTTPAddr            = ":8080"
	defaultMaintenanceSchedule = "0 5 * * * *"
)

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[warn] read .env: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := Config{
		DatabaseURL:         get("DATABASE_URL"),
		HTTPAddr:            get("HTTP_ADDR"),
		TelegramToken:       get("TELEGRAM_TOKEN"),
		MaintenanceSchedule: get("MAINTENANCE_SCHEDULE"),
		DailySummaryTime:    get("DAILY_SUMMARY_TIME"),
		CORSAllowedOrigins:  splitList(get("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.MaintenanceSchedule == "" {
		cfg.MaintenanceSchedule = defaultMaintenanceSchedule
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(cfg.MaintenanceSchedule); err != nil {
		return cfg, fmt.Errorf("MAINTENANCE_SCHEDULE: %w", err)
	}

	cfg.DefaultTimezone = time.Local
	if name := get("DEFAULT_TIMEZONE"); name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return cfg, fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
		}
		cfg.DefaultTimezone = loc
	}

	return cfg, nil
}

// BotEnabled reports whether a Telegram token was configured.
func (c Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
