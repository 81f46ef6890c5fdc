package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"CupSentinel/internal/detector"
	"CupSentinel/internal/logging"
	"CupSentinel/internal/plot"
)

// Config holds all application configuration.
type Config struct {
	Detector detector.Config `yaml:"detector"`
	Render   plot.Config     `yaml:"render"`
	Quote    struct {
		Provider      string `yaml:"provider"` // yahoo | rest | mock
		BaseURL       string `yaml:"base_url"`
		APIKey        string `yaml:"api_key"`
		RatePerMinute int    `yaml:"rate_per_minute"`
		TimeoutSec    int    `yaml:"timeout_sec"`
		RetryAttempts int    `yaml:"retry_attempts"`
	} `yaml:"quote"`
	Collector struct {
		Workers int `yaml:"workers"`
	} `yaml:"collector"`
	Schedule struct {
		TickCron string `yaml:"tick_cron"`
		Timezone string `yaml:"timezone"`
		AllHours bool   `yaml:"all_hours"` // tick outside US trading hours too
	} `yaml:"schedule"`
	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout int    `yaml:"shutdown_timeout_sec"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Seed struct {
		Kind string `yaml:"kind"` // sqlite | csv | none
		Path string `yaml:"path"`
	} `yaml:"seed"`
	Log   logging.Config `yaml:"log"`
	Proxy string         `yaml:"proxy"`
}

// Load reads .env (if present) and the YAML file at path, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{
		Detector: detector.DefaultConfig(),
		Render:   plot.DefaultConfig(),
		Log:      logging.DefaultConfig(),
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("QUOTE_PROVIDER"); v != "" {
		c.Quote.Provider = v
	}
	if v := os.Getenv("QUOTE_BASE_URL"); v != "" {
		c.Quote.BaseURL = v
	}
	if v := os.Getenv("QUOTE_API_KEY"); v != "" {
		c.Quote.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SENTINEL_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SEED_PATH"); v != "" {
		c.Seed.Path = v
		if c.Seed.Kind == "" || c.Seed.Kind == "none" {
			c.Seed.Kind = SeedKindFromPath(v)
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CRON_TICK"); v != "" {
		c.Schedule.TickCron = v
	}
}

func (c *Config) applyDefaults() {
	if c.Quote.Provider == "" {
		c.Quote.Provider = "yahoo"
	}
	if c.Quote.RatePerMinute == 0 {
		c.Quote.RatePerMinute = 60
	}
	if c.Quote.TimeoutSec == 0 {
		c.Quote.TimeoutSec = 15
	}
	if c.Quote.RetryAttempts == 0 {
		c.Quote.RetryAttempts = 3
	}
	if c.Collector.Workers == 0 {
		c.Collector.Workers = 4
	}
	if c.Schedule.TickCron == "" {
		c.Schedule.TickCron = "0 */5 9-16 * * 1-5"
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "America/New_York"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Seed.Kind == "" {
		c.Seed.Kind = "none"
	}
}

// SeedKindFromPath guesses the seed kind from a file extension.
func SeedKindFromPath(p string) string {
	if strings.HasSuffix(strings.ToLower(p), ".csv") {
		return "csv"
	}
	return "sqlite"
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.Detector.Validate(); err != nil {
		return fmt.Errorf("detector: %w", err)
	}
	switch c.Quote.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.Quote.BaseURL == "" {
			return fmt.Errorf("quote.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("quote.provider must be yahoo, rest or mock, got %q", c.Quote.Provider)
	}
	if c.Collector.Workers < 1 {
		return fmt.Errorf("collector.workers must be positive")
	}
	if c.Schedule.TickCron == "" {
		return fmt.Errorf("schedule.tick_cron is required")
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch c.Seed.Kind {
	case "none":
	case "sqlite", "csv":
		if c.Seed.Path == "" {
			return fmt.Errorf("seed.path is required for seed kind %q", c.Seed.Kind)
		}
	default:
		return fmt.Errorf("seed.kind must be sqlite, csv or none, got %q", c.Seed.Kind)
	}
	return nil
}

// TelegramEnabled reports whether alerts and chat commands are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Location returns the scheduler time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
