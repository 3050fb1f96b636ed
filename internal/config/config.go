// Package config handles application configuration from environment
// variables, with an optional YAML file underneath.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultReloadInterval is the periodic rule reload interval applied when no
// value is configured.
const DefaultReloadInterval = 300 * time.Second

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string
	AdminUsers       []int64
	ReloadInterval   time.Duration
	MetricsAddr      string
}

// Load reads configuration from the optional YAML file (CONFIG_FILE,
// default "config.yaml") and then from environment variables. Environment
// values override file values.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:   "./data/bot.db",
		LogLevel:       "info",
		ReloadInterval: DefaultReloadInterval,
	}

	if err := applyFile(cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.TelegramBotToken = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}

	if raw := os.Getenv("ADMIN_USERS"); raw != "" {
		users, err := parseUserList(raw)
		if err != nil {
			return err
		}
		cfg.AdminUsers = users
	}

	if raw := os.Getenv("RELOAD_INTERVAL_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 {
			return fmt.Errorf("invalid RELOAD_INTERVAL_SECONDS %q", raw)
		}
		cfg.ReloadInterval = time.Duration(secs) * time.Second
	}

	return nil
}

func parseUserList(raw string) ([]int64, error) {
	var users []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q in ADMIN_USERS: %w", s, err)
		}
		users = append(users, uid)
	}
	return users, nil
}

// IsAdmin checks whether a user ID may run rule mutation commands.
// Returns true if the admin list is empty (all users permitted).
func (c *Config) IsAdmin(userID int64) bool {
	if len(c.AdminUsers) == 0 {
		return true
	}
	for _, id := range c.AdminUsers {
		if id == userID {
			return true
		}
	}
	return false
}
