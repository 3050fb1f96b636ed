package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config in the optional YAML config file.
type fileConfig struct {
	TelegramBotToken      string  `yaml:"telegram_bot_token"`
	DatabasePath          string  `yaml:"database_path"`
	LogLevel              string  `yaml:"log_level"`
	AdminUsers            []int64 `yaml:"admin_users"`
	ReloadIntervalSeconds int     `yaml:"reload_interval_seconds"`
	MetricsAddr           string  `yaml:"metrics_addr"`
}

// applyFile merges the YAML config file into cfg. The file path comes from
// CONFIG_FILE, defaulting to "config.yaml"; a missing file is not an error.
func applyFile(cfg *Config) error {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.TelegramBotToken != "" {
		cfg.TelegramBotToken = fc.TelegramBotToken
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if len(fc.AdminUsers) > 0 {
		cfg.AdminUsers = fc.AdminUsers
	}
	if fc.ReloadIntervalSeconds > 0 {
		cfg.ReloadInterval = time.Duration(fc.ReloadIntervalSeconds) * time.Second
	}
	if fc.MetricsAddr != "" {
		cfg.MetricsAddr = fc.MetricsAddr
	}
	return nil
}
