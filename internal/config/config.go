// Package config loads the yaml configuration.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Heartbeat struct {
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"heartbeat"`

	Notify struct {
		MessagesPerSecond float64 `yaml:"messages_per_second"`
	} `yaml:"notify"`

	Session struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"session"`

	Sheets struct {
		Enabled         bool   `yaml:"enabled"`
		CredentialsFile string `yaml:"credentials_file"`
		SpreadsheetID   string `yaml:"spreadsheet_id"`
		SheetName       string `yaml:"sheet_name"`
	} `yaml:"sheets"`

	Admins []int64 `yaml:"admins"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/zapisnik.db"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	// A single admin can be supplied via environment instead of the list.
	if len(cfg.Admins) == 0 {
		if raw := os.Getenv("ADMIN_ID"); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				cfg.Admins = append(cfg.Admins, id)
			}
		}
	}

	return &cfg, nil
}

func (c *Config) HeartbeatInterval() time.Duration {
	if c.Heartbeat.IntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Heartbeat.IntervalMinutes) * time.Minute
}

func (c *Config) SessionTTL() time.Duration {
	if c.Session.TTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c *Config) NotifyRate() float64 {
	if c.Notify.MessagesPerSecond <= 0 {
		return 10
	}
	return c.Notify.MessagesPerSecond
}
