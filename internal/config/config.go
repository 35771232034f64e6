package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the agent configuration, read from YAML with environment overrides
type Config struct {
	Env         string        `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string        `yaml:"storage_path" env:"STORAGE_PATH" env-default:"./shift-tracker.db"`
	Log         LogConfig     `yaml:"log"`
	Backend     BackendConfig `yaml:"backend"`
	Device      DeviceConfig  `yaml:"device"`
	Server      ServerConfig  `yaml:"server"`
	Sync        SyncConfig    `yaml:"sync"`
	Cache       CacheConfig   `yaml:"cache"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

type BackendConfig struct {
	BaseURL     string `yaml:"base_url" env:"BACKEND_BASE_URL" env-default:"https://staff.janis.in/api"`
	AccessToken string `yaml:"access_token" env:"BACKEND_ACCESS_TOKEN"`
	Client      string `yaml:"client" env:"BACKEND_CLIENT"`
	Timeout     int    `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"30"` // seconds
}

type DeviceConfig struct {
	ID string `yaml:"id" env:"DEVICE_ID"`
}

type ServerConfig struct {
	Enabled bool `yaml:"enabled" env:"SERVER_ENABLED" env-default:"false"`
	Port    int  `yaml:"port" env:"SERVER_PORT" env-default:"8787"`
}

type SyncConfig struct {
	Interval time.Duration `yaml:"interval" env:"SYNC_INTERVAL" env-default:"1m"`
}

type CacheConfig struct {
	WorkLogTypesTTL  time.Duration `yaml:"worklog_types_ttl" env:"CACHE_WORKLOG_TYPES_TTL" env-default:"4h"`
	AuthorizationTTL time.Duration `yaml:"authorization_ttl" env:"CACHE_AUTHORIZATION_TTL" env-default:"24h"`
}

// LoadConfig reads the YAML file at path when it exists and falls back to the
// environment otherwise
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			return &cfg, cfg.validate()
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}
	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}
	return nil
}
