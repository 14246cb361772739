package main

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"ssotica-backend/internal/scrapers/ssotica"
	"ssotica-backend/pkg/configutil"
)

type CacheConfig struct {
	Size       int `json:"size"`
	TtlSeconds int `json:"ttl_seconds"`
}

type Config struct {
	Port    string         `json:"port"`
	Ssotica ssotica.Config `json:"ssotica"`
	// Database is optional, the search log is disabled without it.
	Database               configutil.Libsql `json:"database"`
	Cache                  CacheConfig       `json:"cache"`
	SearchLogRetentionDays int               `json:"search_log_retention_days"`
	RequestTimeoutSeconds  int               `json:"request_timeout_seconds"`
}

const defaultPort = "3189"

func (c Config) SearchLogEnabled() bool {
	return c.Database.File != "" || c.Database.Url != ""
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TtlSeconds) * time.Second
}

func (c Config) Retention() time.Duration {
	days := c.SearchLogRetentionDays
	if days <= 0 {
		days = 90
	}
	return time.Duration(days) * 24 * time.Hour
}

// ReadConfig reads path (and its .local override) then applies environment
// overrides, a missing file is fine when the environment carries everything.
func ReadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file found, using environment only", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}

	cfg.Ssotica.ApplyEnv()
	configutil.LookupEnv(&cfg.Port, "PORT")
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	return cfg, nil
}
