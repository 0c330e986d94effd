package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	port       string
	sqlitePath string

	metricCollectionInterval time.Duration

	staticWebClientDir string
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		sqlitePath: func() string {
			sqlitePath := os.Getenv("SQLITE_PATH")
			if sqlitePath == "" {
				sqlitePath = "./sqlite.db"
			}
			slog.Debug("env", "SQLITE_PATH", sqlitePath)
			return sqlitePath
		}(),

		metricCollectionInterval: func() time.Duration {
			metricCollectionInterval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if metricCollectionInterval == "" {
				metricCollectionInterval = "15s"
			}
			duration, err := time.ParseDuration(metricCollectionInterval)
			if err != nil {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", metricCollectionInterval, "duration", duration)
			return duration
		}(),

		staticWebClientDir: func() string {
			staticWebClientDir := os.Getenv("STATIC_WEB_CLIENT_DIR")
			if staticWebClientDir == "" {
				slog.Warn("STATIC_WEB_CLIENT_DIR is not set, static web client disabled")
				return ""
			}
			info, err := os.Stat(staticWebClientDir)
			if err != nil {
				slog.Error("can't get info of STATIC_WEB_CLIENT_DIR", "error", err)
				os.Exit(1)
			}
			if !info.IsDir() {
				slog.Error("STATIC_WEB_CLIENT_DIR is not a directory", "error", err)
				os.Exit(1)
			}

			slog.Debug("env", "STATIC_WEB_CLIENT_DIR", staticWebClientDir)
			return filepath.Clean(staticWebClientDir)
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get SQLITE_PATH env, default to ./sqlite.db
func (c *Config) GetSqlitePath() string {
	return c.sqlitePath
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get STATIC_WEB_CLIENT_DIR env, blank when unset
func (c *Config) GetStaticWebClientDir() string {
	return c.staticWebClientDir
}
