package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database DatabaseConfig
	Source   SourceConfig
	Alias    AliasConfig
	Logging  LoggingConfig
	Alerts   AlertConfig
}

type DatabaseConfig struct {
	Enabled  bool // persistence is optional; the engine is in-memory
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// SourceConfig describes where the stop-record extract comes from.
type SourceConfig struct {
	Name          string
	URL           string // remote extract, probed for changes
	Path          string // local extract, used when URL is empty
	Format        string // "sqlite" or "csv"
	CheckInterval time.Duration
	DownloadDir   string
	RetentionAge  time.Duration
}

type AliasConfig struct {
	ConfigPath string // empty means the built-in table
}

type LoggingConfig struct {
	Level    string
	FilePath string
}

type AlertConfig struct {
	WebhookURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Enabled:  getBoolEnv("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "traindata"),
		},
		Source: SourceConfig{
			Name:          getEnv("SOURCE_NAME", "national"),
			URL:           getEnv("SOURCE_URL", ""),
			Path:          getEnv("SOURCE_PATH", "trains.db"),
			Format:        getEnv("SOURCE_FORMAT", "sqlite"),
			CheckInterval: getDurationEnv("SOURCE_CHECK_INTERVAL", 30*time.Minute),
			DownloadDir:   getEnv("SOURCE_DOWNLOAD_DIR", "/tmp/traindata-extracts"),
			RetentionAge:  getDurationEnv("SOURCE_RETENTION_AGE", 7*24*time.Hour),
		},
		Alias: AliasConfig{
			ConfigPath: getEnv("ALIAS_CONFIG", ""),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			FilePath: getEnv("LOG_FILE", "traindatad.log"),
		},
		Alerts: AlertConfig{
			WebhookURL: getEnv("ALERT_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

func (c *SourceConfig) Validate() error {
	if c.Format != "sqlite" && c.Format != "csv" {
		return fmt.Errorf("SOURCE_FORMAT must be sqlite or csv, got %q", c.Format)
	}
	if c.URL == "" && c.Path == "" {
		return fmt.Errorf("one of SOURCE_URL or SOURCE_PATH must be set")
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
