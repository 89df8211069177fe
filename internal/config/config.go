// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel string `mapstructure:"LOG_LEVEL"`

	GithubToken        string `mapstructure:"GITHUB_TOKEN"`
	GithubAPIURL       string `mapstructure:"GITHUB_API_URL"`
	TopReposLimit      int    `mapstructure:"TOP_REPOS_LIMIT"`
	CommitFetchWorkers int    `mapstructure:"COMMIT_FETCH_WORKERS"`

	InsertBatchSize    int    `mapstructure:"INSERT_BATCH_SIZE"`
	ClickHouseAddr     string `mapstructure:"CLICKHOUSE_ADDR"`
	ClickHouseDatabase string `mapstructure:"CLICKHOUSE_DATABASE"`
	ClickHouseUsername string `mapstructure:"CLICKHOUSE_USERNAME"`
	ClickHousePassword string `mapstructure:"CLICKHOUSE_PASSWORD"`

	SnapshotInterval time.Duration `mapstructure:"SNAPSHOT_INTERVAL"`

	DBURL    string `mapstructure:"DB_URL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_URL", "")
	v.SetDefault("TOP_REPOS_LIMIT", 100)
	v.SetDefault("COMMIT_FETCH_WORKERS", 4)
	v.SetDefault("INSERT_BATCH_SIZE", 100)
	v.SetDefault("CLICKHOUSE_ADDR", "localhost:9000")
	v.SetDefault("CLICKHOUSE_DATABASE", "default")
	v.SetDefault("CLICKHOUSE_USERNAME", "default")
	v.SetDefault("CLICKHOUSE_PASSWORD", "")
	v.SetDefault("SNAPSHOT_INTERVAL", "24h")
	v.SetDefault("DB_URL", "")
	v.SetDefault("HTTP_ADDR", ":8000")

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateSnapshot checks the fields needed to run a snapshot.
func (c *Config) ValidateSnapshot() error {
	if c.GithubToken == "" {
		return errors.New("GITHUB_TOKEN is a required configuration field")
	}
	if c.TopReposLimit < 1 {
		return errors.New("TOP_REPOS_LIMIT must be at least 1")
	}
	if c.CommitFetchWorkers < 1 {
		return errors.New("COMMIT_FETCH_WORKERS must be at least 1")
	}
	if c.InsertBatchSize < 1 {
		return errors.New("INSERT_BATCH_SIZE must be at least 1")
	}
	if c.ClickHouseAddr == "" {
		return errors.New("CLICKHOUSE_ADDR is a required configuration field")
	}
	if c.SnapshotInterval <= 0 {
		return errors.New("SNAPSHOT_INTERVAL must be a positive duration")
	}
	return nil
}

// ValidateService checks the fields needed to serve the status API.
func (c *Config) ValidateService() error {
	if c.DBURL == "" {
		return errors.New("DB_URL is a required configuration field")
	}
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is a required configuration field")
	}
	return nil
}
