// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		// Empty variables are treated as unset.
		for _, key := range []string{"LOG_LEVEL", "TOP_REPOS_LIMIT", "COMMIT_FETCH_WORKERS", "INSERT_BATCH_SIZE", "CLICKHOUSE_ADDR", "SNAPSHOT_INTERVAL", "HTTP_ADDR"} {
			t.Setenv(key, "")
		}

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 100, cfg.TopReposLimit)
		assert.Equal(t, 4, cfg.CommitFetchWorkers)
		assert.Equal(t, 100, cfg.InsertBatchSize)
		assert.Equal(t, "localhost:9000", cfg.ClickHouseAddr)
		assert.Equal(t, 24*time.Hour, cfg.SnapshotInterval)
		assert.Equal(t, ":8000", cfg.HTTPAddr)
	})

	t.Run("reads environment variables", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "ghp_test")
		t.Setenv("TOP_REPOS_LIMIT", "250")
		t.Setenv("INSERT_BATCH_SIZE", "500")
		t.Setenv("SNAPSHOT_INTERVAL", "6h")
		t.Setenv("CLICKHOUSE_DATABASE", "analytics")

		cfg, err := LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "ghp_test", cfg.GithubToken)
		assert.Equal(t, 250, cfg.TopReposLimit)
		assert.Equal(t, 500, cfg.InsertBatchSize)
		assert.Equal(t, 6*time.Hour, cfg.SnapshotInterval)
		assert.Equal(t, "analytics", cfg.ClickHouseDatabase)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			GithubToken:        "ghp_test",
			TopReposLimit:      100,
			CommitFetchWorkers: 4,
			InsertBatchSize:    100,
			ClickHouseAddr:     "localhost:9000",
			SnapshotInterval:   time.Hour,
			DBURL:              "postgres://localhost/postgres",
			HTTPAddr:           ":8000",
		}
	}

	t.Run("accepts a complete configuration", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.ValidateSnapshot())
		assert.NoError(t, cfg.ValidateService())
	})

	t.Run("snapshot requires a token", func(t *testing.T) {
		cfg := valid()
		cfg.GithubToken = ""
		assert.ErrorContains(t, cfg.ValidateSnapshot(), "GITHUB_TOKEN")
		assert.NoError(t, cfg.ValidateService())
	})

	t.Run("snapshot rejects a zero batch size", func(t *testing.T) {
		cfg := valid()
		cfg.InsertBatchSize = 0
		assert.ErrorContains(t, cfg.ValidateSnapshot(), "INSERT_BATCH_SIZE")
	})

	t.Run("service requires a database URL", func(t *testing.T) {
		cfg := valid()
		cfg.DBURL = ""
		assert.ErrorContains(t, cfg.ValidateService(), "DB_URL")
		assert.NoError(t, cfg.ValidateSnapshot())
	})
}
