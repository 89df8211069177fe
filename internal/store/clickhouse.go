// internal/store/clickhouse.go
package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Config holds the ClickHouse connection parameters.
type Config struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouse is an Inserter backed by a native ClickHouse connection.
type ClickHouse struct {
	conn   driver.Conn
	logger *slog.Logger
}

// Open connects to ClickHouse and verifies the connection with a ping.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*ClickHouse, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 10 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse at %s: %w", cfg.Addr, err)
	}

	return &ClickHouse{conn: conn, logger: logger}, nil
}

// InsertBatch sends rows to table as a single native insert.
func (c *ClickHouse) InsertBatch(ctx context.Context, table Table, rows []Row) error {
	query := fmt.Sprintf("INSERT INTO %s (%s)", table.Name, strings.Join(table.Columns, ", "))
	batch, err := c.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	c.logger.Debug("Inserted batch", "table", table.Name, "rows", len(rows))
	return nil
}

// EnsureSchema creates the snapshot tables if they do not exist.
func (c *ClickHouse) EnsureSchema(ctx context.Context) error {
	files, err := fs.ReadDir(schemaFS, "schema")
	if err != nil {
		return err
	}

	for _, file := range files {
		stmt, err := fs.ReadFile(schemaFS, "schema/"+file.Name())
		if err != nil {
			return err
		}
		if err := c.conn.Exec(ctx, string(stmt)); err != nil {
			return fmt.Errorf("apply %s: %w", file.Name(), err)
		}
		c.logger.Info("Applied schema script", "file", file.Name())
	}
	return nil
}

// Close closes the underlying connection.
func (c *ClickHouse) Close() error {
	return c.conn.Close()
}
