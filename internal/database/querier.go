// internal/database/querier.go
package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Querier lists the queries the status API runs.
type Querier interface {
	ServerVersion(ctx context.Context) (string, error)
}

// Queries implements Querier on top of a pgx connection or pool.
type Queries struct {
	db DBTX
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

const serverVersion = `SELECT version()`

// ServerVersion returns the database server's version string.
func (q *Queries) ServerVersion(ctx context.Context) (string, error) {
	var version string
	err := q.db.QueryRow(ctx, serverVersion).Scan(&version)
	return version, err
}

var _ Querier = (*Queries)(nil)
