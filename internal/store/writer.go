// internal/store/writer.go
package store

import (
	"context"
	"fmt"
	"iter"

	custom_errors "github-stars-snapshot/internal/errors"
)

// DefaultBatchSize is the number of rows sent per insert.
const DefaultBatchSize = 100

// Row is one tuple of column values, in Table.Columns order.
type Row []any

// Table describes an append-only destination table.
type Table struct {
	Name    string
	Columns []string
}

// Inserter writes one batch of rows to a table.
type Inserter interface {
	InsertBatch(ctx context.Context, table Table, rows []Row) error
}

// WriteBatched drains rows into table, issuing one insert per batchSize rows
// and a final insert for any remainder. It stops at the first failed insert;
// earlier batches stay written. It returns the number of rows written.
func WriteBatched(ctx context.Context, ins Inserter, table Table, rows iter.Seq[Row], batchSize int) (int, error) {
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be at least 1, got %d", batchSize)
	}

	written, batchNum := 0, 0
	batch := make([]Row, 0, batchSize)
	flush := func() error {
		batchNum++
		if err := ins.InsertBatch(ctx, table, batch); err != nil {
			return &custom_errors.StoreWriteError{Table: table.Name, Batch: batchNum, Err: err}
		}
		written += len(batch)
		batch = make([]Row, 0, batchSize)
		return nil
	}

	for row := range rows {
		batch = append(batch, row)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return written, err
		}
	}

	return written, nil
}
