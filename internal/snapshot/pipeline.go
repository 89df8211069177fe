// internal/snapshot/pipeline.go
package snapshot

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github-stars-snapshot/internal/model"
	"github-stars-snapshot/internal/store"
)

// Fetcher collects ranked repositories enriched with today's commit counts.
// Close releases its network session.
type Fetcher interface {
	CollectEnrichedRepositories(ctx context.Context) ([]model.RepositoryRecord, error)
	Close()
}

// Store is a closable destination for batched inserts.
type Store interface {
	store.Inserter
	Close() error
}

// Summary reports what one run persisted.
type Summary struct {
	RunID         string
	AsOf          time.Time
	Repositories  int
	Positions     int
	AuthorCommits int
}

// Pipeline runs one snapshot: fetch, project, then persist three tables.
// There is no cross-table transaction; a failed write leaves earlier tables
// and batches in place.
type Pipeline struct {
	newFetcher func() (Fetcher, error)
	openStore  func(ctx context.Context) (Store, error)
	logger     *slog.Logger
	batchSize  int
	now        func() time.Time
}

// NewPipeline creates a Pipeline. newFetcher and openStore are called once
// per run and their resources are released before Run returns.
func NewPipeline(newFetcher func() (Fetcher, error), openStore func(ctx context.Context) (Store, error), logger *slog.Logger, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = store.DefaultBatchSize
	}
	return &Pipeline{
		newFetcher: newFetcher,
		openStore:  openStore,
		logger:     logger,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// Run performs a full snapshot for the current day.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	logger.Info("Starting snapshot run")

	records, err := p.fetch(ctx)
	if err != nil {
		return Summary{RunID: runID}, err
	}

	rc := model.NewRunContext(p.now())
	summary := Summary{RunID: runID, AsOf: rc.AsOfTimestamp}

	st, err := p.openStore(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store connection", "error", err)
		}
	}()

	writes := []struct {
		table store.Table
		rows  iter.Seq[store.Row]
		count *int
	}{
		{store.RepositoriesTable, RepositoryRows(records, rc), &summary.Repositories},
		{store.PositionsTable, PositionRows(records, rc), &summary.Positions},
		{store.AuthorCommitsTable, AuthorCommitRows(records, rc), &summary.AuthorCommits},
	}
	for _, w := range writes {
		n, err := store.WriteBatched(ctx, st, w.table, w.rows, p.batchSize)
		*w.count = n
		if err != nil {
			return summary, err
		}
		logger.Info("Wrote snapshot table", "table", w.table.Name, "rows", n)
	}

	logger.Info("Snapshot run finished",
		"as_of", rc.AsOfTimestamp.Format(time.RFC3339),
		"repositories", summary.Repositories,
		"author_commits", summary.AuthorCommits)
	return summary, nil
}

// fetch holds the fetcher's network session only for the collection call.
func (p *Pipeline) fetch(ctx context.Context) ([]model.RepositoryRecord, error) {
	f, err := p.newFetcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}
	defer f.Close()

	return f.CollectEnrichedRepositories(ctx)
}
