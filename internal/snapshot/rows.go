// internal/snapshot/rows.go
package snapshot

import (
	"iter"

	"github-stars-snapshot/internal/model"
	"github-stars-snapshot/internal/store"
)

// RepositoryRows yields one store.RepositoriesTable row per record.
func RepositoryRows(records []model.RepositoryRecord, rc model.RunContext) iter.Seq[store.Row] {
	return func(yield func(store.Row) bool) {
		for _, r := range records {
			language := ""
			if r.Language != nil {
				language = *r.Language
			}
			row := store.Row{
				r.Name,
				r.Owner,
				uint32(r.StarsCount),
				uint32(r.WatchersCount),
				uint32(r.ForksCount),
				language,
				rc.AsOfTimestamp,
			}
			if !yield(row) {
				return
			}
		}
	}
}

// PositionRows yields one store.PositionsTable row per record, in rank order.
func PositionRows(records []model.RepositoryRecord, rc model.RunContext) iter.Seq[store.Row] {
	return func(yield func(store.Row) bool) {
		for _, r := range records {
			if !yield(store.Row{rc.AsOfDate, r.Key(), uint32(r.Position)}) {
				return
			}
		}
	}
}

// AuthorCommitRows yields one store.AuthorCommitsTable row per author per
// record. Records without commits today yield nothing.
func AuthorCommitRows(records []model.RepositoryRecord, rc model.RunContext) iter.Seq[store.Row] {
	return func(yield func(store.Row) bool) {
		for _, r := range records {
			key := r.Key()
			for _, a := range r.AuthorCommits {
				if !yield(store.Row{rc.AsOfDate, key, string(a.Author), uint32(a.CommitsNum)}) {
					return
				}
			}
		}
	}
}
