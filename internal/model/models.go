// internal/model/models.go
package model

import "time"

// Author is a commit author's display name as reported by the upstream API.
// It is an opaque key: two people sharing a name are the same Author.
type Author string

// AuthorCommitCount is the number of commits an author made to one
// repository during the current UTC day. Count is always >= 1.
type AuthorCommitCount struct {
	Author     Author
	CommitsNum int
}

// Repository is the subset of upstream repository metadata the snapshot reads.
type Repository struct {
	Owner         string
	Name          string
	StarsCount    int
	WatchersCount int
	ForksCount    int
	Language      *string
}

// Key returns the "owner/name" join key used across snapshot tables.
func (r Repository) Key() string {
	return r.Owner + "/" + r.Name
}

// Commit is the subset of upstream commit metadata the snapshot reads.
type Commit struct {
	SHA        string
	AuthorName string
	CommitDate time.Time
}

// RepositoryRecord is one ranked repository enriched with today's
// per-author commit counts. Position is 1-based.
type RepositoryRecord struct {
	Repository
	Position      int
	AuthorCommits []AuthorCommitCount
}

// RunContext carries the capture instant shared by every row of one snapshot.
type RunContext struct {
	AsOfTimestamp time.Time
	AsOfDate      time.Time
}

// NewRunContext derives the run timestamp and its UTC calendar date.
func NewRunContext(now time.Time) RunContext {
	ts := now.UTC()
	return RunContext{
		AsOfTimestamp: ts,
		AsOfDate:      StartOfDay(ts),
	}
}

// StartOfDay returns 00:00:00 UTC of the day containing t.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
