// internal/store/tables.go
package store

// Snapshot tables. Column order matches the rows built by the snapshot package.
var (
	RepositoriesTable = Table{
		Name:    "repositories",
		Columns: []string{"name", "owner", "stars", "watchers", "forks", "language", "captured_at"},
	}
	PositionsTable = Table{
		Name:    "repositories_positions",
		Columns: []string{"as_of_date", "repo_key", "position"},
	}
	AuthorCommitsTable = Table{
		Name:    "repositories_authors_commits",
		Columns: []string{"as_of_date", "repo_key", "author", "commits_num"},
	}
)
