// internal/stats/authors.go
package stats

import "github-stars-snapshot/internal/model"

// CountByAuthor groups commits by exact author name and counts them.
// Commits without an author name are skipped. The result is ordered by
// each author's first appearance in commits.
func CountByAuthor(commits []model.Commit) []model.AuthorCommitCount {
	index := make(map[model.Author]int)
	var counts []model.AuthorCommitCount

	for _, c := range commits {
		if c.AuthorName == "" {
			continue
		}
		author := model.Author(c.AuthorName)
		if i, ok := index[author]; ok {
			counts[i].CommitsNum++
			continue
		}
		index[author] = len(counts)
		counts = append(counts, model.AuthorCommitCount{Author: author, CommitsNum: 1})
	}

	return counts
}
