// internal/github/fetcher.go
package github

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github-stars-snapshot/internal/model"
	"github-stars-snapshot/internal/stats"
)

// CollectEnrichedRepositories ranks the top repositories and attaches
// today's per-author commit counts to each. Commit listings run on a
// bounded pool; the result is ordered by Position regardless of completion
// order. Any failed call fails the whole collection.
func (c *Client) CollectEnrichedRepositories(ctx context.Context) ([]model.RepositoryRecord, error) {
	repos, err := c.SearchTopRepositories(ctx, c.limit)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Fetched top repositories", "count", len(repos))

	records := make([]model.RepositoryRecord, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, repo := range repos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			commits, err := c.ListTodaysCommits(gctx, repo.Owner, repo.Name)
			if err != nil {
				return err
			}
			c.logger.Debug("Fetched today's commits", "owner", repo.Owner, "repo", repo.Name, "count", len(commits))

			records[i] = model.RepositoryRecord{
				Repository:    repo,
				Position:      i + 1,
				AuthorCommits: stats.CountByAuthor(commits),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
