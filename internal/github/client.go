// internal/github/client.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	custom_errors "github-stars-snapshot/internal/errors"
	"github-stars-snapshot/internal/model"
)

const (
	// DefaultTopLimit is how many repositories a snapshot ranks.
	DefaultTopLimit = 100

	// Upstream refuses page sizes above this.
	maxPerPage = 100

	topRepositoriesQuery = "stars:>1"
)

// Options tunes a Client. Zero values select defaults.
type Options struct {
	// BaseURL points the client at a GitHub Enterprise or test server.
	BaseURL string
	// TopLimit is the number of ranked repositories to collect.
	TopLimit int
	// Workers bounds concurrent commit-listing calls.
	Workers int
	// Now is the clock used to compute the start of the current UTC day.
	Now func() time.Time
}

// Client is a wrapper around the go-github client. It owns its HTTP
// transport for the lifetime of one fetch cycle; call Close when done.
type Client struct {
	gh        *github.Client
	transport *http.Transport
	logger    *slog.Logger
	limit     int
	workers   int
	now       func() time.Time
}

// NewClient creates a Client authenticated with a bearer token.
func NewClient(token string, opts Options, logger *slog.Logger) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   transport,
		},
	}

	c := &Client{
		gh:        github.NewClient(httpClient),
		transport: transport,
		logger:    logger,
		limit:     opts.TopLimit,
		workers:   opts.Workers,
		now:       opts.Now,
	}
	if c.limit <= 0 {
		c.limit = DefaultTopLimit
	}
	if c.workers <= 0 {
		c.workers = 1
	}
	if c.now == nil {
		c.now = time.Now
	}
	if opts.BaseURL != "" {
		if err := c.SetBaseURL(opts.BaseURL); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// SetBaseURL redirects API calls to rawURL, e.g. https://ghe.example.com/api/v3/.
func (c *Client) SetBaseURL(rawURL string) error {
	if !strings.HasSuffix(rawURL, "/") {
		rawURL += "/"
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid GitHub API URL %q: %w", rawURL, err)
	}
	c.gh.BaseURL = u
	return nil
}

// Close releases the client's idle network connections.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// SearchTopRepositories returns up to limit repositories with more than one
// star, most starred first, in the order upstream ranks them.
func (c *Client) SearchTopRepositories(ctx context.Context, limit int) ([]model.Repository, error) {
	opts := &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: min(limit, maxPerPage),
		},
	}

	repos := make([]model.Repository, 0, limit)
	for len(repos) < limit {
		c.logger.Debug("Searching top repositories", "page", opts.Page, "per_page", opts.PerPage)

		result, resp, err := c.gh.Search.Repositories(ctx, topRepositoriesQuery, opts)
		if err != nil {
			return nil, &custom_errors.UpstreamRequestError{Op: "search repositories", Err: err}
		}

		for _, r := range result.Repositories {
			if len(repos) == limit {
				break
			}
			repo, err := toInternalRepository(r)
			if err != nil {
				return nil, err
			}
			repos = append(repos, repo)
		}

		if resp.NextPage == 0 || len(result.Repositories) == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

// ListTodaysCommits fetches every commit made to owner/name since 00:00 UTC
// of the current day. It handles API pagination transparently.
func (c *Client) ListTodaysCommits(ctx context.Context, owner, name string) ([]model.Commit, error) {
	var allCommits []model.Commit

	opts := &github.CommitsListOptions{
		Since: model.StartOfDay(c.now()),
		ListOptions: github.ListOptions{
			PerPage: maxPerPage,
		},
	}

	for {
		c.logger.Debug("Fetching commits page", "owner", owner, "repo", name, "page", opts.Page)

		commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
		if err != nil {
			return nil, &custom_errors.UpstreamRequestError{Op: "list commits", Owner: owner, Repo: name, Err: err}
		}

		for _, commit := range commits {
			allCommits = append(allCommits, toInternalCommit(commit))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allCommits, nil
}

// toInternalRepository translates a github.Repository to model.Repository,
// rejecting responses that lack a field the snapshot persists.
func toInternalRepository(r *github.Repository) (model.Repository, error) {
	key := r.GetOwner().GetLogin() + "/" + r.GetName()
	switch {
	case r.GetOwner().GetLogin() == "":
		return model.Repository{}, &custom_errors.DataShapeError{Field: "owner.login", Repo: key}
	case r.GetName() == "":
		return model.Repository{}, &custom_errors.DataShapeError{Field: "name", Repo: key}
	case r.StargazersCount == nil:
		return model.Repository{}, &custom_errors.DataShapeError{Field: "stargazers_count", Repo: key}
	case r.WatchersCount == nil:
		return model.Repository{}, &custom_errors.DataShapeError{Field: "watchers_count", Repo: key}
	case r.ForksCount == nil:
		return model.Repository{}, &custom_errors.DataShapeError{Field: "forks_count", Repo: key}
	}

	return model.Repository{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		StarsCount:    r.GetStargazersCount(),
		WatchersCount: r.GetWatchersCount(),
		ForksCount:    r.GetForksCount(),
		Language:      r.Language,
	}, nil
}

// toInternalCommit translates a github.RepositoryCommit to model.Commit.
// A missing author name becomes the empty string.
func toInternalCommit(c *github.RepositoryCommit) model.Commit {
	return model.Commit{
		SHA:        c.GetSHA(),
		AuthorName: c.GetCommit().GetAuthor().GetName(),
		CommitDate: c.GetCommit().GetAuthor().GetDate().Time,
	}
}
