// internal/github/client_test.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	custom_errors "github-stars-snapshot/internal/errors"
	"github-stars-snapshot/internal/model"
)

var fixedNow = time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

// setupTestClient creates a httptest server and a Client pointing to it.
func setupTestClient(t *testing.T, handler http.Handler, opts Options) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts.BaseURL = server.URL
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	client, err := NewClient("test-token", opts, logger)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return client
}

func repoJSON(owner, name string, stars int, language string) string {
	lang := "null"
	if language != "" {
		lang = fmt.Sprintf("%q", language)
	}
	return fmt.Sprintf(`{"name": %q, "owner": {"login": %q}, "stargazers_count": %d, "watchers_count": %d, "forks_count": 7, "language": %s}`,
		name, owner, stars, stars, lang)
}

func TestClient_SearchTopRepositories(t *testing.T) {
	t.Run("sends the ranked search query with a bearer token", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search/repositories", r.URL.Path)
			assert.Equal(t, "stars:>1", r.URL.Query().Get("q"))
			assert.Equal(t, "stars", r.URL.Query().Get("sort"))
			assert.Equal(t, "desc", r.URL.Query().Get("order"))
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			fmt.Fprintf(w, `{"total_count": 2, "items": [%s, %s]}`,
				repoJSON("o1", "r1", 500, "Go"), repoJSON("o2", "r2", 300, ""))
		})
		client := setupTestClient(t, handler, Options{})

		repos, err := client.SearchTopRepositories(context.Background(), 100)

		require.NoError(t, err)
		require.Len(t, repos, 2)
		assert.Equal(t, "o1/r1", repos[0].Key())
		assert.Equal(t, 500, repos[0].StarsCount)
		assert.Equal(t, 7, repos[0].ForksCount)
		require.NotNil(t, repos[0].Language)
		assert.Equal(t, "Go", *repos[0].Language)
		assert.Equal(t, "o2/r2", repos[1].Key())
		assert.Nil(t, repos[1].Language)
	})

	t.Run("follows pages until the limit is reached", func(t *testing.T) {
		var server *httptest.Server
		var requestCount int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&requestCount, 1)
			assert.Equal(t, "100", r.URL.Query().Get("per_page"))
			items := make([]string, 100)
			page := r.URL.Query().Get("page")
			for i := range items {
				items[i] = repoJSON("o", fmt.Sprintf("p%s-%d", page, i), 1000-i, "Go")
			}
			w.Header().Set("Link", fmt.Sprintf(`<%s/search/repositories?page=3>; rel="next"`, server.URL))
			fmt.Fprintf(w, `{"items": [%s]}`, strings.Join(items, ","))
		})
		server = httptest.NewServer(handler)
		defer server.Close()

		client, err := NewClient("", Options{BaseURL: server.URL}, slog.Default())
		require.NoError(t, err)
		defer client.Close()

		repos, err := client.SearchTopRepositories(context.Background(), 150)

		require.NoError(t, err)
		assert.Len(t, repos, 150)
		assert.Equal(t, int32(2), atomic.LoadInt32(&requestCount))
	})

	t.Run("returns an upstream error on a non-2xx response", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		client := setupTestClient(t, handler, Options{})

		_, err := client.SearchTopRepositories(context.Background(), 100)

		var upErr *custom_errors.UpstreamRequestError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "search repositories", upErr.Op)
		var ghErr *github.ErrorResponse
		require.ErrorAs(t, err, &ghErr)
		assert.Equal(t, http.StatusInternalServerError, ghErr.Response.StatusCode)
	})

	t.Run("returns an upstream error on a malformed body", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"items": [`)
		})
		client := setupTestClient(t, handler, Options{})

		_, err := client.SearchTopRepositories(context.Background(), 100)

		var upErr *custom_errors.UpstreamRequestError
		assert.ErrorAs(t, err, &upErr)
	})

	t.Run("rejects a repository without a star count", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"items": [{"name": "r1", "owner": {"login": "o1"}, "watchers_count": 1, "forks_count": 1}]}`)
		})
		client := setupTestClient(t, handler, Options{})

		_, err := client.SearchTopRepositories(context.Background(), 100)

		var shapeErr *custom_errors.DataShapeError
		require.ErrorAs(t, err, &shapeErr)
		assert.Equal(t, "stargazers_count", shapeErr.Field)
		assert.Equal(t, "o1/r1", shapeErr.Repo)
	})
}

func TestClient_ListTodaysCommits(t *testing.T) {
	t.Run("lists commits since the start of the UTC day", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/o1/r1/commits", r.URL.Path)
			assert.Equal(t, "2024-05-10T00:00:00Z", r.URL.Query().Get("since"))
			assert.Empty(t, r.URL.Query().Get("until"))
			fmt.Fprintln(w, `[
				{"sha": "a", "commit": {"author": {"name": "Alice", "date": "2024-05-10T12:00:00Z"}}},
				{"sha": "b", "commit": {"author": {"name": ""}}},
				{"sha": "c", "commit": {}}
			]`)
		})
		client := setupTestClient(t, handler, Options{})

		commits, err := client.ListTodaysCommits(context.Background(), "o1", "r1")

		require.NoError(t, err)
		require.Len(t, commits, 3)
		assert.Equal(t, "Alice", commits[0].AuthorName)
		assert.Equal(t, "", commits[1].AuthorName)
		assert.Equal(t, "", commits[2].AuthorName)
	})

	t.Run("uses the clock at call time", func(t *testing.T) {
		now := fixedNow
		var seen []string
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, r.URL.Query().Get("since"))
			fmt.Fprintln(w, `[]`)
		})
		client := setupTestClient(t, handler, Options{Now: func() time.Time { return now }})

		_, err := client.ListTodaysCommits(context.Background(), "o1", "r1")
		require.NoError(t, err)
		now = now.Add(12 * time.Hour)
		_, err = client.ListTodaysCommits(context.Background(), "o1", "r1")
		require.NoError(t, err)

		assert.Equal(t, []string{"2024-05-10T00:00:00Z", "2024-05-11T00:00:00Z"}, seen)
	})

	t.Run("returns an upstream error naming the repository", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintln(w, `{"message": "Not Found"}`)
		})
		client := setupTestClient(t, handler, Options{})

		_, err := client.ListTodaysCommits(context.Background(), "o1", "r1")

		var upErr *custom_errors.UpstreamRequestError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "o1", upErr.Owner)
		assert.Equal(t, "r1", upErr.Repo)
	})
}

func TestClient_CollectEnrichedRepositories(t *testing.T) {
	newHandler := func(failRepo string) http.Handler {
		mux := http.NewServeMux()
		mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"items": [%s, %s, %s]}`,
				repoJSON("o1", "r1", 500, "Go"), repoJSON("o2", "r2", 300, ""), repoJSON("o3", "r3", 200, "C"))
		})
		mux.HandleFunc("/repos/{owner}/{repo}/commits", func(w http.ResponseWriter, r *http.Request) {
			switch r.PathValue("repo") {
			case failRepo:
				w.WriteHeader(http.StatusBadGateway)
			case "r1":
				// Finish last so completion order differs from rank order.
				time.Sleep(50 * time.Millisecond)
				fmt.Fprintln(w, `[
					{"commit": {"author": {"name": "Alice"}}},
					{"commit": {"author": {"name": "Alice"}}},
					{"commit": {"author": {"name": ""}}},
					{"commit": {"author": {"name": "Alice"}}}
				]`)
			case "r3":
				fmt.Fprintln(w, `[{"commit": {"author": {"name": "Bob"}}}]`)
			default:
				fmt.Fprintln(w, `[]`)
			}
		})
		return mux
	}

	t.Run("preserves rank order and aggregates authors", func(t *testing.T) {
		client := setupTestClient(t, newHandler(""), Options{Workers: 3})

		records, err := client.CollectEnrichedRepositories(context.Background())

		require.NoError(t, err)
		require.Len(t, records, 3)
		for i, rec := range records {
			assert.Equal(t, i+1, rec.Position)
		}
		assert.Equal(t, "o1/r1", records[0].Key())
		assert.Equal(t, []model.AuthorCommitCount{{Author: "Alice", CommitsNum: 3}}, records[0].AuthorCommits)
		assert.Equal(t, "o2/r2", records[1].Key())
		assert.Empty(t, records[1].AuthorCommits)
		assert.Equal(t, "o3/r3", records[2].Key())
		assert.Equal(t, []model.AuthorCommitCount{{Author: "Bob", CommitsNum: 1}}, records[2].AuthorCommits)
	})

	t.Run("fails the whole collection when one repository fails", func(t *testing.T) {
		client := setupTestClient(t, newHandler("r2"), Options{Workers: 1})

		records, err := client.CollectEnrichedRepositories(context.Background())

		assert.Nil(t, records)
		var upErr *custom_errors.UpstreamRequestError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "r2", upErr.Repo)
	})
}
