// cmd/snapshot/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github-stars-snapshot/internal/config"
	"github-stars-snapshot/internal/github"
	"github-stars-snapshot/internal/logging"
	"github-stars-snapshot/internal/snapshot"
	"github-stars-snapshot/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "snapshot",
	Short:         "Daily snapshot of the most starred GitHub repositories",
	Long:          `Snapshot ranks the most starred GitHub repositories, counts today's commits per author, and stores the result in ClickHouse.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Take one snapshot and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		summary, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Snapshot %s: %d repositories, %d author rows\n", summary.RunID, summary.Repositories, summary.AuthorCommits)
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Take a snapshot now and then every SNAPSHOT_INTERVAL",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, cfg, err := newPipeline()
		if err != nil {
			return err
		}
		p.Start(cmd.Context(), cfg.SnapshotInterval)
		return nil
	},
}

var initSchemaCmd = &cobra.Command{
	Use:   "init-schema",
	Short: "Create the snapshot tables in ClickHouse if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		ch, err := store.Open(cmd.Context(), clickHouseConfig(cfg), logger)
		if err != nil {
			return err
		}
		defer ch.Close()
		return ch.EnsureSchema(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd, scheduleCmd, initSchemaCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Snapshot command failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	if err := cfg.ValidateSnapshot(); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newPipeline() (*snapshot.Pipeline, *config.Config, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	newFetcher := func() (snapshot.Fetcher, error) {
		c, err := github.NewClient(cfg.GithubToken, github.Options{
			BaseURL:  cfg.GithubAPIURL,
			TopLimit: cfg.TopReposLimit,
			Workers:  cfg.CommitFetchWorkers,
		}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	openStore := func(ctx context.Context) (snapshot.Store, error) {
		ch, err := store.Open(ctx, clickHouseConfig(cfg), logger)
		if err != nil {
			return nil, err
		}
		return ch, nil
	}

	return snapshot.NewPipeline(newFetcher, openStore, logger, cfg.InsertBatchSize), cfg, nil
}

func clickHouseConfig(cfg *config.Config) store.Config {
	return store.Config{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
	}
}
