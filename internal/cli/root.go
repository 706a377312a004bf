// Package cli provides the command-line interface for lessonplan.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/lessonplan/internal/config"
	"github.com/raphaelgruber/lessonplan/internal/db"
	"github.com/raphaelgruber/lessonplan/internal/queue"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	cfgFile string
	verbose bool

	// Global config, logger and lazily connected db client
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	dbClient   *db.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lessonplan",
	Short: "Resilient lesson plan generator",
	Long: `Lessonplan turns the next pending topic into a Markdown lesson plan by
calling a generative model, falling back across a catalog of models when one
is unavailable or rate limited.

Topics come from --topic or from the head of a persisted queue (topics.txt or
SurrealDB). Each invocation handles one topic, so it can be run from cron.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, logCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return nil
	},
}

// connectDB opens the SurrealDB connection on first use and initializes the schema.
func connectDB(ctx context.Context) (*db.Client, error) {
	if dbClient != nil {
		return dbClient, nil
	}

	client, err := db.NewClient(ctx, db.ConfigFrom(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := client.InitSchema(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	dbClient = client
	return dbClient, nil
}

// queueStore returns the configured topic queue backend.
func queueStore(ctx context.Context) (queue.Store, error) {
	if cfg.QueueBackend == config.QueueSurrealDB {
		client, err := connectDB(ctx)
		if err != nil {
			return nil, err
		}
		return db.NewQueueStore(client), nil
	}
	return queue.NewFileStore(cfg.TopicFile), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return execute(rootCmd)
}

// execute runs cmd and releases the db client and log file afterwards.
// cobra skips PersistentPostRun when RunE fails, so cleanup lives here.
func execute(cmd *cobra.Command) error {
	defer cleanup()
	return cmd.Execute()
}

func cleanup() {
	if dbClient != nil {
		if err := dbClient.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
		dbClient = nil
	}
	if logCleanup != nil {
		_ = logCleanup()
		logCleanup = nil
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (env vars override it)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(runsCmd)
}
