// Package cli implements the countryctl command-line interface.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/JonMunkholm/countrymap/internal/config"
	"github.com/JonMunkholm/countrymap/internal/core"
	"github.com/JonMunkholm/countrymap/internal/logging"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags
var (
	databaseURL string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "countryctl",
	Short: "Manage the country code and name registry",
	Long: `countryctl works directly against the registry database.

  countryctl migrate                     # create missing tables
  countryctl import countries.yaml       # merge a batch of codes and names
  countryctl match CAN Canada Kanada     # check names against a code

Settings come from the environment (and .env) like the server's;
--database-url overrides DATABASE_URL.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (default $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "countryctl %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	},
}

// setup loads .env and routes logs to stderr so stdout stays machine readable.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load() // a missing .env is fine
	slog.SetDefault(logging.New(os.Stderr, logLevel, "text"))
	return nil
}

// loadConfig reads the environment with the --database-url override applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWith(map[string]string{"DATABASE_URL": databaseURL})
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

// connect opens and pings a small pool for one command.
func connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// withService runs fn against a Service backed by a fresh pool.
func withService(ctx context.Context, fn func(*core.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, err := core.NewService(pool, cfg)
	if err != nil {
		return err
	}
	return fn(svc)
}
