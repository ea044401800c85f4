// chronicle-migrate is the offline maintenance tool for the chronicle
// database: schema migrations, and the historical event_data reshaping
// passes. Data passes are not designed to run against live traffic; take a
// maintenance window.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/spf13/cobra"

	"github.com/platinummonkey/chronicle/pkg/event"
	"github.com/platinummonkey/chronicle/pkg/observability"
	"github.com/platinummonkey/chronicle/pkg/reshape"
)

var (
	databaseURL string
	chunkSize   int
	logLevel    string

	db *sql.DB
)

func defaultDatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

var rootCmd = &cobra.Command{
	Use:   "chronicle-migrate",
	Short: "Schema and data migrations for the chronicle event store",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if databaseURL == "" {
			return fmt.Errorf("database URL is required (--database-url or DATABASE_URL)")
		}
		var err error
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the database schema",
}

var schemaUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return event.MigrateUp(db)
	},
}

var schemaDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all schema migrations (drops the events table)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return event.MigrateDown(db)
	},
}

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Reshape historical event_data payloads",
}

var dataUpgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Extract structured event_data from legacy free-text descriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := newRunner()
		start := time.Now()
		stats, err := runner.UpgradeAll(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("examined %d rows in %s: %d rewritten, %d unwrapped, %d renamed, %d passed through\n",
			stats.Examined, time.Since(start).Round(time.Millisecond),
			stats.Rewritten, stats.Unwrapped, stats.Renamed, stats.PassedThrough)
		return nil
	},
}

var dataDowngradeCmd = &cobra.Command{
	Use:   "downgrade",
	Short: "Fold event_data back into the legacy description-only shape (lossy)",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := newRunner()
		start := time.Now()
		stats, err := runner.DowngradeAll(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("wrapped %d rows in %s\n", stats.Rewritten, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func newRunner() *reshape.Runner {
	log := observability.NewLogger(logLevel, os.Stderr).WithField("tool", "chronicle-migrate")
	return reshape.NewRunner(db, log, nil, chunkSize)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", defaultDatabaseURL(), "PostgreSQL connection URL")
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk-size", 500, "rows per reshaping chunk")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	schemaCmd.AddCommand(schemaUpCmd)
	schemaCmd.AddCommand(schemaDownCmd)
	dataCmd.AddCommand(dataUpgradeCmd)
	dataCmd.AddCommand(dataDowngradeCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(dataCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
