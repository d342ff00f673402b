package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/hire-ranker/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), "migrations applied", store.RunMigrations)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of every migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), "migration status printed", store.MigrationStatus)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), "migration rolled back", store.RollbackMigration)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}

// withDatabase connects to the configured Postgres database and runs fn against it.
func withDatabase(ctx context.Context, done string, fn func(context.Context, *sql.DB) error) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	config, err := getConfig()
	if err != nil {
		return err
	}

	if config.Store.Driver != store.DriverPostgres {
		return fmt.Errorf("migrations need store.driver %q, got %q", store.DriverPostgres, config.Store.Driver)
	}

	url, err := resolveDatabaseURL(config.Store)
	if err != nil {
		return err
	}

	db, err := store.Connect(ctx, url, store.Options{
		MaxOpenConns: 1,
		PingTimeout:  config.Store.PingTimeout,
	}, log.Named("store"))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := fn(ctx, db); err != nil {
		return err
	}

	log.Info(done)
	return nil
}
