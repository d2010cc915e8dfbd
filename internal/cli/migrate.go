package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/abtrack/internal/adapters/turso"
	"github.com/emiliopalmerini/abtrack/internal/config"
	"github.com/emiliopalmerini/abtrack/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [version]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  abtrack migrate      # Run all pending migrations
  abtrack migrate 2    # Migrate to version 2
  abtrack migrate 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	target := -1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[0])
		}
		target = v
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := turso.NewDB(turso.Config{
		LocalPath:  cfg.Database.Path,
		PrimaryURL: cfg.Database.URL,
		AuthToken:  cfg.Database.AuthToken,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	m := migrate.NewMigrator(db.DB, logger)
	if err := m.EnsureMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, dirty, err := m.CurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", current)
	}

	fmt.Fprintf(out, "Current version: %d\n", current)

	var migrateErr error
	switch {
	case target < 0:
		var n int
		n, migrateErr = m.Up(ctx)
		if migrateErr == nil {
			if n == 0 {
				fmt.Fprintln(out, "No migrations to run")
			} else {
				fmt.Fprintf(out, "%d migrations applied\n", n)
			}
		}
	case target == current:
		fmt.Fprintln(out, "Already at target version")
	default:
		migrateErr = m.To(ctx, target)
	}

	if migrateErr == nil {
		if v, _, err := m.CurrentVersion(ctx); err == nil {
			fmt.Fprintf(out, "Migrated to version %d\n", v)
		}
	}

	// Sync schema changes to remote
	if err := db.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to sync migrations to remote: %v\n", err)
	}

	return migrateErr
}
