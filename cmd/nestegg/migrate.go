package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nest-egg/internal/cli"
	"github.com/Veraticus/nest-egg/internal/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates on open; this one is for setting up a database
ahead of time or checking its version.`,
		Args: cobra.NoArgs,
		RunE: a.runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func (a *app) runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()
	dbPath := a.settings.DatabasePath

	slog.Info("Starting database migration",
		"database", dbPath,
		"status_only", status)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	w := out(cmd)
	if status {
		current, err := store.SchemaVersion(ctx)
		if err != nil {
			return err
		}
		content := fmt.Sprintf("Database: %s\nCurrent version: %d\nLatest version: %d",
			dbPath, current, storage.ExpectedSchemaVersion)
		fmt.Fprintln(w, cli.RenderBox("Database Migration Status", content))
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Fprintln(w, cli.FormatSuccess("Database migrations completed successfully"))
	return nil
}
