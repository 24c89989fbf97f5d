package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/nest-egg/internal/goals"
	"github.com/Veraticus/nest-egg/internal/importer"
	"github.com/Veraticus/nest-egg/internal/inbox"
	"github.com/Veraticus/nest-egg/internal/service"
	"github.com/Veraticus/nest-egg/internal/storage"
)

// openStorage opens the configured database and brings its schema up to date.
func (a *app) openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.settings.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// inTx runs fn inside one storage transaction, committing only on success.
func (a *app) inTx(ctx context.Context, fn func(tx service.Transaction) error) error {
	store, err := a.openStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	return runTx(ctx, store, fn)
}

func runTx(ctx context.Context, store service.Storage, fn func(tx service.Transaction) error) error {
	tx, err := store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (a *app) withGoals(ctx context.Context, fn func(svc *goals.Service) error) error {
	return a.inTx(ctx, func(tx service.Transaction) error {
		svc, err := goals.New(goals.DepsFrom(tx))
		if err != nil {
			return err
		}
		return fn(svc)
	})
}

func (a *app) withInbox(ctx context.Context, fn func(svc *inbox.Service) error) error {
	return a.inTx(ctx, func(tx service.Transaction) error {
		svc, err := inbox.New(inbox.DepsFrom(tx))
		if err != nil {
			return err
		}
		return fn(svc)
	})
}

func (a *app) withImporter(ctx context.Context, fn func(svc *importer.Service) error) error {
	return a.inTx(ctx, func(tx service.Transaction) error {
		svc, err := importer.New(importer.DepsFrom(tx))
		if err != nil {
			return err
		}
		return fn(svc)
	})
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

// stringFlag returns the flag's value when it was set on the command line, nil otherwise.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}
