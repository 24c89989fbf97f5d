package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Transactions, categories and profiles",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS profiles (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					name TEXT NOT NULL,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_profiles_owner ON profiles(owner_id)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					name TEXT NOT NULL,
					kind TEXT NOT NULL CHECK (kind IN ('INCOME', 'EXPENSE')),
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_categories_owner ON categories(owner_id)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					value REAL NOT NULL CHECK (value > 0),
					kind TEXT NOT NULL CHECK (kind IN ('INCOME', 'EXPENSE')),
					date TEXT NOT NULL,
					status TEXT NOT NULL CHECK (status IN ('PENDING', 'PROCESSED')),
					description TEXT NOT NULL DEFAULT '',
					category_id TEXT,
					profile_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_owner_status ON transactions(owner_id, status)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Goals, reservations and goal usages",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS goals (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					name TEXT NOT NULL,
					target_value REAL NOT NULL CHECK (target_value > 0),
					current_value REAL NOT NULL DEFAULT 0 CHECK (current_value >= 0),
					deadline TEXT NOT NULL,
					profile_id TEXT,
					status TEXT NOT NULL,
					conclusion_origin TEXT NOT NULL DEFAULT '',
					concluded_at DATETIME,
					finalized_at DATETIME,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_goals_owner_deadline ON goals(owner_id, deadline)`,

				`CREATE TABLE IF NOT EXISTS reservations (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					goal_id TEXT NOT NULL REFERENCES goals(id),
					transaction_id TEXT,
					note TEXT NOT NULL DEFAULT '',
					value REAL NOT NULL CHECK (value > 0),
					created_at DATETIME NOT NULL,
					updated_at DATETIME
				)`,
				`CREATE INDEX idx_reservations_goal ON reservations(goal_id)`,

				`CREATE TABLE IF NOT EXISTS goal_usages (
					id TEXT PRIMARY KEY,
					goal_id TEXT NOT NULL REFERENCES goals(id),
					transaction_id TEXT NOT NULL,
					value REAL NOT NULL,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_goal_usages_goal ON goal_usages(goal_id)`,
			)
		},
	},
	{
		Version:     3,
		Description: "Saved CSV column mappings",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS csv_mappings (
					id TEXT PRIMARY KEY,
					owner_id TEXT NOT NULL,
					name TEXT NOT NULL,
					date_column TEXT NOT NULL,
					value_column TEXT NOT NULL,
					description_column TEXT NOT NULL,
					created_at DATETIME NOT NULL,
					UNIQUE (owner_id, name)
				)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate runs all database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
