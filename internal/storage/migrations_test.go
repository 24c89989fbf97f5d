package storage

import (
	"context"
	"testing"
)

func TestMigrations_Ordered(t *testing.T) {
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migrations[%d].Version = %d, want %d", i, m.Version, i+1)
		}
		if m.Description == "" {
			t.Errorf("migration %d has no description", m.Version)
		}
	}
	if last := migrations[len(migrations)-1].Version; last != ExpectedSchemaVersion {
		t.Errorf("last migration = %d, ExpectedSchemaVersion = %d", last, ExpectedSchemaVersion)
	}
}

func TestMigrations_CreateTables(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	for _, table := range []string{"transactions", "categories", "profiles", "goals", "reservations", "goal_usages", "csv_mappings"} {
		var count int
		err := store.db.QueryRowContext(context.Background(), `
			SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?
		`, table).Scan(&count)
		if err != nil {
			t.Fatalf("Failed to check table %s: %v", table, err)
		}
		if count != 1 {
			t.Errorf("table %s was not created", table)
		}
	}
}

func TestMigrations_ForeignKeysEnabled(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	var enabled int
	if err := store.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("Failed to read foreign_keys pragma: %v", err)
	}
	if enabled != 1 {
		t.Error("foreign keys are not enforced")
	}
}
