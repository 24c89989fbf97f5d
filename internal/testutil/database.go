// Package testutil provides shared test fixtures backed by a real SQLite database.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/nest-egg/internal/model"
	"github.com/Veraticus/nest-egg/internal/service"
	"github.com/Veraticus/nest-egg/internal/storage"
)

// DefaultOwner is the owner id used by fixtures unless a test picks another.
const DefaultOwner = "owner-1"

// FixedNow is the clock reading used by fixtures.
var FixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

// Clock returns FixedNow. It can be injected wherever a func() time.Time is expected.
func Clock() time.Time {
	return FixedNow
}

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// WithTransaction executes the given function within a database transaction.
// The transaction is committed when fn succeeds and rolled back otherwise.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// MustAddTransaction stores a transaction for owner or fails the test.
func (db *TestDB) MustAddTransaction(owner string, value float64, kind model.TransactionKind, date time.Time, categoryID, profileID string) *model.Transaction {
	db.t.Helper()
	txn, err := model.NewTransaction(owner, value, kind, date, "fixture", categoryID, profileID)
	if err != nil {
		db.t.Fatalf("failed to build transaction: %v", err)
	}
	if err := db.Storage.AddTransaction(context.Background(), txn); err != nil {
		db.t.Fatalf("failed to add transaction: %v", err)
	}
	return txn
}

// MustAddGoal stores an ACTIVE goal created at FixedNow or fails the test.
func (db *TestDB) MustAddGoal(owner, name string, target float64, deadline time.Time) *model.Goal {
	db.t.Helper()
	goal, err := model.NewGoal(owner, name, target, deadline, "", FixedNow)
	if err != nil {
		db.t.Fatalf("failed to build goal: %v", err)
	}
	if err := db.Storage.AddGoal(context.Background(), goal); err != nil {
		db.t.Fatalf("failed to add goal: %v", err)
	}
	return goal
}

// MustGetGoal reloads a goal or fails the test.
func (db *TestDB) MustGetGoal(id string) *model.Goal {
	db.t.Helper()
	goal, err := db.Storage.GetGoalByID(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to get goal %s: %v", id, err)
	}
	return goal
}

// MustReservationTotal returns the goal's ledger sum or fails the test.
func (db *TestDB) MustReservationTotal(goalID string) float64 {
	db.t.Helper()
	total, err := db.Storage.GetReservationTotalByGoal(context.Background(), goalID)
	if err != nil {
		db.t.Fatalf("failed to sum reservations: %v", err)
	}
	return total
}

// SeedCategories stores one category per name, all of the given kind.
func (db *TestDB) SeedCategories(owner string, kind model.TransactionKind, names ...string) []model.Category {
	db.t.Helper()
	out := make([]model.Category, 0, len(names))
	for _, name := range names {
		c, err := model.NewCategory(owner, name, kind, FixedNow)
		if err != nil {
			db.t.Fatalf("failed to build category %q: %v", name, err)
		}
		if err := db.Storage.AddCategory(context.Background(), c); err != nil {
			db.t.Fatalf("failed to seed category %q: %v", name, err)
		}
		out = append(out, *c)
	}
	return out
}

// MustAddProfile stores a profile for owner or fails the test.
func (db *TestDB) MustAddProfile(owner, name string) *model.Profile {
	db.t.Helper()
	p, err := model.NewProfile(owner, name, FixedNow)
	if err != nil {
		db.t.Fatalf("failed to build profile %q: %v", name, err)
	}
	if err := db.Storage.AddProfile(context.Background(), p); err != nil {
		db.t.Fatalf("failed to add profile %q: %v", name, err)
	}
	return p
}
