// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/nest-egg/internal/model"
)

// GoalRepository persists savings goals.
type GoalRepository interface {
	AddGoal(ctx context.Context, goal *model.Goal) error
	UpdateGoal(ctx context.Context, goal *model.Goal) error
	GetGoalByID(ctx context.Context, id string) (*model.Goal, error)
	// GetGoalsByOwner returns the owner's goals ordered by deadline ascending.
	GetGoalsByOwner(ctx context.Context, ownerID string) ([]model.Goal, error)
}

// ReservationRepository persists the reservation ledger.
type ReservationRepository interface {
	AddReservation(ctx context.Context, reservation *model.Reservation) error
	UpdateReservation(ctx context.Context, reservation *model.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
	GetReservationByID(ctx context.Context, id string) (*model.Reservation, error)
	GetReservationsByGoal(ctx context.Context, goalID string) ([]model.Reservation, error)
	// GetReservationTotalByGoal sums the goal's reservations, 0 when there are none.
	GetReservationTotalByGoal(ctx context.Context, goalID string) (float64, error)
}

// GoalUsageRepository persists the append-only usage ledger.
type GoalUsageRepository interface {
	AddGoalUsage(ctx context.Context, goalID, transactionID string, value float64) (*model.GoalUsage, error)
	SumGoalUsage(ctx context.Context, goalID string) (float64, error)
	GetGoalUsages(ctx context.Context, goalID string) ([]model.GoalUsage, error)
}

// TransactionRepository persists financial transactions.
type TransactionRepository interface {
	AddTransaction(ctx context.Context, txn *model.Transaction) error
	SaveTransactions(ctx context.Context, txns []model.Transaction) error
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionsByIDs(ctx context.Context, ids []string) ([]model.Transaction, error)
	GetPendingTransactions(ctx context.Context, ownerID string) ([]model.Transaction, error)
	GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error)
	GetDashboardStats(ctx context.Context, ownerID string, monthStart time.Time) (*model.DashboardStats, error)
}

// CategoryRepository persists transaction categories.
type CategoryRepository interface {
	AddCategory(ctx context.Context, category *model.Category) error
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	GetCategories(ctx context.Context, ownerID string) ([]model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// ProfileRepository persists profiles.
type ProfileRepository interface {
	AddProfile(ctx context.Context, profile *model.Profile) error
	GetProfileByID(ctx context.Context, id string) (*model.Profile, error)
	GetProfiles(ctx context.Context, ownerID string) ([]model.Profile, error)
}

// CSVMappingRepository persists saved CSV column layouts.
type CSVMappingRepository interface {
	AddCSVMapping(ctx context.Context, mapping *model.CSVMapping) error
	GetCSVMappingByID(ctx context.Context, id string) (*model.CSVMapping, error)
	GetCSVMappingByName(ctx context.Context, ownerID, name string) (*model.CSVMapping, error)
	GetCSVMappings(ctx context.Context, ownerID string) ([]model.CSVMapping, error)
}

// Repositories groups every repository contract.
type Repositories interface {
	GoalRepository
	ReservationRepository
	GoalUsageRepository
	TransactionRepository
	CategoryRepository
	ProfileRepository
	CSVMappingRepository
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	Repositories

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	Repositories
}
