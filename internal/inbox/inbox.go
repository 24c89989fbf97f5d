// Package inbox implements the transaction use cases: launching entries,
// triaging the PENDING inbox, filtering and the dashboard summary.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
	"github.com/Veraticus/nest-egg/internal/service"
)

// Deps contains all dependencies required by the inbox service.
type Deps struct {
	Transactions service.TransactionRepository
	Categories   service.CategoryRepository
	Profiles     service.ProfileRepository
}

// DepsFrom wires every dependency to one repository set.
func DepsFrom(repos service.Repositories) Deps {
	return Deps{
		Transactions: repos,
		Categories:   repos,
		Profiles:     repos,
	}
}

// Validate ensures all required dependencies are provided.
func (d *Deps) Validate() error {
	if d.Transactions == nil {
		return fmt.Errorf("transaction repository dependency is required")
	}
	if d.Categories == nil {
		return fmt.Errorf("category repository dependency is required")
	}
	if d.Profiles == nil {
		return fmt.Errorf("profile repository dependency is required")
	}
	return nil
}

// Config holds configuration options for the inbox service.
type Config struct {
	// Now decides which month the dashboard summarizes.
	Now func() time.Time
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Now: time.Now}
}

// Service runs transaction use cases. The caller owns the storage transaction.
type Service struct {
	deps Deps
	now  func() time.Time
}

// New creates an inbox service with the default configuration.
func New(deps Deps) (*Service, error) {
	return NewWithConfig(deps, DefaultConfig())
}

// NewWithConfig creates an inbox service with custom configuration.
func NewWithConfig(deps Deps, config Config) (*Service, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Service{deps: deps, now: config.Now}, nil
}

// LaunchInput describes a manually entered transaction.
type LaunchInput struct {
	Date        time.Time
	Description string
	CategoryID  string
	ProfileID   string
	Kind        model.TransactionKind
	Value       float64
}

// Changes lists the editable fields of a pending transaction. Nil fields are left alone.
type Changes struct {
	Description *string
	CategoryID  *string
	ProfileID   *string
}

// Launch records a transaction. It goes to the inbox unless both category and profile are set.
func (s *Service) Launch(ctx context.Context, ownerID string, in LaunchInput) (*model.Transaction, error) {
	if in.Date.IsZero() {
		return nil, common.NewValidationError("transaction date is required")
	}
	if err := s.checkRefs(ctx, ownerID, in.CategoryID, in.ProfileID); err != nil {
		return nil, err
	}

	txn, err := model.NewTransaction(ownerID, in.Value, in.Kind, in.Date, strings.TrimSpace(in.Description), in.CategoryID, in.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Transactions.AddTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	slog.Info("Launched transaction",
		"transaction_id", txn.ID,
		"kind", txn.Kind,
		"value", txn.Value,
		"status", txn.Status)
	return txn, nil
}

// Update edits description, category or profile of a PENDING transaction.
// Value and date never change. Once both category and profile are set the
// transaction leaves the inbox.
func (s *Service) Update(ctx context.Context, ownerID, transactionID string, changes Changes) (*model.Transaction, error) {
	txn, err := s.load(ctx, ownerID, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.IsPending() {
		return nil, common.NewPermissionError("transaction %s is already processed and cannot be edited", transactionID)
	}

	if changes.Description != nil {
		txn.Description = strings.TrimSpace(*changes.Description)
	}
	if changes.CategoryID != nil {
		txn.CategoryID = strings.TrimSpace(*changes.CategoryID)
	}
	if changes.ProfileID != nil {
		txn.ProfileID = strings.TrimSpace(*changes.ProfileID)
	}
	if err := s.checkRefs(ctx, ownerID, txn.CategoryID, txn.ProfileID); err != nil {
		return nil, err
	}
	if txn.CategoryID != "" && txn.ProfileID != "" {
		txn.Categorize(txn.CategoryID, txn.ProfileID)
	}

	if err := s.deps.Transactions.UpdateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	slog.Info("Updated transaction", "transaction_id", txn.ID, "status", txn.Status)
	return txn, nil
}

// Delete removes a transaction. Deleting an unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, ownerID, transactionID string) error {
	txn, err := s.deps.Transactions.GetTransactionByID(ctx, transactionID)
	if errors.Is(err, common.ErrNotFound) {
		slog.Debug("Delete of unknown transaction ignored", "transaction_id", transactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn.OwnerID != ownerID {
		return common.NewPermissionError("transaction %s does not belong to this user", transactionID)
	}
	if err := s.deps.Transactions.DeleteTransaction(ctx, txn.ID); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	slog.Info("Deleted transaction", "transaction_id", txn.ID)
	return nil
}

// ListPending returns the owner's inbox, newest first.
func (s *Service) ListPending(ctx context.Context, ownerID string) ([]model.Transaction, error) {
	txns, err := s.deps.Transactions.GetPendingTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending transactions: %w", err)
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	return txns, nil
}

// CategorizeBatch assigns category and profile to many pending transactions at once.
// Foreign and already processed entries are skipped. It returns how many were updated.
func (s *Service) CategorizeBatch(ctx context.Context, ownerID string, transactionIDs []string, categoryID, profileID string) (int, error) {
	categoryID = strings.TrimSpace(categoryID)
	profileID = strings.TrimSpace(profileID)
	if categoryID == "" || profileID == "" {
		return 0, common.NewValidationError("both a category and a profile are required")
	}
	if len(transactionIDs) == 0 {
		return 0, nil
	}
	if err := s.checkRefs(ctx, ownerID, categoryID, profileID); err != nil {
		return 0, err
	}

	txns, err := s.deps.Transactions.GetTransactionsByIDs(ctx, transactionIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions: %w", err)
	}

	updated := 0
	for i := range txns {
		txn := &txns[i]
		if txn.OwnerID != ownerID || !txn.IsPending() {
			continue
		}
		txn.Categorize(categoryID, profileID)
		if err := s.deps.Transactions.UpdateTransaction(ctx, txn); err != nil {
			return updated, fmt.Errorf("failed to update transaction %s: %w", txn.ID, err)
		}
		updated++
	}

	slog.Info("Categorized transactions",
		"requested", len(transactionIDs),
		"updated", updated,
		"category_id", categoryID)
	return updated, nil
}

// Filter lists the owner's transactions matching the filter. OwnerID in the
// filter is always replaced by ownerID.
func (s *Service) Filter(ctx context.Context, ownerID string, filter model.TransactionFilter) ([]model.Transaction, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, common.NewValidationError("end date must not be before start date")
	}
	if filter.MinValue != nil && filter.MaxValue != nil && *filter.MaxValue < *filter.MinValue {
		return nil, common.NewValidationError("maximum value must not be below minimum value")
	}
	filter.OwnerID = ownerID

	txns, err := s.deps.Transactions.GetTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to filter transactions: %w", err)
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	return txns, nil
}

// DashboardStats summarizes processed transactions: the all-time balance and
// the current month's income and expenses.
func (s *Service) DashboardStats(ctx context.Context, ownerID string) (*model.DashboardStats, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	stats, err := s.deps.Transactions.GetDashboardStats(ctx, ownerID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return stats, nil
}

func (s *Service) load(ctx context.Context, ownerID, transactionID string) (*model.Transaction, error) {
	txn, err := s.deps.Transactions.GetTransactionByID(ctx, transactionID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewNotFoundError("transaction %s not found", transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if txn.OwnerID != ownerID {
		return nil, common.NewPermissionError("transaction %s does not belong to this user", transactionID)
	}
	return txn, nil
}

// checkRefs verifies that referenced category and profile exist and belong to the owner.
func (s *Service) checkRefs(ctx context.Context, ownerID, categoryID, profileID string) error {
	if categoryID != "" {
		category, err := s.deps.Categories.GetCategoryByID(ctx, categoryID)
		if errors.Is(err, common.ErrNotFound) {
			return common.NewValidationError("category %s not found", categoryID)
		}
		if err != nil {
			return fmt.Errorf("failed to load category: %w", err)
		}
		if category.OwnerID != ownerID {
			return common.NewPermissionError("category %s does not belong to this user", categoryID)
		}
	}
	if profileID != "" {
		profile, err := s.deps.Profiles.GetProfileByID(ctx, profileID)
		if errors.Is(err, common.ErrNotFound) {
			return common.NewValidationError("profile %s not found", profileID)
		}
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if profile.OwnerID != ownerID {
			return common.NewPermissionError("profile %s does not belong to this user", profileID)
		}
	}
	return nil
}
