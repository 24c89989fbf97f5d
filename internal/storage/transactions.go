package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

const transactionColumns = `id, owner_id, value, kind, date, status, description, category_id, profile_id`

// AddTransaction inserts a single transaction.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return s.addTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) addTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, transactionArgs(txn)...)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// SaveTransactions saves multiple transactions to the database.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	// Validate inputs
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveTransactionsTx(ctx, tx, transactions); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		if _, err := stmt.ExecContext(ctx, transactionArgs(&transactions[i])...); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", transactions[i].ID, err)
		}
	}

	slog.Debug("Saved transactions", "count", len(transactions))
	return nil
}

func transactionArgs(txn *model.Transaction) []any {
	return []any{
		txn.ID,
		txn.OwnerID,
		txn.Value,
		string(txn.Kind),
		formatDate(txn.Date),
		string(txn.Status),
		txn.Description,
		nullString(txn.CategoryID),
		nullString(txn.ProfileID),
	}
}

// UpdateTransaction persists description, category, profile and status.
// Value and date are fixed at creation and are never rewritten.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return s.updateTransactionTx(ctx, s.db, txn)
}

func (s *SQLiteStorage) updateTransactionTx(ctx context.Context, q queryable, txn *model.Transaction) error {
	result, err := q.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, category_id = ?, profile_id = ?, status = ?
		WHERE id = ?
	`, txn.Description, nullString(txn.CategoryID), nullString(txn.ProfileID), string(txn.Status), txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return checkAffected(result, "transaction", txn.ID)
}

// DeleteTransaction removes a transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteTransactionTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteTransactionTx(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return checkAffected(result, "transaction", id)
}

// GetTransactionByID retrieves a single transaction by ID.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getTransactionByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getTransactionByIDTx(ctx context.Context, q queryable, id string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetTransactionsByIDs returns the transactions that exist among ids.
func (s *SQLiteStorage) GetTransactionsByIDs(ctx context.Context, ids []string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactionsByIDsTx(ctx, s.db, ids)
}

func (s *SQLiteStorage) getTransactionsByIDsTx(ctx context.Context, q queryable, ids []string) ([]model.Transaction, error) {
	if len(ids) == 0 {
		return []model.Transaction{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY date DESC, id ASC`
	return queryTransactions(ctx, q, query, args...)
}

// GetPendingTransactions returns the owner's inbox, newest first.
func (s *SQLiteStorage) GetPendingTransactions(ctx context.Context, ownerID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	return s.getPendingTransactionsTx(ctx, s.db, ownerID)
}

func (s *SQLiteStorage) getPendingTransactionsTx(ctx context.Context, q queryable, ownerID string) ([]model.Transaction, error) {
	return queryTransactions(ctx, q, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE owner_id = ? AND status = ?
		ORDER BY date DESC, id ASC
	`, ownerID, string(model.StatusPending))
}

// GetTransactions retrieves transactions matching the filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.getTransactionsTx(ctx, s.db, filter)
}

func (s *SQLiteStorage) getTransactionsTx(ctx context.Context, q queryable, filter model.TransactionFilter) ([]model.Transaction, error) {
	conditions := []string{"owner_id = ?"}
	args := []any{filter.OwnerID}

	if filter.From != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, formatDate(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, formatDate(*filter.To))
	}
	if filter.MinValue != nil {
		conditions = append(conditions, "value >= ?")
		args = append(args, *filter.MinValue)
	}
	if filter.MaxValue != nil {
		conditions = append(conditions, "value <= ?")
		args = append(args, *filter.MaxValue)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Description != "" {
		conditions = append(conditions, "description LIKE ?")
		args = append(args, "%"+filter.Description+"%")
	}
	switch {
	case filter.WithoutCategory:
		conditions = append(conditions, "category_id IS NULL")
	case filter.CategoryID != "":
		conditions = append(conditions, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	switch {
	case filter.WithoutProfile:
		conditions = append(conditions, "profile_id IS NULL")
	case filter.ProfileID != "":
		conditions = append(conditions, "profile_id = ?")
		args = append(args, filter.ProfileID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY date DESC, id ASC`
	return queryTransactions(ctx, q, query, args...)
}

// GetDashboardStats aggregates the owner's processed transactions.
// Balance covers all time; income and expenses count from monthStart on.
func (s *SQLiteStorage) GetDashboardStats(ctx context.Context, ownerID string, monthStart time.Time) (*model.DashboardStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	return s.getDashboardStatsTx(ctx, s.db, ownerID, monthStart)
}

func (s *SQLiteStorage) getDashboardStatsTx(ctx context.Context, q queryable, ownerID string, monthStart time.Time) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	err := q.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN kind = 'INCOME' THEN value ELSE -value END), 0),
			COALESCE(SUM(CASE WHEN kind = 'INCOME' AND date >= ? THEN value ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'EXPENSE' AND date >= ? THEN value ELSE 0 END), 0)
		FROM transactions
		WHERE owner_id = ? AND status = ?
	`, formatDate(monthStart), formatDate(monthStart), ownerID, string(model.StatusProcessed)).Scan(
		&stats.Balance,
		&stats.MonthIncome,
		&stats.MonthExpenses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return &stats, nil
}

func queryTransactions(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn        model.Transaction
		kind       string
		date       string
		status     string
		categoryID sql.NullString
		profileID  sql.NullString
	)
	err := row.Scan(
		&txn.ID,
		&txn.OwnerID,
		&txn.Value,
		&kind,
		&date,
		&status,
		&txn.Description,
		&categoryID,
		&profileID,
	)
	if err != nil {
		return nil, err
	}

	if txn.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	txn.Kind = model.TransactionKind(kind)
	txn.Status = model.TransactionStatus(status)
	txn.CategoryID = categoryID.String
	txn.ProfileID = profileID.String
	return &txn, nil
}
