package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
	"github.com/Veraticus/nest-egg/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// dateLayout is how calendar dates (transaction dates, goal deadlines) are stored.
const dateLayout = "2006-01-02"

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	// Validate input
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite doesn't benefit from multiple connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	return t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// checkAffected turns a zero-row update or delete into a not-found error.
func checkAffected(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, common.ErrNotFound)
	}
	return nil
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Goal operations

func (t *sqliteTransaction) AddGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	return t.storage.addGoalTx(ctx, t.tx, goal)
}

func (t *sqliteTransaction) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	return t.storage.updateGoalTx(ctx, t.tx, goal)
}

func (t *sqliteTransaction) GetGoalByID(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getGoalByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetGoalsByOwner(ctx context.Context, ownerID string) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	return t.storage.getGoalsByOwnerTx(ctx, t.tx, ownerID)
}

// Reservation operations

func (t *sqliteTransaction) AddReservation(ctx context.Context, reservation *model.Reservation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReservation(reservation); err != nil {
		return err
	}
	return t.storage.addReservationTx(ctx, t.tx, reservation)
}

func (t *sqliteTransaction) UpdateReservation(ctx context.Context, reservation *model.Reservation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReservation(reservation); err != nil {
		return err
	}
	return t.storage.updateReservationTx(ctx, t.tx, reservation)
}

func (t *sqliteTransaction) DeleteReservation(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return t.storage.deleteReservationTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetReservationByID(ctx context.Context, id string) (*model.Reservation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getReservationByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetReservationsByGoal(ctx context.Context, goalID string) ([]model.Reservation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return nil, err
	}
	return t.storage.getReservationsByGoalTx(ctx, t.tx, goalID)
}

func (t *sqliteTransaction) GetReservationTotalByGoal(ctx context.Context, goalID string) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return 0, err
	}
	return t.storage.getReservationTotalByGoalTx(ctx, t.tx, goalID)
}

// Goal usage operations

func (t *sqliteTransaction) AddGoalUsage(ctx context.Context, goalID, transactionID string, value float64) (*model.GoalUsage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUsage(goalID, transactionID); err != nil {
		return nil, err
	}
	return t.storage.addGoalUsageTx(ctx, t.tx, goalID, transactionID, value)
}

func (t *sqliteTransaction) SumGoalUsage(ctx context.Context, goalID string) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return 0, err
	}
	return t.storage.sumGoalUsageTx(ctx, t.tx, goalID)
}

func (t *sqliteTransaction) GetGoalUsages(ctx context.Context, goalID string) ([]model.GoalUsage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(goalID, "goalID"); err != nil {
		return nil, err
	}
	return t.storage.getGoalUsagesTx(ctx, t.tx, goalID)
}

// Transaction operations

func (t *sqliteTransaction) AddTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return t.storage.addTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}
	return t.storage.saveTransactionsTx(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	return t.storage.updateTransactionTx(ctx, t.tx, txn)
}

func (t *sqliteTransaction) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return t.storage.deleteTransactionTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getTransactionByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransactionsByIDs(ctx context.Context, ids []string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getTransactionsByIDsTx(ctx, t.tx, ids)
}

func (t *sqliteTransaction) GetPendingTransactions(ctx context.Context, ownerID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	return t.storage.getPendingTransactionsTx(ctx, t.tx, ownerID)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return t.storage.getTransactionsTx(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetDashboardStats(ctx context.Context, ownerID string, monthStart time.Time) (*model.DashboardStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return nil, err
	}
	return t.storage.getDashboardStatsTx(ctx, t.tx, ownerID, monthStart)
}

// Category and profile operations

func (t *sqliteTransaction) AddCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	return t.storage.addCategoryTx(ctx, t.tx, category)
}

func (t *sqliteTransaction) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getCategoryByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context, ownerID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCategoriesTx(ctx, t.tx, ownerID)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return t.storage.deleteCategoryTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) AddProfile(ctx context.Context, profile *model.Profile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	return t.storage.addProfileTx(ctx, t.tx, profile)
}

func (t *sqliteTransaction) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getProfileByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetProfiles(ctx context.Context, ownerID string) ([]model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getProfilesTx(ctx, t.tx, ownerID)
}

// CSV mapping operations

func (t *sqliteTransaction) AddCSVMapping(ctx context.Context, mapping *model.CSVMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMapping(mapping); err != nil {
		return err
	}
	return t.storage.addCSVMappingTx(ctx, t.tx, mapping)
}

func (t *sqliteTransaction) GetCSVMappingByID(ctx context.Context, id string) (*model.CSVMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return t.storage.getCSVMappingByIDTx(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCSVMappingByName(ctx context.Context, ownerID, name string) (*model.CSVMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return t.storage.getCSVMappingByNameTx(ctx, t.tx, ownerID, name)
}

func (t *sqliteTransaction) GetCSVMappings(ctx context.Context, ownerID string) ([]model.CSVMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return t.storage.getCSVMappingsTx(ctx, t.tx, ownerID)
}
