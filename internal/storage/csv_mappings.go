package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

const mappingColumns = `id, owner_id, name, date_column, value_column, description_column, created_at`

// AddCSVMapping inserts a mapping. A second mapping with the same owner and
// name fails with common.ErrDuplicateEntry.
func (s *SQLiteStorage) AddCSVMapping(ctx context.Context, mapping *model.CSVMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMapping(mapping); err != nil {
		return err
	}
	return s.addCSVMappingTx(ctx, s.db, mapping)
}

func (s *SQLiteStorage) addCSVMappingTx(ctx context.Context, q queryable, m *model.CSVMapping) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO csv_mappings (`+mappingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.OwnerID, m.Name, m.DateColumn, m.ValueColumn, m.DescriptionColumn, m.CreatedAt.UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("csv mapping %q: %w", m.Name, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert csv mapping: %w", err)
	}
	return nil
}

// GetCSVMappingByID returns a mapping by its ID.
func (s *SQLiteStorage) GetCSVMappingByID(ctx context.Context, id string) (*model.CSVMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getCSVMappingByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCSVMappingByIDTx(ctx context.Context, q queryable, id string) (*model.CSVMapping, error) {
	row := q.QueryRowContext(ctx, `SELECT `+mappingColumns+` FROM csv_mappings WHERE id = ?`, id)
	return scanMapping(row, id)
}

// GetCSVMappingByName returns the owner's mapping with the given name.
func (s *SQLiteStorage) GetCSVMappingByName(ctx context.Context, ownerID, name string) (*model.CSVMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getCSVMappingByNameTx(ctx, s.db, ownerID, name)
}

func (s *SQLiteStorage) getCSVMappingByNameTx(ctx context.Context, q queryable, ownerID, name string) (*model.CSVMapping, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+mappingColumns+` FROM csv_mappings WHERE owner_id = ? AND name = ?
	`, ownerID, name)
	return scanMapping(row, name)
}

// GetCSVMappings returns the owner's mappings ordered by name.
func (s *SQLiteStorage) GetCSVMappings(ctx context.Context, ownerID string) ([]model.CSVMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCSVMappingsTx(ctx, s.db, ownerID)
}

func (s *SQLiteStorage) getCSVMappingsTx(ctx context.Context, q queryable, ownerID string) ([]model.CSVMapping, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+mappingColumns+` FROM csv_mappings WHERE owner_id = ? ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query csv mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var mappings []model.CSVMapping
	for rows.Next() {
		var m model.CSVMapping
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.DateColumn, &m.ValueColumn, &m.DescriptionColumn, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan csv mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func scanMapping(row *sql.Row, key string) (*model.CSVMapping, error) {
	var m model.CSVMapping
	err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &m.DateColumn, &m.ValueColumn, &m.DescriptionColumn, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("csv mapping %s: %w", key, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query csv mapping: %w", err)
	}
	return &m, nil
}
