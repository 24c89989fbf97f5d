package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

// AddCategory inserts a new category.
func (s *SQLiteStorage) AddCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	return s.addCategoryTx(ctx, s.db, category)
}

func (s *SQLiteStorage) addCategoryTx(ctx context.Context, q queryable, category *model.Category) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, kind, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, category.ID, category.OwnerID, category.Name, string(category.Kind), category.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	slog.Debug("created category", "id", category.ID, "name", category.Name)
	return nil
}

// GetCategoryByID returns a category by its ID.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getCategoryByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getCategoryByIDTx(ctx context.Context, q queryable, id string) (*model.Category, error) {
	var (
		cat  model.Category
		kind string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, owner_id, name, kind, created_at FROM categories WHERE id = ?
	`, id).Scan(&cat.ID, &cat.OwnerID, &cat.Name, &kind, &cat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	cat.Kind = model.TransactionKind(kind)
	return &cat, nil
}

// GetCategories returns the owner's categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context, ownerID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategoriesTx(ctx, s.db, ownerID)
}

func (s *SQLiteStorage) getCategoriesTx(ctx context.Context, q queryable, ownerID string) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, owner_id, name, kind, created_at
		FROM categories
		WHERE owner_id = ?
		ORDER BY name`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var (
			cat  model.Category
			kind string
		)
		if err := rows.Scan(&cat.ID, &cat.OwnerID, &cat.Name, &kind, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Kind = model.TransactionKind(kind)
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// DeleteCategory removes a category. Transactions keep their now dangling category ID.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return s.deleteCategoryTx(ctx, s.db, id)
}

func (s *SQLiteStorage) deleteCategoryTx(ctx context.Context, q queryable, id string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return checkAffected(result, "category", id)
}

// AddProfile inserts a new profile.
func (s *SQLiteStorage) AddProfile(ctx context.Context, profile *model.Profile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	return s.addProfileTx(ctx, s.db, profile)
}

func (s *SQLiteStorage) addProfileTx(ctx context.Context, q queryable, profile *model.Profile) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO profiles (id, owner_id, name, created_at) VALUES (?, ?, ?, ?)
	`, profile.ID, profile.OwnerID, profile.Name, profile.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// GetProfileByID returns a profile by its ID.
func (s *SQLiteStorage) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getProfileByIDTx(ctx, s.db, id)
}

func (s *SQLiteStorage) getProfileByIDTx(ctx context.Context, q queryable, id string) (*model.Profile, error) {
	var p model.Profile
	err := q.QueryRowContext(ctx, `
		SELECT id, owner_id, name, created_at FROM profiles WHERE id = ?
	`, id).Scan(&p.ID, &p.OwnerID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}

// GetProfiles returns the owner's profiles ordered by name.
func (s *SQLiteStorage) GetProfiles(ctx context.Context, ownerID string) ([]model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getProfilesTx(ctx, s.db, ownerID)
}

func (s *SQLiteStorage) getProfilesTx(ctx context.Context, q queryable, ownerID string) ([]model.Profile, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, owner_id, name, created_at FROM profiles WHERE owner_id = ? ORDER BY name
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var profiles []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
