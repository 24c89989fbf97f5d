package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

// AddCategory creates a category. Names are unique per owner and kind, ignoring case.
func (s *Service) AddCategory(ctx context.Context, ownerID, name string, kind model.TransactionKind) (*model.Category, error) {
	category, err := model.NewCategory(ownerID, name, kind, s.now())
	if err != nil {
		return nil, err
	}

	existing, err := s.ListCategories(ctx, ownerID, kind)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, category.Name) {
			return nil, common.NewValidationError("category %q already exists", category.Name)
		}
	}

	if err := s.deps.Categories.AddCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	slog.Info("Created category", "category_id", category.ID, "name", category.Name, "kind", category.Kind)
	return category, nil
}

// ListCategories returns the owner's categories by name. An empty kind lists both kinds.
func (s *Service) ListCategories(ctx context.Context, ownerID string, kind model.TransactionKind) ([]model.Category, error) {
	if kind != "" && kind != model.KindIncome && kind != model.KindExpense {
		return nil, common.NewValidationError("category kind must be INCOME or EXPENSE, got %q", kind)
	}
	all, err := s.deps.Categories.GetCategories(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]model.Category, 0, len(all))
	for _, c := range all {
		if kind == "" || c.Kind == kind {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

// AddProfile creates a profile. Names are unique per owner, ignoring case.
func (s *Service) AddProfile(ctx context.Context, ownerID, name string) (*model.Profile, error) {
	profile, err := model.NewProfile(ownerID, name, s.now())
	if err != nil {
		return nil, err
	}

	existing, err := s.ListProfiles(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, profile.Name) {
			return nil, common.NewValidationError("profile %q already exists", profile.Name)
		}
	}

	if err := s.deps.Profiles.AddProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	slog.Info("Created profile", "profile_id", profile.ID, "name", profile.Name)
	return profile, nil
}

// ListProfiles returns the owner's profiles by name.
func (s *Service) ListProfiles(ctx context.Context, ownerID string) ([]model.Profile, error) {
	profiles, err := s.deps.Profiles.GetProfiles(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return profiles, nil
}
