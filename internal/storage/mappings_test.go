package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/nest-egg/internal/common"
	"github.com/Veraticus/nest-egg/internal/model"
)

func TestSQLiteStorage_CSVMappings(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	m, err := model.NewCSVMapping("alice", "Nubank", "Data", "Valor", "Descricao", testDay)
	if err != nil {
		t.Fatalf("NewCSVMapping() error = %v", err)
	}
	if err := store.AddCSVMapping(ctx, m); err != nil {
		t.Fatalf("AddCSVMapping() error = %v", err)
	}

	dup, _ := model.NewCSVMapping("alice", "Nubank", "A", "B", "C", testDay)
	if err := store.AddCSVMapping(ctx, dup); !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("duplicate error = %v, want ErrDuplicateEntry", err)
	}

	other, _ := model.NewCSVMapping("bob", "Nubank", "A", "B", "C", testDay)
	if err := store.AddCSVMapping(ctx, other); err != nil {
		t.Errorf("same name for another owner rejected: %v", err)
	}

	byName, err := store.GetCSVMappingByName(ctx, "alice", "Nubank")
	if err != nil {
		t.Fatalf("GetCSVMappingByName() error = %v", err)
	}
	if byName.ID != m.ID || byName.DescriptionColumn != "Descricao" {
		t.Errorf("unexpected mapping: %+v", byName)
	}

	list, err := store.GetCSVMappings(ctx, "alice")
	if err != nil {
		t.Fatalf("GetCSVMappings() error = %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d mappings, want 1", len(list))
	}
}

func TestSQLiteStorage_CategoriesAndProfiles(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"Salary", "Food"} {
		kind := model.KindExpense
		if name == "Salary" {
			kind = model.KindIncome
		}
		c, err := model.NewCategory("alice", name, kind, testDay)
		if err != nil {
			t.Fatalf("NewCategory() error = %v", err)
		}
		if err := store.AddCategory(ctx, c); err != nil {
			t.Fatalf("AddCategory() error = %v", err)
		}
	}

	categories, err := store.GetCategories(ctx, "alice")
	if err != nil {
		t.Fatalf("GetCategories() error = %v", err)
	}
	if len(categories) != 2 || categories[0].Name != "Food" {
		t.Fatalf("unexpected categories: %+v", categories)
	}
	if categories[1].Kind != model.KindIncome {
		t.Errorf("Salary kind = %s, want INCOME", categories[1].Kind)
	}

	if err := store.DeleteCategory(ctx, categories[0].ID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if _, err := store.GetCategoryByID(ctx, categories[0].ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("deleted category error = %v, want ErrNotFound", err)
	}

	p, _ := model.NewProfile("alice", "Household", testDay)
	if err := store.AddProfile(ctx, p); err != nil {
		t.Fatalf("AddProfile() error = %v", err)
	}
	got, err := store.GetProfileByID(ctx, p.ID)
	if err != nil || got.Name != "Household" {
		t.Errorf("GetProfileByID() = %+v, %v", got, err)
	}
	profiles, err := store.GetProfiles(ctx, "alice")
	if err != nil || len(profiles) != 1 {
		t.Errorf("GetProfiles() = %+v, %v", profiles, err)
	}
}
