package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/testutil"
)

func setupTestDB(t *testing.T) *testutil.TestDB {
	t.Helper()

	db := testutil.NewTestDB(t)

	// Get migrations path relative to this file
	migrationsDir := filepath.Join("..", "..", "internal", "database", "migrations")
	db.RunMigrations(t, migrationsDir)

	return db
}

func TestResourceRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close(t)

	repo := NewResourceRepository(db.DB)
	ctx := context.Background()

	t.Run("Create valid resource", func(t *testing.T) {
		resource := testutil.FixtureResource()

		if err := repo.Create(ctx, nil, resource); err != nil {
			t.Fatalf("failed to create resource: %v", err)
		}

		found, err := repo.GetByName(ctx, resource.Name)
		if err != nil {
			t.Fatalf("failed to get resource: %v", err)
		}
		if found.Quantity != resource.Quantity {
			t.Errorf("expected quantity %d, got %d", resource.Quantity, found.Quantity)
		}
		if found.Type != models.TypeConsumable {
			t.Errorf("expected type %s, got %s", models.TypeConsumable, found.Type)
		}
	})

	t.Run("Duplicate name rejected", func(t *testing.T) {
		resource := testutil.FixtureResource()

		err := repo.Create(ctx, nil, resource)
		if !errors.Is(err, models.ErrDuplicateResource) {
			t.Errorf("expected ErrDuplicateResource, got %v", err)
		}
	})

	t.Run("Attributes round-trip", func(t *testing.T) {
		equipment := testutil.FixtureEquipment()

		if err := repo.Create(ctx, nil, equipment); err != nil {
			t.Fatalf("failed to create equipment: %v", err)
		}

		found, err := repo.GetByName(ctx, equipment.Name)
		if err != nil {
			t.Fatalf("failed to get equipment: %v", err)
		}
		if found.Attributes["inventory_number"] != "INV-2024-001" {
			t.Errorf("expected inventory_number INV-2024-001, got %q", found.Attributes["inventory_number"])
		}
	})
}

func TestResourceRepository_List(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close(t)

	repo := NewResourceRepository(db.DB)
	ctx := context.Background()

	names := []string{"Гайка М10", "Шайба 8", "Лист стальной 2мм"}
	for _, name := range names {
		resource := testutil.FixtureResource(func(r *models.Resource) {
			r.Name = name
		})
		if err := repo.Create(ctx, nil, resource); err != nil {
			t.Fatalf("failed to create %q: %v", name, err)
		}
	}

	t.Run("Catalog preserves insertion order", func(t *testing.T) {
		resources, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list resources: %v", err)
		}
		if len(resources) != len(names) {
			t.Fatalf("expected %d resources, got %d", len(names), len(resources))
		}
		for i, name := range names {
			if resources[i].Name != name {
				t.Errorf("position %d: expected %q, got %q", i, name, resources[i].Name)
			}
		}
	})

	t.Run("ListBelowMinimum uses inclusive threshold", func(t *testing.T) {
		low := testutil.FixtureResource(func(r *models.Resource) {
			r.Name = "Электрод 3мм"
			r.Quantity = 10
			r.MinQuantity = 10
		})
		if err := repo.Create(ctx, nil, low); err != nil {
			t.Fatalf("failed to create resource: %v", err)
		}

		below, err := repo.ListBelowMinimum(ctx)
		if err != nil {
			t.Fatalf("failed to list low stock: %v", err)
		}
		if len(below) != 1 || below[0].Name != low.Name {
			t.Errorf("expected only %q below minimum, got %d entries", low.Name, len(below))
		}
	})
}

func TestResourceRepository_AdjustQuantity(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close(t)

	repo := NewResourceRepository(db.DB)
	ctx := context.Background()

	resource := testutil.FixtureResource(func(r *models.Resource) {
		r.Quantity = 50
	})
	if err := repo.Create(ctx, nil, resource); err != nil {
		t.Fatalf("failed to create resource: %v", err)
	}

	t.Run("Issue within stock", func(t *testing.T) {
		if err := repo.AdjustQuantity(ctx, nil, resource.Name, -20); err != nil {
			t.Fatalf("failed to adjust quantity: %v", err)
		}

		found, err := repo.GetByName(ctx, resource.Name)
		if err != nil {
			t.Fatalf("failed to get resource: %v", err)
		}
		if found.Quantity != 30 {
			t.Errorf("expected quantity 30, got %d", found.Quantity)
		}
	})

	t.Run("Issue beyond stock rejected", func(t *testing.T) {
		err := repo.AdjustQuantity(ctx, nil, resource.Name, -31)

		var insufficientErr *models.InsufficientStockError
		if !errors.As(err, &insufficientErr) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficientErr.Available != 30 || insufficientErr.Requested != 31 {
			t.Errorf("expected available 30, requested 31; got %d, %d",
				insufficientErr.Available, insufficientErr.Requested)
		}

		// Stock untouched after the rejection
		found, _ := repo.GetByName(ctx, resource.Name)
		if found.Quantity != 30 {
			t.Errorf("expected quantity unchanged at 30, got %d", found.Quantity)
		}
	})

	t.Run("Issue exactly remaining stock", func(t *testing.T) {
		if err := repo.AdjustQuantity(ctx, nil, resource.Name, -30); err != nil {
			t.Fatalf("failed to adjust quantity to zero: %v", err)
		}

		found, _ := repo.GetByName(ctx, resource.Name)
		if found.Quantity != 0 {
			t.Errorf("expected quantity 0, got %d", found.Quantity)
		}
	})

	t.Run("Unknown resource", func(t *testing.T) {
		err := repo.AdjustQuantity(ctx, nil, "Нет такого", -1)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestResourceRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close(t)

	repo := NewResourceRepository(db.DB)
	ctx := context.Background()

	resource := testutil.FixtureResource()
	if err := repo.Create(ctx, nil, resource); err != nil {
		t.Fatalf("failed to create resource: %v", err)
	}

	if err := repo.Delete(ctx, nil, resource.Name); err != nil {
		t.Fatalf("failed to delete resource: %v", err)
	}

	_, err := repo.GetByName(ctx, resource.Name)
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, nil, resource.Name); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
