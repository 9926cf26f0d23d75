package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/testutil"
)

func fixtureInventory(number string, items ...*models.InventoryItem) *models.Inventory {
	return &models.Inventory{
		ID:          uuid.New().String(),
		Number:      number,
		DateStarted: time.Now().UTC(),
		ConductedBy: "petrov",
		Status:      models.InventoryInProgress,
		Items:       items,
		TotalItems:  len(items),
	}
}

func fixtureInventoryItem(name string, expected, position int) *models.InventoryItem {
	return &models.InventoryItem{
		ResourceName:     name,
		ExpectedQuantity: expected,
		Unit:             "шт",
		Type:             models.TypeConsumable,
		Position:         position,
	}
}

func TestInventoryRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close(t)

	repo := NewInventoryRepository(db.DB)
	ctx := context.Background()

	t.Run("Create snapshot and get", func(t *testing.T) {
		inv := fixtureInventory("INV-00001",
			fixtureInventoryItem("Болт М8", 100, 1),
			fixtureInventoryItem("Гайка М8", 50, 2),
		)

		if err := repo.Create(ctx, nil, inv); err != nil {
			t.Fatalf("failed to create inventory: %v", err)
		}

		found, err := repo.Get(ctx, inv.ID)
		if err != nil {
			t.Fatalf("failed to get inventory: %v", err)
		}
		if found.Status != models.InventoryInProgress {
			t.Errorf("expected status in_progress, got %s", found.Status)
		}
		if len(found.Items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(found.Items))
		}
		if found.Items[0].ActualQuantity != nil {
			t.Error("uncounted item should have nil actual quantity")
		}
	})

	t.Run("GetActive finds open session", func(t *testing.T) {
		active, err := repo.GetActive(ctx)
		if err != nil {
			t.Fatalf("failed to get active inventory: %v", err)
		}
		if active.Number != "INV-00001" {
			t.Errorf("expected INV-00001, got %s", active.Number)
		}
	})

	t.Run("RecordCount overwrites prior count", func(t *testing.T) {
		active, _ := repo.GetActive(ctx)

		if err := repo.RecordCount(ctx, nil, active.ID, "Болт М8", 95, -5); err != nil {
			t.Fatalf("failed to record count: %v", err)
		}
		// Recount the same item
		if err := repo.RecordCount(ctx, nil, active.ID, "Болт М8", 98, -2); err != nil {
			t.Fatalf("failed to record recount: %v", err)
		}

		found, _ := repo.Get(ctx, active.ID)
		item := found.Item("Болт М8")
		if item == nil {
			t.Fatal("expected item to exist")
		}
		if item.ActualQuantity == nil || *item.ActualQuantity != 98 {
			t.Errorf("expected actual 98, got %v", item.ActualQuantity)
		}
		if item.Difference != -2 {
			t.Errorf("expected difference -2, got %d", item.Difference)
		}
	})

	t.Run("RecordCount unknown item", func(t *testing.T) {
		active, _ := repo.GetActive(ctx)
		err := repo.RecordCount(ctx, nil, active.ID, "Нет такого", 1, 1)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Complete closes the session once", func(t *testing.T) {
		active, _ := repo.GetActive(ctx)

		now := time.Now().UTC()
		active.DateCompleted = testutil.TimePtr(now)
		active.CompletedBy = "petrov"
		active.ItemsCounted = 1
		active.TotalDifferences = 2
		active.DiscrepanciesCount = 1
		active.StockUpdated = true

		if err := repo.Complete(ctx, nil, active); err != nil {
			t.Fatalf("failed to complete inventory: %v", err)
		}

		found, _ := repo.Get(ctx, active.ID)
		if found.Status != models.InventoryCompleted {
			t.Errorf("expected status completed, got %s", found.Status)
		}
		if !found.StockUpdated {
			t.Error("expected stock_updated flag")
		}

		// Second completion must fail
		if err := repo.Complete(ctx, nil, active); !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState on re-completion, got %v", err)
		}

		// No active session remains
		if _, err := repo.GetActive(ctx); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound for active session, got %v", err)
		}
	})
}
