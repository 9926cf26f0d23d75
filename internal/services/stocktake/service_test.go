package stocktake

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
	"github.com/workdesk/workdesk/internal/testutil"
)

func setupService(t *testing.T) (*Service, *testutil.TestDB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	migrationsDir := filepath.Join("..", "..", "..", "internal", "database", "migrations")
	db.RunMigrations(t, migrationsDir)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(db.DB, logger), db
}

func seedCatalog(t *testing.T, db *testutil.TestDB, quantities map[string]int, order []string) {
	t.Helper()

	ctx := context.Background()
	repo := repository.NewResourceRepository(db.DB)
	for _, name := range order {
		res := testutil.FixtureResource(func(r *models.Resource) {
			r.Name = name
			r.Quantity = quantities[name]
		})
		if err := repo.Create(ctx, nil, res); err != nil {
			t.Fatalf("failed to seed %q: %v", name, err)
		}
	}
}

func TestStartInventory(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	storeman := testutil.FixtureStoreman()

	t.Run("Empty catalog rejected", func(t *testing.T) {
		_, err := svc.StartInventory(ctx, storeman)
		if !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	seedCatalog(t, db, map[string]int{"Болт М8": 100, "Гайка М8": 50}, []string{"Болт М8", "Гайка М8"})

	t.Run("Snapshot freezes book quantities", func(t *testing.T) {
		inv, err := svc.StartInventory(ctx, storeman)
		if err != nil {
			t.Fatalf("failed to start inventory: %v", err)
		}
		if inv.Number != "INV-00001" {
			t.Errorf("expected number INV-00001, got %s", inv.Number)
		}
		if inv.TotalItems != 2 {
			t.Fatalf("expected 2 items, got %d", inv.TotalItems)
		}
		if inv.Items[0].ResourceName != "Болт М8" || inv.Items[0].ExpectedQuantity != 100 {
			t.Errorf("unexpected first item: %+v", inv.Items[0])
		}
	})

	t.Run("Second session refused while one is open", func(t *testing.T) {
		_, err := svc.StartInventory(ctx, storeman)
		if !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("Non-warehouse role denied", func(t *testing.T) {
		_, err := svc.StartInventory(ctx, testutil.FixtureExecutor())
		if !errors.Is(err, models.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})
}

func TestRecordCount(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	storeman := testutil.FixtureStoreman()

	seedCatalog(t, db, map[string]int{"Болт М8": 100, "Гайка М8": 50}, []string{"Болт М8", "Гайка М8"})

	inv, err := svc.StartInventory(ctx, storeman)
	if err != nil {
		t.Fatalf("failed to start inventory: %v", err)
	}

	t.Run("Count updates item and stats", func(t *testing.T) {
		updated, err := svc.RecordCount(ctx, storeman, inv.ID, "Болт М8", 95)
		if err != nil {
			t.Fatalf("failed to record count: %v", err)
		}
		if updated.ItemsCounted != 1 {
			t.Errorf("expected 1 counted, got %d", updated.ItemsCounted)
		}
		if updated.TotalDifferences != 5 || updated.DiscrepanciesCount != 1 {
			t.Errorf("unexpected stats: differences %d, discrepancies %d",
				updated.TotalDifferences, updated.DiscrepanciesCount)
		}
	})

	t.Run("Recount replaces, never accumulates", func(t *testing.T) {
		updated, err := svc.RecordCount(ctx, storeman, inv.ID, "Болт М8", 98)
		if err != nil {
			t.Fatalf("failed to record recount: %v", err)
		}
		if updated.ItemsCounted != 1 {
			t.Errorf("expected still 1 counted, got %d", updated.ItemsCounted)
		}
		if updated.TotalDifferences != 2 {
			t.Errorf("expected total differences 2 after recount, got %d", updated.TotalDifferences)
		}

		item := updated.Item("Болт М8")
		if item.ActualQuantity == nil || *item.ActualQuantity != 98 {
			t.Errorf("expected actual 98, got %v", item.ActualQuantity)
		}
	})

	t.Run("Matching count is not a discrepancy", func(t *testing.T) {
		updated, err := svc.RecordCount(ctx, storeman, inv.ID, "Гайка М8", 50)
		if err != nil {
			t.Fatalf("failed to record count: %v", err)
		}
		if updated.DiscrepanciesCount != 1 {
			t.Errorf("expected 1 discrepancy, got %d", updated.DiscrepanciesCount)
		}
		if updated.ItemsCounted != 2 {
			t.Errorf("expected 2 counted, got %d", updated.ItemsCounted)
		}
	})

	t.Run("Item outside snapshot rejected", func(t *testing.T) {
		_, err := svc.RecordCount(ctx, storeman, inv.ID, "Шайба 8", 1)
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Negative count rejected", func(t *testing.T) {
		_, err := svc.RecordCount(ctx, storeman, inv.ID, "Болт М8", -1)
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})
}

func TestCompleteInventory(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	storeman := testutil.FixtureStoreman()
	resources := repository.NewResourceRepository(db.DB)

	seedCatalog(t, db,
		map[string]int{"Болт М8": 100, "Гайка М8": 50, "Шайба 8": 200},
		[]string{"Болт М8", "Гайка М8", "Шайба 8"})

	inv, err := svc.StartInventory(ctx, storeman)
	if err != nil {
		t.Fatalf("failed to start inventory: %v", err)
	}

	if _, err := svc.RecordCount(ctx, storeman, inv.ID, "Болт М8", 90); err != nil {
		t.Fatalf("failed to record count: %v", err)
	}
	if _, err := svc.RecordCount(ctx, storeman, inv.ID, "Гайка М8", 50); err != nil {
		t.Fatalf("failed to record count: %v", err)
	}
	// Шайба 8 deliberately left uncounted.

	t.Run("Completion applies counted quantities only", func(t *testing.T) {
		completed, err := svc.CompleteInventory(ctx, storeman, inv.ID, true)
		if err != nil {
			t.Fatalf("failed to complete inventory: %v", err)
		}
		if completed.Status != models.InventoryCompleted {
			t.Errorf("expected status completed, got %s", completed.Status)
		}
		if completed.ItemsCounted != 2 || completed.DiscrepanciesCount != 1 || completed.TotalDifferences != 10 {
			t.Errorf("unexpected stats: %+v", completed)
		}

		bolt, _ := resources.GetByName(ctx, "Болт М8")
		if bolt.Quantity != 90 {
			t.Errorf("expected Болт М8 adjusted to 90, got %d", bolt.Quantity)
		}
		washer, _ := resources.GetByName(ctx, "Шайба 8")
		if washer.Quantity != 200 {
			t.Errorf("expected uncounted Шайба 8 untouched at 200, got %d", washer.Quantity)
		}
	})

	t.Run("Completed session cannot be completed again", func(t *testing.T) {
		_, err := svc.CompleteInventory(ctx, storeman, inv.ID, true)
		if !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("Completion without stock update leaves catalog alone", func(t *testing.T) {
		inv2, err := svc.StartInventory(ctx, storeman)
		if err != nil {
			t.Fatalf("failed to start second inventory: %v", err)
		}
		if inv2.Number != "INV-00002" {
			t.Errorf("expected number INV-00002, got %s", inv2.Number)
		}

		if _, err := svc.RecordCount(ctx, storeman, inv2.ID, "Шайба 8", 150); err != nil {
			t.Fatalf("failed to record count: %v", err)
		}
		completed, err := svc.CompleteInventory(ctx, storeman, inv2.ID, false)
		if err != nil {
			t.Fatalf("failed to complete inventory: %v", err)
		}
		if completed.StockUpdated {
			t.Error("expected stock_updated to be false")
		}

		washer, _ := resources.GetByName(ctx, "Шайба 8")
		if washer.Quantity != 200 {
			t.Errorf("expected stock untouched at 200, got %d", washer.Quantity)
		}
	})

	t.Run("Counted value overwrites stock that moved mid-session", func(t *testing.T) {
		inv3, err := svc.StartInventory(ctx, storeman)
		if err != nil {
			t.Fatalf("failed to start third inventory: %v", err)
		}

		// The count matches the snapshot, then a receipt lands before
		// the session closes.
		if _, err := svc.RecordCount(ctx, storeman, inv3.ID, "Гайка М8", 50); err != nil {
			t.Fatalf("failed to record count: %v", err)
		}
		if err := resources.AdjustQuantity(ctx, nil, "Гайка М8", 5); err != nil {
			t.Fatalf("failed to adjust stock: %v", err)
		}

		if _, err := svc.CompleteInventory(ctx, storeman, inv3.ID, true); err != nil {
			t.Fatalf("failed to complete inventory: %v", err)
		}

		nut, _ := resources.GetByName(ctx, "Гайка М8")
		if nut.Quantity != 50 {
			t.Errorf("expected counted value 50 applied, got %d", nut.Quantity)
		}
	})
}
