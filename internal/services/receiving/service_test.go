package receiving

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
	return NewService(db.DB, "шт", logger), db
}

func TestCreateReceipt(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	resources := repository.NewResourceRepository(db.DB)
	storeman := testutil.FixtureStoreman()

	existing := testutil.FixtureResource(func(r *models.Resource) {
		r.Name = "Болт М8"
		r.Quantity = 40
	})
	if err := resources.Create(ctx, nil, existing); err != nil {
		t.Fatalf("failed to seed resource: %v", err)
	}

	t.Run("Known line increments, unknown line creates", func(t *testing.T) {
		receipt, err := svc.CreateReceipt(ctx, storeman, ReceiptInput{
			Supplier: "ООО Метиз",
			Lines: []ReceiptLineInput{
				{ResourceName: "Болт М8", Quantity: 60},
				{ResourceName: "Гайка М8", Quantity: 100},
			},
		})
		if err != nil {
			t.Fatalf("failed to create receipt: %v", err)
		}
		if receipt.Number != "RCP-00001" {
			t.Errorf("expected number RCP-00001, got %s", receipt.Number)
		}
		if receipt.TotalItems != 2 || receipt.TotalQuantity != 160 {
			t.Errorf("unexpected totals: items %d, quantity %d", receipt.TotalItems, receipt.TotalQuantity)
		}

		bolt, _ := resources.GetByName(ctx, "Болт М8")
		if bolt.Quantity != 100 {
			t.Errorf("expected Болт М8 stock 100, got %d", bolt.Quantity)
		}

		nut, err := resources.GetByName(ctx, "Гайка М8")
		if err != nil {
			t.Fatalf("expected new resource in catalog: %v", err)
		}
		if nut.Quantity != 100 || nut.Type != models.TypeConsumable || nut.Unit != "шт" {
			t.Errorf("unexpected new resource: qty %d, type %s, unit %s", nut.Quantity, nut.Type, nut.Unit)
		}
	})

	t.Run("Bad line rolls back whole document", func(t *testing.T) {
		_, err := svc.CreateReceipt(ctx, storeman, ReceiptInput{
			Lines: []ReceiptLineInput{
				{ResourceName: "Болт М8", Quantity: 10},
				{ResourceName: "Станок без паспорта", Quantity: 1, Type: models.TypeEquipment},
			},
		})
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for missing equipment attributes, got %v", err)
		}

		// First line must not have been applied.
		bolt, _ := resources.GetByName(ctx, "Болт М8")
		if bolt.Quantity != 100 {
			t.Errorf("expected stock unchanged at 100, got %d", bolt.Quantity)
		}
		db.AssertRowCount(t, "stock_receipts", 1)
	})

	t.Run("Receipt numbers are sequential", func(t *testing.T) {
		receipt, err := svc.CreateReceipt(ctx, storeman, ReceiptInput{
			Lines: []ReceiptLineInput{{ResourceName: "Болт М8", Quantity: 5}},
		})
		if err != nil {
			t.Fatalf("failed to create receipt: %v", err)
		}
		if receipt.Number != "RCP-00002" {
			t.Errorf("expected number RCP-00002, got %s", receipt.Number)
		}
	})

	t.Run("Empty receipt rejected", func(t *testing.T) {
		_, err := svc.CreateReceipt(ctx, storeman, ReceiptInput{})
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("Non-warehouse role denied", func(t *testing.T) {
		_, err := svc.CreateReceipt(ctx, testutil.FixtureExecutor(), ReceiptInput{
			Lines: []ReceiptLineInput{{ResourceName: "Болт М8", Quantity: 1}},
		})
		if !errors.Is(err, models.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})
}

func TestListReceiptsPagination(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	storeman := testutil.FixtureStoreman()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateReceipt(ctx, storeman, ReceiptInput{
			Supplier: "ООО Снабжение",
			Lines:    []ReceiptLineInput{{ResourceName: "Электрод МР-3", Quantity: 10}},
		})
		if err != nil {
			t.Fatalf("failed to create receipt: %v", err)
		}
	}

	page1, total, err := svc.ListReceipts(ctx, models.Pagination{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("failed to list receipts: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(page1) != 2 {
		t.Fatalf("expected 2 receipts on page 1, got %d", len(page1))
	}
	if page1[0].Number != "RCP-00003" {
		t.Errorf("expected newest receipt first, got %s", page1[0].Number)
	}

	page2, _, err := svc.ListReceipts(ctx, models.Pagination{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("failed to list receipts: %v", err)
	}
	if len(page2) != 1 || page2[0].Number != "RCP-00001" {
		t.Errorf("expected RCP-00001 alone on page 2, got %+v", page2)
	}
}
