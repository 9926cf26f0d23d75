package receiving

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/services/catalog"
	"github.com/workdesk/workdesk/internal/services/receiving"
	"github.com/workdesk/workdesk/internal/testutil"
)

func setupJournalView(t *testing.T) (*JournalView, *receiving.Service, *testutil.TestDB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	migrationsDir := filepath.Join("..", "..", "..", "..", "internal", "database", "migrations")
	db.RunMigrations(t, migrationsDir)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := context.Background()
	storeman := testutil.FixtureStoreman()
	catalogSvc := catalog.NewService(db.DB)
	if _, err := catalogSvc.AddResource(ctx, storeman, catalog.AddResourceInput{
		Name: "Болт М8", Quantity: 10, Unit: "шт", Type: models.TypeConsumable,
	}); err != nil {
		t.Fatalf("seeding resource: %v", err)
	}

	svc := receiving.NewService(db.DB, "шт", logger)
	return NewJournalView(svc), svc, db
}

func TestJournalView_Load(t *testing.T) {
	view, svc, db := setupJournalView(t)
	defer db.Close(t)

	ctx := context.Background()
	storeman := testutil.FixtureStoreman()

	receipt, err := svc.CreateReceipt(ctx, storeman, receiving.ReceiptInput{
		Supplier:       "ООО Метизы",
		DocumentNumber: "ТН-104",
		Lines: []receiving.ReceiptLineInput{
			{ResourceName: "Болт М8", Quantity: 90},
			{ResourceName: "Сверло 6мм", Quantity: 20, Unit: "шт"},
		},
	})
	if err != nil {
		t.Fatalf("creating receipt: %v", err)
	}

	if err := view.Load(ctx); err != nil {
		t.Fatalf("loading journal: %v", err)
	}

	selected := view.SelectedReceipt()
	if selected == nil {
		t.Fatal("expected a selected receipt")
	}
	if selected.Number != receipt.Number {
		t.Errorf("expected receipt %s, got %s", receipt.Number, selected.Number)
	}

	output := view.Render(120, 30)
	if !strings.Contains(output, "ПРИХОДНЫЕ НАКЛАДНЫЕ") {
		t.Error("expected journal title in output")
	}
	if !strings.Contains(output, "ООО Метизы") {
		t.Error("expected supplier in output")
	}
}

func TestJournalView_RenderDetail(t *testing.T) {
	view, svc, db := setupJournalView(t)
	defer db.Close(t)

	ctx := context.Background()
	storeman := testutil.FixtureStoreman()

	if _, err := svc.CreateReceipt(ctx, storeman, receiving.ReceiptInput{
		Supplier: "ООО Метизы",
		Lines: []receiving.ReceiptLineInput{
			{ResourceName: "Болт М8", Quantity: 90},
		},
	}); err != nil {
		t.Fatalf("creating receipt: %v", err)
	}

	if err := view.Load(ctx); err != nil {
		t.Fatalf("loading journal: %v", err)
	}

	detail := view.RenderDetail(view.SelectedReceipt())
	if !strings.Contains(detail, "НАКЛАДНАЯ") {
		t.Error("expected detail title")
	}
	if !strings.Contains(detail, "Болт М8") {
		t.Error("expected line in detail")
	}
	if !strings.Contains(detail, "90") {
		t.Error("expected quantity in detail")
	}
}

func TestJournalView_Empty(t *testing.T) {
	view, _, db := setupJournalView(t)
	defer db.Close(t)

	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("loading empty journal: %v", err)
	}

	if view.SelectedReceipt() != nil {
		t.Error("expected no selection in empty journal")
	}
}

func TestJournalView_Paging(t *testing.T) {
	view, svc, db := setupJournalView(t)
	defer db.Close(t)

	ctx := context.Background()
	storeman := testutil.FixtureStoreman()
	if _, err := svc.CreateReceipt(ctx, storeman, receiving.ReceiptInput{
		Supplier: "ООО Снабжение",
		Lines:    []receiving.ReceiptLineInput{{ResourceName: "Болт М8", Quantity: 5}},
	}); err != nil {
		t.Fatalf("creating receipt: %v", err)
	}
	if err := view.Load(ctx); err != nil {
		t.Fatalf("loading journal: %v", err)
	}

	if view.Page() != 1 {
		t.Errorf("expected page 1, got %d", view.Page())
	}
	if view.NextPage() {
		t.Error("single page should not advance")
	}
	if view.PrevPage() {
		t.Error("first page should not step back")
	}
}
