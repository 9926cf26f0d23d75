package orders

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/workdesk/workdesk/internal/services/orders"
	"github.com/workdesk/workdesk/internal/testutil"
)

func setupBoardView(t *testing.T) (*BoardView, *orders.Service, *testutil.TestDB) {
	t.Helper()

	db := testutil.NewTestDB(t)
	migrationsDir := filepath.Join("..", "..", "..", "..", "internal", "database", "migrations")
	db.RunMigrations(t, migrationsDir)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := orders.NewService(db.DB, logger)
	return NewBoardView(svc), svc, db
}

func seedApplication(t *testing.T, svc *orders.Service) {
	t.Helper()

	ctx := context.Background()
	manager := testutil.FixtureManager()
	executor := testutil.FixtureExecutor()

	app, err := svc.CreateApplication(ctx, manager, orders.CreateApplicationInput{
		Customer:       "ООО Ремдеталь",
		ContractNumber: "Д-2026/14",
		Description:    "Ремонт редуктора",
		Stages: []orders.StageInput{
			{Name: "Разборка", Executor: executor.Username},
			{Name: "Сборка", Executor: executor.Username},
		},
	})
	if err != nil {
		t.Fatalf("creating application: %v", err)
	}

	if _, err := svc.StartStage(ctx, executor, app.Stages[0].ID); err != nil {
		t.Fatalf("starting stage: %v", err)
	}
	if _, err := svc.CompleteStage(ctx, executor, app.Stages[0].ID, "разобрано, дефектов нет"); err != nil {
		t.Fatalf("completing stage: %v", err)
	}
}

func TestBoardView_Load(t *testing.T) {
	view, svc, db := setupBoardView(t)
	defer db.Close(t)
	seedApplication(t, svc)

	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("loading board: %v", err)
	}

	app := view.SelectedApplication()
	if app == nil {
		t.Fatal("expected a selected application")
	}
	if app.Customer != "ООО Ремдеталь" {
		t.Errorf("expected customer, got %q", app.Customer)
	}

	output := view.Render(120, 30)
	if !strings.Contains(output, "ЗАКАЗЫ") {
		t.Error("expected board title in output")
	}
	if !strings.Contains(output, "1/2") {
		t.Error("expected stage progress 1/2 in output")
	}
}

func TestBoardView_RenderDetail(t *testing.T) {
	view, svc, db := setupBoardView(t)
	defer db.Close(t)
	seedApplication(t, svc)

	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("loading board: %v", err)
	}

	detail := view.RenderDetail(view.SelectedApplication())
	if !strings.Contains(detail, "Д-2026/14") {
		t.Error("expected contract number in detail")
	}
	if !strings.Contains(detail, "Разборка") || !strings.Contains(detail, "Сборка") {
		t.Error("expected stages in detail")
	}
	if !strings.Contains(detail, "разобрано, дефектов нет") {
		t.Error("expected stage report in detail")
	}
}

func TestBoardView_EmptyBoard(t *testing.T) {
	view, _, db := setupBoardView(t)
	defer db.Close(t)

	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("loading empty board: %v", err)
	}

	if view.SelectedApplication() != nil {
		t.Error("expected no selection on empty board")
	}
}
