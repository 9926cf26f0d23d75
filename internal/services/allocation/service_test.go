package allocation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
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

// seedStage creates an application with one stage and returns the stage ID.
func seedStage(t *testing.T, db *testutil.TestDB) string {
	t.Helper()

	ctx := context.Background()
	repo := repository.NewApplicationRepository(db.DB)

	app := testutil.FixtureApplication()
	if err := repo.CreateApplication(ctx, nil, app); err != nil {
		t.Fatalf("failed to create application: %v", err)
	}
	stage := testutil.FixtureStage(app.ID, func(s *models.Stage) {
		s.Executor = "kuznetsov"
	})
	if err := repo.CreateStage(ctx, nil, stage); err != nil {
		t.Fatalf("failed to create stage: %v", err)
	}
	return stage.ID
}

func seedResource(t *testing.T, db *testutil.TestDB, name string, quantity int) {
	t.Helper()

	ctx := context.Background()
	repo := repository.NewResourceRepository(db.DB)
	res := testutil.FixtureResource(func(r *models.Resource) {
		r.Name = name
		r.Quantity = quantity
	})
	if err := repo.Create(ctx, nil, res); err != nil {
		t.Fatalf("failed to create resource: %v", err)
	}
}

func currentQuantity(t *testing.T, db *testutil.TestDB, name string) int {
	t.Helper()

	res, err := repository.NewResourceRepository(db.DB).GetByName(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to get resource: %v", err)
	}
	return res.Quantity
}

func TestRequestResource(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	stageID := seedStage(t, db)
	seedResource(t, db, "Болт М8", 10)
	executor := testutil.FixtureExecutor()

	t.Run("Request beyond current stock is accepted", func(t *testing.T) {
		// Availability is only checked at allocation time.
		req, err := svc.RequestResource(ctx, executor, RequestInput{
			StageID:      stageID,
			ResourceName: "Болт М8",
			Quantity:     500,
		})
		if err != nil {
			t.Fatalf("failed to request resource: %v", err)
		}
		if req.Status != models.RequestRequested {
			t.Errorf("expected status requested, got %s", req.Status)
		}
	})

	t.Run("Zero quantity rejected", func(t *testing.T) {
		_, err := svc.RequestResource(ctx, executor, RequestInput{
			StageID:      stageID,
			ResourceName: "Болт М8",
			Quantity:     0,
		})
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("Unknown resource rejected", func(t *testing.T) {
		_, err := svc.RequestResource(ctx, executor, RequestInput{
			StageID:      stageID,
			ResourceName: "Нет такого",
			Quantity:     1,
		})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Unknown stage rejected", func(t *testing.T) {
		_, err := svc.RequestResource(ctx, executor, RequestInput{
			StageID:      "missing",
			ResourceName: "Болт М8",
			Quantity:     1,
		})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Only the assigned executor may file", func(t *testing.T) {
		for _, stranger := range []*models.User{
			testutil.FixtureUser(), // customer
			testutil.FixtureStoreman(),
			testutil.FixtureExecutor(func(u *models.User) { u.Username = "smirnov" }),
		} {
			_, err := svc.RequestResource(ctx, stranger, RequestInput{
				StageID:      stageID,
				ResourceName: "Болт М8",
				Quantity:     1,
			})
			if !errors.Is(err, models.ErrPermissionDenied) {
				t.Errorf("%s: expected ErrPermissionDenied, got %v", stranger.Username, err)
			}
		}
	})

	t.Run("Manager may file on the executor's behalf", func(t *testing.T) {
		req, err := svc.RequestResource(ctx, testutil.FixtureManager(), RequestInput{
			StageID:      stageID,
			ResourceName: "Болт М8",
			Quantity:     2,
		})
		if err != nil {
			t.Fatalf("failed to request resource: %v", err)
		}
		if req.RequestedBy != "sidorova" {
			t.Errorf("expected requested_by sidorova, got %q", req.RequestedBy)
		}
	})
}

func TestAllocateRequest(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	stageID := seedStage(t, db)
	seedResource(t, db, "Болт М8", 100)

	storeman := testutil.FixtureStoreman()
	executor := testutil.FixtureExecutor()

	request := func(qty int) *models.ResourceRequest {
		req, err := svc.RequestResource(ctx, executor, RequestInput{
			StageID:      stageID,
			ResourceName: "Болт М8",
			Quantity:     qty,
		})
		if err != nil {
			t.Fatalf("failed to request resource: %v", err)
		}
		return req
	}

	t.Run("Allocation debits stock and records decision", func(t *testing.T) {
		req := request(30)

		allocated, err := svc.AllocateRequest(ctx, storeman, req.ID)
		if err != nil {
			t.Fatalf("failed to allocate: %v", err)
		}
		if allocated.Status != models.RequestAllocated {
			t.Errorf("expected status allocated, got %s", allocated.Status)
		}
		if allocated.AllocatedBy == nil || *allocated.AllocatedBy != storeman.Username {
			t.Errorf("expected allocated_by %s, got %v", storeman.Username, allocated.AllocatedBy)
		}
		if got := currentQuantity(t, db, "Болт М8"); got != 70 {
			t.Errorf("expected stock 70, got %d", got)
		}
	})

	t.Run("Oversell rejected atomically", func(t *testing.T) {
		req := request(71)

		_, err := svc.AllocateRequest(ctx, storeman, req.ID)
		var insufficientErr *models.InsufficientStockError
		if !errors.As(err, &insufficientErr) {
			t.Fatalf("expected InsufficientStockError, got %v", err)
		}
		if insufficientErr.Available != 70 || insufficientErr.Requested != 71 {
			t.Errorf("expected available 70, requested 71; got %d, %d",
				insufficientErr.Available, insufficientErr.Requested)
		}

		// Neither the stock nor the request moved.
		if got := currentQuantity(t, db, "Болт М8"); got != 70 {
			t.Errorf("expected stock unchanged at 70, got %d", got)
		}
		found, _ := repository.NewApplicationRepository(db.DB).GetRequest(ctx, req.ID)
		if found.Status != models.RequestRequested {
			t.Errorf("expected request still pending, got %s", found.Status)
		}
	})

	t.Run("Allocation down to exactly zero", func(t *testing.T) {
		req := request(70)

		if _, err := svc.AllocateRequest(ctx, storeman, req.ID); err != nil {
			t.Fatalf("failed to allocate exact remainder: %v", err)
		}
		if got := currentQuantity(t, db, "Болт М8"); got != 0 {
			t.Errorf("expected stock 0, got %d", got)
		}
	})

	t.Run("Decided request cannot be decided again", func(t *testing.T) {
		req := request(1)

		if _, err := svc.CancelRequest(ctx, executor, req.ID, "передумал"); err != nil {
			t.Fatalf("failed to cancel: %v", err)
		}
		_, err := svc.AllocateRequest(ctx, storeman, req.ID)
		if !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("Non-warehouse role denied", func(t *testing.T) {
		req := request(1)

		_, err := svc.AllocateRequest(ctx, executor, req.ID)
		if !errors.Is(err, models.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})
}

func TestCancelRequest(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	stageID := seedStage(t, db)
	seedResource(t, db, "Болт М8", 100)

	storeman := testutil.FixtureStoreman()
	executor := testutil.FixtureExecutor()
	customer := testutil.FixtureUser()

	req, err := svc.RequestResource(ctx, executor, RequestInput{
		StageID:      stageID,
		ResourceName: "Болт М8",
		Quantity:     10,
	})
	if err != nil {
		t.Fatalf("failed to request resource: %v", err)
	}

	t.Run("Unrelated customer cannot cancel", func(t *testing.T) {
		_, err := svc.CancelRequest(ctx, customer, req.ID, "")
		if !errors.Is(err, models.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
	})

	t.Run("Requester cancels own request", func(t *testing.T) {
		cancelled, err := svc.CancelRequest(ctx, executor, req.ID, "этап перенесён")
		if err != nil {
			t.Fatalf("failed to cancel: %v", err)
		}
		if cancelled.Status != models.RequestCancelled {
			t.Errorf("expected status cancelled, got %s", cancelled.Status)
		}
		if cancelled.CancelReason != "этап перенесён" {
			t.Errorf("unexpected cancel reason %q", cancelled.CancelReason)
		}
		// Cancellation never touches stock.
		if got := currentQuantity(t, db, "Болт М8"); got != 100 {
			t.Errorf("expected stock unchanged at 100, got %d", got)
		}
	})

	t.Run("Cancelled request cannot be allocated", func(t *testing.T) {
		_, err := svc.AllocateRequest(ctx, storeman, req.ID)
		if !errors.Is(err, models.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})
}

// Stock of 10 against eight concurrent allocations of 3 each: exactly
// three can succeed, and the shelf never goes negative.
func TestConcurrentAllocationNeverOversells(t *testing.T) {
	svc, db := setupService(t)
	defer db.Close(t)

	ctx := context.Background()
	stageID := seedStage(t, db)
	seedResource(t, db, "Подшипник 6204", 10)

	storeman := testutil.FixtureStoreman()
	executor := testutil.FixtureExecutor()

	requests := make([]*models.ResourceRequest, 8)
	for i := range requests {
		req, err := svc.RequestResource(ctx, executor, RequestInput{
			StageID:      stageID,
			ResourceName: "Подшипник 6204",
			Quantity:     3,
		})
		if err != nil {
			t.Fatalf("failed to request resource: %v", err)
		}
		requests[i] = req
	}

	errs := make(chan error, len(requests))
	var wg sync.WaitGroup
	for _, req := range requests {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.AllocateRequest(ctx, storeman, id)
			errs <- err
		}(req.ID)
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			var insufficientErr *models.InsufficientStockError
			if !errors.As(err, &insufficientErr) {
				t.Errorf("unexpected allocation error: %v", err)
				continue
			}
			rejected++
		}
	}

	if succeeded != 3 {
		t.Errorf("expected exactly 3 allocations to succeed, got %d", succeeded)
	}
	if rejected != len(requests)-succeeded {
		t.Errorf("expected %d rejections, got %d", len(requests)-succeeded, rejected)
	}
	if got := currentQuantity(t, db, "Подшипник 6204"); got != 1 {
		t.Errorf("expected 1 left on the shelf, got %d", got)
	}
}
