// Package allocation implements the resource request and allocation flow:
// executors request materials for their stages, the warehouse decides each
// request from a single queue, and stock is debited atomically with the
// decision.
package allocation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
	"github.com/workdesk/workdesk/internal/util"
)

// Service provides request and allocation operations.
type Service struct {
	db           *sql.DB
	resources    *repository.ResourceRepository
	applications *repository.ApplicationRepository
	idGenerator  *util.IDGenerator
	logger       *slog.Logger
}

// NewService creates a new allocation service.
func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		db:           db,
		resources:    repository.NewResourceRepository(db),
		applications: repository.NewApplicationRepository(db),
		idGenerator:  util.NewIDGenerator(),
		logger:       logger,
	}
}

// RequestResource files a resource request against a stage on behalf of
// its assigned executor. Availability is not checked here; a request may
// name more than is currently in stock and wait in the queue until a
// receipt covers it.
func (s *Service) RequestResource(ctx context.Context, actor *models.User, input RequestInput) (*models.ResourceRequest, error) {
	if input.Quantity <= 0 {
		return nil, &models.ValidationError{Field: "quantity", Reason: "quantity must be positive"}
	}

	// The stage must exist; the resource must be a known catalog entry.
	stage, err := s.applications.GetStage(ctx, input.StageID)
	if err != nil {
		return nil, err
	}
	if err := requireRequester(actor, stage); err != nil {
		return nil, err
	}
	if stage.Status == models.StageCompleted {
		return nil, fmt.Errorf("stage %s is completed: %w", stage.ID, models.ErrInvalidState)
	}
	if _, err := s.resources.GetByName(ctx, input.ResourceName); err != nil {
		return nil, err
	}

	req := &models.ResourceRequest{
		ID:            s.idGenerator.NewID(),
		ApplicationID: stage.ApplicationID,
		StageID:       stage.ID,
		ResourceName:  input.ResourceName,
		Quantity:      input.Quantity,
		Status:        models.RequestRequested,
		RequestedBy:   actor.Username,
		RequestDate:   time.Now().UTC(),
	}

	if err := s.applications.CreateRequest(ctx, nil, req); err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	s.logger.Info("resource requested",
		"request_id", req.ID,
		"resource", req.ResourceName,
		"quantity", req.Quantity,
		"requested_by", actor.Username,
	)
	return req, nil
}

// AllocateRequest issues stock against a pending request. The stock
// debit and the status transition commit together or not at all, so a
// request can never be marked allocated without its quantity leaving
// the shelf.
func (s *Service) AllocateRequest(ctx context.Context, actor *models.User, requestID string) (*models.ResourceRequest, error) {
	if err := requireStockRole(actor); err != nil {
		return nil, err
	}

	req, err := s.applications.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.Pending() {
		return nil, fmt.Errorf("request %s is %s: %w", req.ID, req.Status, models.ErrInvalidState)
	}

	// The status guard inside MarkRequestAllocated makes the read above
	// advisory; a request decided between read and commit rolls back.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.resources.AdjustQuantity(ctx, tx, req.ResourceName, -req.Quantity); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.applications.MarkRequestAllocated(ctx, tx, req.ID, actor.Username, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing allocation: %w", err)
	}

	req.Status = models.RequestAllocated
	req.AllocatedBy = &actor.Username
	req.AllocationDate = &now

	s.logger.Info("resource allocated",
		"request_id", req.ID,
		"resource", req.ResourceName,
		"quantity", req.Quantity,
		"allocated_by", actor.Username,
	)
	return req, nil
}

// CancelRequest withdraws a pending request. The requester may cancel
// their own request; managers and warehouse roles may cancel any.
func (s *Service) CancelRequest(ctx context.Context, actor *models.User, requestID, reason string) (*models.ResourceRequest, error) {
	if actor == nil || !actor.Active() {
		return nil, models.ErrPermissionDenied
	}

	req, err := s.applications.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canCancel(actor, req) {
		return nil, models.ErrPermissionDenied
	}

	now := time.Now().UTC()
	if err := s.applications.MarkRequestCancelled(ctx, nil, req.ID, actor.Username, reason, now); err != nil {
		return nil, err
	}

	req.Status = models.RequestCancelled
	req.CancelledBy = &actor.Username
	req.CancelDate = &now
	req.CancelReason = reason

	s.logger.Info("request cancelled",
		"request_id", req.ID,
		"cancelled_by", actor.Username,
		"reason", reason,
	)
	return req, nil
}

// PendingRequests returns the warehouse queue, oldest first.
func (s *Service) PendingRequests(ctx context.Context) ([]*models.PendingRequest, error) {
	return s.applications.ListPendingRequests(ctx)
}

// StageRequests returns a stage's requests in request order.
func (s *Service) StageRequests(ctx context.Context, stageID string) ([]*models.ResourceRequest, error) {
	return s.applications.ListRequestsByStage(ctx, stageID)
}

func canCancel(actor *models.User, req *models.ResourceRequest) bool {
	if actor.Username == req.RequestedBy {
		return true
	}
	switch actor.Role {
	case models.RoleManager, models.RoleStoreman, models.RoleAdmin:
		return true
	}
	return false
}

// requireRequester allows the stage's assigned executor plus managers
// and admins to file resource requests for the stage.
func requireRequester(actor *models.User, stage *models.Stage) error {
	if actor == nil || !actor.Active() {
		return models.ErrPermissionDenied
	}
	if actor.Username == stage.Executor {
		return nil
	}
	switch actor.Role {
	case models.RoleManager, models.RoleAdmin:
		return nil
	}
	return models.ErrPermissionDenied
}

func requireStockRole(actor *models.User) error {
	if actor == nil || !actor.Active() || !actor.Role.ManagesStock() {
		return models.ErrPermissionDenied
	}
	return nil
}
