// Package orders manages work-order applications and their stages.
package orders

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
	"github.com/workdesk/workdesk/internal/util"
)

// Service provides work-order operations.
type Service struct {
	db           *sql.DB
	applications *repository.ApplicationRepository
	users        *repository.UserRepository
	templates    *repository.TemplateRepository
	idGenerator  *util.IDGenerator
	logger       *slog.Logger
}

// NewService creates a new orders service.
func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		db:           db,
		applications: repository.NewApplicationRepository(db),
		users:        repository.NewUserRepository(db),
		templates:    repository.NewTemplateRepository(db),
		idGenerator:  util.NewIDGenerator(),
		logger:       logger,
	}
}

// CreateApplication registers a new work order, optionally with its
// initial stages.
func (s *Service) CreateApplication(ctx context.Context, actor *models.User, input CreateApplicationInput) (*models.Application, error) {
	if err := requireOrderRole(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Customer) == "" {
		return nil, &models.ValidationError{Field: "customer", Reason: "customer is required"}
	}

	app := &models.Application{
		ID:             s.idGenerator.NewID(),
		Customer:       strings.TrimSpace(input.Customer),
		ContractNumber: input.ContractNumber,
		Description:    input.Description,
		Status:         models.ApplicationCreated,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.applications.CreateApplication(ctx, tx, app); err != nil {
		return nil, err
	}

	for i, in := range input.Stages {
		stage, err := s.buildStage(app.ID, in)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i+1, err)
		}
		if err := s.applications.CreateStage(ctx, tx, stage); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i+1, err)
		}
		app.Stages = append(app.Stages, stage)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing application: %w", err)
	}

	s.logger.Info("application created",
		"application_id", app.ID,
		"customer", app.Customer,
		"stages", len(app.Stages),
		"created_by", actor.Username,
	)
	return app, nil
}

// AddStage appends a stage to an existing work order.
func (s *Service) AddStage(ctx context.Context, actor *models.User, applicationID string, input StageInput) (*models.Stage, error) {
	if err := requireOrderRole(actor); err != nil {
		return nil, err
	}

	app, err := s.applications.GetApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == models.ApplicationCompleted {
		return nil, fmt.Errorf("application %s is completed: %w", app.ID, models.ErrInvalidState)
	}

	stage, err := s.buildStage(app.ID, input)
	if err != nil {
		return nil, err
	}
	if err := s.applications.CreateStage(ctx, nil, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

// StartStage moves a stage into work. Starting the first stage of a
// fresh application also moves the application to in_progress.
func (s *Service) StartStage(ctx context.Context, actor *models.User, stageID string) (*models.Stage, error) {
	stage, err := s.applications.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if err := requireStageActor(actor, stage); err != nil {
		return nil, err
	}
	if stage.Status != models.StageAssigned {
		return nil, fmt.Errorf("stage %s is %s: %w", stage.ID, stage.Status, models.ErrInvalidState)
	}

	app, err := s.applications.GetApplication(ctx, stage.ApplicationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	stage.Status = models.StageInProgress
	stage.ActualStartDate = &now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.applications.UpdateStage(ctx, tx, stage); err != nil {
		return nil, err
	}
	if app.Status == models.ApplicationCreated {
		if err := s.applications.UpdateApplicationStatus(ctx, tx, app.ID, models.ApplicationInProgress); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing stage start: %w", err)
	}

	s.logger.Info("stage started", "stage_id", stage.ID, "executor", actor.Username)
	return stage, nil
}

// CompleteStage finishes a stage with the executor's report. Completing
// the last open stage completes the whole application.
func (s *Service) CompleteStage(ctx context.Context, actor *models.User, stageID, report string) (*models.Stage, error) {
	stage, err := s.applications.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if err := requireStageActor(actor, stage); err != nil {
		return nil, err
	}
	if stage.Status == models.StageCompleted {
		return nil, fmt.Errorf("stage %s is already completed: %w", stage.ID, models.ErrInvalidState)
	}

	now := time.Now().UTC()
	stage.Status = models.StageCompleted
	stage.ActualEndDate = &now
	if stage.ActualStartDate == nil {
		stage.ActualStartDate = &now
	}
	stage.Report = report

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.applications.UpdateStage(ctx, tx, stage); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing stage completion: %w", err)
	}

	// Outside the stage transaction: the application flip is derived
	// state and safe to recompute.
	remaining, err := s.applications.CountIncompleteStages(ctx, stage.ApplicationID)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		if err := s.applications.UpdateApplicationStatus(ctx, nil, stage.ApplicationID, models.ApplicationCompleted); err != nil {
			return nil, err
		}
	}

	s.logger.Info("stage completed",
		"stage_id", stage.ID,
		"application_id", stage.ApplicationID,
		"remaining_stages", remaining,
	)
	return stage, nil
}

// GetApplication retrieves a work order with stages and requests.
func (s *Service) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	return s.applications.GetApplication(ctx, id)
}

// ListApplications returns all work orders, newest first.
func (s *Service) ListApplications(ctx context.Context) ([]*models.Application, error) {
	return s.applications.ListApplications(ctx)
}

// UserStages returns the stages assigned to an executor.
func (s *Service) UserStages(ctx context.Context, executor string) ([]*models.Stage, error) {
	return s.applications.ListStagesByExecutor(ctx, executor)
}

func (s *Service) buildStage(applicationID string, input StageInput) (*models.Stage, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "stage name is required"}
	}
	if strings.TrimSpace(input.Executor) == "" {
		return nil, &models.ValidationError{Field: "executor", Reason: "executor is required"}
	}

	return &models.Stage{
		ID:               s.idGenerator.NewID(),
		ApplicationID:    applicationID,
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		Executor:         input.Executor,
		Status:           models.StageAssigned,
		PlannedStartDate: input.PlannedStartDate,
		PlannedEndDate:   input.PlannedEndDate,
	}, nil
}

// requireOrderRole gates work-order creation and planning.
func requireOrderRole(actor *models.User) error {
	if actor == nil || !actor.Active() {
		return models.ErrPermissionDenied
	}
	switch actor.Role {
	case models.RoleCustomer, models.RoleManager, models.RoleAdmin:
		return nil
	}
	return models.ErrPermissionDenied
}

// requireStageActor allows the assigned executor plus managers and
// admins to move a stage.
func requireStageActor(actor *models.User, stage *models.Stage) error {
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
