package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/workdesk/workdesk/internal/models"
)

// ApplicationRepository handles work-order, stage and resource-request
// data access.
type ApplicationRepository struct {
	db *sql.DB
}

// NewApplicationRepository creates a new application repository.
func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// ============================================================================
// APPLICATIONS
// ============================================================================

// CreateApplication inserts a new work order.
func (r *ApplicationRepository) CreateApplication(ctx context.Context, tx *sql.Tx, app *models.Application) error {
	query := `
		INSERT INTO applications (
			id, customer, contract_number, description, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now

	_, err := r.getExecer(tx).ExecContext(ctx, query,
		app.ID,
		app.Customer,
		app.ContractNumber,
		app.Description,
		string(app.Status),
		app.CreatedAt.Format(time.RFC3339),
		app.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting application: %w", err)
	}
	return nil
}

// GetApplication retrieves a work order with its stages and their requests.
func (r *ApplicationRepository) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	query := `
		SELECT id, customer, contract_number, description, status, created_at, updated_at
		FROM applications
		WHERE id = ?`

	var app models.Application
	var statusStr, createdStr, updatedStr string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&app.ID,
		&app.Customer,
		&app.ContractNumber,
		&app.Description,
		&statusStr,
		&createdStr,
		&updatedStr,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("application %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning application: %w", err)
	}

	app.Status = models.ApplicationStatus(statusStr)
	app.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	app.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)

	stages, err := r.ListStages(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	app.Stages = stages

	return &app, nil
}

// ListApplications returns all work orders, newest first.
func (r *ApplicationRepository) ListApplications(ctx context.Context) ([]*models.Application, error) {
	query := `
		SELECT id, customer, contract_number, description, status, created_at, updated_at
		FROM applications
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		var app models.Application
		var statusStr, createdStr, updatedStr string

		err := rows.Scan(
			&app.ID,
			&app.Customer,
			&app.ContractNumber,
			&app.Description,
			&statusStr,
			&createdStr,
			&updatedStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}

		app.Status = models.ApplicationStatus(statusStr)
		app.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		app.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)

		apps = append(apps, &app)
	}
	return apps, rows.Err()
}

// UpdateApplicationStatus transitions a work order's lifecycle state.
func (r *ApplicationRepository) UpdateApplicationStatus(ctx context.Context, tx *sql.Tx, id string, status models.ApplicationStatus) error {
	query := `UPDATE applications SET status = ?, updated_at = ? WHERE id = ?`

	result, err := r.getExecer(tx).ExecContext(ctx, query,
		string(status),
		time.Now().UTC().Format(time.RFC3339),
		id,
	)
	if err != nil {
		return fmt.Errorf("updating application status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("application %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// ============================================================================
// STAGES
// ============================================================================

// CreateStage inserts a stage at the end of its application's stage order.
func (r *ApplicationRepository) CreateStage(ctx context.Context, tx *sql.Tx, stage *models.Stage) error {
	query := `
		INSERT INTO stages (
			id, application_id, name, description, executor, status,
			planned_start_date, planned_end_date, actual_start_date, actual_end_date,
			report, position, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM stages WHERE application_id = ?), ?, ?)`

	now := time.Now().UTC()
	stage.CreatedAt = now
	stage.UpdatedAt = now

	_, err := r.getExecer(tx).ExecContext(ctx, query,
		stage.ID,
		stage.ApplicationID,
		stage.Name,
		stage.Description,
		stage.Executor,
		string(stage.Status),
		nullableTimePtr(stage.PlannedStartDate),
		nullableTimePtr(stage.PlannedEndDate),
		nullableTimePtr(stage.ActualStartDate),
		nullableTimePtr(stage.ActualEndDate),
		stage.Report,
		stage.ApplicationID,
		stage.CreatedAt.Format(time.RFC3339),
		stage.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting stage: %w", err)
	}
	return nil
}

// GetStage retrieves a stage with its resource requests.
func (r *ApplicationRepository) GetStage(ctx context.Context, id string) (*models.Stage, error) {
	query := `
		SELECT id, application_id, name, description, executor, status,
			planned_start_date, planned_end_date, actual_start_date, actual_end_date,
			report, position, created_at, updated_at
		FROM stages
		WHERE id = ?`

	stage, err := scanStage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	requests, err := r.ListRequestsByStage(ctx, stage.ID)
	if err != nil {
		return nil, err
	}
	stage.Requests = requests

	return stage, nil
}

// ListStages returns an application's stages in order, each with its
// resource requests.
func (r *ApplicationRepository) ListStages(ctx context.Context, applicationID string) ([]*models.Stage, error) {
	query := `
		SELECT id, application_id, name, description, executor, status,
			planned_start_date, planned_end_date, actual_start_date, actual_end_date,
			report, position, created_at, updated_at
		FROM stages
		WHERE application_id = ?
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("listing stages: %w", err)
	}
	defer rows.Close()

	stages, err := collectStages(rows)
	if err != nil {
		return nil, err
	}

	for _, stage := range stages {
		requests, err := r.ListRequestsByStage(ctx, stage.ID)
		if err != nil {
			return nil, err
		}
		stage.Requests = requests
	}
	return stages, nil
}

// ListStagesByExecutor returns all stages assigned to an executor,
// most recently created first.
func (r *ApplicationRepository) ListStagesByExecutor(ctx context.Context, executor string) ([]*models.Stage, error) {
	query := `
		SELECT id, application_id, name, description, executor, status,
			planned_start_date, planned_end_date, actual_start_date, actual_end_date,
			report, position, created_at, updated_at
		FROM stages
		WHERE executor = ?
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, executor)
	if err != nil {
		return nil, fmt.Errorf("listing stages by executor: %w", err)
	}
	defer rows.Close()

	return collectStages(rows)
}

// UpdateStage modifies a stage's mutable fields.
func (r *ApplicationRepository) UpdateStage(ctx context.Context, tx *sql.Tx, stage *models.Stage) error {
	query := `
		UPDATE stages SET
			name = ?, description = ?, executor = ?, status = ?,
			planned_start_date = ?, planned_end_date = ?,
			actual_start_date = ?, actual_end_date = ?,
			report = ?, updated_at = ?
		WHERE id = ?`

	stage.UpdatedAt = time.Now().UTC()

	result, err := r.getExecer(tx).ExecContext(ctx, query,
		stage.Name,
		stage.Description,
		stage.Executor,
		string(stage.Status),
		nullableTimePtr(stage.PlannedStartDate),
		nullableTimePtr(stage.PlannedEndDate),
		nullableTimePtr(stage.ActualStartDate),
		nullableTimePtr(stage.ActualEndDate),
		stage.Report,
		stage.UpdatedAt.Format(time.RFC3339),
		stage.ID,
	)
	if err != nil {
		return fmt.Errorf("updating stage: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("stage %s: %w", stage.ID, models.ErrNotFound)
	}
	return nil
}

// CountIncompleteStages counts an application's stages not yet completed.
func (r *ApplicationRepository) CountIncompleteStages(ctx context.Context, applicationID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stages WHERE application_id = ? AND status != ?`,
		applicationID, string(models.StageCompleted),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting incomplete stages: %w", err)
	}
	return count, nil
}

func scanStage(row *sql.Row) (*models.Stage, error) {
	var stage models.Stage
	var statusStr, createdStr, updatedStr string
	var plannedStart, plannedEnd, actualStart, actualEnd sql.NullString

	err := row.Scan(
		&stage.ID,
		&stage.ApplicationID,
		&stage.Name,
		&stage.Description,
		&stage.Executor,
		&statusStr,
		&plannedStart,
		&plannedEnd,
		&actualStart,
		&actualEnd,
		&stage.Report,
		&stage.Position,
		&createdStr,
		&updatedStr,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stage: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning stage: %w", err)
	}

	stage.Status = models.StageStatus(statusStr)
	stage.PlannedStartDate = parseTimePtr(plannedStart)
	stage.PlannedEndDate = parseTimePtr(plannedEnd)
	stage.ActualStartDate = parseTimePtr(actualStart)
	stage.ActualEndDate = parseTimePtr(actualEnd)
	stage.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	stage.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)

	return &stage, nil
}

func collectStages(rows *sql.Rows) ([]*models.Stage, error) {
	var stages []*models.Stage
	for rows.Next() {
		var stage models.Stage
		var statusStr, createdStr, updatedStr string
		var plannedStart, plannedEnd, actualStart, actualEnd sql.NullString

		err := rows.Scan(
			&stage.ID,
			&stage.ApplicationID,
			&stage.Name,
			&stage.Description,
			&stage.Executor,
			&statusStr,
			&plannedStart,
			&plannedEnd,
			&actualStart,
			&actualEnd,
			&stage.Report,
			&stage.Position,
			&createdStr,
			&updatedStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}

		stage.Status = models.StageStatus(statusStr)
		stage.PlannedStartDate = parseTimePtr(plannedStart)
		stage.PlannedEndDate = parseTimePtr(plannedEnd)
		stage.ActualStartDate = parseTimePtr(actualStart)
		stage.ActualEndDate = parseTimePtr(actualEnd)
		stage.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		stage.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)

		stages = append(stages, &stage)
	}
	return stages, rows.Err()
}

// ============================================================================
// RESOURCE REQUESTS
// ============================================================================

// CreateRequest inserts a resource request at the end of its stage's
// request order.
func (r *ApplicationRepository) CreateRequest(ctx context.Context, tx *sql.Tx, req *models.ResourceRequest) error {
	query := `
		INSERT INTO resource_requests (
			id, application_id, stage_id, resource_name, quantity, status,
			requested_by, request_date, allocated_by, allocation_date,
			cancelled_by, cancel_date, cancel_reason, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM resource_requests WHERE stage_id = ?))`

	_, err := r.getExecer(tx).ExecContext(ctx, query,
		req.ID,
		req.ApplicationID,
		req.StageID,
		req.ResourceName,
		req.Quantity,
		string(req.Status),
		req.RequestedBy,
		req.RequestDate.Format(time.RFC3339),
		req.AllocatedBy,
		nullableTimePtr(req.AllocationDate),
		req.CancelledBy,
		nullableTimePtr(req.CancelDate),
		req.CancelReason,
		req.StageID,
	)
	if err != nil {
		return fmt.Errorf("inserting resource request: %w", err)
	}
	return nil
}

// GetRequest retrieves a resource request by ID.
func (r *ApplicationRepository) GetRequest(ctx context.Context, id string) (*models.ResourceRequest, error) {
	query := `
		SELECT id, application_id, stage_id, resource_name, quantity, status,
			requested_by, request_date, allocated_by, allocation_date,
			cancelled_by, cancel_date, cancel_reason, position
		FROM resource_requests
		WHERE id = ?`

	return scanRequest(r.db.QueryRowContext(ctx, query, id))
}

// ListRequestsByStage returns a stage's requests in request order.
func (r *ApplicationRepository) ListRequestsByStage(ctx context.Context, stageID string) ([]*models.ResourceRequest, error) {
	query := `
		SELECT id, application_id, stage_id, resource_name, quantity, status,
			requested_by, request_date, allocated_by, allocation_date,
			cancelled_by, cancel_date, cancel_reason, position
		FROM resource_requests
		WHERE stage_id = ?
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListPendingRequests returns the warehouse queue: all requests still
// awaiting allocation across every work order, oldest first.
func (r *ApplicationRepository) ListPendingRequests(ctx context.Context) ([]*models.PendingRequest, error) {
	query := `
		SELECT rr.id, rr.application_id, rr.stage_id, s.name, s.executor,
			rr.resource_name, rr.quantity, rr.requested_by, rr.request_date
		FROM resource_requests rr
		JOIN stages s ON s.id = rr.stage_id
		WHERE rr.status = ?
		ORDER BY rr.request_date, rr.position`

	rows, err := r.db.QueryContext(ctx, query, string(models.RequestRequested))
	if err != nil {
		return nil, fmt.Errorf("listing pending requests: %w", err)
	}
	defer rows.Close()

	var pending []*models.PendingRequest
	for rows.Next() {
		var p models.PendingRequest
		var dateStr string

		err := rows.Scan(
			&p.RequestID,
			&p.ApplicationID,
			&p.StageID,
			&p.StageName,
			&p.Executor,
			&p.ResourceName,
			&p.Quantity,
			&p.RequestedBy,
			&dateStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning pending request: %w", err)
		}
		p.RequestDate, _ = time.Parse(time.RFC3339, dateStr)

		pending = append(pending, &p)
	}
	return pending, rows.Err()
}

// MarkRequestAllocated transitions a request from requested to allocated.
// Returns ErrInvalidState if the request has already been decided.
func (r *ApplicationRepository) MarkRequestAllocated(ctx context.Context, tx *sql.Tx, id, allocatedBy string, when time.Time) error {
	query := `
		UPDATE resource_requests SET
			status = ?, allocated_by = ?, allocation_date = ?
		WHERE id = ? AND status = ?`

	result, err := r.getExecer(tx).ExecContext(ctx, query,
		string(models.RequestAllocated),
		allocatedBy,
		when.Format(time.RFC3339),
		id,
		string(models.RequestRequested),
	)
	if err != nil {
		return fmt.Errorf("allocating request: %w", err)
	}
	return r.requireRequestTransition(ctx, tx, result, id)
}

// MarkRequestCancelled transitions a request from requested to cancelled.
// Returns ErrInvalidState if the request has already been decided.
func (r *ApplicationRepository) MarkRequestCancelled(ctx context.Context, tx *sql.Tx, id, cancelledBy, reason string, when time.Time) error {
	query := `
		UPDATE resource_requests SET
			status = ?, cancelled_by = ?, cancel_date = ?, cancel_reason = ?
		WHERE id = ? AND status = ?`

	result, err := r.getExecer(tx).ExecContext(ctx, query,
		string(models.RequestCancelled),
		cancelledBy,
		when.Format(time.RFC3339),
		reason,
		id,
		string(models.RequestRequested),
	)
	if err != nil {
		return fmt.Errorf("cancelling request: %w", err)
	}
	return r.requireRequestTransition(ctx, tx, result, id)
}

// HasRequestsForResource reports whether any request, in any state, has
// ever referenced the named resource. Decided requests count too: they
// form the audit trail and keep the catalog entry from being deleted out
// from under it.
func (r *ApplicationRepository) HasRequestsForResource(ctx context.Context, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM resource_requests WHERE resource_name = ? LIMIT 1`,
		name,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking resource requests: %w", err)
	}
	return true, nil
}

// requireRequestTransition distinguishes a missing request from one whose
// status no longer permits the transition.
func (r *ApplicationRepository) requireRequestTransition(ctx context.Context, tx *sql.Tx, result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	var status string
	err = r.queryRower(tx).QueryRowContext(ctx,
		`SELECT status FROM resource_requests WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("request %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking request status: %w", err)
	}
	return fmt.Errorf("request %s is %s: %w", id, status, models.ErrInvalidState)
}

func (r *ApplicationRepository) getExecer(tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ApplicationRepository) queryRower(tx *sql.Tx) rowQueryer {
	if tx != nil {
		return tx
	}
	return r.db
}

func scanRequest(row *sql.Row) (*models.ResourceRequest, error) {
	var req models.ResourceRequest
	var statusStr, dateStr string
	var allocatedBy, allocationDate, cancelledBy, cancelDate sql.NullString

	err := row.Scan(
		&req.ID,
		&req.ApplicationID,
		&req.StageID,
		&req.ResourceName,
		&req.Quantity,
		&statusStr,
		&req.RequestedBy,
		&dateStr,
		&allocatedBy,
		&allocationDate,
		&cancelledBy,
		&cancelDate,
		&req.CancelReason,
		&req.Position,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("request: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning request: %w", err)
	}

	req.Status = models.RequestStatus(statusStr)
	req.RequestDate, _ = time.Parse(time.RFC3339, dateStr)
	req.AllocatedBy = stringPtr(allocatedBy)
	req.AllocationDate = parseTimePtr(allocationDate)
	req.CancelledBy = stringPtr(cancelledBy)
	req.CancelDate = parseTimePtr(cancelDate)

	return &req, nil
}

func collectRequests(rows *sql.Rows) ([]*models.ResourceRequest, error) {
	var requests []*models.ResourceRequest
	for rows.Next() {
		var req models.ResourceRequest
		var statusStr, dateStr string
		var allocatedBy, allocationDate, cancelledBy, cancelDate sql.NullString

		err := rows.Scan(
			&req.ID,
			&req.ApplicationID,
			&req.StageID,
			&req.ResourceName,
			&req.Quantity,
			&statusStr,
			&req.RequestedBy,
			&dateStr,
			&allocatedBy,
			&allocationDate,
			&cancelledBy,
			&cancelDate,
			&req.CancelReason,
			&req.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}

		req.Status = models.RequestStatus(statusStr)
		req.RequestDate, _ = time.Parse(time.RFC3339, dateStr)
		req.AllocatedBy = stringPtr(allocatedBy)
		req.AllocationDate = parseTimePtr(allocationDate)
		req.CancelledBy = stringPtr(cancelledBy)
		req.CancelDate = parseTimePtr(cancelDate)

		requests = append(requests, &req)
	}
	return requests, rows.Err()
}
