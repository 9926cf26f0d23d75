package models

import "time"

// ApplicationStatus is the lifecycle state of a work-order application.
type ApplicationStatus string

const (
	ApplicationCreated    ApplicationStatus = "created"
	ApplicationInProgress ApplicationStatus = "in_progress"
	ApplicationCompleted  ApplicationStatus = "completed"
)

// Application is a customer work-order. Stages hang off it in assignment
// order.
type Application struct {
	ID             string
	Customer       string
	ContractNumber string
	Description    string
	Status         ApplicationStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined
	Stages []*Stage
}

// StageStatus is the lifecycle state of a stage.
type StageStatus string

const (
	StageAssigned   StageStatus = "assigned"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

// Stage is a unit of work within an application, assigned to one executor.
type Stage struct {
	ID               string
	ApplicationID    string
	Name             string
	Description      string
	Executor         string
	Status           StageStatus
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	ActualStartDate  *time.Time
	ActualEndDate    *time.Time
	Report           string
	Position         int
	CreatedAt        time.Time
	UpdatedAt        time.Time

	// Joined
	Requests []*ResourceRequest
}

// RequestStatus is the state of a stage's resource request.
// requested is the only non-terminal state; allocated and cancelled are
// terminal. Records are never deleted, forming an audit trail.
type RequestStatus string

const (
	RequestRequested RequestStatus = "requested"
	RequestAllocated RequestStatus = "allocated"
	RequestCancelled RequestStatus = "cancelled"
)

// ResourceRequest is one resource ask recorded against a stage.
type ResourceRequest struct {
	ID             string
	ApplicationID  string
	StageID        string
	ResourceName   string
	Quantity       int
	Status         RequestStatus
	RequestedBy    string
	RequestDate    time.Time
	AllocatedBy    *string
	AllocationDate *time.Time
	CancelledBy    *string
	CancelDate     *time.Time
	CancelReason   string
	Position       int
}

// Pending reports whether the request still awaits fulfilment.
func (r *ResourceRequest) Pending() bool {
	return r.Status == RequestRequested
}

// PendingRequest is a row in the storeman's allocation queue, a
// cross-cutting view over all applications and stages.
type PendingRequest struct {
	RequestID     string
	ApplicationID string
	StageID       string
	StageName     string
	Executor      string
	ResourceName  string
	Quantity      int
	RequestedBy   string
	RequestDate   time.Time
}
