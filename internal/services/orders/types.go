package orders

import "time"

// CreateApplicationInput contains data for registering a work order.
type CreateApplicationInput struct {
	Customer       string
	ContractNumber string
	Description    string
	Stages         []StageInput
}

// StageInput contains data for one work stage.
type StageInput struct {
	Name             string
	Description      string
	Executor         string
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
}
