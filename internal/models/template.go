package models

import "time"

// TemplateResource is a resource a templated stage typically consumes.
// Quantities are planning figures; actual requests are still filed per
// stage.
type TemplateResource struct {
	ResourceName string `json:"resource_name"`
	Quantity     int    `json:"quantity"`
}

// StageTemplate is a reusable stage blueprint. Planners apply one to a
// work order instead of retyping recurring stages; the template's
// duration pre-fills the planned end date.
type StageTemplate struct {
	ID                string
	Name              string
	Description       string
	DurationDays      int
	RequiredResources []TemplateResource
	CreatedBy         string
	CreatedAt         time.Time
}
