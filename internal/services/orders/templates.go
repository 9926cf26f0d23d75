package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/workdesk/workdesk/internal/models"
)

// TemplateInput contains data for creating or updating a stage template.
type TemplateInput struct {
	Name              string
	Description       string
	DurationDays      int
	RequiredResources []models.TemplateResource
}

// ApplyTemplateInput parameterizes applying a template to a work order.
type ApplyTemplateInput struct {
	Executor         string
	PlannedStartDate *time.Time
}

// CreateTemplate registers a reusable stage blueprint.
func (s *Service) CreateTemplate(ctx context.Context, actor *models.User, input TemplateInput) (*models.StageTemplate, error) {
	if err := requireOrderRole(actor); err != nil {
		return nil, err
	}
	if err := validateTemplateInput(input); err != nil {
		return nil, err
	}

	template := &models.StageTemplate{
		ID:                s.idGenerator.NewID(),
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		DurationDays:      input.DurationDays,
		RequiredResources: input.RequiredResources,
		CreatedBy:         actor.Username,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, err
	}

	s.logger.Info("stage template created",
		"template_id", template.ID,
		"name", template.Name,
		"created_by", actor.Username,
	)
	return template, nil
}

// UpdateTemplate overwrites a template's fields.
func (s *Service) UpdateTemplate(ctx context.Context, actor *models.User, id string, input TemplateInput) (*models.StageTemplate, error) {
	if err := requireOrderRole(actor); err != nil {
		return nil, err
	}
	if err := validateTemplateInput(input); err != nil {
		return nil, err
	}

	template, err := s.templates.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	template.Name = strings.TrimSpace(input.Name)
	template.Description = input.Description
	template.DurationDays = input.DurationDays
	template.RequiredResources = input.RequiredResources

	if err := s.templates.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// DeleteTemplate removes a stage template. Stages already created from
// it are untouched; a template is a blueprint, not a reference.
func (s *Service) DeleteTemplate(ctx context.Context, actor *models.User, id string) error {
	if err := requireOrderRole(actor); err != nil {
		return err
	}
	return s.templates.Delete(ctx, id)
}

// GetTemplate retrieves a stage template.
func (s *Service) GetTemplate(ctx context.Context, id string) (*models.StageTemplate, error) {
	return s.templates.Get(ctx, id)
}

// ListTemplates returns all stage templates in name order.
func (s *Service) ListTemplates(ctx context.Context) ([]*models.StageTemplate, error) {
	return s.templates.List(ctx)
}

// ApplyTemplate appends a stage built from a template to a work order.
// The stage takes the template's name and description; when the template
// carries a duration and a planned start is given, the planned end is
// start plus that duration.
func (s *Service) ApplyTemplate(ctx context.Context, actor *models.User, applicationID, templateID string, input ApplyTemplateInput) (*models.Stage, error) {
	template, err := s.templates.Get(ctx, templateID)
	if err != nil {
		return nil, err
	}

	stageInput := StageInput{
		Name:             template.Name,
		Description:      template.Description,
		Executor:         input.Executor,
		PlannedStartDate: input.PlannedStartDate,
	}
	if template.DurationDays > 0 && input.PlannedStartDate != nil {
		end := input.PlannedStartDate.AddDate(0, 0, template.DurationDays)
		stageInput.PlannedEndDate = &end
	}

	stage, err := s.AddStage(ctx, actor, applicationID, stageInput)
	if err != nil {
		return nil, err
	}

	s.logger.Info("template applied",
		"template_id", template.ID,
		"application_id", applicationID,
		"stage_id", stage.ID,
		"applied_by", actor.Username,
	)
	return stage, nil
}

func validateTemplateInput(input TemplateInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return &models.ValidationError{Field: "name", Reason: "template name is required"}
	}
	if input.DurationDays < 0 {
		return &models.ValidationError{Field: "duration_days", Reason: "duration cannot be negative"}
	}
	for i, res := range input.RequiredResources {
		if strings.TrimSpace(res.ResourceName) == "" {
			return &models.ValidationError{Field: "required_resources", Reason: fmt.Sprintf("resource %d: name is required", i+1)}
		}
		if res.Quantity <= 0 {
			return &models.ValidationError{Field: "required_resources", Reason: fmt.Sprintf("resource %d: quantity must be positive", i+1)}
		}
	}
	return nil
}
