// Package catalog provides warehouse catalog management operations.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
)

// Service provides catalog operations.
type Service struct {
	db        *sql.DB
	resources *repository.ResourceRepository
	requests  *repository.ApplicationRepository
}

// NewService creates a new catalog service.
func NewService(db *sql.DB) *Service {
	return &Service{
		db:        db,
		resources: repository.NewResourceRepository(db),
		requests:  repository.NewApplicationRepository(db),
	}
}

// AddResource creates a new catalog entry. Only warehouse roles may
// modify the catalog.
func (s *Service) AddResource(ctx context.Context, actor *models.User, input AddResourceInput) (*models.Resource, error) {
	if err := requireStockRole(actor); err != nil {
		return nil, err
	}
	if err := validateResourceInput(input.Name, input.Quantity, input.MinQuantity); err != nil {
		return nil, err
	}

	if models.TypeDefinitionFor(input.Type) == nil {
		return nil, &models.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown resource type %q", input.Type)}
	}
	if err := models.ValidateAttributes(input.Type, input.Attributes); err != nil {
		return nil, err
	}

	resource := &models.Resource{
		Name:        strings.TrimSpace(input.Name),
		Quantity:    input.Quantity,
		Unit:        input.Unit,
		MinQuantity: input.MinQuantity,
		Type:        input.Type,
		Attributes:  input.Attributes,
	}
	if resource.Unit == "" {
		resource.Unit = "шт"
	}
	if resource.Attributes == nil {
		resource.Attributes = map[string]string{}
	}

	if err := s.resources.Create(ctx, nil, resource); err != nil {
		return nil, fmt.Errorf("adding resource: %w", err)
	}
	return resource, nil
}

// UpdateResource modifies a catalog entry. The name identifies the
// resource and cannot change.
func (s *Service) UpdateResource(ctx context.Context, actor *models.User, name string, input UpdateResourceInput) (*models.Resource, error) {
	if err := requireStockRole(actor); err != nil {
		return nil, err
	}

	resource, err := s.resources.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, &models.ValidationError{Field: "quantity", Reason: "quantity cannot be negative"}
		}
		resource.Quantity = *input.Quantity
	}
	if input.MinQuantity != nil {
		if *input.MinQuantity < 0 {
			return nil, &models.ValidationError{Field: "min_quantity", Reason: "minimum quantity cannot be negative"}
		}
		resource.MinQuantity = *input.MinQuantity
	}
	if input.Unit != nil && *input.Unit != "" {
		resource.Unit = *input.Unit
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, &models.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown resource type %q", *input.Type)}
		}
		resource.Type = *input.Type
	}
	if input.Type != nil || input.Attributes != nil {
		attrs := resource.Attributes
		if input.Attributes != nil {
			attrs = input.Attributes
		}
		// A type change revalidates whatever attributes the entry ends
		// up with against the new schema.
		if err := models.ValidateAttributes(resource.Type, attrs); err != nil {
			return nil, err
		}
		resource.Attributes = attrs
	}

	if err := s.resources.Update(ctx, nil, resource); err != nil {
		return nil, fmt.Errorf("updating resource: %w", err)
	}
	return resource, nil
}

// DeleteResource removes a catalog entry. Any request that has ever
// referenced the resource blocks deletion, decided or not, so the
// request audit trail never points at a missing entry.
func (s *Service) DeleteResource(ctx context.Context, actor *models.User, name string) error {
	if err := requireStockRole(actor); err != nil {
		return err
	}

	inUse, err := s.requests.HasRequestsForResource(ctx, name)
	if err != nil {
		return err
	}
	if inUse {
		return fmt.Errorf("resource %q is referenced by requests: %w", name, models.ErrResourceInUse)
	}

	return s.resources.Delete(ctx, nil, name)
}

// GetResource retrieves a single catalog entry.
func (s *Service) GetResource(ctx context.Context, name string) (*models.Resource, error) {
	return s.resources.GetByName(ctx, name)
}

// ListResources returns the catalog in insertion order.
func (s *Service) ListResources(ctx context.Context) ([]*models.Resource, error) {
	return s.resources.List(ctx)
}

// ListByType returns catalog entries of one type.
func (s *Service) ListByType(ctx context.Context, t models.ResourceType) ([]*models.Resource, error) {
	return s.resources.ListByType(ctx, t)
}

// LowStock returns entries at or below their minimum quantity threshold.
func (s *Service) LowStock(ctx context.Context) ([]*models.Resource, error) {
	return s.resources.ListBelowMinimum(ctx)
}

// TypeDefinitions exposes the attribute registry for catalog forms.
func (s *Service) TypeDefinitions() []models.TypeDefinition {
	return models.AllResourceTypes()
}

func validateResourceInput(name string, quantity, minQuantity int) error {
	if strings.TrimSpace(name) == "" {
		return &models.ValidationError{Field: "name", Reason: "name is required"}
	}
	if quantity < 0 {
		return &models.ValidationError{Field: "quantity", Reason: "quantity cannot be negative"}
	}
	if minQuantity < 0 {
		return &models.ValidationError{Field: "min_quantity", Reason: "minimum quantity cannot be negative"}
	}
	return nil
}

// requireStockRole checks that the actor may manage warehouse data.
func requireStockRole(actor *models.User) error {
	if actor == nil || !actor.Active() || !actor.Role.ManagesStock() {
		return models.ErrPermissionDenied
	}
	return nil
}
