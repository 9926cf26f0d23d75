package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/workdesk/workdesk/internal/models"
)

// TemplateRepository handles stage template data access.
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create inserts a new stage template.
func (r *TemplateRepository) Create(ctx context.Context, template *models.StageTemplate) error {
	resources, err := marshalTemplateResources(template.RequiredResources)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO stage_templates (
			id, name, description, duration_days, required_resources,
			created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	template.CreatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		template.DurationDays,
		resources,
		template.CreatedBy,
		template.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

// Get retrieves a stage template by ID.
func (r *TemplateRepository) Get(ctx context.Context, id string) (*models.StageTemplate, error) {
	query := `
		SELECT id, name, description, duration_days, required_resources,
			created_by, created_at
		FROM stage_templates
		WHERE id = ?`

	template, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}
	return template, err
}

// List returns all stage templates in name order.
func (r *TemplateRepository) List(ctx context.Context) ([]*models.StageTemplate, error) {
	query := `
		SELECT id, name, description, duration_days, required_resources,
			created_by, created_at
		FROM stage_templates
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.StageTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

// Update overwrites a template's editable fields.
func (r *TemplateRepository) Update(ctx context.Context, template *models.StageTemplate) error {
	resources, err := marshalTemplateResources(template.RequiredResources)
	if err != nil {
		return err
	}

	query := `
		UPDATE stage_templates SET
			name = ?, description = ?, duration_days = ?, required_resources = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		template.Name,
		template.Description,
		template.DurationDays,
		resources,
		template.ID,
	)
	if err != nil {
		return fmt.Errorf("updating template: %w", err)
	}
	return requireTemplateAffected(result, template.ID)
}

// Delete removes a stage template.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stage_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return requireTemplateAffected(result, id)
}

func requireTemplateAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("template %s: %w", id, models.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*models.StageTemplate, error) {
	var template models.StageTemplate
	var resourcesJSON, createdAtStr string

	err := row.Scan(
		&template.ID,
		&template.Name,
		&template.Description,
		&template.DurationDays,
		&resourcesJSON,
		&template.CreatedBy,
		&createdAtStr,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(resourcesJSON), &template.RequiredResources); err != nil {
		return nil, fmt.Errorf("decoding template resources: %w", err)
	}
	template.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)

	return &template, nil
}

func marshalTemplateResources(resources []models.TemplateResource) (string, error) {
	if resources == nil {
		resources = []models.TemplateResource{}
	}
	data, err := json.Marshal(resources)
	if err != nil {
		return "", fmt.Errorf("encoding template resources: %w", err)
	}
	return string(data), nil
}
