// Package repository provides the data access layer for workdesk entities.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/workdesk/workdesk/internal/models"
)

// ResourceRepository handles warehouse catalog data access.
type ResourceRepository struct {
	db *sql.DB
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(db *sql.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// Create inserts a new resource at the end of the catalog order.
func (r *ResourceRepository) Create(ctx context.Context, tx *sql.Tx, resource *models.Resource) error {
	attrs, err := marshalAttributes(resource.Attributes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO resources (
			name, quantity, unit, min_quantity, resource_type,
			attributes, position, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM resources), ?, ?)`

	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now

	_, err = r.getExecer(tx).ExecContext(ctx, query,
		resource.Name,
		resource.Quantity,
		resource.Unit,
		resource.MinQuantity,
		string(resource.Type),
		attrs,
		resource.CreatedAt.Format(time.RFC3339),
		resource.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("resource %q: %w", resource.Name, models.ErrDuplicateResource)
		}
		return fmt.Errorf("inserting resource: %w", err)
	}
	return nil
}

// GetByName retrieves a resource by its catalog name.
func (r *ResourceRepository) GetByName(ctx context.Context, name string) (*models.Resource, error) {
	query := `
		SELECT name, quantity, unit, min_quantity, resource_type,
			attributes, created_at, updated_at
		FROM resources
		WHERE name = ?`

	return scanResource(r.db.QueryRowContext(ctx, query, name))
}

// Exists reports whether a resource with the given name is in the catalog.
func (r *ResourceRepository) Exists(ctx context.Context, name string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM resources WHERE name = ?`, name).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking resource existence: %w", err)
	}
	return true, nil
}

// List returns all resources in catalog insertion order.
func (r *ResourceRepository) List(ctx context.Context) ([]*models.Resource, error) {
	query := `
		SELECT name, quantity, unit, min_quantity, resource_type,
			attributes, created_at, updated_at
		FROM resources
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	defer rows.Close()

	return collectResources(rows)
}

// ListByType returns resources of a single type, in catalog order.
func (r *ResourceRepository) ListByType(ctx context.Context, t models.ResourceType) ([]*models.Resource, error) {
	query := `
		SELECT name, quantity, unit, min_quantity, resource_type,
			attributes, created_at, updated_at
		FROM resources
		WHERE resource_type = ?
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, string(t))
	if err != nil {
		return nil, fmt.Errorf("listing resources by type: %w", err)
	}
	defer rows.Close()

	return collectResources(rows)
}

// ListBelowMinimum returns resources at or below their minimum quantity
// threshold. Resources without a threshold are excluded.
func (r *ResourceRepository) ListBelowMinimum(ctx context.Context) ([]*models.Resource, error) {
	query := `
		SELECT name, quantity, unit, min_quantity, resource_type,
			attributes, created_at, updated_at
		FROM resources
		WHERE min_quantity > 0 AND quantity <= min_quantity
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing low-stock resources: %w", err)
	}
	defer rows.Close()

	return collectResources(rows)
}

// Update modifies a resource's mutable fields. The name is the identity
// and cannot change.
func (r *ResourceRepository) Update(ctx context.Context, tx *sql.Tx, resource *models.Resource) error {
	attrs, err := marshalAttributes(resource.Attributes)
	if err != nil {
		return err
	}

	query := `
		UPDATE resources SET
			quantity = ?, unit = ?, min_quantity = ?, resource_type = ?,
			attributes = ?, updated_at = ?
		WHERE name = ?`

	resource.UpdatedAt = time.Now().UTC()

	result, err := r.getExecer(tx).ExecContext(ctx, query,
		resource.Quantity,
		resource.Unit,
		resource.MinQuantity,
		string(resource.Type),
		attrs,
		resource.UpdatedAt.Format(time.RFC3339),
		resource.Name,
	)
	if err != nil {
		return fmt.Errorf("updating resource: %w", err)
	}
	return requireRowAffected(result, resource.Name)
}

// AdjustQuantity changes a resource's stock by delta (negative to issue,
// positive to receive). The guard in the WHERE clause refuses adjustments
// that would drive the quantity negative.
func (r *ResourceRepository) AdjustQuantity(ctx context.Context, tx *sql.Tx, name string, delta int) error {
	query := `
		UPDATE resources SET
			quantity = quantity + ?, updated_at = ?
		WHERE name = ? AND quantity + ? >= 0`

	result, err := r.getExecer(tx).ExecContext(ctx, query,
		delta,
		time.Now().UTC().Format(time.RFC3339),
		name,
		delta,
	)
	if err != nil {
		return fmt.Errorf("adjusting quantity: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjusting quantity: %w", err)
	}
	if n == 0 {
		// Either missing or the guard rejected it; report which.
		var available int
		err := r.queryRower(tx).QueryRowContext(ctx,
			`SELECT quantity FROM resources WHERE name = ?`, name).Scan(&available)
		if err == sql.ErrNoRows {
			return fmt.Errorf("resource %q: %w", name, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("adjusting quantity: %w", err)
		}
		return &models.InsufficientStockError{
			Resource:  name,
			Available: available,
			Requested: -delta,
		}
	}
	return nil
}

// SetQuantity overwrites a resource's stock level, used when applying
// stocktake counts.
func (r *ResourceRepository) SetQuantity(ctx context.Context, tx *sql.Tx, name string, quantity int) error {
	query := `UPDATE resources SET quantity = ?, updated_at = ? WHERE name = ?`

	result, err := r.getExecer(tx).ExecContext(ctx, query,
		quantity,
		time.Now().UTC().Format(time.RFC3339),
		name,
	)
	if err != nil {
		return fmt.Errorf("setting quantity: %w", err)
	}
	return requireRowAffected(result, name)
}

// Delete removes a resource from the catalog.
func (r *ResourceRepository) Delete(ctx context.Context, tx *sql.Tx, name string) error {
	result, err := r.getExecer(tx).ExecContext(ctx, `DELETE FROM resources WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting resource: %w", err)
	}
	return requireRowAffected(result, name)
}

// Count returns the number of catalog entries.
func (r *ResourceRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM resources`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting resources: %w", err)
	}
	return count, nil
}

func (r *ResourceRepository) getExecer(tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ResourceRepository) queryRower(tx *sql.Tx) rowQueryer {
	if tx != nil {
		return tx
	}
	return r.db
}

func scanResource(row *sql.Row) (*models.Resource, error) {
	var res models.Resource
	var typeStr, attrsStr, createdStr, updatedStr string

	err := row.Scan(
		&res.Name,
		&res.Quantity,
		&res.Unit,
		&res.MinQuantity,
		&typeStr,
		&attrsStr,
		&createdStr,
		&updatedStr,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("resource: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning resource: %w", err)
	}

	res.Type = models.ResourceType(typeStr)
	if err := json.Unmarshal([]byte(attrsStr), &res.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	res.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
	res.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)

	return &res, nil
}

func collectResources(rows *sql.Rows) ([]*models.Resource, error) {
	var resources []*models.Resource
	for rows.Next() {
		var res models.Resource
		var typeStr, attrsStr, createdStr, updatedStr string

		err := rows.Scan(
			&res.Name,
			&res.Quantity,
			&res.Unit,
			&res.MinQuantity,
			&typeStr,
			&attrsStr,
			&createdStr,
			&updatedStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}

		res.Type = models.ResourceType(typeStr)
		if err := json.Unmarshal([]byte(attrsStr), &res.Attributes); err != nil {
			return nil, fmt.Errorf("decoding attributes: %w", err)
		}
		res.CreatedAt, _ = time.Parse(time.RFC3339, createdStr)
		res.UpdatedAt, _ = time.Parse(time.RFC3339, updatedStr)

		resources = append(resources, &res)
	}
	return resources, rows.Err()
}

func marshalAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encoding attributes: %w", err)
	}
	return string(b), nil
}

func requireRowAffected(result sql.Result, name string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("resource %q: %w", name, models.ErrNotFound)
	}
	return nil
}
