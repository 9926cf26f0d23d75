package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/workdesk/workdesk/internal/models"
)

// InventoryRepository handles stocktake session data access.
type InventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new inventory repository.
func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Create inserts a stocktake session and its snapshot items.
func (r *InventoryRepository) Create(ctx context.Context, tx *sql.Tx, inv *models.Inventory) error {
	query := `
		INSERT INTO inventories (
			id, number, date_started, date_completed, conducted_by, completed_by,
			status, total_items, items_counted, total_differences,
			discrepancies_count, stock_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ex := r.getExecer(tx)

	_, err := ex.ExecContext(ctx, query,
		inv.ID,
		inv.Number,
		inv.DateStarted.Format(time.RFC3339),
		nullableTimePtr(inv.DateCompleted),
		inv.ConductedBy,
		inv.CompletedBy,
		string(inv.Status),
		inv.TotalItems,
		inv.ItemsCounted,
		inv.TotalDifferences,
		inv.DiscrepanciesCount,
		boolToInt(inv.StockUpdated),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inventory number %q already used: %w", inv.Number, models.ErrInvalidState)
		}
		return fmt.Errorf("inserting inventory: %w", err)
	}

	itemQuery := `
		INSERT INTO inventory_items (
			inventory_id, resource_name, expected_quantity, actual_quantity,
			difference, unit, resource_type, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for _, item := range inv.Items {
		_, err := ex.ExecContext(ctx, itemQuery,
			inv.ID,
			item.ResourceName,
			item.ExpectedQuantity,
			item.ActualQuantity,
			item.Difference,
			item.Unit,
			string(item.Type),
			item.Position,
		)
		if err != nil {
			return fmt.Errorf("inserting inventory item %q: %w", item.ResourceName, err)
		}
	}
	return nil
}

// Get retrieves a stocktake session with its items.
func (r *InventoryRepository) Get(ctx context.Context, id string) (*models.Inventory, error) {
	query := `
		SELECT id, number, date_started, date_completed, conducted_by, completed_by,
			status, total_items, items_counted, total_differences,
			discrepancies_count, stock_updated
		FROM inventories
		WHERE id = ?`

	inv, err := r.scanInventory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	return inv, nil
}

// GetActive returns the stocktake session still in progress, or
// ErrNotFound when none is open.
func (r *InventoryRepository) GetActive(ctx context.Context) (*models.Inventory, error) {
	query := `
		SELECT id, number, date_started, date_completed, conducted_by, completed_by,
			status, total_items, items_counted, total_differences,
			discrepancies_count, stock_updated
		FROM inventories
		WHERE status = ?
		ORDER BY date_started DESC
		LIMIT 1`

	inv, err := r.scanInventory(r.db.QueryRowContext(ctx, query, string(models.InventoryInProgress)))
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	return inv, nil
}

// List returns all stocktake sessions, newest first, without items.
func (r *InventoryRepository) List(ctx context.Context) ([]*models.Inventory, error) {
	query := `
		SELECT id, number, date_started, date_completed, conducted_by, completed_by,
			status, total_items, items_counted, total_differences,
			discrepancies_count, stock_updated
		FROM inventories
		ORDER BY date_started DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing inventories: %w", err)
	}
	defer rows.Close()

	var inventories []*models.Inventory
	for rows.Next() {
		inv, err := r.scanInventoryRows(rows)
		if err != nil {
			return nil, err
		}
		inventories = append(inventories, inv)
	}
	return inventories, rows.Err()
}

// RecordCount writes an item's counted quantity and difference.
// Recording the same item again overwrites the previous count.
func (r *InventoryRepository) RecordCount(ctx context.Context, tx *sql.Tx, inventoryID, resourceName string, actual, difference int) error {
	query := `
		UPDATE inventory_items SET
			actual_quantity = ?, difference = ?
		WHERE inventory_id = ? AND resource_name = ?`

	result, err := r.getExecer(tx).ExecContext(ctx, query,
		actual, difference, inventoryID, resourceName,
	)
	if err != nil {
		return fmt.Errorf("recording count: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("inventory item %q: %w", resourceName, models.ErrNotFound)
	}
	return nil
}

// UpdateStats writes the session's aggregate counters.
func (r *InventoryRepository) UpdateStats(ctx context.Context, tx *sql.Tx, inv *models.Inventory) error {
	query := `
		UPDATE inventories SET
			items_counted = ?, total_differences = ?, discrepancies_count = ?
		WHERE id = ?`

	_, err := r.getExecer(tx).ExecContext(ctx, query,
		inv.ItemsCounted,
		inv.TotalDifferences,
		inv.DiscrepanciesCount,
		inv.ID,
	)
	if err != nil {
		return fmt.Errorf("updating inventory stats: %w", err)
	}
	return nil
}

// Complete closes a stocktake session. Returns ErrInvalidState if the
// session was already completed.
func (r *InventoryRepository) Complete(ctx context.Context, tx *sql.Tx, inv *models.Inventory) error {
	query := `
		UPDATE inventories SET
			status = ?, date_completed = ?, completed_by = ?,
			items_counted = ?, total_differences = ?, discrepancies_count = ?,
			stock_updated = ?
		WHERE id = ? AND status = ?`

	result, err := r.getExecer(tx).ExecContext(ctx, query,
		string(models.InventoryCompleted),
		nullableTimePtr(inv.DateCompleted),
		inv.CompletedBy,
		inv.ItemsCounted,
		inv.TotalDifferences,
		inv.DiscrepanciesCount,
		boolToInt(inv.StockUpdated),
		inv.ID,
		string(models.InventoryInProgress),
	)
	if err != nil {
		return fmt.Errorf("completing inventory: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("inventory %s is not in progress: %w", inv.ID, models.ErrInvalidState)
	}
	return nil
}

// LastSequence returns the highest numeric suffix among existing
// inventory numbers with the given prefix, 0 when none exist.
func (r *InventoryRepository) LastSequence(ctx context.Context, prefix string) (int, error) {
	return lastDocumentSequence(ctx, r.db, "inventories", prefix)
}

func (r *InventoryRepository) listItems(ctx context.Context, inventoryID string) ([]*models.InventoryItem, error) {
	query := `
		SELECT resource_name, expected_quantity, actual_quantity,
			difference, unit, resource_type, position
		FROM inventory_items
		WHERE inventory_id = ?
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("listing inventory items: %w", err)
	}
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		var typeStr string
		var actual sql.NullInt64

		err := rows.Scan(
			&item.ResourceName,
			&item.ExpectedQuantity,
			&actual,
			&item.Difference,
			&item.Unit,
			&typeStr,
			&item.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory item: %w", err)
		}
		item.Type = models.ResourceType(typeStr)
		if actual.Valid {
			v := int(actual.Int64)
			item.ActualQuantity = &v
		}

		items = append(items, &item)
	}
	return items, rows.Err()
}

func (r *InventoryRepository) scanInventory(row *sql.Row) (*models.Inventory, error) {
	var inv models.Inventory
	var statusStr, startedStr string
	var completedStr sql.NullString
	var stockUpdated int

	err := row.Scan(
		&inv.ID,
		&inv.Number,
		&startedStr,
		&completedStr,
		&inv.ConductedBy,
		&inv.CompletedBy,
		&statusStr,
		&inv.TotalItems,
		&inv.ItemsCounted,
		&inv.TotalDifferences,
		&inv.DiscrepanciesCount,
		&stockUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("inventory: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning inventory: %w", err)
	}

	inv.Status = models.InventoryStatus(statusStr)
	inv.DateStarted, _ = time.Parse(time.RFC3339, startedStr)
	inv.DateCompleted = parseTimePtr(completedStr)
	inv.StockUpdated = stockUpdated != 0

	return &inv, nil
}

func (r *InventoryRepository) scanInventoryRows(rows *sql.Rows) (*models.Inventory, error) {
	var inv models.Inventory
	var statusStr, startedStr string
	var completedStr sql.NullString
	var stockUpdated int

	err := rows.Scan(
		&inv.ID,
		&inv.Number,
		&startedStr,
		&completedStr,
		&inv.ConductedBy,
		&inv.CompletedBy,
		&statusStr,
		&inv.TotalItems,
		&inv.ItemsCounted,
		&inv.TotalDifferences,
		&inv.DiscrepanciesCount,
		&stockUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning inventory: %w", err)
	}

	inv.Status = models.InventoryStatus(statusStr)
	inv.DateStarted, _ = time.Parse(time.RFC3339, startedStr)
	inv.DateCompleted = parseTimePtr(completedStr)
	inv.StockUpdated = stockUpdated != 0

	return &inv, nil
}

func (r *InventoryRepository) getExecer(tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return r.db
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
