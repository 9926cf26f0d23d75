// Package stocktake implements inventory reconciliation: a session
// snapshots the catalog, counts are recorded item by item, and
// completion can write the counted quantities back to stock.
package stocktake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
	"github.com/workdesk/workdesk/internal/util"
)

// Service provides stocktake operations.
type Service struct {
	db          *sql.DB
	resources   *repository.ResourceRepository
	inventories *repository.InventoryRepository
	idGenerator *util.IDGenerator
	numbers     *util.DocumentNumberGenerator
	logger      *slog.Logger
}

// NewService creates a new stocktake service.
func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{
		db:          db,
		resources:   repository.NewResourceRepository(db),
		inventories: repository.NewInventoryRepository(db),
		idGenerator: util.NewIDGenerator(),
		numbers:     util.NewDocumentNumberGenerator("INV"),
		logger:      logger,
	}
}

// StartInventory opens a stocktake session over a snapshot of the
// current catalog. Only one session may be open at a time.
func (s *Service) StartInventory(ctx context.Context, actor *models.User) (*models.Inventory, error) {
	if err := requireStockRole(actor); err != nil {
		return nil, err
	}

	if active, err := s.inventories.GetActive(ctx); err == nil {
		return nil, fmt.Errorf("inventory %s is still in progress: %w", active.Number, models.ErrInvalidState)
	} else if !isNotFound(err) {
		return nil, err
	}

	resources, err := s.resources.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		return nil, fmt.Errorf("catalog is empty: %w", models.ErrInvalidState)
	}

	items := make([]*models.InventoryItem, 0, len(resources))
	for i, res := range resources {
		items = append(items, &models.InventoryItem{
			ResourceName:     res.Name,
			ExpectedQuantity: res.Quantity,
			Unit:             res.Unit,
			Type:             res.Type,
			Position:         i + 1,
		})
	}

	seq, err := s.inventories.LastSequence(ctx, "INV")
	if err != nil {
		return nil, err
	}
	s.numbers.SetLastSequence(seq)

	inv := &models.Inventory{
		ID:          s.idGenerator.NewID(),
		Number:      s.numbers.Next(),
		DateStarted: time.Now().UTC(),
		ConductedBy: actor.Username,
		Status:      models.InventoryInProgress,
		Items:       items,
		TotalItems:  len(items),
	}

	if err := s.inventories.Create(ctx, nil, inv); err != nil {
		return nil, err
	}

	s.logger.Info("inventory started",
		"number", inv.Number,
		"items", inv.TotalItems,
		"conducted_by", actor.Username,
	)
	return inv, nil
}

// RecordCount writes the physically counted quantity for one snapshot
// item. Recounting an item replaces the earlier figure; session
// statistics are recomputed from scratch each time, so a recount never
// double-counts.
func (s *Service) RecordCount(ctx context.Context, actor *models.User, inventoryID, resourceName string, actual int) (*models.Inventory, error) {
	if err := requireStockRole(actor); err != nil {
		return nil, err
	}
	if actual < 0 {
		return nil, &models.ValidationError{Field: "actual_quantity", Reason: "counted quantity cannot be negative"}
	}

	inv, err := s.inventories.Get(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InventoryInProgress {
		return nil, fmt.Errorf("inventory %s is completed: %w", inv.Number, models.ErrInvalidState)
	}

	item := inv.Item(resourceName)
	if item == nil {
		return nil, fmt.Errorf("inventory item %q: %w", resourceName, models.ErrNotFound)
	}

	item.ActualQuantity = &actual
	item.Difference = actual - item.ExpectedQuantity
	inv.RecomputeStats()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.inventories.RecordCount(ctx, tx, inv.ID, resourceName, actual, item.Difference); err != nil {
		return nil, err
	}
	if err := s.inventories.UpdateStats(ctx, tx, inv); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing count: %w", err)
	}

	return inv, nil
}

// CompleteInventory closes a session. With updateStock set, counted
// quantities overwrite the catalog's stock levels; uncounted items keep
// their book quantity either way.
func (s *Service) CompleteInventory(ctx context.Context, actor *models.User, inventoryID string, updateStock bool) (*models.Inventory, error) {
	if err := requireStockRole(actor); err != nil {
		return nil, err
	}

	inv, err := s.inventories.Get(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if inv.Status != models.InventoryInProgress {
		return nil, fmt.Errorf("inventory %s is completed: %w", inv.Number, models.ErrInvalidState)
	}

	inv.RecomputeStats()
	now := time.Now().UTC()
	inv.DateCompleted = &now
	inv.CompletedBy = actor.Username
	inv.StockUpdated = updateStock

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if updateStock {
		// Every counted value overwrites stock, even when it matched the
		// snapshot: stock may have moved since the count was recorded and
		// the physical count is the authoritative figure.
		for _, item := range inv.Items {
			if !item.Counted() {
				continue
			}
			if err := s.resources.SetQuantity(ctx, tx, item.ResourceName, *item.ActualQuantity); err != nil {
				// The resource may have left the catalog mid-session.
				if isNotFound(err) {
					continue
				}
				return nil, err
			}
		}
	}

	if err := s.inventories.Complete(ctx, tx, inv); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing completion: %w", err)
	}

	inv.Status = models.InventoryCompleted

	if !inv.FullyCounted() {
		s.logger.Warn("inventory completed with uncounted items",
			"number", inv.Number,
			"uncounted", inv.TotalItems-inv.ItemsCounted,
		)
	}
	s.logger.Info("inventory completed",
		"number", inv.Number,
		"counted", inv.ItemsCounted,
		"of", inv.TotalItems,
		"discrepancies", inv.DiscrepanciesCount,
		"stock_updated", updateStock,
		"completed_by", actor.Username,
	)
	return inv, nil
}

// GetInventory retrieves a session with its items.
func (s *Service) GetInventory(ctx context.Context, id string) (*models.Inventory, error) {
	return s.inventories.Get(ctx, id)
}

// ActiveInventory returns the open session, or ErrNotFound.
func (s *Service) ActiveInventory(ctx context.Context) (*models.Inventory, error) {
	return s.inventories.GetActive(ctx)
}

// ListInventories returns all sessions, newest first.
func (s *Service) ListInventories(ctx context.Context) ([]*models.Inventory, error) {
	return s.inventories.List(ctx)
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

func requireStockRole(actor *models.User) error {
	if actor == nil || !actor.Active() || !actor.Role.ManagesStock() {
		return models.ErrPermissionDenied
	}
	return nil
}
