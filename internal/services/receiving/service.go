// Package receiving implements stock receipt documents: multi-line
// deliveries applied to the catalog all-or-nothing.
package receiving

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
	"github.com/workdesk/workdesk/internal/util"
)

// Service provides stock receipt operations.
type Service struct {
	db          *sql.DB
	resources   *repository.ResourceRepository
	receipts    *repository.ReceiptRepository
	idGenerator *util.IDGenerator
	numbers     *util.DocumentNumberGenerator
	defaultUnit string
	logger      *slog.Logger
}

// NewService creates a new receiving service. defaultUnit fills receipt
// lines that omit a unit for resources new to the catalog.
func NewService(db *sql.DB, defaultUnit string, logger *slog.Logger) *Service {
	if defaultUnit == "" {
		defaultUnit = "шт"
	}
	return &Service{
		db:          db,
		resources:   repository.NewResourceRepository(db),
		receipts:    repository.NewReceiptRepository(db),
		idGenerator: util.NewIDGenerator(),
		numbers:     util.NewDocumentNumberGenerator("RCP"),
		defaultUnit: defaultUnit,
		logger:      logger,
	}
}

// CreateReceipt posts a delivery document. Every line increments its
// resource's stock; lines naming resources not yet in the catalog create
// them. The whole document applies atomically: one bad line and nothing
// is posted.
func (s *Service) CreateReceipt(ctx context.Context, actor *models.User, input ReceiptInput) (*models.StockReceipt, error) {
	if err := requireStockRole(actor); err != nil {
		return nil, err
	}
	if len(input.Lines) == 0 {
		return nil, &models.ValidationError{Field: "lines", Reason: "receipt needs at least one line"}
	}

	lines := make([]*models.ReceiptLine, 0, len(input.Lines))
	totalQuantity := 0
	for i, in := range input.Lines {
		name := strings.TrimSpace(in.ResourceName)
		if name == "" {
			return nil, &models.ValidationError{Field: "lines", Reason: fmt.Sprintf("line %d: resource name is required", i+1)}
		}
		if in.Quantity <= 0 {
			return nil, &models.ValidationError{Field: "lines", Reason: fmt.Sprintf("line %d: quantity must be positive", i+1)}
		}

		line := &models.ReceiptLine{
			ResourceName: name,
			Quantity:     in.Quantity,
			Unit:         in.Unit,
			Type:         in.Type,
			Attributes:   in.Attributes,
			Position:     i + 1,
		}
		if line.Type == "" {
			line.Type = models.TypeConsumable
		}
		if line.Attributes == nil {
			line.Attributes = map[string]string{}
		}
		lines = append(lines, line)
		totalQuantity += in.Quantity
	}

	seq, err := s.receipts.LastSequence(ctx, "RCP")
	if err != nil {
		return nil, err
	}
	s.numbers.SetLastSequence(seq)

	receipt := &models.StockReceipt{
		ID:             s.idGenerator.NewID(),
		Number:         s.numbers.Next(),
		Date:           time.Now().UTC(),
		CreatedBy:      actor.Username,
		Supplier:       input.Supplier,
		DocumentNumber: input.DocumentNumber,
		Lines:          lines,
		TotalItems:     len(lines),
		TotalQuantity:  totalQuantity,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	created := 0
	for _, line := range lines {
		err := s.resources.AdjustQuantity(ctx, tx, line.ResourceName, line.Quantity)
		if errors.Is(err, models.ErrNotFound) {
			// Unknown resource: the receipt introduces it to the catalog.
			if verr := models.ValidateAttributes(line.Type, line.Attributes); verr != nil {
				return nil, fmt.Errorf("line %d: %w", line.Position, verr)
			}
			resource := &models.Resource{
				Name:       line.ResourceName,
				Quantity:   line.Quantity,
				Unit:       line.Unit,
				Type:       line.Type,
				Attributes: line.Attributes,
			}
			if resource.Unit == "" {
				resource.Unit = s.defaultUnit
			}
			if cerr := s.resources.Create(ctx, tx, resource); cerr != nil {
				return nil, fmt.Errorf("line %d: %w", line.Position, cerr)
			}
			created++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Position, err)
		}
	}

	if err := s.receipts.Create(ctx, tx, receipt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing receipt: %w", err)
	}

	s.logger.Info("stock receipt posted",
		"number", receipt.Number,
		"lines", receipt.TotalItems,
		"quantity", receipt.TotalQuantity,
		"new_resources", created,
		"created_by", actor.Username,
	)
	return receipt, nil
}

// GetReceipt retrieves a receipt document with its lines.
func (s *Service) GetReceipt(ctx context.Context, id string) (*models.StockReceipt, error) {
	return s.receipts.Get(ctx, id)
}

// ListReceipts returns one page of receipt documents, newest first,
// together with the total document count.
func (s *Service) ListReceipts(ctx context.Context, p models.Pagination) ([]*models.StockReceipt, int, error) {
	receipts, err := s.receipts.List(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.receipts.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return receipts, total, nil
}

func requireStockRole(actor *models.User) error {
	if actor == nil || !actor.Active() || !actor.Role.ManagesStock() {
		return models.ErrPermissionDenied
	}
	return nil
}
