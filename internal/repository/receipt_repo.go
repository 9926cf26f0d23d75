package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/workdesk/workdesk/internal/models"
)

// ReceiptRepository handles stock receipt document data access.
type ReceiptRepository struct {
	db *sql.DB
}

// NewReceiptRepository creates a new receipt repository.
func NewReceiptRepository(db *sql.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create inserts a receipt document and all its lines.
func (r *ReceiptRepository) Create(ctx context.Context, tx *sql.Tx, receipt *models.StockReceipt) error {
	query := `
		INSERT INTO stock_receipts (
			id, number, date, created_by, supplier, document_number,
			total_items, total_quantity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	ex := r.getExecer(tx)

	_, err := ex.ExecContext(ctx, query,
		receipt.ID,
		receipt.Number,
		receipt.Date.Format(time.RFC3339),
		receipt.CreatedBy,
		receipt.Supplier,
		receipt.DocumentNumber,
		receipt.TotalItems,
		receipt.TotalQuantity,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("receipt number %q already used: %w", receipt.Number, models.ErrInvalidState)
		}
		return fmt.Errorf("inserting receipt: %w", err)
	}

	lineQuery := `
		INSERT INTO stock_receipt_lines (
			receipt_id, position, resource_name, quantity, unit, resource_type, attributes
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	for _, line := range receipt.Lines {
		attrs, err := marshalAttributes(line.Attributes)
		if err != nil {
			return err
		}
		_, err = ex.ExecContext(ctx, lineQuery,
			receipt.ID,
			line.Position,
			line.ResourceName,
			line.Quantity,
			line.Unit,
			string(line.Type),
			attrs,
		)
		if err != nil {
			return fmt.Errorf("inserting receipt line %d: %w", line.Position, err)
		}
	}
	return nil
}

// Get retrieves a receipt with its lines.
func (r *ReceiptRepository) Get(ctx context.Context, id string) (*models.StockReceipt, error) {
	query := `
		SELECT id, number, date, created_by, supplier, document_number,
			total_items, total_quantity
		FROM stock_receipts
		WHERE id = ?`

	var receipt models.StockReceipt
	var dateStr string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&receipt.ID,
		&receipt.Number,
		&dateStr,
		&receipt.CreatedBy,
		&receipt.Supplier,
		&receipt.DocumentNumber,
		&receipt.TotalItems,
		&receipt.TotalQuantity,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("receipt %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}
	receipt.Date, _ = time.Parse(time.RFC3339, dateStr)

	lines, err := r.listLines(ctx, receipt.ID)
	if err != nil {
		return nil, err
	}
	receipt.Lines = lines

	return &receipt, nil
}

// List returns one page of receipt documents, newest first, without
// lines.
func (r *ReceiptRepository) List(ctx context.Context, p models.Pagination) ([]*models.StockReceipt, error) {
	query := `
		SELECT id, number, date, created_by, supplier, document_number,
			total_items, total_quantity
		FROM stock_receipts
		ORDER BY date DESC, number DESC
		LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, p.Limit(), p.Offset())
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	defer rows.Close()

	var receipts []*models.StockReceipt
	for rows.Next() {
		var receipt models.StockReceipt
		var dateStr string

		err := rows.Scan(
			&receipt.ID,
			&receipt.Number,
			&dateStr,
			&receipt.CreatedBy,
			&receipt.Supplier,
			&receipt.DocumentNumber,
			&receipt.TotalItems,
			&receipt.TotalQuantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}
		receipt.Date, _ = time.Parse(time.RFC3339, dateStr)

		receipts = append(receipts, &receipt)
	}
	return receipts, rows.Err()
}

// Count returns the total number of receipt documents.
func (r *ReceiptRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stock_receipts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting receipts: %w", err)
	}
	return count, nil
}

// LastSequence returns the highest numeric suffix among existing receipt
// numbers with the given prefix, 0 when none exist.
func (r *ReceiptRepository) LastSequence(ctx context.Context, prefix string) (int, error) {
	return lastDocumentSequence(ctx, r.db, "stock_receipts", prefix)
}

func (r *ReceiptRepository) listLines(ctx context.Context, receiptID string) ([]*models.ReceiptLine, error) {
	query := `
		SELECT position, resource_name, quantity, unit, resource_type, attributes
		FROM stock_receipt_lines
		WHERE receipt_id = ?
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("listing receipt lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.ReceiptLine
	for rows.Next() {
		var line models.ReceiptLine
		var typeStr, attrsStr string

		err := rows.Scan(
			&line.Position,
			&line.ResourceName,
			&line.Quantity,
			&line.Unit,
			&typeStr,
			&attrsStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning receipt line: %w", err)
		}
		line.Type = models.ResourceType(typeStr)
		if err := json.Unmarshal([]byte(attrsStr), &line.Attributes); err != nil {
			return nil, fmt.Errorf("decoding line attributes: %w", err)
		}

		lines = append(lines, &line)
	}
	return lines, rows.Err()
}

func (r *ReceiptRepository) getExecer(tx *sql.Tx) execer {
	if tx != nil {
		return tx
	}
	return r.db
}

// lastDocumentSequence extracts the highest NNNNN suffix from number
// columns shaped like PREFIX-NNNNN.
func lastDocumentSequence(ctx context.Context, db *sql.DB, table, prefix string) (int, error) {
	query := fmt.Sprintf(
		`SELECT COALESCE(MAX(CAST(SUBSTR(number, %d) AS INTEGER)), 0) FROM %s WHERE number LIKE ?`,
		len(prefix)+2, table,
	)

	var seq int
	if err := db.QueryRowContext(ctx, query, prefix+"-%").Scan(&seq); err != nil {
		return 0, fmt.Errorf("reading last document sequence: %w", err)
	}
	return seq, nil
}
