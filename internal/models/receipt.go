package models

import "time"

// ReceiptLine is one incoming-goods line on a stock receipt. Type and
// Attributes matter only when the line creates a resource the catalog has
// not seen before; for existing resources they are ignored.
type ReceiptLine struct {
	ResourceName string
	Quantity     int
	Unit         string
	Type         ResourceType
	Attributes   map[string]string
	Position     int
}

// StockReceipt is an append-only incoming-goods record. Once created it is
// immutable; the stock increments it produced are already committed.
type StockReceipt struct {
	ID             string
	Number         string
	Date           time.Time
	CreatedBy      string
	Supplier       string
	DocumentNumber string
	Lines          []*ReceiptLine
	TotalItems     int
	TotalQuantity  int
}
