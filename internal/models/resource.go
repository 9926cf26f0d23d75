package models

import (
	"time"
)

// Resource is a named, quantified item in the warehouse catalog. The name
// acts as the primary key; the catalog is the single source of truth for
// on-hand quantity.
type Resource struct {
	Name        string
	Quantity    int
	Unit        string
	MinQuantity int // reorder threshold, advisory only
	Type        ResourceType
	Attributes  map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockLevel is the derived availability status of a resource. It is
// computed from quantity and min_quantity, never stored.
type StockLevel string

const (
	StockAbsent StockLevel = "absent"
	StockLow    StockLevel = "low"
	StockNormal StockLevel = "normal"
)

func (s StockLevel) String() string {
	return string(s)
}

// StockLevel derives the availability status. The low-stock comparator is
// quantity <= min_quantity throughout the system.
func (r *Resource) StockLevel() StockLevel {
	switch {
	case r.Quantity == 0:
		return StockAbsent
	case r.MinQuantity > 0 && r.Quantity <= r.MinQuantity:
		return StockLow
	default:
		return StockNormal
	}
}

// BelowMinimum reports whether the resource is at or under its reorder
// threshold.
func (r *Resource) BelowMinimum() bool {
	return r.MinQuantity > 0 && r.Quantity <= r.MinQuantity
}
