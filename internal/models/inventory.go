package models

import "time"

// InventoryStatus is the state of a stocktake session.
type InventoryStatus string

const (
	InventoryInProgress InventoryStatus = "in_progress"
	InventoryCompleted  InventoryStatus = "completed"
)

// InventoryItem is one counted line of a stocktake. ExpectedQuantity is
// frozen at session start; ActualQuantity stays nil until a count is
// recorded.
type InventoryItem struct {
	ResourceName     string
	ExpectedQuantity int
	ActualQuantity   *int
	Difference       int
	Unit             string
	Type             ResourceType
	Position         int
}

// Counted reports whether a physical count has been recorded.
func (it *InventoryItem) Counted() bool {
	return it.ActualQuantity != nil
}

// Inventory is a count-and-reconcile session over a snapshot of the
// catalog. in_progress sessions hold working state; completed sessions are
// immutable.
type Inventory struct {
	ID                 string
	Number             string
	DateStarted        time.Time
	DateCompleted      *time.Time
	ConductedBy        string
	CompletedBy        string
	Status             InventoryStatus
	Items              []*InventoryItem
	TotalItems         int
	ItemsCounted       int
	TotalDifferences   int
	DiscrepanciesCount int
	StockUpdated       bool
}

// Item returns the snapshot line for a resource, or nil if the resource
// was not part of the snapshot.
func (inv *Inventory) Item(resourceName string) *InventoryItem {
	for _, it := range inv.Items {
		if it.ResourceName == resourceName {
			return it
		}
	}
	return nil
}

// RecomputeStats refreshes the aggregate counters from the item lines.
func (inv *Inventory) RecomputeStats() {
	counted, totalDiff, discrepancies := 0, 0, 0
	for _, it := range inv.Items {
		if !it.Counted() {
			continue
		}
		counted++
		if it.Difference < 0 {
			totalDiff -= it.Difference
		} else {
			totalDiff += it.Difference
		}
		if it.Difference != 0 {
			discrepancies++
		}
	}
	inv.ItemsCounted = counted
	inv.TotalDifferences = totalDiff
	inv.DiscrepanciesCount = discrepancies
}

// FullyCounted reports whether every snapshot line has a recorded count.
func (inv *Inventory) FullyCounted() bool {
	return inv.ItemsCounted == inv.TotalItems
}
