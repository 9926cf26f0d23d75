// Package reports builds warehouse summaries and exports them as .xlsx
// documents for the planning office.
package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/repository"
)

// Service builds reports over the warehouse state.
type Service struct {
	db          *sql.DB
	resources   *repository.ResourceRepository
	inventories *repository.InventoryRepository
}

// NewService creates a new reports service.
func NewService(db *sql.DB) *Service {
	return &Service{
		db:          db,
		resources:   repository.NewResourceRepository(db),
		inventories: repository.NewInventoryRepository(db),
	}
}

// WarehouseSummary aggregates the catalog for the overview screen.
type WarehouseSummary struct {
	TotalResources int
	TotalQuantity  int
	LowStock       []*models.Resource
	ByType         map[models.ResourceType]int
}

// Summary computes the warehouse overview.
func (s *Service) Summary(ctx context.Context) (*WarehouseSummary, error) {
	resources, err := s.resources.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &WarehouseSummary{
		TotalResources: len(resources),
		ByType:         make(map[models.ResourceType]int),
	}
	for _, res := range resources {
		summary.TotalQuantity += res.Quantity
		summary.ByType[res.Type]++
		if res.BelowMinimum() {
			summary.LowStock = append(summary.LowStock, res)
		}
	}
	return summary, nil
}

// ExportWarehouse writes the full catalog to an .xlsx file at path.
func (s *Service) ExportWarehouse(ctx context.Context, path string) error {
	resources, err := s.resources.List(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"Наименование", "Тип", "Количество", "Ед. изм.", "Мин. остаток", "Статус",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, res := range resources {
		def := models.TypeDefinitionFor(res.Type)
		typeLabel := string(res.Type)
		if def != nil {
			typeLabel = def.Name
		}

		excelRow := []interface{}{
			res.Name,
			typeLabel,
			res.Quantity,
			res.Unit,
			res.MinQuantity,
			stockLabel(res.StockLevel()),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("resolving cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
		row++
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// ExportInventory writes a stocktake act to an .xlsx file at path.
func (s *Service) ExportInventory(ctx context.Context, inventoryID, path string) error {
	inv, err := s.inventories.Get(ctx, inventoryID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	title := []interface{}{fmt.Sprintf("Инвентаризация %s от %s",
		inv.Number, inv.DateStarted.Format("02.01.2006"))}
	if err := f.SetSheetRow(sheet, "A1", &title); err != nil {
		return fmt.Errorf("writing title: %w", err)
	}

	header := []interface{}{
		"Наименование", "Ед. изм.", "По учёту", "Фактически", "Расхождение",
	}
	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 4
	for _, item := range inv.Items {
		actual := interface{}("не подсчитано")
		diff := interface{}("")
		if item.Counted() {
			actual = *item.ActualQuantity
			diff = item.Difference
		}

		excelRow := []interface{}{
			item.ResourceName, item.Unit, item.ExpectedQuantity, actual, diff,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return fmt.Errorf("resolving cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
		row++
	}

	totals := []interface{}{
		fmt.Sprintf("Подсчитано %d из %d", inv.ItemsCounted, inv.TotalItems),
		"",
		"",
		fmt.Sprintf("Расхождений: %d", inv.DiscrepanciesCount),
		inv.TotalDifferences,
	}
	cell, err := excelize.CoordinatesToCellName(1, row+1)
	if err != nil {
		return fmt.Errorf("resolving cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	return nil
}

// ExportFileName builds a timestamped report file name.
func ExportFileName(prefix string) string {
	return fmt.Sprintf("%s_%s.xlsx", prefix, time.Now().Format("20060102_150405"))
}

func stockLabel(level models.StockLevel) string {
	switch level {
	case models.StockAbsent:
		return "отсутствует"
	case models.StockLow:
		return "мало"
	default:
		return "в наличии"
	}
}
