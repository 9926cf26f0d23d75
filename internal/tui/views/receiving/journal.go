// Package receiving provides the stock receipt journal view.
package receiving

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/services/receiving"
	"github.com/workdesk/workdesk/internal/tui/components"
	"github.com/workdesk/workdesk/internal/util"
)

// JournalView lists posted stock receipts, newest first.
type JournalView struct {
	service *receiving.Service

	table    *components.Table
	receipts []*models.StockReceipt
	page     models.Pagination
	total    int
	loading  bool
	err      error
}

// NewJournalView creates a new receipt journal view.
func NewJournalView(service *receiving.Service) *JournalView {
	columns := []components.Column{
		{Title: "Номер", Width: 10},
		{Title: "Дата", Width: 10},
		{Title: "Поставщик", Width: 24},
		{Title: "Документ", Width: 14},
		{Title: "Позиций", Width: 8, Align: lipgloss.Right},
		{Title: "Кол-во", Width: 8, Align: lipgloss.Right},
		{Title: "Оформил", Width: 12},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(20)
	table.Focus(true)

	return &JournalView{
		service: service,
		table:   table,
		page:    models.DefaultPagination(),
	}
}

// Load fetches the receipt journal.
func (v *JournalView) Load(ctx context.Context) error {
	v.loading = true
	v.err = nil

	receipts, total, err := v.service.ListReceipts(ctx, v.page)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}

	// A page emptied by deletions or a shrunk total snaps back.
	if len(receipts) == 0 && v.page.Page > 1 {
		v.page.Page = 1
		return v.Load(ctx)
	}

	v.receipts = receipts
	v.total = total
	v.loading = false
	v.table.SetPagination(v.page.Page, v.page.TotalPages(total), total)

	rows := make([][]string, len(receipts))
	for i, r := range receipts {
		rows[i] = []string{
			r.Number,
			util.FormatDate(r.Date),
			r.Supplier,
			r.DocumentNumber,
			fmt.Sprintf("%d", r.TotalItems),
			fmt.Sprintf("%d", r.TotalQuantity),
			r.CreatedBy,
		}
	}
	v.table.SetRows(rows)

	return nil
}

// NextPage advances to the next journal page if one exists. The caller
// reloads afterwards.
func (v *JournalView) NextPage() bool {
	if v.page.Page >= v.page.TotalPages(v.total) {
		return false
	}
	v.page.Page++
	return true
}

// PrevPage steps back one journal page. The caller reloads afterwards.
func (v *JournalView) PrevPage() bool {
	if v.page.Page <= 1 {
		return false
	}
	v.page.Page--
	return true
}

// Page returns the current page number.
func (v *JournalView) Page() int {
	return v.page.Page
}

// SetColumnWidths forwards responsive column widths to the table.
func (v *JournalView) SetColumnWidths(widths []int) {
	v.table.SetColumnWidths(widths)
}

// SetVisibleRows sets the number of table rows shown.
func (v *JournalView) SetVisibleRows(n int) {
	v.table.SetVisibleRows(n)
}

// MoveUp moves the selection up.
func (v *JournalView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *JournalView) MoveDown() {
	v.table.MoveDown()
}

// SelectedReceipt returns the currently selected receipt.
func (v *JournalView) SelectedReceipt() *models.StockReceipt {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.receipts) {
		return v.receipts[idx]
	}
	return nil
}

// Render renders the journal.
func (v *JournalView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("═══ ПРИХОДНЫЕ НАКЛАДНЫЕ ═══"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(errStyle.Render("Ошибка загрузки: " + v.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	if v.loading {
		b.WriteString(labelStyle.Render("Загрузка..."))
		return b.String()
	}

	if len(v.receipts) == 0 {
		b.WriteString(labelStyle.Render("Журнал пуст. Нажмите [n] чтобы оформить приход."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(v.table.Render())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("[n]новый приход  [Enter]накладная  [←/→]страницы  [r]обновить"))

	return b.String()
}

// RenderDetail renders one receipt with its lines.
func (v *JournalView) RenderDetail(r *models.StockReceipt) string {
	if r == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(16)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("═══ НАКЛАДНАЯ " + r.Number + " ═══"))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label + ":"))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	field("Дата", util.FormatDateTime(r.Date))
	field("Поставщик", r.Supplier)
	field("Документ", r.DocumentNumber)
	field("Оформил", r.CreatedBy)

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Позиции"))
	b.WriteString("\n")
	for _, line := range r.Lines {
		b.WriteString(valueStyle.Render(fmt.Sprintf("  %d. %s — %d %s", line.Position, line.ResourceName, line.Quantity, line.Unit)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	field("Итого позиций", fmt.Sprintf("%d", r.TotalItems))
	field("Итого единиц", fmt.Sprintf("%d", r.TotalQuantity))

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Esc — назад"))

	return b.String()
}
