// Package stocktake provides the inventory reconciliation view.
package stocktake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/services/stocktake"
	"github.com/workdesk/workdesk/internal/tui/components"
	"github.com/workdesk/workdesk/internal/util"
)

// SessionView displays the active stocktake session, or the session
// journal when no count is in progress.
type SessionView struct {
	service *stocktake.Service

	table   *components.Table
	session *models.Inventory
	history []*models.Inventory
	loading bool
	err     error
}

// NewSessionView creates a new stocktake view.
func NewSessionView(service *stocktake.Service) *SessionView {
	columns := []components.Column{
		{Title: "Наименование", Width: 30},
		{Title: "Учёт", Width: 8, Align: lipgloss.Right},
		{Title: "Факт", Width: 8, Align: lipgloss.Right},
		{Title: "Разница", Width: 8, Align: lipgloss.Right},
		{Title: "Ед.", Width: 6},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(18)
	table.Focus(true)

	return &SessionView{
		service: service,
		table:   table,
	}
}

// Load fetches the active session, falling back to the session journal.
func (v *SessionView) Load(ctx context.Context) error {
	v.loading = true
	v.err = nil

	session, err := v.service.ActiveInventory(ctx)
	switch {
	case err == nil:
		v.session = session
	case errors.Is(err, models.ErrNotFound):
		v.session = nil
	default:
		v.loading = false
		v.err = err
		return err
	}

	history, err := v.service.ListInventories(ctx)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}
	v.history = history
	v.loading = false

	if v.session == nil {
		v.table.SetRows(nil)
		return nil
	}

	rows := make([][]string, len(v.session.Items))
	for i, it := range v.session.Items {
		actual := "—"
		diff := "—"
		if it.Counted() {
			actual = fmt.Sprintf("%d", *it.ActualQuantity)
			diff = fmt.Sprintf("%+d", it.Difference)
			if it.Difference == 0 {
				diff = "0"
			}
		}
		rows[i] = []string{
			it.ResourceName,
			fmt.Sprintf("%d", it.ExpectedQuantity),
			actual,
			diff,
			it.Unit,
		}
	}
	v.table.SetRows(rows)

	return nil
}

// Session returns the loaded active session, or nil.
func (v *SessionView) Session() *models.Inventory {
	return v.session
}

// SetColumnWidths forwards responsive column widths to the table.
func (v *SessionView) SetColumnWidths(widths []int) {
	v.table.SetColumnWidths(widths)
}

// SetVisibleRows sets the number of table rows shown.
func (v *SessionView) SetVisibleRows(n int) {
	v.table.SetVisibleRows(n)
}

// MoveUp moves the selection up.
func (v *SessionView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *SessionView) MoveDown() {
	v.table.MoveDown()
}

// SelectedItem returns the selected snapshot line, or nil.
func (v *SessionView) SelectedItem() *models.InventoryItem {
	if v.session == nil {
		return nil
	}
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.session.Items) {
		return v.session.Items[idx]
	}
	return nil
}

// Render renders the stocktake module.
func (v *SessionView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("═══ ИНВЕНТАРИЗАЦИЯ ═══"))
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

	if v.session == nil {
		b.WriteString(labelStyle.Render("Нет активной инвентаризации."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHistory(labelStyle, valueStyle))
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("[n]начать инвентаризацию"))
		return b.String()
	}

	s := v.session
	b.WriteString(labelStyle.Render("Сессия: "))
	b.WriteString(valueStyle.Render(s.Number))
	b.WriteString(labelStyle.Render("  начата: "))
	b.WriteString(valueStyle.Render(util.FormatDate(s.DateStarted)))
	b.WriteString(labelStyle.Render("  проводит: "))
	b.WriteString(valueStyle.Render(s.ConductedBy))
	b.WriteString("\n")

	b.WriteString(labelStyle.Render(fmt.Sprintf("Подсчитано %d из %d", s.ItemsCounted, s.TotalItems)))
	if s.DiscrepanciesCount > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  расхождений: %d (суммарно %d)", s.DiscrepanciesCount, s.TotalDifferences)))
	}
	b.WriteString("\n\n")

	b.WriteString(v.table.Render())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("[Enter]ввести подсчёт  [f]завершить с коррекцией  [F]завершить без коррекции"))

	return b.String()
}

func (v *SessionView) renderHistory(labelStyle, valueStyle lipgloss.Style) string {
	if len(v.history) == 0 {
		return labelStyle.Render("Журнал инвентаризаций пуст.")
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Журнал:"))
	b.WriteString("\n")

	shown := v.history
	if len(shown) > 8 {
		shown = shown[:8]
	}
	for _, inv := range shown {
		completed := "в работе"
		if inv.DateCompleted != nil {
			completed = util.FormatDate(*inv.DateCompleted)
		}
		line := fmt.Sprintf("  %s  %s  позиции: %d  расхождения: %d  завершена: %s",
			inv.Number, util.FormatDate(inv.DateStarted), inv.TotalItems, inv.DiscrepanciesCount, completed)
		b.WriteString(valueStyle.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}
