// Package requests provides the storeman's allocation queue view.
package requests

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/services/allocation"
	"github.com/workdesk/workdesk/internal/services/catalog"
	"github.com/workdesk/workdesk/internal/tui/components"
	"github.com/workdesk/workdesk/internal/util"
)

// QueueView displays pending resource requests across all work orders,
// oldest first. Each row shows whether the current stock could satisfy the
// ask, so the storeman sees shortfalls before attempting an allocation.
type QueueView struct {
	allocations *allocation.Service
	catalogSvc  *catalog.Service

	table   *components.Table
	pending []*models.PendingRequest
	onHand  map[string]int
	loading bool
	err     error
}

// NewQueueView creates a new queue view.
func NewQueueView(allocations *allocation.Service, catalogSvc *catalog.Service) *QueueView {
	columns := []components.Column{
		{Title: "Дата", Width: 10},
		{Title: "Этап", Width: 22},
		{Title: "Исполнитель", Width: 12},
		{Title: "Ресурс", Width: 26},
		{Title: "Кол-во", Width: 7, Align: lipgloss.Right},
		{Title: "Остаток", Width: 8, Align: lipgloss.Right},
		{Title: "Запросил", Width: 12},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(20)
	table.Focus(true)

	return &QueueView{
		allocations: allocations,
		catalogSvc:  catalogSvc,
		table:       table,
	}
}

// Load fetches the pending queue and the current stock levels.
func (v *QueueView) Load(ctx context.Context) error {
	v.loading = true
	v.err = nil

	pending, err := v.allocations.PendingRequests(ctx)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}

	resources, err := v.catalogSvc.ListResources(ctx)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}
	onHand := make(map[string]int, len(resources))
	for _, r := range resources {
		onHand[r.Name] = r.Quantity
	}

	v.pending = pending
	v.onHand = onHand
	v.loading = false

	rows := make([][]string, len(pending))
	for i, p := range pending {
		rows[i] = []string{
			util.FormatDate(p.RequestDate),
			p.StageName,
			p.Executor,
			p.ResourceName,
			fmt.Sprintf("%d", p.Quantity),
			fmt.Sprintf("%d", onHand[p.ResourceName]),
			p.RequestedBy,
		}
	}
	v.table.SetRows(rows)

	return nil
}

// SetColumnWidths forwards responsive column widths to the table.
func (v *QueueView) SetColumnWidths(widths []int) {
	v.table.SetColumnWidths(widths)
}

// SetVisibleRows sets the number of table rows shown.
func (v *QueueView) SetVisibleRows(n int) {
	v.table.SetVisibleRows(n)
}

// MoveUp moves the selection up.
func (v *QueueView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *QueueView) MoveDown() {
	v.table.MoveDown()
}

// SelectedRequest returns the currently selected queue entry.
func (v *QueueView) SelectedRequest() *models.PendingRequest {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.pending) {
		return v.pending[idx]
	}
	return nil
}

// Count returns the number of pending requests loaded.
func (v *QueueView) Count() int {
	return len(v.pending)
}

// Shortfall reports whether the selected request asks for more than the
// catalog currently holds.
func (v *QueueView) Shortfall(p *models.PendingRequest) bool {
	if p == nil {
		return false
	}
	return v.onHand[p.ResourceName] < p.Quantity
}

// Render renders the queue.
func (v *QueueView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("═══ ОЧЕРЕДЬ ЗАЯВОК НА ВЫДАЧУ ═══"))
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

	if len(v.pending) == 0 {
		b.WriteString(labelStyle.Render("Очередь пуста — все заявки обработаны."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(v.table.Render())
	b.WriteString("\n")

	if sel := v.SelectedRequest(); v.Shortfall(sel) {
		b.WriteString(warnStyle.Render(fmt.Sprintf(
			"Недостаточно на складе: %s — запрошено %d, остаток %d",
			sel.ResourceName, sel.Quantity, v.onHand[sel.ResourceName])))
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("[a]выдать  [c]отклонить  [r]обновить"))

	return b.String()
}
