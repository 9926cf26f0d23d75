// Package warehouse provides TUI views for the warehouse catalog.
package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/services/catalog"
	"github.com/workdesk/workdesk/internal/tui/components"
)

// CatalogView displays the warehouse catalog in insertion order.
type CatalogView struct {
	service   *catalog.Service
	table     *components.Table
	resources []*models.Resource
	lowOnly   bool
	search    string
	loading   bool
	err       error
}

// NewCatalogView creates a new catalog view.
func NewCatalogView(service *catalog.Service) *CatalogView {
	columns := []components.Column{
		{Title: "Наименование", Width: 30},
		{Title: "Тип", Width: 20},
		{Title: "Кол-во", Width: 8, Align: lipgloss.Right},
		{Title: "Ед.", Width: 6},
		{Title: "Мин.", Width: 6, Align: lipgloss.Right},
		{Title: "Статус", Width: 12},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(20)
	table.Focus(true)

	return &CatalogView{
		service: service,
		table:   table,
	}
}

// Load fetches the catalog from the database.
func (v *CatalogView) Load(ctx context.Context) error {
	v.loading = true
	v.err = nil

	var (
		resources []*models.Resource
		err       error
	)
	if v.lowOnly {
		resources, err = v.service.LowStock(ctx)
	} else {
		resources, err = v.service.ListResources(ctx)
	}
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}

	if v.search != "" {
		needle := strings.ToLower(v.search)
		filtered := resources[:0]
		for _, r := range resources {
			if strings.Contains(strings.ToLower(r.Name), needle) {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}

	v.resources = resources
	v.loading = false

	rows := make([][]string, len(resources))
	for i, r := range resources {
		typeName := string(r.Type)
		if def := models.TypeDefinitionFor(r.Type); def != nil {
			typeName = def.Name
		}

		rows[i] = []string{
			r.Name,
			typeName,
			fmt.Sprintf("%d", r.Quantity),
			r.Unit,
			fmt.Sprintf("%d", r.MinQuantity),
			stockLabel(r.StockLevel()),
		}
	}
	v.table.SetRows(rows)

	return nil
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

// ToggleLowOnly switches between the full catalog and the low-stock list.
func (v *CatalogView) ToggleLowOnly() {
	v.lowOnly = !v.lowOnly
}

// LowOnly reports whether the low-stock filter is active.
func (v *CatalogView) LowOnly() bool {
	return v.lowOnly
}

// SetSearch sets the name filter applied on the next Load.
func (v *CatalogView) SetSearch(s string) {
	v.search = s
}

// SetColumnWidths forwards responsive column widths to the table.
func (v *CatalogView) SetColumnWidths(widths []int) {
	v.table.SetColumnWidths(widths)
}

// SetVisibleRows sets the number of table rows shown.
func (v *CatalogView) SetVisibleRows(n int) {
	v.table.SetVisibleRows(n)
}

// MoveUp moves the selection up.
func (v *CatalogView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *CatalogView) MoveDown() {
	v.table.MoveDown()
}

// PageUp moves up one page.
func (v *CatalogView) PageUp() {
	v.table.PageUp()
}

// PageDown moves down one page.
func (v *CatalogView) PageDown() {
	v.table.PageDown()
}

// SelectedResource returns the currently selected catalog entry.
func (v *CatalogView) SelectedResource() *models.Resource {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.resources) {
		return v.resources[idx]
	}
	return nil
}

// Render renders the catalog list.
func (v *CatalogView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))

	var b strings.Builder

	title := "═══ СКЛАД — НОМЕНКЛАТУРА ═══"
	if v.lowOnly {
		title = "═══ СКЛАД — МИНИМАЛЬНЫЕ ОСТАТКИ ═══"
	}
	b.WriteString(titleStyle.Render(title))
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

	if v.table.Empty() {
		if v.lowOnly {
			b.WriteString(labelStyle.Render("Все остатки выше минимума."))
		} else {
			b.WriteString(labelStyle.Render("Номенклатура пуста. Нажмите [a] чтобы добавить ресурс."))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(v.table.Render())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("[a]добавить  [e]изменить  [x]удалить  [m]мин. остатки  [/]поиск  [Enter]карточка"))

	return b.String()
}

// RenderDetail renders the resource card with its typed attributes.
func (v *CatalogView) RenderDetail(r *models.Resource) string {
	if r == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(24)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("═══ КАРТОЧКА РЕСУРСА ═══"))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label + ":"))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	def := models.TypeDefinitionFor(r.Type)
	typeName := string(r.Type)
	if def != nil {
		typeName = def.Name
	}

	field("Наименование", r.Name)
	field("Тип", typeName)
	field("Количество", fmt.Sprintf("%d %s", r.Quantity, r.Unit))
	field("Минимальный остаток", fmt.Sprintf("%d %s", r.MinQuantity, r.Unit))
	field("Статус", stockLabel(r.StockLevel()))

	if def != nil && len(r.Attributes) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Характеристики"))
		b.WriteString("\n")
		// Registry order first, then whatever extra keys were stored.
		seen := make(map[string]bool)
		for _, attr := range def.Attributes {
			if val, ok := r.Attributes[attr.Name]; ok {
				field(attr.Label, val)
				seen[attr.Name] = true
			}
		}
		for name, val := range r.Attributes {
			if !seen[name] {
				field(name, val)
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Esc — назад"))

	return b.String()
}
