// Package orders provides the work-order board view.
package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/services/orders"
	"github.com/workdesk/workdesk/internal/tui/components"
	"github.com/workdesk/workdesk/internal/util"
)

// BoardView lists work-order applications with their stage progress.
type BoardView struct {
	service *orders.Service

	table        *components.Table
	applications []*models.Application
	loading      bool
	err          error
}

// NewBoardView creates a new board view.
func NewBoardView(service *orders.Service) *BoardView {
	columns := []components.Column{
		{Title: "Заказчик", Width: 20},
		{Title: "Договор", Width: 12},
		{Title: "Описание", Width: 30},
		{Title: "Статус", Width: 12},
		{Title: "Этапы", Width: 10, Align: lipgloss.Right},
		{Title: "Создан", Width: 10},
	}

	table := components.NewTable(columns)
	table.SetVisibleRows(20)
	table.Focus(true)

	return &BoardView{
		service: service,
		table:   table,
	}
}

// Load fetches all applications.
func (v *BoardView) Load(ctx context.Context) error {
	v.loading = true
	v.err = nil

	apps, err := v.service.ListApplications(ctx)
	if err != nil {
		v.loading = false
		v.err = err
		return err
	}

	v.applications = apps
	v.loading = false

	rows := make([][]string, len(apps))
	for i, app := range apps {
		done := 0
		for _, st := range app.Stages {
			if st.Status == models.StageCompleted {
				done++
			}
		}
		rows[i] = []string{
			app.Customer,
			app.ContractNumber,
			app.Description,
			applicationStatusLabel(app.Status),
			fmt.Sprintf("%d/%d", done, len(app.Stages)),
			util.FormatDate(app.CreatedAt),
		}
	}
	v.table.SetRows(rows)

	return nil
}

func applicationStatusLabel(s models.ApplicationStatus) string {
	switch s {
	case models.ApplicationCreated:
		return "создан"
	case models.ApplicationInProgress:
		return "в работе"
	case models.ApplicationCompleted:
		return "завершён"
	default:
		return string(s)
	}
}

func stageStatusLabel(s models.StageStatus) string {
	switch s {
	case models.StageAssigned:
		return "назначен"
	case models.StageInProgress:
		return "в работе"
	case models.StageCompleted:
		return "завершён"
	default:
		return string(s)
	}
}

func requestStatusLabel(s models.RequestStatus) string {
	switch s {
	case models.RequestRequested:
		return "ожидает"
	case models.RequestAllocated:
		return "выдано"
	case models.RequestCancelled:
		return "отклонено"
	default:
		return string(s)
	}
}

// SetColumnWidths forwards responsive column widths to the table.
func (v *BoardView) SetColumnWidths(widths []int) {
	v.table.SetColumnWidths(widths)
}

// SetVisibleRows sets the number of table rows shown.
func (v *BoardView) SetVisibleRows(n int) {
	v.table.SetVisibleRows(n)
}

// MoveUp moves the selection up.
func (v *BoardView) MoveUp() {
	v.table.MoveUp()
}

// MoveDown moves the selection down.
func (v *BoardView) MoveDown() {
	v.table.MoveDown()
}

// SelectedApplication returns the currently selected application.
func (v *BoardView) SelectedApplication() *models.Application {
	idx := v.table.Selected()
	if idx >= 0 && idx < len(v.applications) {
		return v.applications[idx]
	}
	return nil
}

// Render renders the application list.
func (v *BoardView) Render(width, height int) string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("═══ ЗАКАЗЫ ═══"))
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

	if len(v.applications) == 0 {
		b.WriteString(labelStyle.Render("Заказов пока нет."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(v.table.Render())
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("[Enter]карточка заказа  [r]обновить"))

	return b.String()
}

// RenderDetail renders the application card with stages and their requests.
func (v *BoardView) RenderDetail(app *models.Application) string {
	if app == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Width(16)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#006600"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("═══ КАРТОЧКА ЗАКАЗА ═══"))
	b.WriteString("\n\n")

	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label + ":"))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	field("Заказчик", app.Customer)
	field("Договор", app.ContractNumber)
	field("Описание", app.Description)
	field("Статус", applicationStatusLabel(app.Status))
	field("Создан", util.FormatDate(app.CreatedAt))

	for _, st := range app.Stages {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(fmt.Sprintf("Этап %d: %s", st.Position, st.Name)))
		b.WriteString("\n")
		field("Исполнитель", st.Executor)
		field("Статус", stageStatusLabel(st.Status))
		if st.PlannedStartDate != nil || st.PlannedEndDate != nil {
			field("План", util.FormatDatePtr(st.PlannedStartDate)+" — "+util.FormatDatePtr(st.PlannedEndDate))
		}
		if st.ActualStartDate != nil {
			field("Факт", util.FormatDatePtr(st.ActualStartDate)+" — "+util.FormatDatePtr(st.ActualEndDate))
		}
		if st.Report != "" {
			field("Отчёт", st.Report)
		}
		for _, req := range st.Requests {
			line := fmt.Sprintf("  %s — %d (%s)", req.ResourceName, req.Quantity, requestStatusLabel(req.Status))
			b.WriteString(valueStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Esc — назад"))

	return b.String()
}
