package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestNewTable(t *testing.T) {
	cols := []Column{
		{Title: "Наименование", Width: 20},
		{Title: "Кол-во", Width: 8, Align: lipgloss.Right},
	}

	table := NewTable(cols)
	if table == nil {
		t.Fatal("Expected non-nil table")
	}
	if !table.Empty() {
		t.Error("New table should be empty")
	}
	if table.RowCount() != 0 {
		t.Errorf("Expected 0 rows, got %d", table.RowCount())
	}
}

func TestTable_SetRows(t *testing.T) {
	table := NewTable([]Column{
		{Title: "Наименование", Width: 20},
		{Title: "Кол-во", Width: 8},
	})
	table.SetRows([][]string{
		{"Болт М8", "100"},
		{"Гайка М8", "200"},
		{"Шайба 8", "500"},
	})

	if table.RowCount() != 3 {
		t.Errorf("Expected 3 rows, got %d", table.RowCount())
	}
	if table.Empty() {
		t.Error("Table should not be empty after setting rows")
	}
}

func TestTable_SetRows_ClampsSelection(t *testing.T) {
	table := NewTable([]Column{{Title: "ID", Width: 5}})
	table.SetRows([][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}})
	table.GoToBottom()

	// Shrinking the data set must pull the selection back in range
	table.SetRows([][]string{{"1"}, {"2"}})
	if table.Selected() >= 2 {
		t.Errorf("Expected selection clamped below 2, got %d", table.Selected())
	}
}

func TestTable_Navigation(t *testing.T) {
	table := NewTable([]Column{{Title: "ID", Width: 5}})
	table.SetRows([][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}})

	if table.Selected() != 0 {
		t.Errorf("Expected selected=0, got %d", table.Selected())
	}

	table.MoveDown()
	if table.Selected() != 1 {
		t.Errorf("Expected selected=1, got %d", table.Selected())
	}

	table.MoveUp()
	if table.Selected() != 0 {
		t.Errorf("Expected selected=0, got %d", table.Selected())
	}

	// Can't move above 0
	table.MoveUp()
	if table.Selected() != 0 {
		t.Errorf("Expected selected=0, got %d", table.Selected())
	}

	table.GoToBottom()
	if table.Selected() != 4 {
		t.Errorf("Expected selected=4, got %d", table.Selected())
	}

	// Can't move below last row
	table.MoveDown()
	if table.Selected() != 4 {
		t.Errorf("Expected selected=4, got %d", table.Selected())
	}

	table.GoToTop()
	if table.Selected() != 0 {
		t.Errorf("Expected selected=0, got %d", table.Selected())
	}
}

func TestTable_SelectedRow(t *testing.T) {
	table := NewTable([]Column{
		{Title: "Наименование", Width: 20},
		{Title: "Кол-во", Width: 8},
	})

	if table.SelectedRow() != nil {
		t.Error("Expected nil selected row for empty table")
	}

	table.SetRows([][]string{
		{"Болт М8", "100"},
		{"Гайка М8", "200"},
	})
	table.MoveDown()

	row := table.SelectedRow()
	if row == nil || row[0] != "Гайка М8" {
		t.Errorf("Expected selected row Гайка М8, got %v", row)
	}
}

func TestTable_Paging(t *testing.T) {
	table := NewTable([]Column{{Title: "ID", Width: 5}})
	table.SetVisibleRows(3)

	rows := make([][]string, 10)
	for i := range rows {
		rows[i] = []string{string(rune('a' + i))}
	}
	table.SetRows(rows)

	table.PageDown()
	if table.Selected() != 3 {
		t.Errorf("Expected selected=3 after page down, got %d", table.Selected())
	}

	table.PageUp()
	if table.Selected() != 0 {
		t.Errorf("Expected selected=0 after page up, got %d", table.Selected())
	}
}

func TestTable_Render_CyrillicTruncation(t *testing.T) {
	table := NewTable([]Column{{Title: "Наименование", Width: 10}})
	table.SetRows([][]string{
		{"Электродвигатель асинхронный"},
	})

	output := table.Render()
	if strings.Contains(output, "Электродвигатель") {
		t.Error("Expected long Cyrillic value to be truncated")
	}
	if !strings.Contains(output, "…") {
		t.Error("Expected ellipsis in truncated cell")
	}
}

func TestTable_Render_SkipsDroppedColumns(t *testing.T) {
	table := NewTable([]Column{
		{Title: "Наименование", Width: 20},
		{Title: "Тип", Width: 15},
	})
	table.SetRows([][]string{{"Болт М8", "расходник"}})
	table.SetColumnWidths([]int{20, 0})

	output := table.Render()
	if strings.Contains(output, "расходник") {
		t.Error("Expected zero-width column to be dropped from output")
	}
	if !strings.Contains(output, "Болт М8") {
		t.Error("Expected remaining column to render")
	}
}

func TestTable_Render_Empty(t *testing.T) {
	table := NewTable([]Column{{Title: "ID", Width: 5}})

	output := table.Render()
	if output == "" {
		t.Error("Expected header output even for empty table")
	}
}
