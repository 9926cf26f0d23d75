package receiving

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/workdesk/workdesk/internal/services/receiving"
	"github.com/workdesk/workdesk/internal/tui/components"
)

// ReceiptForm collects a delivery: supplier, document number and one or more
// lines. The operator fills the line fields and presses Ctrl+N to add the
// line to the document, repeating for each position. Ctrl+S posts the whole
// receipt; a filled but not yet added line is included.
type ReceiptForm struct {
	supplier *components.Input
	document *components.Input

	lineName *components.Input
	lineQty  *components.Input
	lineUnit *components.Input

	fields     []components.FormField
	focusIndex int

	lines []receiving.ReceiptLineInput

	submitted bool
	cancelled bool
	err       string
}

// NewReceiptForm creates an empty receipt form. defaultUnit pre-fills the
// unit field for lines that introduce new catalog entries.
func NewReceiptForm(defaultUnit string) *ReceiptForm {
	f := &ReceiptForm{
		supplier: components.NewInput("Поставщик").SetRequired(true).SetWidth(30),
		document: components.NewInput("Документ").SetWidth(20).SetPlaceholder("№ накладной поставщика"),
		lineName: components.NewInput("Ресурс").SetRequired(true).SetWidth(30),
		lineQty:  components.NewInput("Количество").SetRequired(true).SetWidth(8),
		lineUnit: components.NewInput("Ед. изм.").SetWidth(8).SetValue(defaultUnit),
	}

	f.fields = []components.FormField{f.supplier, f.document, f.lineName, f.lineQty, f.lineUnit}
	f.fields[0].Focus(true)

	return f
}

// HandleKey handles a key press.
func (f *ReceiptForm) HandleKey(key string) {
	switch key {
	case "tab", "down":
		f.nextField()
	case "shift+tab", "up":
		f.prevField()
	case "ctrl+n":
		f.addLine()
	case "ctrl+s":
		f.submit()
	case "esc":
		f.cancelled = true
	case "enter":
		if f.focusIndex == len(f.fields)-1 {
			f.submit()
		} else {
			f.nextField()
		}
	default:
		if f.focusIndex < len(f.fields) {
			f.fields[f.focusIndex].HandleKey(key)
		}
	}
}

func (f *ReceiptForm) nextField() {
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex = (f.focusIndex + 1) % len(f.fields)
	f.fields[f.focusIndex].Focus(true)
}

func (f *ReceiptForm) prevField() {
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex--
	if f.focusIndex < 0 {
		f.focusIndex = len(f.fields) - 1
	}
	f.fields[f.focusIndex].Focus(true)
}

// addLine moves the current line fields into the accumulated line list and
// clears them for the next position.
func (f *ReceiptForm) addLine() {
	line, ok := f.currentLine()
	if !ok {
		return
	}
	f.lines = append(f.lines, line)
	f.err = ""

	unit := f.lineUnit.Value()
	f.lineName.SetValue("")
	f.lineQty.SetValue("")
	f.lineUnit.SetValue(unit)

	// Jump back to the resource name for the next position.
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex = 2
	f.fields[f.focusIndex].Focus(true)
}

// currentLine parses the line fields. Returns false when the fields are
// empty or the quantity does not parse; a parse problem also sets err.
func (f *ReceiptForm) currentLine() (receiving.ReceiptLineInput, bool) {
	name := strings.TrimSpace(f.lineName.Value())
	qtyStr := strings.TrimSpace(f.lineQty.Value())
	if name == "" && qtyStr == "" {
		return receiving.ReceiptLineInput{}, false
	}
	if name == "" {
		f.err = "Укажите наименование ресурса"
		return receiving.ReceiptLineInput{}, false
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty <= 0 {
		f.err = "Количество должно быть положительным числом"
		return receiving.ReceiptLineInput{}, false
	}

	return receiving.ReceiptLineInput{
		ResourceName: name,
		Quantity:     qty,
		Unit:         strings.TrimSpace(f.lineUnit.Value()),
	}, true
}

func (f *ReceiptForm) submit() {
	if !f.supplier.Validate() {
		f.err = "Укажите поставщика"
		return
	}

	// Include the line currently being edited, if any.
	pending := 0
	if strings.TrimSpace(f.lineName.Value()) != "" || strings.TrimSpace(f.lineQty.Value()) != "" {
		if _, ok := f.currentLine(); !ok {
			return
		}
		pending = 1
	}

	if len(f.lines)+pending == 0 {
		f.err = "Добавьте хотя бы одну позицию"
		return
	}

	f.err = ""
	f.submitted = true
}

// IsSubmitted returns true if the form was submitted.
func (f *ReceiptForm) IsSubmitted() bool {
	return f.submitted
}

// IsCancelled returns true if the form was cancelled.
func (f *ReceiptForm) IsCancelled() bool {
	return f.cancelled
}

// SetError sets an error message shown under the form.
func (f *ReceiptForm) SetError(e string) {
	f.err = e
}

// ResetSubmit clears the submitted flag so the form can be corrected and
// submitted again.
func (f *ReceiptForm) ResetSubmit() {
	f.submitted = false
}

// GetData returns the receipt input assembled from the form.
func (f *ReceiptForm) GetData() (receiving.ReceiptInput, error) {
	lines := make([]receiving.ReceiptLineInput, len(f.lines))
	copy(lines, f.lines)

	if strings.TrimSpace(f.lineName.Value()) != "" {
		line, ok := f.currentLine()
		if !ok {
			return receiving.ReceiptInput{}, fmt.Errorf("позиция заполнена не полностью")
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return receiving.ReceiptInput{}, fmt.Errorf("накладная без позиций")
	}

	return receiving.ReceiptInput{
		Supplier:       strings.TrimSpace(f.supplier.Value()),
		DocumentNumber: strings.TrimSpace(f.document.Value()),
		Lines:          lines,
	}, nil
}

// Render renders the form.
func (f *ReceiptForm) Render() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	lineStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))

	const labelWidth = 14

	var b strings.Builder

	b.WriteString(titleStyle.Render("═══ НОВАЯ ПРИХОДНАЯ НАКЛАДНАЯ ═══"))
	b.WriteString("\n\n")

	b.WriteString(f.supplier.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.document.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n\n")

	if len(f.lines) > 0 {
		b.WriteString(sectionStyle.Render("Позиции:"))
		b.WriteString("\n")
		for i, line := range f.lines {
			b.WriteString(lineStyle.Render(fmt.Sprintf("  %d. %s — %d %s", i+1, line.ResourceName, line.Quantity, line.Unit)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(f.lineName.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.lineQty.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.lineUnit.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n")

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("Ошибка: " + f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Ctrl+N:добавить позицию  Ctrl+S:оформить  Esc:отмена"))

	return b.String()
}
