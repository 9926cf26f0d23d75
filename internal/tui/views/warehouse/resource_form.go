package warehouse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/workdesk/workdesk/internal/models"
	"github.com/workdesk/workdesk/internal/services/catalog"
	"github.com/workdesk/workdesk/internal/tui/components"
)

// FormMode indicates the form mode.
type FormMode int

const (
	FormModeAdd FormMode = iota
	FormModeEdit
)

// ResourceForm is a form for adding or editing a catalog entry. The
// attribute fields are rebuilt from the type registry whenever the type
// selection changes, so the operator only ever sees the schema of the
// chosen type.
type ResourceForm struct {
	mode     FormMode
	original *models.Resource

	typeDefs []models.TypeDefinition

	// Form fields
	name    *components.Input
	typeSel *components.Select
	qty     *components.Input
	unit    *components.Input
	minQty  *components.Input

	attrDefs   []models.AttributeDef
	attrInputs []*components.Input

	// State
	focusIndex  int
	fields      []components.FormField
	lastTypeIdx int
	submitted   bool
	cancelled   bool
	err         string
}

// NewResourceForm creates a new resource form.
func NewResourceForm(mode FormMode, defaultUnit string) *ResourceForm {
	defs := models.AllResourceTypes()
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}

	f := &ResourceForm{
		mode:     mode,
		typeDefs: defs,

		name:    components.NewInput("Наименование").SetRequired(true).SetWidth(30),
		typeSel: components.NewSelect("Тип", names),
		qty:     components.NewInput("Количество").SetWidth(8).SetMaxLength(9).SetValue("0"),
		unit:    components.NewInput("Ед. изм.").SetWidth(8).SetValue(defaultUnit),
		minQty:  components.NewInput("Мин. остаток").SetWidth(8).SetMaxLength(9).SetValue("0"),
	}

	// Default to consumables, the most common entry.
	for i, d := range defs {
		if d.Type == models.TypeConsumable {
			f.typeSel.SetSelected(i)
			break
		}
	}
	f.lastTypeIdx = f.typeSel.SelectedIndex()

	f.rebuildFields()
	f.fields[0].Focus(true)

	return f
}

// SetResource populates the form with an existing catalog entry.
func (f *ResourceForm) SetResource(r *models.Resource) {
	f.original = r
	f.name.SetValue(r.Name)
	for i, d := range f.typeDefs {
		if d.Type == r.Type {
			f.typeSel.SetSelected(i)
			break
		}
	}
	f.lastTypeIdx = f.typeSel.SelectedIndex()
	f.qty.SetValue(fmt.Sprintf("%d", r.Quantity))
	f.unit.SetValue(r.Unit)
	f.minQty.SetValue(fmt.Sprintf("%d", r.MinQuantity))

	f.rebuildFields()
	for i, def := range f.attrDefs {
		if val, ok := r.Attributes[def.Name]; ok {
			f.attrInputs[i].SetValue(val)
		}
	}
	f.fields[f.focusIndex].Focus(true)
}

// rebuildFields regenerates the attribute inputs for the selected type and
// reassembles the traversal order.
func (f *ResourceForm) rebuildFields() {
	def := f.typeDefs[f.typeSel.SelectedIndex()]
	f.attrDefs = def.Attributes
	f.attrInputs = make([]*components.Input, len(def.Attributes))
	for i, attr := range def.Attributes {
		in := components.NewInput(attr.Label).SetWidth(24)
		if attr.Required {
			in.SetRequired(true)
		}
		f.attrInputs[i] = in
	}

	f.fields = []components.FormField{f.name, f.typeSel, f.qty, f.unit, f.minQty}
	for _, in := range f.attrInputs {
		f.fields = append(f.fields, in)
	}
	if f.focusIndex >= len(f.fields) {
		f.focusIndex = 0
	}
}

// HandleKey handles key input.
func (f *ResourceForm) HandleKey(key string) {
	switch key {
	case "tab", "down":
		f.nextField()
	case "shift+tab", "up":
		f.prevField()
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
		f.fields[f.focusIndex].HandleKey(key)
		if f.typeSel.SelectedIndex() != f.lastTypeIdx {
			f.lastTypeIdx = f.typeSel.SelectedIndex()
			f.rebuildFields()
			f.fields[f.focusIndex].Focus(true)
		}
	}
}

func (f *ResourceForm) nextField() {
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex++
	if f.focusIndex >= len(f.fields) {
		f.focusIndex = 0
	}
	f.fields[f.focusIndex].Focus(true)
}

func (f *ResourceForm) prevField() {
	f.fields[f.focusIndex].Focus(false)
	f.focusIndex--
	if f.focusIndex < 0 {
		f.focusIndex = len(f.fields) - 1
	}
	f.fields[f.focusIndex].Focus(true)
}

func (f *ResourceForm) submit() {
	f.err = ""

	valid := f.name.Validate()
	if _, err := strconv.Atoi(strings.TrimSpace(f.qty.Value())); err != nil {
		f.err = "Количество должно быть числом"
		valid = false
	}
	if v := strings.TrimSpace(f.minQty.Value()); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			f.err = "Минимальный остаток должен быть числом"
			valid = false
		}
	}
	for _, in := range f.attrInputs {
		if !in.Validate() {
			valid = false
		}
	}

	if !valid {
		if f.err == "" {
			f.err = "Заполните обязательные поля"
		}
		return
	}

	f.submitted = true
}

// Mode reports whether the form adds a new entry or edits an existing one.
func (f *ResourceForm) Mode() FormMode {
	return f.mode
}

// IsSubmitted returns true if the form was submitted.
func (f *ResourceForm) IsSubmitted() bool {
	return f.submitted
}

// IsCancelled returns true if the form was cancelled.
func (f *ResourceForm) IsCancelled() bool {
	return f.cancelled
}

func (f *ResourceForm) attributes() map[string]string {
	attrs := make(map[string]string)
	for i, def := range f.attrDefs {
		if val := strings.TrimSpace(f.attrInputs[i].Value()); val != "" {
			attrs[def.Name] = val
		}
	}
	return attrs
}

// GetAdd returns the form data as an AddResourceInput.
func (f *ResourceForm) GetAdd() (catalog.AddResourceInput, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(f.qty.Value()))
	if err != nil {
		return catalog.AddResourceInput{}, fmt.Errorf("разбор количества: %w", err)
	}
	minQty := 0
	if v := strings.TrimSpace(f.minQty.Value()); v != "" {
		minQty, err = strconv.Atoi(v)
		if err != nil {
			return catalog.AddResourceInput{}, fmt.Errorf("разбор минимального остатка: %w", err)
		}
	}

	return catalog.AddResourceInput{
		Name:        strings.TrimSpace(f.name.Value()),
		Quantity:    qty,
		Unit:        strings.TrimSpace(f.unit.Value()),
		MinQuantity: minQty,
		Type:        f.typeDefs[f.typeSel.SelectedIndex()].Type,
		Attributes:  f.attributes(),
	}, nil
}

// GetUpdate returns the form data as an UpdateResourceInput. Name identifies
// the catalog entry and cannot be changed after creation.
func (f *ResourceForm) GetUpdate() (string, catalog.UpdateResourceInput, error) {
	if f.original == nil {
		return "", catalog.UpdateResourceInput{}, fmt.Errorf("форма не привязана к ресурсу")
	}

	qty, err := strconv.Atoi(strings.TrimSpace(f.qty.Value()))
	if err != nil {
		return "", catalog.UpdateResourceInput{}, fmt.Errorf("разбор количества: %w", err)
	}
	minQty := 0
	if v := strings.TrimSpace(f.minQty.Value()); v != "" {
		minQty, err = strconv.Atoi(v)
		if err != nil {
			return "", catalog.UpdateResourceInput{}, fmt.Errorf("разбор минимального остатка: %w", err)
		}
	}
	unit := strings.TrimSpace(f.unit.Value())
	selected := f.typeDefs[f.typeSel.SelectedIndex()].Type

	return f.original.Name, catalog.UpdateResourceInput{
		Type:        &selected,
		Quantity:    &qty,
		Unit:        &unit,
		MinQuantity: &minQty,
		Attributes:  f.attributes(),
	}, nil
}

// Render renders the form.
func (f *ResourceForm) Render() string {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#66FF66")).Bold(true)
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))

	labelWidth := 22

	var b strings.Builder

	title := "НОВЫЙ РЕСУРС"
	if f.mode == FormModeEdit {
		title = "ИЗМЕНЕНИЕ РЕСУРСА"
	}
	b.WriteString(titleStyle.Render("═══ " + title + " ═══"))
	b.WriteString("\n\n")

	b.WriteString(f.name.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.typeSel.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.qty.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.unit.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n")
	b.WriteString(f.minQty.RenderWithLabelWidth(labelWidth))
	b.WriteString("\n")

	if len(f.attrInputs) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Характеристики"))
		b.WriteString("\n")
		for _, in := range f.attrInputs {
			b.WriteString(in.RenderWithLabelWidth(labelWidth))
			b.WriteString("\n")
		}
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render("Ошибка: " + f.err))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("Tab/Down:след.  Shift+Tab/Up:пред.  Ctrl+S:сохранить  Esc:отмена"))

	return b.String()
}
