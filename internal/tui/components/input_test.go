package components

import (
	"strings"
	"testing"
)

func TestInput_Typing(t *testing.T) {
	input := NewInput("Наименование")
	input.Focus(true)

	for _, r := range "Болт М8" {
		input.HandleKey(string(r))
	}

	if input.Value() != "Болт М8" {
		t.Errorf("Expected 'Болт М8', got %q", input.Value())
	}
}

func TestInput_CyrillicEditing(t *testing.T) {
	input := NewInput("Наименование")
	input.Focus(true)
	input.SetValue("Гайка")

	// Cursor sits after the last rune; backspace removes one rune, not one byte
	input.HandleKey("backspace")
	if input.Value() != "Гайк" {
		t.Errorf("Expected 'Гайк' after backspace, got %q", input.Value())
	}

	// Insert in the middle
	input.HandleKey("left")
	input.HandleKey("left")
	input.HandleKey("х")
	if input.Value() != "Гахйк" {
		t.Errorf("Expected 'Гахйк' after mid-insert, got %q", input.Value())
	}
}

func TestInput_CursorMovement(t *testing.T) {
	input := NewInput("Поле")
	input.Focus(true)
	input.SetValue("абв")

	input.HandleKey("home")
	input.HandleKey("delete")
	if input.Value() != "бв" {
		t.Errorf("Expected 'бв' after delete at home, got %q", input.Value())
	}

	input.HandleKey("end")
	input.HandleKey("г")
	if input.Value() != "бвг" {
		t.Errorf("Expected 'бвг' after append at end, got %q", input.Value())
	}
}

func TestInput_MaxLength(t *testing.T) {
	input := NewInput("Поле").SetMaxLength(3)
	input.Focus(true)

	for _, r := range "абвгд" {
		input.HandleKey(string(r))
	}

	if input.Value() != "абв" {
		t.Errorf("Expected value capped at 3 runes, got %q", input.Value())
	}
}

func TestInput_IgnoresKeysWhenUnfocused(t *testing.T) {
	input := NewInput("Поле")
	input.HandleKey("а")

	if input.Value() != "" {
		t.Errorf("Expected empty value, got %q", input.Value())
	}
}

func TestInput_Validate(t *testing.T) {
	input := NewInput("Поле").SetRequired(true)

	if input.Validate() {
		t.Error("Expected empty required field to fail validation")
	}

	input.SetValue("значение")
	if !input.Validate() {
		t.Error("Expected filled required field to pass validation")
	}
}

func TestInput_MaskedRender(t *testing.T) {
	input := NewInput("Пароль").SetMasked(true)
	input.SetValue("секрет")

	output := input.Render()
	if strings.Contains(output, "секрет") {
		t.Error("Expected masked value not to appear in output")
	}
	if !strings.Contains(output, "******") {
		t.Error("Expected asterisks in masked output")
	}
}

func TestInput_RenderWithoutLabel(t *testing.T) {
	input := NewInput("Наименование")
	input.SetValue("Болт")

	output := input.RenderWithLabelWidth(0)
	if strings.Contains(output, "Наименование") {
		t.Error("Expected label hidden at width 0")
	}
	if !strings.Contains(output, "Болт") {
		t.Error("Expected value in output")
	}
}

func TestSelect_Navigation(t *testing.T) {
	sel := NewSelect("Тип", []string{"расходник", "инструмент", "оборудование"})
	sel.Focus(true)

	if sel.Value() != "расходник" {
		t.Errorf("Expected first option selected, got %q", sel.Value())
	}

	sel.HandleKey("right")
	if sel.SelectedIndex() != 1 {
		t.Errorf("Expected index 1, got %d", sel.SelectedIndex())
	}

	sel.HandleKey("left")
	sel.HandleKey("left")
	if sel.SelectedIndex() != 0 {
		t.Errorf("Expected index clamped at 0, got %d", sel.SelectedIndex())
	}

	sel.HandleKey("right")
	sel.HandleKey("right")
	sel.HandleKey("right")
	if sel.SelectedIndex() != 2 {
		t.Errorf("Expected index clamped at 2, got %d", sel.SelectedIndex())
	}
}

func TestForm_Flow(t *testing.T) {
	form := NewForm("ТЕСТ").
		AddField(NewInput("Первое").SetRequired(true)).
		AddField(NewInput("Второе"))

	// First field is focused on creation
	for _, r := range "раз" {
		form.HandleKey(string(r))
	}

	form.HandleKey("tab")
	for _, r := range "два" {
		form.HandleKey(string(r))
	}

	values := form.Values()
	if values[0] != "раз" || values[1] != "два" {
		t.Errorf("Expected [раз два], got %v", values)
	}

	// Enter on the last field submits
	form.HandleKey("enter")
	if !form.IsSubmitted() {
		t.Error("Expected form submitted")
	}

	form.ResetSubmit()
	if form.IsSubmitted() {
		t.Error("Expected submit flag cleared")
	}

	form.HandleKey("esc")
	if !form.IsCancelled() {
		t.Error("Expected form cancelled")
	}
}

func TestForm_CtrlS(t *testing.T) {
	form := NewForm("ТЕСТ").
		AddField(NewInput("Первое")).
		AddField(NewInput("Второе"))

	form.HandleKey("ctrl+s")
	if !form.IsSubmitted() {
		t.Error("Expected ctrl+s to submit from any field")
	}
}
