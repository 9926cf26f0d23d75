package receiving

import (
	"strings"
	"testing"
)

func typeKeys(f *ReceiptForm, s string) {
	for _, r := range s {
		f.HandleKey(string(r))
	}
}

func TestReceiptForm_SingleLine(t *testing.T) {
	form := NewReceiptForm("шт")

	typeKeys(form, "ООО Метизы")
	form.HandleKey("tab") // document
	typeKeys(form, "ТН-104")
	form.HandleKey("tab") // resource name
	typeKeys(form, "Болт М8")
	form.HandleKey("tab") // quantity
	typeKeys(form, "90")

	form.HandleKey("ctrl+s")
	if !form.IsSubmitted() {
		t.Fatal("expected form submitted")
	}

	input, err := form.GetData()
	if err != nil {
		t.Fatalf("getting data: %v", err)
	}
	if input.Supplier != "ООО Метизы" {
		t.Errorf("expected supplier, got %q", input.Supplier)
	}
	if input.DocumentNumber != "ТН-104" {
		t.Errorf("expected document number, got %q", input.DocumentNumber)
	}
	if len(input.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(input.Lines))
	}
	if input.Lines[0].ResourceName != "Болт М8" || input.Lines[0].Quantity != 90 {
		t.Errorf("unexpected line: %+v", input.Lines[0])
	}
	if input.Lines[0].Unit != "шт" {
		t.Errorf("expected default unit, got %q", input.Lines[0].Unit)
	}
}

func TestReceiptForm_MultipleLines(t *testing.T) {
	form := NewReceiptForm("шт")

	typeKeys(form, "ООО Метизы")
	form.HandleKey("tab")
	form.HandleKey("tab")
	typeKeys(form, "Болт М8")
	form.HandleKey("tab")
	typeKeys(form, "90")

	form.HandleKey("ctrl+n") // add line, clears line fields

	typeKeys(form, "Гайка М8")
	form.HandleKey("tab")
	typeKeys(form, "40")

	form.HandleKey("ctrl+s")
	if !form.IsSubmitted() {
		t.Fatal("expected form submitted")
	}

	input, err := form.GetData()
	if err != nil {
		t.Fatalf("getting data: %v", err)
	}
	if len(input.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(input.Lines))
	}
	if input.Lines[1].ResourceName != "Гайка М8" || input.Lines[1].Quantity != 40 {
		t.Errorf("unexpected second line: %+v", input.Lines[1])
	}

	output := form.Render()
	if !strings.Contains(output, "Болт М8 — 90") {
		t.Error("expected accumulated line in render")
	}
}

func TestReceiptForm_RequiresSupplier(t *testing.T) {
	form := NewReceiptForm("шт")

	form.HandleKey("tab")
	form.HandleKey("tab")
	typeKeys(form, "Болт М8")
	form.HandleKey("tab")
	typeKeys(form, "90")

	form.HandleKey("ctrl+s")
	if form.IsSubmitted() {
		t.Error("expected submit blocked without supplier")
	}
}

func TestReceiptForm_RequiresLines(t *testing.T) {
	form := NewReceiptForm("шт")

	typeKeys(form, "ООО Метизы")
	form.HandleKey("ctrl+s")

	if form.IsSubmitted() {
		t.Error("expected submit blocked without lines")
	}
	if !strings.Contains(form.Render(), "хотя бы одну позицию") {
		t.Error("expected validation message in render")
	}
}

func TestReceiptForm_RejectsBadQuantity(t *testing.T) {
	form := NewReceiptForm("шт")

	typeKeys(form, "ООО Метизы")
	form.HandleKey("tab")
	form.HandleKey("tab")
	typeKeys(form, "Болт М8")
	form.HandleKey("tab")
	typeKeys(form, "-5")

	form.HandleKey("ctrl+s")
	if form.IsSubmitted() {
		t.Error("expected submit blocked by non-positive quantity")
	}
}

func TestReceiptForm_Cancel(t *testing.T) {
	form := NewReceiptForm("шт")
	form.HandleKey("esc")

	if !form.IsCancelled() {
		t.Error("expected form cancelled")
	}
}
