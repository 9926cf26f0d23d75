package models

import (
	"errors"
	"testing"
)

func TestAllResourceTypes(t *testing.T) {
	defs := AllResourceTypes()

	if len(defs) != 6 {
		t.Fatalf("expected 6 resource types, got %d", len(defs))
	}

	wantOrder := []ResourceType{
		TypeEquipment, TypeConsumable, TypeMaterial,
		TypeTool, TypeElectronics, TypeChemical,
	}
	for i, want := range wantOrder {
		if defs[i].Type != want {
			t.Errorf("position %d: expected %s, got %s", i, want, defs[i].Type)
		}
	}
}

func TestAttributesFor(t *testing.T) {
	t.Run("Equipment schema order and flags", func(t *testing.T) {
		attrs := AttributesFor(TypeEquipment)
		if len(attrs) != 6 {
			t.Fatalf("expected 6 equipment attributes, got %d", len(attrs))
		}
		if attrs[0].Name != "inventory_number" || !attrs[0].Required {
			t.Errorf("expected required inventory_number first, got %+v", attrs[0])
		}
		if attrs[5].Name != "warranty_months" || attrs[5].Kind != AttrNumber {
			t.Errorf("expected number-kind warranty_months last, got %+v", attrs[5])
		}
	})

	t.Run("Chemical has two required attributes", func(t *testing.T) {
		var required []string
		for _, a := range AttributesFor(TypeChemical) {
			if a.Required {
				required = append(required, a.Name)
			}
		}
		if len(required) != 2 || required[0] != "safety_class" || required[1] != "storage_conditions" {
			t.Errorf("expected [safety_class storage_conditions], got %v", required)
		}
	})

	t.Run("Unknown type yields nothing", func(t *testing.T) {
		if attrs := AttributesFor(ResourceType("furniture")); attrs != nil {
			t.Errorf("expected nil attributes, got %v", attrs)
		}
	})
}

func TestValidateAttributes(t *testing.T) {
	t.Run("Consumable needs nothing", func(t *testing.T) {
		if err := ValidateAttributes(TypeConsumable, nil); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("Missing required attribute", func(t *testing.T) {
		err := ValidateAttributes(TypeTool, map[string]string{"condition": "good"})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(verr.MissingAttributes) != 1 || verr.MissingAttributes[0] != "inventory_number" {
			t.Errorf("expected missing inventory_number, got %v", verr.MissingAttributes)
		}
	})

	t.Run("Empty value counts as missing", func(t *testing.T) {
		err := ValidateAttributes(TypeEquipment, map[string]string{"inventory_number": ""})
		if err == nil {
			t.Error("expected error for empty required attribute, got nil")
		}
	})

	t.Run("All required present", func(t *testing.T) {
		attrs := map[string]string{
			"safety_class":       "4",
			"storage_conditions": "dry, ventilated",
		}
		if err := ValidateAttributes(TypeChemical, attrs); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("Unknown type rejected", func(t *testing.T) {
		if err := ValidateAttributes(ResourceType("furniture"), nil); err == nil {
			t.Error("expected error for unknown type, got nil")
		}
	})
}

func TestParseResourceType(t *testing.T) {
	if rt, ok := ParseResourceType("electronics"); !ok || rt != TypeElectronics {
		t.Errorf("ParseResourceType(electronics) = %v, %v", rt, ok)
	}
	if _, ok := ParseResourceType("unknown"); ok {
		t.Error("expected unknown type to fail parsing")
	}
}
