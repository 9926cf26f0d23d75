package models

import (
	"testing"
)

func TestResource_StockLevel(t *testing.T) {
	tests := []struct {
		name        string
		quantity    int
		minQuantity int
		want        StockLevel
	}{
		{"Zero quantity is absent", 0, 5, StockAbsent},
		{"Zero quantity without threshold is absent", 0, 0, StockAbsent},
		{"At threshold is low", 5, 5, StockLow},
		{"Below threshold is low", 3, 5, StockLow},
		{"Above threshold is normal", 6, 5, StockNormal},
		{"No threshold is normal", 1, 0, StockNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resource{Name: "Bolt", Quantity: tt.quantity, MinQuantity: tt.minQuantity}
			if got := r.StockLevel(); got != tt.want {
				t.Errorf("StockLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResource_BelowMinimum(t *testing.T) {
	tests := []struct {
		name        string
		quantity    int
		minQuantity int
		want        bool
	}{
		{"At threshold", 5, 5, true},
		{"Under threshold", 2, 5, true},
		{"Over threshold", 8, 5, false},
		{"Threshold disabled", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resource{Quantity: tt.quantity, MinQuantity: tt.minQuantity}
			if got := r.BelowMinimum(); got != tt.want {
				t.Errorf("BelowMinimum() = %v, want %v", got, tt.want)
			}
		})
	}
}
