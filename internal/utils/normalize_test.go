package utils

import "testing"

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  SKU  ", "SKU"},
		{"\uFEFFItem Number", "Item Number"},
		{"Qty\tOn Hand", "Qty On Hand"},
		{"Product\r\nTitle", "Product Title"},
		{"Price   (USD)", "Price (USD)"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanHeader(tt.input); got != tt.want {
			t.Errorf("CleanHeader(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Item SKU", "itemsku"},
		{"item_sku", "itemsku"},
		{"Item-SKU", "itemsku"},
		{"QTY.ON.HAND", "qtyonhand"},
		{"Compare At Price", "compareatprice"},
	}

	for _, tt := range tests {
		if got := NormalizeHeader(tt.input); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{" AB-100 ", "AB-100"},
		{"nan", ""},
		{"NaN", ""},
		{"None", ""},
		{"NULL", ""},
		{"N/A", ""},
		{"0", "0"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("  nan ") {
		t.Error("expected placeholder to be blank")
	}
	if IsBlank("SKU-1") {
		t.Error("expected real value to be non-blank")
	}
}
