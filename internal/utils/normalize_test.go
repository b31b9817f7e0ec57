package utils

import (
	"math"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  Green Meadows  ", "green meadows"},
		{"ANDHERI WEST", "andheri west"},
		{"", ""},
		{"\tUnknown\n", "unknown"},
	}

	for _, tt := range tests {
		if got := NormalizeKey(tt.input); got != tt.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsUnknownKey(t *testing.T) {
	if !IsUnknownKey("") || !IsUnknownKey("unknown") {
		t.Error("expected empty and unknown keys to be unknown")
	}
	if IsUnknownKey("bandra") {
		t.Error("expected bandra to be a known key")
	}
}

func TestParseINRPrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "Crore", input: "₹ 1.25 Cr", want: 12500000},
		{name: "Lakh short", input: "₹45 L", want: 4500000},
		{name: "Lakh long", input: "78.5 Lac", want: 7850000},
		{name: "Thousand", input: "800 k", want: 800000},
		{name: "Acres", input: "2 acs", want: 200000},
		{name: "Plain with commas", input: "₹ 5,500,000", want: 5500000},
		{name: "Empty", input: "", wantErr: true},
		{name: "No number", input: "Price on request", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseINRPrice(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseINRPrice(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 0.001 {
				t.Errorf("ParseINRPrice(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAreaSqft(t *testing.T) {
	got, err := ParseAreaSqft("1,200 sqft")
	if err != nil || got != 1200 {
		t.Errorf("ParseAreaSqft(sqft) = %v, %v", got, err)
	}

	got, err = ParseAreaSqft("100 sqmt")
	if err != nil || math.Abs(got-1076.4) > 0.001 {
		t.Errorf("ParseAreaSqft(sqmt) = %v, %v", got, err)
	}

	if _, err := ParseAreaSqft("n/a"); err == nil {
		t.Error("expected error for area without a number")
	}
}
