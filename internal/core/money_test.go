package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"simple dot", "12.34", 1234, false},
		{"simple comma", "12,34", 1234, false},
		{"integer only", "12", 1200, false},
		{"leading dot", ".50", 50, false},
		{"trailing dot", "12.", 1200, false},
		{"one decimal", "12.3", 1230, false},
		{"third decimal rounds down", "12.344", 1234, false},
		{"third decimal rounds up", "12.345", 1235, false},
		{"zero allowed", "0", 0, false},
		{"zero decimal allowed", "0.00", 0, false},
		{"whitespace trimmed", "  7.50  ", 750, false},
		{"empty", "", 0, true},
		{"negative", "-1.00", 0, true},
		{"explicit plus", "+1.00", 0, true},
		{"two dots", "1.2.3", 0, true},
		{"letters", "abc", 0, true},
		{"mixed", "12a.34", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{1200, "12.00"},
		{5, "0.05"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Cents: 1999}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"19.99"` {
		t.Errorf("Marshal = %s, want %q", data, `"19.99"`)
	}
	var back Money
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != m {
		t.Errorf("round trip = %+v, want %+v", back, m)
	}
}

func TestMoneyUnmarshalBareNumber(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte(`42.5`), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.Cents != 4250 {
		t.Errorf("Cents = %d, want 4250", m.Cents)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Errorf("zero amount should be valid, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Error("negative amount should be invalid")
	}
}
