package itinerary

import "testing"

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"120", 120},
		{"$120", 120},
		{"$1,200.50", 1200.50},
		{"€89.99", 89.99},
		{"£45 /night", 45},
		{"USD 99", 99},
		{"₹3,500", 3500},
		{"  250.00  ", 250},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.raw)
		if err != nil {
			t.Errorf("ParsePrice(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePrice(%q) = %.2f; want %.2f", tt.raw, got, tt.want)
		}
	}
}

func TestParsePriceRejectsNonNumeric(t *testing.T) {
	for _, raw := range []string{"", "free", "call for price", "$"} {
		if got, err := ParsePrice(raw); err == nil {
			t.Errorf("ParsePrice(%q) = %.2f; want error, never a silent zero", raw, got)
		}
	}
}
