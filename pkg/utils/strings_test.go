package utils

import "testing"

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal address", "alice@example.com", "a***@example.com"},
		{"Single-char local part", "a@b.com", "a***@b.com"},
		{"No at sign", "not-an-email", "***"},
		{"Leading at sign", "@example.com", "***"},
		{"Empty string", "", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskEmail(tt.input); got != tt.expected {
				t.Errorf("MaskEmail(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
