package language

import (
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"ja", "ja"},
		{"JA", "ja"},
		{"en", "en"},
		// Word forms
		{"japanese", "ja"},
		{"English", "en"},
		{"MANDARIN", "zh"},
		{"korean", "ko"},
		// Unknown 2-letter passes through
		{"xy", "xy"},
		// Unknown longer input returns empty
		{"klingon", ""},
		// Empty
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ToISO2(tt.input)
			if result != tt.expected {
				t.Errorf("ToISO2(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ja", "Japanese"},
		{"japanese", "Japanese"},
		{"en", "English"},
		{"", "Auto-detect"},
		{"  ", "Auto-detect"},
		{"xy", "XY"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := DisplayName(tt.input)
			if result != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsKnown(t *testing.T) {
	if !IsKnown("ja") || !IsKnown("Japanese") {
		t.Fatal("expected japanese to be known")
	}
	if IsKnown("xy") || IsKnown("") {
		t.Fatal("expected unknown codes to report false")
	}
}
