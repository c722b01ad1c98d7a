package license

import (
	"strings"
	"testing"
)

func TestGeneratePurchaseCode_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GeneratePurchaseCode()
		if err != nil {
			t.Fatalf("GeneratePurchaseCode() error = %v", err)
		}
		if !IsWellFormedPurchaseCode(code) {
			t.Errorf("generated code %q is not well formed", code)
		}
		if seen[code] {
			t.Errorf("generated duplicate code %q", code)
		}
		seen[code] = true
	}
}

func TestNormalizePurchaseCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "abcd-1234-efgh-5678", "ABCD-1234-EFGH-5678"},
		{"surrounding whitespace", "  ABCD-1234-EFGH-5678  ", "ABCD-1234-EFGH-5678"},
		{"already canonical", "ABCD-1234-EFGH-5678", "ABCD-1234-EFGH-5678"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePurchaseCode(tt.in); got != tt.want {
				t.Errorf("NormalizePurchaseCode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsWellFormedPurchaseCode(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"canonical", "ABCD-1234-EFGH-5678", true},
		{"lowercase normalizes", "abcd-1234-efgh-5678", true},
		{"missing group", "ABCD-1234-EFGH", false},
		{"no dashes", "ABCD1234EFGH5678", false},
		{"short group", "ABC-1234-EFGH-5678", false},
		{"invalid characters", "ABCD-12!4-EFGH-5678", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWellFormedPurchaseCode(tt.code); got != tt.want {
				t.Errorf("IsWellFormedPurchaseCode(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestHashPurchaseCode(t *testing.T) {
	h1 := HashPurchaseCode("ABCD-1234-EFGH-5678")
	h2 := HashPurchaseCode("abcd-1234-efgh-5678")
	h3 := HashPurchaseCode("ZZZZ-1234-EFGH-5678")

	if h1 != h2 {
		t.Error("hash should be case-insensitive after normalization")
	}
	if h1 == h3 {
		t.Error("different codes should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex characters", len(h1))
	}
	if strings.Contains(h1, "ABCD") {
		t.Error("hash must not contain the raw code")
	}
}
