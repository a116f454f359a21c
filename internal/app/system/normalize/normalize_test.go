package normalize

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"email lowercases", Email, "  Jane.Doe@Example.COM ", "jane.doe@example.com"},
		{"email blank", Email, "   ", ""},
		{"name collapses spaces", Name, "  Jane    Doe ", "Jane Doe"},
		{"name keeps case", Name, "MACDONALD Ltd", "MACDONALD Ltd"},
		{"name tabs and newlines", Name, "Jane\t\nDoe", "Jane Doe"},
		{"role", Role, "  Admin ", "admin"},
		{"text trims only", Text, "  Trading   LLC \n", "Trading   LLC"},
		{"query trims", QueryParam, "  C100  ", "C100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryParam_Caps(t *testing.T) {
	if got := QueryParam(strings.Repeat("a", 500)); len(got) != 200 {
		t.Errorf("length = %d, want 200", len(got))
	}
	got := QueryParam(strings.Repeat("é", 300))
	if utf8.RuneCountInString(got) != 200 || !utf8.ValidString(got) {
		t.Errorf("multi-byte query not cut on a rune boundary: %d runes", utf8.RuneCountInString(got))
	}
}
