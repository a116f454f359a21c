package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if got := htmlsanitize.Sanitize("Importer of marine equipment."); got != "Importer of marine equipment." {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_KeepsFormatting(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p><ul><li>One</li></ul>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected formatting preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesEventHandlers(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p onclick="alert('xss')">Click</p>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("expected onclick removed, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="javascript:alert('xss')">Click</a>`)
	if strings.Contains(got, "javascript:") {
		t.Errorf("expected javascript: href removed, got %q", got)
	}
}

func TestSanitize_KeepsSafeLinks(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="https://example.com">Site</a>`)
	if !strings.Contains(got, "https://example.com") || !strings.Contains(got, "nofollow") {
		t.Errorf("expected safe link with nofollow, got %q", got)
	}
}

func TestSanitize_RemovesImagesAndIframes(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p>Text</p><img src="https://example.com/x.png"><iframe src="https://evil.com"></iframe>`)
	if strings.Contains(got, "<img") || strings.Contains(got, "iframe") {
		t.Errorf("expected img and iframe removed, got %q", got)
	}
	if !strings.Contains(got, "Text") {
		t.Errorf("expected text preserved, got %q", got)
	}
}

func TestStripTags(t *testing.T) {
	if got := htmlsanitize.StripTags("<b>Acme</b> Trading"); got != "Acme Trading" {
		t.Errorf("StripTags = %q, want %q", got, "Acme Trading")
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"Hello", true},
		{"5 < 10", true},
		{"5 > 3", true},
		{"<p>Hello</p>", false},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.in); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
