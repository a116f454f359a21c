// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	profileOnce   sync.Once
	profilePolicy *bluemonday.Policy
	strictPolicy  = bluemonday.StrictPolicy()
)

// policy allows the light formatting members use in their "about" and
// company brief text: paragraphs, emphasis, lists, quotes and links.
func policy() *bluemonday.Policy {
	profileOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowStandardURLs()
		p.AllowElements("p", "br", "strong", "em", "b", "i", "u", "ul", "ol", "li", "blockquote", "h3", "h4")
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		profilePolicy = p
	})
	return profilePolicy
}

// Sanitize returns s with everything outside the profile policy removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(policy().Sanitize(s))
}

// StripTags removes all markup, leaving text only.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// IsPlainText reports whether s contains no tag-like markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}
