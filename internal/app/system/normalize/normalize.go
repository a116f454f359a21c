// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"
)

// Email trims surrounding whitespace and lowercases the address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of
// whitespace to a single space. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Text trims a free-text form value.
func Text(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a search term and caps its length so a single request
// cannot submit an unbounded regex subject.
func QueryParam(s string) string {
	s = strings.TrimSpace(s)
	const max = 200
	if r := []rune(s); len(r) > max {
		s = string(r[:max])
	}
	return s
}
