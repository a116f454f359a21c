// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultSize is the page size used when the caller does not ask for one.
const DefaultSize = 20

// MaxSize caps the page size a caller may request.
const MaxSize = 100

// Params is a clamped page-number request. Page is 1-based.
type Params struct {
	Page int
	Size int
}

// New clamps page to >= 1 and size to [1, MaxSize]. A non-positive size
// falls back to DefaultSize.
func New(page, size int) Params {
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = DefaultSize
	case size > MaxSize:
		size = MaxSize
	}
	return Params{Page: page, Size: size}
}

// Parse reads the "page" and "size" query parameters. Missing or
// unparseable values use the defaults.
func Parse(r *http.Request) Params {
	return New(atoi(query.Get(r, "page"), 1), atoi(query.Get(r, "size"), DefaultSize))
}

// Skip is the number of documents preceding this page.
func (p Params) Skip() int64 { return int64(p.Page-1) * int64(p.Size) }

// Limit is the page size as int64 for Find().SetLimit().
func (p Params) Limit() int64 { return int64(p.Size) }

// TotalPages returns ceil(total / size).
func (p Params) TotalPages(total int64) int64 {
	if total <= 0 {
		return 0
	}
	size := int64(p.Size)
	return (total + size - 1) / size
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
