// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
)

// DefaultLimit is the page size used when the request does not specify one.
const DefaultLimit = 100

// MaxLimit caps the page size a client may request.
const MaxLimit = 1000

// Page holds offset pagination parameters parsed from a request.
type Page struct {
	Skip  int64
	Limit int64
}

// Parse extracts "skip" and "limit" query parameters. Missing or invalid
// values fall back to skip=0, limit=DefaultLimit; limit is clamped to
// [1, MaxLimit].
func Parse(r *http.Request) Page {
	p := Page{Skip: 0, Limit: DefaultLimit}

	if s := r.URL.Query().Get("skip"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 0 {
			p.Skip = n
		}
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && n >= 1 {
			p.Limit = n
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
