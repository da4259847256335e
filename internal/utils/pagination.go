// Package utils holds small helpers shared across layers, free of domain and
// framework dependencies.
package utils

import "strconv"

// Pagination bounds shared by every list endpoint. Sellers with large
// catalogs page through warranties; MaxPageSize keeps a single page from
// turning into a table scan.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageParams normalizes raw page and page_size query values: empty or
// malformed input degrades to the defaults, page is floored at 1, and
// page_size is clamped to [1, MaxPageSize].
func PageParams(rawPage, rawSize string) (page, size int) {
	page = AtoiDefault(rawPage, DefaultPage)
	if page < 1 {
		page = 1
	}
	size = ClampInt(AtoiDefault(rawSize, DefaultPageSize), 1, MaxPageSize)
	return page, size
}

// AtoiDefault parses s as a base-10 integer, returning def when s is empty
// or malformed. Query parameters like ?page=abc must degrade gracefully
// rather than fail the request.
func AtoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// ClampInt bounds n to the closed interval [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
