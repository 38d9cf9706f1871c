package list

import (
	"fmt"
	"strings"
)

// Record is one row of the dataset keyed by field name. Values may be of any
// type; they are stringified for display and filter comparison.
type Record = map[string]any

// Filters maps field names to required values. All entries must match for a
// record to pass.
type Filters = map[string]any

// ApplyFilters returns the records matching every filter entry, preserving
// dataset order. Matching compares stringified values case-insensitively; a
// field missing from a record compares as the empty string. A nil or empty
// filter set keeps everything. The result is always a fresh slice.
func ApplyFilters(records []Record, filters Filters) []Record {
	if len(filters) == 0 {
		out := make([]Record, len(records))
		copy(out, records)
		return out
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if matchesFilters(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesFilters(rec Record, filters Filters) bool {
	for field, want := range filters {
		if !strings.EqualFold(stringifyValue(rec[field]), stringifyValue(want)) {
			return false
		}
	}
	return true
}

// Paginate slices records for a 1-based page and reports the total number of
// pages, which is never below one even for an empty input. An out-of-range
// page yields an empty slice rather than an error; the widget clamps before
// slicing, direct callers decide for themselves. A pageSize below one is
// treated as one.
func Paginate(records []Record, page, pageSize int) ([]Record, int) {
	if pageSize < 1 {
		pageSize = 1
	}
	total := totalPages(len(records), pageSize)
	start := (page - 1) * pageSize
	if start < 0 || start >= len(records) {
		return nil, total
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end], total
}

func totalPages(n, pageSize int) int {
	if n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// stringifyValue renders a record or filter value for display and comparison.
// nil (and with it every missing field) becomes the empty string.
func stringifyValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprint(v)
}
