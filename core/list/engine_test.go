package list

import (
	"fmt"
	"testing"
)

func sampleRecords(n int) []Record {
	statuses := []string{"Active", "Archived"}
	cities := []string{"Berlin", "Lisbon", "Oslo"}
	records := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, Record{
			"name":   fmt.Sprintf("Item %02d", i+1),
			"status": statuses[i%len(statuses)],
			"city":   cities[i%len(cities)],
		})
	}
	return records
}

func TestApplyFiltersEmptyKeepsEverything(t *testing.T) {
	records := sampleRecords(7)

	for _, filters := range []Filters{nil, {}} {
		got := ApplyFilters(records, filters)
		if len(got) != len(records) {
			t.Fatalf("expected %d records, got %d", len(records), len(got))
		}
		for i := range got {
			if got[i]["name"] != records[i]["name"] {
				t.Fatalf("record %d reordered: %v", i, got[i]["name"])
			}
		}
	}
}

func TestApplyFiltersReturnsFreshSlice(t *testing.T) {
	records := sampleRecords(3)
	got := ApplyFilters(records, nil)
	got[0] = Record{"name": "mutated"}
	if records[0]["name"] != "Item 01" {
		t.Fatalf("input slice mutated: %v", records[0]["name"])
	}
}

func TestApplyFiltersConjunctive(t *testing.T) {
	records := sampleRecords(12)

	got := ApplyFilters(records, Filters{"status": "Active", "city": "Berlin"})
	if len(got) == 0 {
		t.Fatal("expected at least one match")
	}
	for _, rec := range got {
		if rec["status"] != "Active" || rec["city"] != "Berlin" {
			t.Fatalf("record fails a filter: %v", rec)
		}
	}

	if got := ApplyFilters(records, Filters{"status": "Active", "city": "Atlantis"}); len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestApplyFiltersCaseInsensitive(t *testing.T) {
	records := sampleRecords(4)
	upper := ApplyFilters(records, Filters{"status": "ACTIVE"})
	lower := ApplyFilters(records, Filters{"status": "active"})
	if len(upper) == 0 || len(upper) != len(lower) {
		t.Fatalf("case variants disagree: %d vs %d", len(upper), len(lower))
	}
}

func TestApplyFiltersMissingFieldMatchesEmpty(t *testing.T) {
	records := []Record{
		{"name": "a"},
		{"name": "b", "extra": "x"},
		{"name": "c", "extra": nil},
	}
	got := ApplyFilters(records, Filters{"extra": ""})
	if len(got) != 2 {
		t.Fatalf("expected missing and nil fields to match empty filter, got %d records", len(got))
	}
}

func TestApplyFiltersNonStringValues(t *testing.T) {
	records := []Record{
		{"id": 7, "ok": true},
		{"id": 8, "ok": false},
	}
	if got := ApplyFilters(records, Filters{"id": 7}); len(got) != 1 {
		t.Fatalf("int filter: expected 1 record, got %d", len(got))
	}
	// Filter value and record value only need to stringify equally.
	if got := ApplyFilters(records, Filters{"id": "7"}); len(got) != 1 {
		t.Fatalf("string filter over int field: expected 1 record, got %d", len(got))
	}
	if got := ApplyFilters(records, Filters{"ok": true}); len(got) != 1 {
		t.Fatalf("bool filter: expected 1 record, got %d", len(got))
	}
}

func TestPaginatePartition(t *testing.T) {
	records := sampleRecords(25)

	var reassembled []Record
	seen := 0
	_, total := Paginate(records, 1, 10)
	if total != 3 {
		t.Fatalf("expected 3 pages, got %d", total)
	}
	for page := 1; page <= total; page++ {
		items, _ := Paginate(records, page, 10)
		seen += len(items)
		reassembled = append(reassembled, items...)
	}
	if seen != len(records) {
		t.Fatalf("pages cover %d records, want %d", seen, len(records))
	}
	for i := range reassembled {
		if reassembled[i]["name"] != records[i]["name"] {
			t.Fatalf("record %d out of order: %v", i, reassembled[i]["name"])
		}
	}
}

func TestPaginateTotals(t *testing.T) {
	cases := []struct {
		n, size, want int
	}{
		{0, 20, 1},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{25, 20, 2},
		{41, 20, 3},
	}
	for _, tc := range cases {
		_, total := Paginate(sampleRecords(tc.n), 1, tc.size)
		if total != tc.want {
			t.Fatalf("n=%d size=%d: total %d, want %d", tc.n, tc.size, total, tc.want)
		}
	}
}

func TestPaginateOutOfRange(t *testing.T) {
	records := sampleRecords(5)
	for _, page := range []int{0, -1, 3, 99} {
		items, total := Paginate(records, page, 5)
		if len(items) != 0 {
			t.Fatalf("page %d: expected empty slice, got %d items", page, len(items))
		}
		if total != 1 {
			t.Fatalf("page %d: total %d, want 1", page, total)
		}
	}
}

func TestPaginateTinyPageSize(t *testing.T) {
	records := sampleRecords(3)
	items, total := Paginate(records, 2, 0)
	if total != 3 {
		t.Fatalf("pageSize 0 should behave as 1: total %d", total)
	}
	if len(items) != 1 || items[0]["name"] != "Item 02" {
		t.Fatalf("unexpected page content: %v", items)
	}
}
