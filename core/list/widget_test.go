package list

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func newTestWidget(t *testing.T, opts Options) *Widget {
	t.Helper()
	w, err := New(opts)
	if err != nil {
		t.Fatalf("new widget: %v", err)
	}
	return w
}

func TestNewDefaults(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(3), Fields: []string{"name"}})
	if w.Page() != 1 {
		t.Fatalf("expected page 1, got %d", w.Page())
	}
	if w.PageSize() != DefaultPageSize {
		t.Fatalf("expected default page size %d, got %d", DefaultPageSize, w.PageSize())
	}
	if w.TotalPages() != 1 {
		t.Fatalf("expected 1 page, got %d", w.TotalPages())
	}
	if _, ok := w.Selected(); ok {
		t.Fatal("fresh widget should have no selection")
	}
}

func TestNewRejectsTooManyFields(t *testing.T) {
	fields := make([]string, MaxFields+1)
	for i := range fields {
		fields[i] = fmt.Sprintf("f%d", i)
	}
	_, err := New(Options{Fields: fields})
	if !errors.Is(err, ErrTooManyFields) {
		t.Fatalf("expected ErrTooManyFields, got %v", err)
	}

	if _, err := New(Options{Fields: fields[:MaxFields]}); err != nil {
		t.Fatalf("exactly MaxFields should be accepted: %v", err)
	}
}

func TestRenderFirstPageOfTwo(t *testing.T) {
	// 25 records at the default page size of 20 split into 20 + 5.
	w := newTestWidget(t, Options{Records: sampleRecords(25), Fields: []string{"name", "status"}})
	if w.TotalPages() != 2 {
		t.Fatalf("expected 2 pages, got %d", w.TotalPages())
	}

	text, kb := w.Render()
	lines := strings.Split(text, "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	if lines[0] != "1 — Item 01 — Active" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if lines[19] != "20 — Item 20 — Archived" {
		t.Fatalf("unexpected last line: %q", lines[19])
	}

	// 20 item rows plus one nav row.
	if len(kb) != 21 {
		t.Fatalf("expected 21 keyboard rows, got %d", len(kb))
	}
	for i := 0; i < 20; i++ {
		row := kb[i]
		if len(row) != 1 {
			t.Fatalf("item row %d has %d buttons", i, len(row))
		}
		if row[0].Text != fmt.Sprintf("%d", i+1) {
			t.Fatalf("item button %d labelled %q", i, row[0].Text)
		}
		tok, err := DecodeToken(row[0].Data)
		if err != nil {
			t.Fatalf("item button %d data: %v", i, err)
		}
		if tok.Action != ActionDetail || tok.Index != i || tok.Page != 1 {
			t.Fatalf("item button %d token: %+v", i, tok)
		}
	}

	nav := kb[20]
	if len(nav) != 1 || nav[0].Text != DefaultNextText {
		t.Fatalf("first page should offer next only, got %v", nav)
	}
	tok, err := DecodeToken(nav[0].Data)
	if err != nil || tok.Action != ActionNext {
		t.Fatalf("nav token: %+v err=%v", tok, err)
	}
}

func TestRenderLastPageNav(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(25), Fields: []string{"name"}})
	if handled, msg := w.HandleToken(Token{Action: ActionNext}); !handled || msg != MsgNextPage {
		t.Fatalf("next: handled=%v msg=%q", handled, msg)
	}

	text, kb := w.Render()
	if got := len(strings.Split(text, "\n")); got != 5 {
		t.Fatalf("expected 5 lines on last page, got %d", got)
	}
	nav := kb[len(kb)-1]
	if len(nav) != 1 || nav[0].Text != DefaultPrevText {
		t.Fatalf("last page should offer prev only, got %v", nav)
	}
}

func TestRenderMiddlePageHasBothNavButtons(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(25), Fields: []string{"name"}, PageSize: 10})
	w.HandleToken(Token{Action: ActionNext})
	if w.Page() != 2 || w.TotalPages() != 3 {
		t.Fatalf("expected page 2/3, got %d/%d", w.Page(), w.TotalPages())
	}

	_, kb := w.Render()
	nav := kb[len(kb)-1]
	if len(nav) != 2 || nav[0].Text != DefaultPrevText || nav[1].Text != DefaultNextText {
		t.Fatalf("middle page nav row: %v", nav)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(9), Fields: []string{"name", "city"}, PageSize: 4})
	text1, kb1 := w.Render()
	text2, kb2 := w.Render()
	if text1 != text2 {
		t.Fatalf("render changed text: %q vs %q", text1, text2)
	}
	if len(kb1) != len(kb2) {
		t.Fatalf("render changed keyboard: %d vs %d rows", len(kb1), len(kb2))
	}
	for i := range kb1 {
		for j := range kb1[i] {
			if kb1[i][j] != kb2[i][j] {
				t.Fatalf("button %d/%d differs: %+v vs %+v", i, j, kb1[i][j], kb2[i][j])
			}
		}
	}
	if w.Page() != 1 {
		t.Fatalf("render moved the page to %d", w.Page())
	}
}

func TestRenderEmptyDataset(t *testing.T) {
	w := newTestWidget(t, Options{Fields: []string{"name"}})
	text, kb := w.Render()
	if text != NoDataText {
		t.Fatalf("expected %q, got %q", NoDataText, text)
	}
	if len(kb) != 0 {
		t.Fatalf("expected empty keyboard, got %d rows", len(kb))
	}
	if w.TotalPages() != 1 || w.Page() != 1 {
		t.Fatalf("empty dataset should still report page 1/1, got %d/%d", w.Page(), w.TotalPages())
	}
}

func TestRenderMissingFieldShowsEmpty(t *testing.T) {
	w := newTestWidget(t, Options{
		Records: []Record{{"name": "solo"}},
		Fields:  []string{"name", "ghost"},
	})
	text, _ := w.Render()
	if text != "1 — solo — " {
		t.Fatalf("unexpected line for missing field: %q", text)
	}
}

func TestNavigationBoundaries(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(25), Fields: []string{"name"}})

	if handled, msg := w.HandleToken(Token{Action: ActionPrev}); handled || msg != MsgFirstPage {
		t.Fatalf("prev on first page: handled=%v msg=%q", handled, msg)
	}
	if w.Page() != 1 {
		t.Fatalf("failed prev moved page to %d", w.Page())
	}

	w.HandleToken(Token{Action: ActionNext})
	if handled, msg := w.HandleToken(Token{Action: ActionNext}); handled || msg != MsgLastPage {
		t.Fatalf("next on last page: handled=%v msg=%q", handled, msg)
	}
	if w.Page() != 2 {
		t.Fatalf("failed next moved page to %d", w.Page())
	}
}

func TestDetailSelection(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(25), Fields: []string{"name"}, PageSize: 10})
	w.HandleToken(Token{Action: ActionNext})

	handled, msg := w.HandleToken(Token{Action: ActionDetail, Index: 2, Page: 2})
	if !handled || msg != "Selected item 2" {
		t.Fatalf("detail: handled=%v msg=%q", handled, msg)
	}
	rec, ok := w.Selected()
	if !ok {
		t.Fatal("expected a selection")
	}
	// Index 2 on page 2 of size 10 is the 13th record.
	if rec["name"] != "Item 13" {
		t.Fatalf("selected %v", rec["name"])
	}
}

func TestDetailSelectionSurvivesNavigation(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(25), Fields: []string{"name"}, PageSize: 10})
	w.HandleToken(Token{Action: ActionDetail, Index: 0})
	w.HandleToken(Token{Action: ActionNext})
	rec, ok := w.Selected()
	if !ok || rec["name"] != "Item 01" {
		t.Fatalf("selection lost after navigation: %v ok=%v", rec, ok)
	}
	w.ClearSelection()
	if _, ok := w.Selected(); ok {
		t.Fatal("selection should be cleared")
	}
}

func TestDetailInvalidIndex(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(5), Fields: []string{"name"}})
	for _, idx := range []int{-1, 5, 100} {
		handled, msg := w.HandleToken(Token{Action: ActionDetail, Index: idx})
		if handled || msg != MsgInvalidIndex {
			t.Fatalf("index %d: handled=%v msg=%q", idx, handled, msg)
		}
	}
	if _, ok := w.Selected(); ok {
		t.Fatal("invalid index must not select")
	}
}

func TestHandleCallbackMalformed(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(5), Fields: []string{"name"}})
	for _, raw := range []string{"", "garbage", `{"action":`} {
		handled, msg := w.HandleCallback(raw)
		if handled || msg != MsgInvalidData {
			t.Fatalf("raw %q: handled=%v msg=%q", raw, handled, msg)
		}
	}
}

func TestHandleTokenUnknownAction(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(5), Fields: []string{"name"}})
	handled, msg := w.HandleToken(Token{Action: "teleport"})
	if handled || msg != MsgUnknownAction {
		t.Fatalf("handled=%v msg=%q", handled, msg)
	}
}

func TestSetFiltersResetsToFirstPage(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(25), Fields: []string{"name"}, PageSize: 10})
	w.HandleToken(Token{Action: ActionNext})
	if w.Page() != 2 {
		t.Fatalf("expected page 2, got %d", w.Page())
	}

	w.SetFilters(Filters{"status": "active"})
	if w.Page() != 1 {
		t.Fatalf("filters must reset to page 1, got %d", w.Page())
	}
	if w.FilteredLen() != 13 {
		t.Fatalf("expected 13 active records, got %d", w.FilteredLen())
	}
	for _, rec := range w.PageItems() {
		if rec["status"] != "Active" {
			t.Fatalf("filtered page leaked %v", rec)
		}
	}

	w.SetFilters(nil)
	if w.FilteredLen() != 25 || w.Page() != 1 {
		t.Fatalf("clearing filters: len=%d page=%d", w.FilteredLen(), w.Page())
	}
}

func TestSetFiltersNoMatches(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(10), Fields: []string{"name"}})
	w.SetFilters(Filters{"city": "Nowhere"})
	if w.FilteredLen() != 0 {
		t.Fatalf("expected zero matches, got %d", w.FilteredLen())
	}
	text, kb := w.Render()
	if text != NoDataText || len(kb) != 0 {
		t.Fatalf("zero matches should render sentinel with no buttons: %q / %d rows", text, len(kb))
	}
	if w.TotalPages() != 1 {
		t.Fatalf("total pages should stay at 1, got %d", w.TotalPages())
	}
}

func TestSetRecordsClampsPage(t *testing.T) {
	w := newTestWidget(t, Options{Records: sampleRecords(25), Fields: []string{"name"}, PageSize: 10})
	w.HandleToken(Token{Action: ActionNext})
	w.HandleToken(Token{Action: ActionNext})
	if w.Page() != 3 {
		t.Fatalf("expected page 3, got %d", w.Page())
	}

	w.SetRecords(sampleRecords(12))
	if w.Page() != 2 || w.TotalPages() != 2 {
		t.Fatalf("shrunk dataset should clamp to last page, got %d/%d", w.Page(), w.TotalPages())
	}

	w.SetRecords(nil)
	if w.Page() != 1 || w.TotalPages() != 1 {
		t.Fatalf("empty dataset should clamp to 1/1, got %d/%d", w.Page(), w.TotalPages())
	}
}

func TestCustomCodec(t *testing.T) {
	w := newTestWidget(t, Options{
		Records:     sampleRecords(25),
		Fields:      []string{"name"},
		PageSize:    10,
		Serialize:   EncodeCompact,
		Deserialize: DecodeCompact,
	})

	_, kb := w.Render()
	if kb[0][0].Data != "d|0|1" {
		t.Fatalf("compact item data: %q", kb[0][0].Data)
	}
	nav := kb[len(kb)-1]
	if nav[0].Data != "n" {
		t.Fatalf("compact nav data: %q", nav[0].Data)
	}

	if handled, msg := w.HandleCallback("n"); !handled || msg != MsgNextPage {
		t.Fatalf("compact next: handled=%v msg=%q", handled, msg)
	}
	if handled, _ := w.HandleCallback(`{"action":"next"}`); handled {
		t.Fatal("JSON payload must not be accepted by the compact codec")
	}
}

func TestCustomNavLabels(t *testing.T) {
	w := newTestWidget(t, Options{
		Records:  sampleRecords(25),
		Fields:   []string{"name"},
		PageSize: 10,
		PrevText: "Back",
		NextText: "More",
	})
	w.HandleToken(Token{Action: ActionNext})
	_, kb := w.Render()
	nav := kb[len(kb)-1]
	if nav[0].Text != "Back" || nav[1].Text != "More" {
		t.Fatalf("custom labels not applied: %v", nav)
	}
}

func TestWidgetDoesNotMutateCallerSlices(t *testing.T) {
	records := sampleRecords(5)
	fields := []string{"name"}
	w := newTestWidget(t, Options{Records: records, Fields: fields})

	records[0] = Record{"name": "swapped"}
	fields[0] = "swapped"

	text, _ := w.Render()
	if !strings.HasPrefix(text, "1 — Item 01") {
		t.Fatalf("widget saw caller-side mutation: %q", text)
	}
	if w.Fields()[0] != "name" {
		t.Fatalf("fields leaked: %v", w.Fields())
	}
}
