package list

import (
	"errors"
	"fmt"
)

// MaxFields caps how many record fields a widget may display.
const MaxFields = 10

// DefaultPageSize is used when Options.PageSize is zero or negative.
const DefaultPageSize = 20

// Navigation button labels used when Options leave them empty.
const (
	DefaultPrevText = "«"
	DefaultNextText = "»"
)

// Result messages returned by HandleToken and HandleCallback. Adapters may
// surface them to the end user as callback answers.
const (
	MsgNextPage      = "Next page"
	MsgPrevPage      = "Previous page"
	MsgLastPage      = "Already on last page"
	MsgFirstPage     = "Already on first page"
	MsgInvalidData   = "Invalid callback data"
	MsgInvalidIndex  = "Invalid item index"
	MsgUnknownAction = "Unknown action"
)

// ErrTooManyFields is returned by New when more than MaxFields display fields
// are configured.
var ErrTooManyFields = errors.New("list: too many display fields")

// Options configures a Widget. Records and Fields are the usual inputs;
// everything else has working defaults.
type Options struct {
	// Records is the full dataset in display order. The slice is copied, the
	// record maps themselves are shared and never mutated by the widget.
	Records []Record
	// Fields names the record fields to display, at most MaxFields.
	Fields []string
	// PageSize is the number of records per page, DefaultPageSize when <= 0.
	PageSize int
	// Filters is the initial filter set, may be nil.
	Filters Filters
	// Serialize overrides token encoding, EncodeToken when nil.
	Serialize func(Token) string
	// Deserialize overrides token decoding, DecodeToken when nil.
	Deserialize func(string) (Token, error)
	// PrevText and NextText override the navigation button labels.
	PrevText string
	NextText string
}

// Widget is the paged-list controller. It owns the dataset, the active
// filters, the current page and the last selection, and turns callback
// tokens into state transitions. A Widget is not safe for concurrent use;
// callers serialize access per conversation (see the session package).
type Widget struct {
	records  []Record
	fields   []string
	pageSize int
	filters  Filters
	page     int

	serialize   func(Token) string
	deserialize func(string) (Token, error)
	prevText    string
	nextText    string

	filtered     []Record
	pageItems    []Record
	total        int
	selected     Record
	hasSelection bool
}

// New builds a widget positioned on the first page of the filtered dataset.
func New(opts Options) (*Widget, error) {
	if len(opts.Fields) > MaxFields {
		return nil, fmt.Errorf("list: %d display fields exceed the limit of %d: %w",
			len(opts.Fields), MaxFields, ErrTooManyFields)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	w := &Widget{
		records:     append([]Record(nil), opts.Records...),
		fields:      append([]string(nil), opts.Fields...),
		pageSize:    pageSize,
		filters:     copyFilters(opts.Filters),
		page:        1,
		serialize:   opts.Serialize,
		deserialize: opts.Deserialize,
		prevText:    opts.PrevText,
		nextText:    opts.NextText,
	}
	if w.serialize == nil {
		w.serialize = EncodeToken
	}
	if w.deserialize == nil {
		w.deserialize = DecodeToken
	}
	if w.prevText == "" {
		w.prevText = DefaultPrevText
	}
	if w.nextText == "" {
		w.nextText = DefaultNextText
	}
	w.recompute()
	return w, nil
}

// SetFilters replaces the active filter set and returns to the first page.
// The previous selection is kept until the next detail token.
func (w *Widget) SetFilters(filters Filters) {
	w.filters = copyFilters(filters)
	w.page = 1
	w.recompute()
}

// SetRecords replaces the dataset, keeping filters and staying on the
// current page where possible. When the new dataset has fewer pages the
// widget clamps to the last one, so live refreshes never strand the view.
func (w *Widget) SetRecords(records []Record) {
	w.records = append([]Record(nil), records...)
	w.recompute()
}

// NextPage advances one page when possible and reports whether it moved.
func (w *Widget) NextPage() bool {
	if w.page >= w.total {
		return false
	}
	w.page++
	w.recompute()
	return true
}

// PrevPage moves one page back when possible and reports whether it moved.
func (w *Widget) PrevPage() bool {
	if w.page <= 1 {
		return false
	}
	w.page--
	w.recompute()
	return true
}

// HandleCallback decodes a raw serialized token and applies it. Malformed
// payloads report (false, MsgInvalidData) instead of an error so a stray
// button press never takes the conversation down.
func (w *Widget) HandleCallback(raw string) (bool, string) {
	tok, err := w.deserialize(raw)
	if err != nil {
		return false, MsgInvalidData
	}
	return w.HandleToken(tok)
}

// HandleToken applies a structured token to the widget and returns whether
// the state changed along with a user-facing status message.
func (w *Widget) HandleToken(tok Token) (bool, string) {
	switch tok.Action {
	case ActionNext:
		if w.NextPage() {
			return true, MsgNextPage
		}
		return false, MsgLastPage
	case ActionPrev:
		if w.PrevPage() {
			return true, MsgPrevPage
		}
		return false, MsgFirstPage
	case ActionDetail:
		if tok.Index < 0 || tok.Index >= len(w.pageItems) {
			return false, MsgInvalidIndex
		}
		w.selected = w.pageItems[tok.Index]
		w.hasSelection = true
		return true, fmt.Sprintf("Selected item %d", tok.Index)
	}
	return false, MsgUnknownAction
}

// Page returns the current 1-based page number.
func (w *Widget) Page() int { return w.page }

// TotalPages returns the page count for the filtered dataset, at least one.
func (w *Widget) TotalPages() int { return w.total }

// PageSize returns the configured records-per-page limit.
func (w *Widget) PageSize() int { return w.pageSize }

// FilteredLen returns how many records match the active filters.
func (w *Widget) FilteredLen() int { return len(w.filtered) }

// Fields returns a copy of the configured display fields.
func (w *Widget) Fields() []string { return append([]string(nil), w.fields...) }

// Filters returns a copy of the active filter set.
func (w *Widget) Filters() Filters { return copyFilters(w.filters) }

// PageItems returns the records visible on the current page.
func (w *Widget) PageItems() []Record { return append([]Record(nil), w.pageItems...) }

// Selected returns the record chosen by the last detail token, if any.
func (w *Widget) Selected() (Record, bool) { return w.selected, w.hasSelection }

// ClearSelection forgets the last detail selection.
func (w *Widget) ClearSelection() {
	w.selected = nil
	w.hasSelection = false
}

// recompute refreshes the filtered view and the current page slice, clamping
// the page into [1, TotalPages]. It must run after every mutation that
// affects records, filters or page.
func (w *Widget) recompute() {
	w.filtered = ApplyFilters(w.records, w.filters)
	total := totalPages(len(w.filtered), w.pageSize)
	if w.page > total {
		w.page = total
	}
	if w.page < 1 {
		w.page = 1
	}
	w.pageItems, w.total = Paginate(w.filtered, w.page, w.pageSize)
}

func copyFilters(f Filters) Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
