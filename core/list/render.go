package list

import (
	"strconv"
	"strings"
)

// NoDataText is rendered when the current page holds no records.
const NoDataText = "No data available."

// fieldSeparator joins the line number and field values on a display line.
const fieldSeparator = " — "

// Render produces the display text and the abstract button grid for the
// current page. Each visible record becomes one text line ("1 — Alice — ok")
// and one keyboard row holding its numbered detail button; a trailing
// navigation row appears only when there is somewhere to go. Rendering never
// mutates the widget, so repeated calls yield identical output.
func (w *Widget) Render() (string, Keyboard) {
	lines := make([]string, 0, len(w.pageItems))
	kb := make(Keyboard, 0, len(w.pageItems)+1)
	for i, rec := range w.pageItems {
		parts := make([]string, 0, len(w.fields)+1)
		parts = append(parts, strconv.Itoa(i+1))
		for _, field := range w.fields {
			parts = append(parts, stringifyValue(rec[field]))
		}
		lines = append(lines, strings.Join(parts, fieldSeparator))
		kb = append(kb, []Button{{
			Text: strconv.Itoa(i + 1),
			Data: w.serialize(Token{Action: ActionDetail, Index: i, Page: w.page}),
		}})
	}

	text := strings.Join(lines, "\n")
	if text == "" {
		text = NoDataText
	}

	var nav []Button
	if w.page > 1 {
		nav = append(nav, Button{Text: w.prevText, Data: w.serialize(Token{Action: ActionPrev})})
	}
	if w.page < w.total {
		nav = append(nav, Button{Text: w.nextText, Data: w.serialize(Token{Action: ActionNext})})
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}
	return text, kb
}
