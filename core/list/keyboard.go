package list

// Button is one inline button of the abstract grid: a visible label plus the
// serialized token delivered back when the button is pressed.
type Button struct {
	Text string
	Data string
}

// Keyboard is an ordered grid of buttons, outer slice per row. Adapters map
// it onto their platform's inline-keyboard type.
type Keyboard [][]Button

// MarkupRenderer converts the abstract keyboard into a platform-specific
// markup value. Each SDK adapter implements it once; the core never branches
// on platform identity.
type MarkupRenderer[M any] interface {
	Markup(kb Keyboard) M
}

// RenderTo renders the widget and converts its keyboard for one platform.
func RenderTo[M any](w *Widget, r MarkupRenderer[M]) (string, M) {
	text, kb := w.Render()
	return text, r.Markup(kb)
}
