// Package session tracks live list widgets per conversation. A widget is a
// single-writer state machine, so the manager also provides the per-chat
// serialization that concurrent callback handling needs.
package session

import (
	"errors"

	"github.com/m3rciful/pagekit/core/list"
)

// ErrNoWidget is returned by Do when the chat has no active widget.
var ErrNoWidget = errors.New("session: no active widget for chat")

// Manager owns the widget instances of active conversations. Implementations
// must be safe for concurrent use. Do runs the callback while holding the
// chat's lock, so all widget access in handlers should go through it.
type Manager interface {
	Get(chatID int64) (*list.Widget, bool)
	Put(chatID int64, w *list.Widget)
	Delete(chatID int64)
	Len() int
	Do(chatID int64, fn func(w *list.Widget) error) error
}
