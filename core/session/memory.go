package session

import (
	"sync"

	"github.com/m3rciful/pagekit/core/list"
)

type chatEntry struct {
	mu     sync.Mutex
	widget *list.Widget
}

type memoryManager struct {
	mu      sync.RWMutex
	entries map[int64]*chatEntry
}

// NewMemoryManager constructs an in-memory Manager implementation. It is the
// default choice for long-polling bots where widget state can live with the
// process.
func NewMemoryManager() Manager {
	return &memoryManager{entries: make(map[int64]*chatEntry)}
}

// Get returns the widget for a chat if one is active.
func (m *memoryManager) Get(chatID int64) (*list.Widget, bool) {
	e := m.entry(chatID)
	if e == nil {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.widget == nil {
		return nil, false
	}
	return e.widget, true
}

// Put installs the widget for a chat, replacing any previous one.
func (m *memoryManager) Put(chatID int64, w *list.Widget) {
	m.mu.Lock()
	e, ok := m.entries[chatID]
	if !ok {
		e = &chatEntry{}
		m.entries[chatID] = e
	}
	m.mu.Unlock()

	e.mu.Lock()
	e.widget = w
	e.mu.Unlock()
}

// Delete forgets the chat's widget. A handler already inside Do for the same
// chat finishes against the old widget.
func (m *memoryManager) Delete(chatID int64) {
	m.mu.Lock()
	delete(m.entries, chatID)
	m.mu.Unlock()
}

// Len reports how many chats currently hold a widget.
func (m *memoryManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		e.mu.Lock()
		if e.widget != nil {
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Do runs fn with the chat's widget while holding the chat lock, so two
// callback presses in the same conversation never interleave.
func (m *memoryManager) Do(chatID int64, fn func(w *list.Widget) error) error {
	e := m.entry(chatID)
	if e == nil {
		return ErrNoWidget
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.widget == nil {
		return ErrNoWidget
	}
	return fn(e.widget)
}

func (m *memoryManager) entry(chatID int64) *chatEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries[chatID]
}
