package repository

import "sync"

// DefaultHistoryMax is the number of entries a history log keeps.
const DefaultHistoryMax = 50

// HistoryEntry is anything with a stable identifier.
type HistoryEntry interface {
	EntryID() string
}

// HistoryLog is a capped append-only log. When full, the oldest entry is dropped.
type HistoryLog[T HistoryEntry] struct {
	mu      sync.Mutex
	entries []T
	max     int
}

func NewHistoryLog[T HistoryEntry](max int) *HistoryLog[T] {
	if max <= 0 {
		max = DefaultHistoryMax
	}
	return &HistoryLog[T]{max: max}
}

func (l *HistoryLog[T]) Append(entry T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	if over := len(l.entries) - l.max; over > 0 {
		l.entries = append([]T(nil), l.entries[over:]...)
	}
}

// List returns a copy of the log, newest first.
func (l *HistoryLog[T]) List() []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]T, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

func (l *HistoryLog[T]) Get(id string) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if e.EntryID() == id {
			return e, true
		}
	}
	var zero T
	return zero, false
}

func (l *HistoryLog[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
