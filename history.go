package codeshift

// History bounds.
const (
	// MaxHistoryEntries is the size at which history is trimmed.
	MaxHistoryEntries = 100
	// TrimmedHistoryEntries is how many of the most recent entries survive a trim.
	TrimmedHistoryEntries = 50
	// PersistedHistoryEntries is how many recent entries are written to the state store.
	PersistedHistoryEntries = 20
)

// History is a bounded, append-only log of model corrections.
// Once it grows past MaxHistoryEntries it keeps only the
// TrimmedHistoryEntries most recent entries.
//
// It is not safe for concurrent use; the Engine serializes access.
type History struct {
	entries []HistoryEntry
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds an entry, trimming older entries on overflow.
func (h *History) Append(e HistoryEntry) {
	h.entries = append(h.entries, e)
	if len(h.entries) > MaxHistoryEntries {
		kept := make([]HistoryEntry, TrimmedHistoryEntries)
		copy(kept, h.entries[len(h.entries)-TrimmedHistoryEntries:])
		h.entries = kept
	}
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Recent returns up to n of the most recent entries, oldest first.
// n <= 0 returns all entries.
func (h *History) Recent(n int) []HistoryEntry {
	start := 0
	if n > 0 && len(h.entries) > n {
		start = len(h.entries) - n
	}
	out := make([]HistoryEntry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// Restore replaces the history with persisted entries.
func (h *History) Restore(entries []HistoryEntry) {
	h.entries = nil
	for _, e := range entries {
		h.Append(e)
	}
}

// Clear removes all entries.
func (h *History) Clear() {
	h.entries = nil
}
