package codeshift

import (
	"fmt"
	"testing"
)

func TestHistory_Append(t *testing.T) {
	h := NewHistory()
	h.Append(HistoryEntry{ID: "1"})
	h.Append(HistoryEntry{ID: "2"})

	if h.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", h.Len())
	}
}

func TestHistory_TrimOnOverflow(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 101; i++ {
		h.Append(HistoryEntry{ID: fmt.Sprintf("%d", i)})
	}

	if h.Len() != TrimmedHistoryEntries {
		t.Fatalf("Expected %d entries after overflow, got %d", TrimmedHistoryEntries, h.Len())
	}

	entries := h.Recent(0)
	if entries[0].ID != "51" {
		t.Errorf("Expected oldest kept entry 51, got %s", entries[0].ID)
	}
	if entries[len(entries)-1].ID != "100" {
		t.Errorf("Expected newest entry 100, got %s", entries[len(entries)-1].ID)
	}
}

func TestHistory_AtLimitNotTrimmed(t *testing.T) {
	h := NewHistory()
	for i := 0; i < MaxHistoryEntries; i++ {
		h.Append(HistoryEntry{})
	}
	if h.Len() != MaxHistoryEntries {
		t.Errorf("Expected %d entries, got %d", MaxHistoryEntries, h.Len())
	}
}

func TestHistory_Recent(t *testing.T) {
	h := NewHistory()
	for i := 0; i < 30; i++ {
		h.Append(HistoryEntry{ID: fmt.Sprintf("%d", i)})
	}

	recent := h.Recent(PersistedHistoryEntries)
	if len(recent) != PersistedHistoryEntries {
		t.Fatalf("Expected %d entries, got %d", PersistedHistoryEntries, len(recent))
	}
	if recent[0].ID != "10" || recent[19].ID != "29" {
		t.Errorf("Unexpected window: %s..%s", recent[0].ID, recent[19].ID)
	}

	// Returned slice is a copy
	recent[0].ID = "mutated"
	if h.Recent(PersistedHistoryEntries)[0].ID != "10" {
		t.Error("Recent should return a copy")
	}

	if got := len(h.Recent(100)); got != 30 {
		t.Errorf("Expected all 30 entries, got %d", got)
	}
}

func TestHistory_RestoreAndClear(t *testing.T) {
	h := NewHistory()
	h.Restore([]HistoryEntry{{ID: "a"}, {ID: "b"}})

	if h.Len() != 2 {
		t.Errorf("Expected 2 entries after restore, got %d", h.Len())
	}

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Expected empty history after clear, got %d", h.Len())
	}
}
