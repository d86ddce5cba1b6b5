package store

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/codeshift"
)

// MemoryStore keeps the encoded snapshot in memory. It is used when
// persistence is disabled and in tests.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the last saved snapshot, or returns nil when none was saved.
func (s *MemoryStore) Load(ctx context.Context) (*codeshift.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return nil, nil
	}
	return decode(s.data)
}

// Save stores an encoded copy so later mutations of snap are not observed.
func (s *MemoryStore) Save(ctx context.Context, snap *codeshift.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Clear drops the saved snapshot.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	return nil
}

// Verify MemoryStore implements codeshift.StateStore
var _ codeshift.StateStore = (*MemoryStore)(nil)
