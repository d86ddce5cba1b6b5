package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ZaguanLabs/codeshift"
)

// DefaultFileName is the state file name used when only a directory is known.
const DefaultFileName = "codeshift-state.json"

// FileStore keeps the snapshot in a JSON file. Saves write a temporary file
// next to the target and rename it into place.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file store writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the state file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file is not an error.
func (s *FileStore) Load(ctx context.Context) (*codeshift.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &codeshift.StoreError{Message: fmt.Sprintf("reading %s", s.path), Cause: err}
	}
	if len(data) == 0 {
		return nil, nil
	}
	return decode(data)
}

// Save writes the snapshot atomically.
func (s *FileStore) Save(ctx context.Context, snap *codeshift.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &codeshift.StoreError{Message: fmt.Sprintf("creating %s", dir), Cause: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &codeshift.StoreError{Message: "creating temp file", Cause: err, Retryable: true}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &codeshift.StoreError{Message: fmt.Sprintf("writing %s", tmpName), Cause: err, Retryable: true}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &codeshift.StoreError{Message: fmt.Sprintf("closing %s", tmpName), Cause: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return &codeshift.StoreError{Message: fmt.Sprintf("replacing %s", s.path), Cause: err}
	}
	return nil
}

// Clear removes the state file.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return &codeshift.StoreError{Message: fmt.Sprintf("removing %s", s.path), Cause: err}
	}
	return nil
}

// Verify FileStore implements codeshift.StateStore
var _ codeshift.StateStore = (*FileStore)(nil)
