package codeshift

import (
	"context"
	"sync"
	"sync/atomic"
)

// stubRules returns a fixed result for every pair.
type stubRules struct {
	out   string
	calls atomic.Int32
}

func (r *stubRules) Translate(code string, from, to Language) string {
	r.calls.Add(1)
	if r.out == "" {
		return "rule:" + code
	}
	return r.out
}

// stubModel is a scriptable ModelTranslator.
type stubModel struct {
	mu       sync.Mutex
	response string
	err      error
	failures int // leading calls that fail with err
	calls    int
	last     ModelRequest
	block    chan struct{} // when set, calls wait for it to close
	models   []ModelInfo
}

func (m *stubModel) TranslateCode(ctx context.Context, req ModelRequest) (string, error) {
	m.mu.Lock()
	m.calls++
	m.last = req
	n := m.calls
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", &ModelUnavailableError{Message: "timeout", Cause: ctx.Err()}
		}
	}
	if m.err != nil && (m.failures == 0 || n <= m.failures) {
		return "", m.err
	}
	return m.response, nil
}

func (m *stubModel) ListModels(ctx context.Context, baseURL string) ([]ModelInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.models, nil
}

func (m *stubModel) Ping(ctx context.Context, baseURL string) error {
	return m.err
}

func (m *stubModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// memStore is an in-memory StateStore that can fail on demand.
type memStore struct {
	mu       sync.Mutex
	snap     *Snapshot
	saves    int
	failures int // leading Save calls that fail
	err      error
	loadErr  error // returned by every Load
}

func (s *memStore) Load(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.snap, nil
}

func (s *memStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.err != nil && s.saves <= s.failures {
		return s.err
	}
	s.snap = snap
	return nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
	return nil
}

func (s *memStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
