package provider

import (
	"context"
	"sync"

	"github.com/ZaguanLabs/codeshift"
)

// MockProvider is a mock model backend for testing.
type MockProvider struct {
	mu sync.Mutex

	Responses map[codeshift.Language]string // Response per target language
	Default   string                        // Response when the target has no entry
	Err       error                         // Returned instead of a response when set
	Models    []codeshift.ModelInfo         // Returned by ListModels

	callCount   int
	lastRequest *ModelRequest
}

// NewMockProvider creates a new mock provider with a response per rule-table target.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Responses: map[codeshift.Language]string{
			codeshift.Java:       "// Converted to Java using Ollama AI\n\npublic class Converted {}",
			codeshift.CSharp:     "// Converted to C# using Ollama AI\n\npublic class Converted {}",
			codeshift.Python:     "# Converted to Python using Ollama AI\n\nclass Converted:\n    pass",
			codeshift.TypeScript: "// Converted to TypeScript using Ollama AI\n\nclass Converted {}",
		},
		Default: "// Converted using Ollama AI\n\nconverted()",
		Models:  []codeshift.ModelInfo{{Name: codeshift.DefaultModel}},
	}
}

// TranslateCode returns the configured response for req.To.
func (m *MockProvider) TranslateCode(ctx context.Context, req ModelRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.lastRequest = &req

	if m.Err != nil {
		return "", m.Err
	}
	if out, ok := m.Responses[req.To]; ok {
		return out, nil
	}
	return m.Default, nil
}

// ListModels returns the configured model list.
func (m *MockProvider) ListModels(ctx context.Context, baseURL string) ([]codeshift.ModelInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Models, nil
}

// Ping returns the configured error.
func (m *MockProvider) Ping(ctx context.Context, baseURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

// SetErr changes the error returned by every call.
func (m *MockProvider) SetErr(err error) {
	m.mu.Lock()
	m.Err = err
	m.mu.Unlock()
}

// CallCount returns the number of TranslateCode calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the last request received, or nil.
func (m *MockProvider) LastRequest() *ModelRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

// Verify MockProvider implements the model interfaces
var (
	_ ModelTranslator = (*MockProvider)(nil)
	_ ModelLister     = (*MockProvider)(nil)
)
