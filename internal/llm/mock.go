package llm

import (
	"context"
	"strings"
	"sync"
)

// MockCompleter answers prompts from canned responses. A response is chosen
// by the first registered marker contained in the prompt.
type MockCompleter struct {
	mu        sync.Mutex
	responses []mockResponse
	fallback  string
	prompts   []string
	options   []Options
}

type mockResponse struct {
	marker string
	text   string
	err    error
}

// NewMockCompleter creates a mock completer with a generic fallback answer
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{fallback: "This is a mock response."}
}

// GetName returns the provider name
func (m *MockCompleter) GetName() string {
	return string(ProviderMock)
}

// On registers text as the answer for prompts containing marker
func (m *MockCompleter) On(marker, text string) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{marker: marker, text: text})
	return m
}

// FailOn makes prompts containing marker fail with err
func (m *MockCompleter) FailOn(marker string, err error) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, mockResponse{marker: marker, err: err})
	return m
}

// Prompts returns every prompt received so far
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Options returns the options of every call so far
func (m *MockCompleter) Options() []Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Options(nil), m.options...)
}

// Complete returns the canned response for prompt
func (m *MockCompleter) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkPrompt(prompt); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.options = append(m.options, opts)
	for _, r := range m.responses {
		if strings.Contains(prompt, r.marker) {
			return r.text, r.err
		}
	}
	return m.fallback, nil
}
