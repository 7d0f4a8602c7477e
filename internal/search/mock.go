package search

import (
	"context"

	"podcaster/internal/core"
)

// MockProvider implements Provider with canned results for dry runs and tests
type MockProvider struct {
	name    string
	results []core.SearchHit
	err     error
	calls   int
}

// NewMockProvider creates a new mock search provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "Mock",
		results: []core.SearchHit{
			core.NewSearchHit("Example Article One", "https://example.com/article1", "This is a mock search result for testing purposes."),
			core.NewSearchHit("Test Article Two", "https://test.org/article2", "Another mock search result with different content."),
			core.NewSearchHit("Demo Article Three", "https://demo.net/article3", "Third mock result to simulate multiple search results."),
		},
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// Search returns the configured results, limited to config.MaxResults
func (m *MockProvider) Search(ctx context.Context, query string, config Config) ([]core.SearchHit, error) {
	m.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	maxResults := config.MaxResults
	if maxResults <= 0 || maxResults > len(m.results) {
		maxResults = len(m.results)
	}
	results := make([]core.SearchHit, maxResults)
	copy(results, m.results[:maxResults])
	return results, nil
}

// SetResults allows customization of mock results for testing
func (m *MockProvider) SetResults(results []core.SearchHit) {
	m.results = results
}

// SetError makes every subsequent search fail with err
func (m *MockProvider) SetError(err error) {
	m.err = err
}

// SetName allows customization of provider name for testing
func (m *MockProvider) SetName(name string) {
	m.name = name
}

// Calls returns how many times Search was invoked
func (m *MockProvider) Calls() int {
	return m.calls
}
