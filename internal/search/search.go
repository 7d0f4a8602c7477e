package search

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"podcaster/internal/core"
)

// Provider defines the interface implemented by every web search backend
type Provider interface {
	// Search performs a search with configuration
	Search(ctx context.Context, query string, config Config) ([]core.SearchHit, error)

	// GetName returns the name of the search provider
	GetName() string
}

// Config holds configuration for search requests
type Config struct {
	MaxResults int           // Maximum number of results to return
	SinceTime  time.Duration // Only return results newer than this duration
	Region     string        // Region/language preference (e.g. "us-en")
}

// ProviderType represents the type of search provider
type ProviderType string

const (
	ProviderTypeDuckDuckGo ProviderType = "duckduckgo"
	ProviderTypeGoogle     ProviderType = "google"
	ProviderTypeSerpAPI    ProviderType = "serpapi"
	ProviderTypeMock       ProviderType = "mock"
)

// ProviderFactory creates search providers based on type and configuration
type ProviderFactory struct{}

// NewProviderFactory creates a new provider factory
func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

// CreateProvider creates a search provider of the specified type. Recognised
// config keys are api_key, search_id and base_url.
func (f *ProviderFactory) CreateProvider(providerType ProviderType, config map[string]string) (Provider, error) {
	switch providerType {
	case ProviderTypeDuckDuckGo:
		p := NewDuckDuckGoProvider()
		if base := config["base_url"]; base != "" {
			p.baseURL = base
		}
		return p, nil
	case ProviderTypeGoogle:
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		searchID := config["search_id"]
		if searchID == "" {
			return nil, ErrMissingSearchID
		}
		return NewGoogleProvider(apiKey, searchID), nil
	case ProviderTypeSerpAPI:
		apiKey := config["api_key"]
		if apiKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewSerpAPIProvider(apiKey), nil
	case ProviderTypeMock:
		return NewMockProvider(), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}

// GetAvailableProviders returns a list of available provider types
func (f *ProviderFactory) GetAvailableProviders() []ProviderType {
	return []ProviderType{
		ProviderTypeDuckDuckGo,
		ProviderTypeGoogle,
		ProviderTypeSerpAPI,
		ProviderTypeMock,
	}
}

// rateLimiter spaces calls to a provider at least interval apart.
type rateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	lastCall time.Time
}

// wait blocks until the next call is allowed or ctx is done.
func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if elapsed := time.Since(r.lastCall); !r.lastCall.IsZero() && elapsed < r.interval {
		timer := time.NewTimer(r.interval - elapsed)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.lastCall = time.Now()
	return nil
}

// extractDomain extracts the domain name from a URL
func extractDomain(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
