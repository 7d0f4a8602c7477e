// Package llm wraps the chat/completion providers used to analyse intent and
// write research summaries and scripts.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultGeminiModel is the default Gemini model.
	DefaultGeminiModel = "gemini-flash-lite-latest"
	// DefaultOpenAIModel is the default OpenAI chat model.
	DefaultOpenAIModel = "gpt-4o-mini"
)

var (
	// ErrMissingAPIKey is returned when a provider that needs a key has none
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrUnsupportedProvider is returned for unknown provider names
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")

	// ErrEmptyPrompt is returned when Complete is called without a prompt
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrEmptyResponse is returned when a provider answers with no text
	ErrEmptyResponse = errors.New("empty response from LLM")
)

// ProviderType names a completion backend
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOpenAI ProviderType = "openai"
	ProviderMock   ProviderType = "mock"
)

// Options contains options for one completion call
type Options struct {
	MaxTokens   int     // Maximum number of tokens to generate
	Temperature float32 // Sampling temperature; zero keeps the provider default
}

// Completer turns a prompt into generated text
type Completer interface {
	Complete(ctx context.Context, prompt string, opts Options) (string, error)
	GetName() string
}

// Config selects and configures a Completer
type Config struct {
	Provider   ProviderType
	APIKey     string
	Model      string
	BaseURL    string // overrides the provider endpoint
	HTTPClient *http.Client
}

// NewCompleter creates the Completer named by cfg.Provider
func NewCompleter(ctx context.Context, cfg Config) (Completer, error) {
	switch ProviderType(strings.ToLower(string(cfg.Provider))) {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case ProviderOpenAI:
		return NewOpenAIClient(cfg)
	case ProviderMock:
		return NewMockCompleter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// GetAvailableProviders returns the supported provider names
func GetAvailableProviders() []string {
	return []string{string(ProviderGemini), string(ProviderOpenAI), string(ProviderMock)}
}

func checkPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}
