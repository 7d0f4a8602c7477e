package llm

import (
	"context"
	"time"

	"podcaster/internal/logger"
	"podcaster/internal/metrics"
)

// TracedClient wraps a Completer with structured logging and metrics
type TracedClient struct {
	client  Completer
	metrics *metrics.Metrics
}

// NewTracedClient creates a traced completer. m may be nil.
func NewTracedClient(client Completer, m *metrics.Metrics) *TracedClient {
	return &TracedClient{client: client, metrics: m}
}

// GetUnderlyingClient returns the wrapped completer
func (tc *TracedClient) GetUnderlyingClient() Completer {
	return tc.client
}

// GetName returns the wrapped provider name
func (tc *TracedClient) GetName() string {
	return tc.client.GetName()
}

// Complete generates text and records latency and estimated token usage
func (tc *TracedClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	startTime := time.Now()
	result, err := tc.client.Complete(ctx, prompt, opts)
	latency := time.Since(startTime)

	provider := tc.client.GetName()
	if err != nil {
		tc.metrics.LLMCall(provider, "error", 0)
		logger.Warn("LLM call failed", "provider", provider, "latency_ms", latency.Milliseconds(), "error", err.Error())
		return "", err
	}

	tokens := estimateTokens(prompt, result)
	tc.metrics.LLMCall(provider, "ok", tokens)
	logger.Debug("LLM call completed",
		"provider", provider,
		"max_tokens", opts.MaxTokens,
		"estimated_tokens", tokens,
		"latency_ms", latency.Milliseconds())
	return result, nil
}

// estimateTokens provides a rough estimate of token count
// This is a simple approximation: ~4 characters per token for English text
func estimateTokens(prompt, completion string) int {
	return (len(prompt) + len(completion)) / 4
}
