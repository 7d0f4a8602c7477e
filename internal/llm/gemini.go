package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient completes prompts with the Gemini API
type GeminiClient struct {
	modelName string
	gClient   *genai.Client
}

// NewGeminiClient creates a Gemini-backed Completer
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY or llm.gemini.api_key)", ErrMissingAPIKey)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gClient, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{modelName: modelName, gClient: gClient}, nil
}

// GetName returns the provider name
func (c *GeminiClient) GetName() string {
	return string(ProviderGemini)
}

// GetModelName returns the model used for completions
func (c *GeminiClient) GetModelName() string {
	return c.modelName
}

// Complete generates text for prompt
func (c *GeminiClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := checkPrompt(prompt); err != nil {
		return "", err
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	var config *genai.GenerateContentConfig
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		config = &genai.GenerateContentConfig{}
		if opts.MaxTokens > 0 {
			config.MaxOutputTokens = int32(opts.MaxTokens)
		}
		if opts.Temperature > 0 {
			temp := opts.Temperature
			config.Temperature = &temp
		}
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
