package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIClient completes prompts with the OpenAI chat completions API
type OpenAIClient struct {
	modelName string
	client    *openai.Client
}

// NewOpenAIClient creates an OpenAI-backed Completer
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w (set OPENAI_API_KEY or llm.openai.api_key)", ErrMissingAPIKey)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}

	return &OpenAIClient{
		modelName: modelName,
		client:    openai.NewClientWithConfig(clientConfig),
	}, nil
}

// GetName returns the provider name
func (c *OpenAIClient) GetName() string {
	return string(ProviderOpenAI)
}

// GetModelName returns the model used for completions
func (c *OpenAIClient) GetModelName() string {
	return c.modelName
}

// Complete sends prompt as a single user message
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	if err := checkPrompt(prompt); err != nil {
		return "", err
	}

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxCompletionTokens: opts.MaxTokens,
		Temperature:         opts.Temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
