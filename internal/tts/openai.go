package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

const openAIDefaultVoice = "alloy"

// OpenAISpeaker synthesizes speech with the OpenAI audio API
type OpenAISpeaker struct {
	client *openai.Client
	voice  openai.SpeechVoice
	speed  float64
}

// NewOpenAISpeaker creates an OpenAISpeaker
func NewOpenAISpeaker(config *TTSConfig) *OpenAISpeaker {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}

	voice := config.Voice.ID
	if voice == "" {
		voice = openAIDefaultVoice
	}

	return &OpenAISpeaker{
		client: openai.NewClientWithConfig(clientConfig),
		voice:  openai.SpeechVoice(voice),
		speed:  config.Speed,
	}
}

// GetName returns the provider name
func (o *OpenAISpeaker) GetName() string {
	return string(ProviderOpenAI)
}

// Synthesize returns MP3 audio for text
func (o *OpenAISpeaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          o.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          o.speed,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI speech request failed: %w", err)
	}
	defer func() { _ = resp.Close() }()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio body", ErrMalformedResponse)
	}
	return audio, nil
}
