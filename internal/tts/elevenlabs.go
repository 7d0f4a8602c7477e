package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	elevenLabsDefaultURL   = "https://api.elevenlabs.io/v1"
	elevenLabsDefaultVoice = "21m00Tcm4TlvDq8ikWAM" // Rachel
)

// ElevenLabsTTSRequest represents ElevenLabs TTS request
type ElevenLabsTTSRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings ElevenLabsVoiceSettings `json:"voice_settings"`
}

// ElevenLabsVoiceSettings represents voice settings for ElevenLabs
type ElevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style,omitempty"`
	UseSpeakerBoost bool    `json:"use_speaker_boost,omitempty"`
}

// ElevenLabsSpeaker synthesizes speech with the ElevenLabs REST API
type ElevenLabsSpeaker struct {
	apiKey  string
	baseURL string
	voiceID string
	client  *http.Client
}

// NewElevenLabsSpeaker creates an ElevenLabsSpeaker
func NewElevenLabsSpeaker(config *TTSConfig) *ElevenLabsSpeaker {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = elevenLabsDefaultURL
	}
	voiceID := config.Voice.ID
	if voiceID == "" {
		voiceID = elevenLabsDefaultVoice
	}
	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &ElevenLabsSpeaker{
		apiKey:  config.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		voiceID: voiceID,
		client:  client,
	}
}

// GetName returns the provider name
func (e *ElevenLabsSpeaker) GetName() string {
	return string(ProviderElevenLabs)
}

// Synthesize returns MP3 audio for text
func (e *ElevenLabsSpeaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	requestData := ElevenLabsTTSRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: ElevenLabsVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ElevenLabs API error %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio body", ErrMalformedResponse)
	}
	return audio, nil
}
