package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

const (
	humeDefaultURL   = "https://api.hume.ai/v0/tts"
	humeDefaultVoice = "Ava Song"
)

type humeVoice struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider"`
}

type humeUtterance struct {
	Text  string    `json:"text"`
	Voice humeVoice `json:"voice"`
	Speed float64   `json:"speed,omitempty"`
}

type humeFormat struct {
	Type string `json:"type"`
}

type humeRequest struct {
	Utterances     []humeUtterance `json:"utterances"`
	Format         humeFormat      `json:"format"`
	NumGenerations int             `json:"num_generations"`
}

type humeResponse struct {
	Generations []struct {
		GenerationID string `json:"generation_id"`
		Audio        string `json:"audio"`
	} `json:"generations"`
	RequestID string `json:"request_id"`
}

// HumeSpeaker synthesizes speech with the Hume AI TTS JSON endpoint
type HumeSpeaker struct {
	apiKey  string
	baseURL string
	voice   humeVoice
	speed   float64
	client  *http.Client
}

// NewHumeSpeaker creates a HumeSpeaker. A voice ID that parses as a UUID is
// sent as a voice id, anything else as a library voice name.
func NewHumeSpeaker(config *TTSConfig) *HumeSpeaker {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = humeDefaultURL
	}

	voiceID := config.Voice.ID
	if voiceID == "" {
		voiceID = humeDefaultVoice
	}
	voice := humeVoice{Provider: "HUME_AI"}
	if _, err := uuid.Parse(voiceID); err == nil {
		voice.ID = voiceID
	} else {
		voice.Name = voiceID
	}

	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &HumeSpeaker{
		apiKey:  config.APIKey,
		baseURL: baseURL,
		voice:   voice,
		speed:   config.Speed,
		client:  client,
	}
}

// GetName returns the provider name
func (h *HumeSpeaker) GetName() string {
	return string(ProviderHume)
}

// Synthesize returns the decoded audio of the first generation
func (h *HumeSpeaker) Synthesize(ctx context.Context, text string) ([]byte, error) {
	utterance := humeUtterance{Text: text, Voice: h.voice}
	if h.speed != 0 && h.speed != 1.0 {
		utterance.Speed = h.speed
	}
	payload, err := json.Marshal(humeRequest{
		Utterances:     []humeUtterance{utterance},
		Format:         humeFormat{Type: AudioExtension(ProviderHume)},
		NumGenerations: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hume-Api-Key", h.apiKey)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("hume API error %d: %s", resp.StatusCode, string(body))
	}

	var result humeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(result.Generations) == 0 || result.Generations[0].Audio == "" {
		return nil, fmt.Errorf("%w: no generations returned", ErrMalformedResponse)
	}

	audio, err := base64.StdEncoding.DecodeString(result.Generations[0].Audio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return audio, nil
}
