package tts

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// TTSProvider represents different TTS service providers
type TTSProvider string

const (
	ProviderHume       TTSProvider = "hume"
	ProviderOpenAI     TTSProvider = "openai"
	ProviderElevenLabs TTSProvider = "elevenlabs"
	ProviderMock       TTSProvider = "mock"
)

// Speaker turns one piece of text into encoded audio bytes. Implementations
// carry their own voice configuration.
type Speaker interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	GetName() string
}

// TTSVoice represents voice configuration
type TTSVoice struct {
	ID     string
	Name   string
	Gender string
	Accent string
}

// TTSConfig holds TTS configuration
type TTSConfig struct {
	Provider   TTSProvider
	APIKey     string
	Voice      TTSVoice
	Speed      float64 // 0.5 - 2.0
	BaseURL    string  // overrides the provider endpoint
	HTTPClient *http.Client
}

// NewSpeaker creates the Speaker for config.Provider
func NewSpeaker(config *TTSConfig) (Speaker, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}

	switch config.Provider {
	case ProviderHume:
		return NewHumeSpeaker(config), nil
	case ProviderOpenAI:
		return NewOpenAISpeaker(config), nil
	case ProviderElevenLabs:
		return NewElevenLabsSpeaker(config), nil
	case ProviderMock:
		return NewMockSpeaker(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, config.Provider)
	}
}

// GetDefaultVoices returns default voices for each provider
func GetDefaultVoices() map[TTSProvider][]TTSVoice {
	return map[TTSProvider][]TTSVoice{
		ProviderHume: {
			{ID: "Ava Song", Name: "Ava Song", Gender: "Female", Accent: "American"},
			{ID: "Colton Rivers", Name: "Colton Rivers", Gender: "Male", Accent: "American"},
			{ID: "Vince Douglas", Name: "Vince Douglas", Gender: "Male", Accent: "American"},
		},
		ProviderElevenLabs: {
			{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Gender: "Female", Accent: "American"},
			{ID: "AZnzlk1XvdvUeBnXmlld", Name: "Domi", Gender: "Female", Accent: "American"},
			{ID: "EXAVITQu4vr4xnSDxMaL", Name: "Bella", Gender: "Female", Accent: "American"},
			{ID: "ErXwobaYiN019PkySvjV", Name: "Antoni", Gender: "Male", Accent: "American"},
			{ID: "VR6AewLTigWG4xSOukaG", Name: "Arnold", Gender: "Male", Accent: "American"},
		},
		ProviderOpenAI: {
			{ID: "alloy", Name: "Alloy", Gender: "Neutral", Accent: "American"},
			{ID: "echo", Name: "Echo", Gender: "Male", Accent: "American"},
			{ID: "fable", Name: "Fable", Gender: "Male", Accent: "British"},
			{ID: "onyx", Name: "Onyx", Gender: "Male", Accent: "American"},
			{ID: "nova", Name: "Nova", Gender: "Female", Accent: "American"},
			{ID: "shimmer", Name: "Shimmer", Gender: "Female", Accent: "American"},
		},
	}
}

// AudioExtension returns the file extension of the audio a provider produces
func AudioExtension(provider TTSProvider) string {
	switch provider {
	case ProviderHume:
		return "wav"
	case ProviderMock:
		return "bin"
	default:
		return "mp3"
	}
}

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)

// PrepareScript removes markdown formatting, URLs and symbols that speech
// engines read badly. Paragraph breaks are preserved for the chunker.
func PrepareScript(script string) string {
	script = strings.ReplaceAll(script, "\r\n", "\n")
	paragraphs := strings.Split(script, paragraphBreak)
	cleaned := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p = cleanTextForTTS(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, paragraphBreak)
}

// cleanTextForTTS removes markdown formatting and makes text more speech-friendly
func cleanTextForTTS(text string) string {
	text = markdownLink.ReplaceAllString(text, "$1")

	// Remove markdown formatting
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "`", "")
	text = strings.ReplaceAll(text, "#", "")

	// Remove URLs (basic pattern)
	words := strings.Fields(text)
	cleanWords := make([]string, 0, len(words))
	for _, word := range words {
		if !strings.HasPrefix(word, "http://") && !strings.HasPrefix(word, "https://") {
			cleanWords = append(cleanWords, word)
		}
	}
	text = strings.Join(cleanWords, " ")

	// Replace common symbols with words
	text = strings.ReplaceAll(text, "&", "and")
	text = strings.ReplaceAll(text, "%", " percent")

	return strings.TrimSpace(text)
}

// GetAvailableProviders returns available TTS providers
func GetAvailableProviders() []string {
	return []string{
		string(ProviderHume),
		string(ProviderOpenAI),
		string(ProviderElevenLabs),
		string(ProviderMock),
	}
}

// ValidateConfig validates TTS configuration
func ValidateConfig(config *TTSConfig) error {
	if config.Provider == "" {
		return fmt.Errorf("TTS provider is required")
	}

	providers := GetAvailableProviders()
	validProvider := false
	for _, provider := range providers {
		if string(config.Provider) == provider {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("%w: %s (available: %s)",
			ErrUnsupportedProvider, config.Provider, strings.Join(providers, ", "))
	}

	if config.Provider != ProviderMock && config.APIKey == "" {
		return fmt.Errorf("%s: %w", config.Provider, ErrMissingAPIKey)
	}

	if config.Speed == 0 {
		config.Speed = 1.0
	}
	if config.Speed < 0.5 || config.Speed > 2.0 {
		return fmt.Errorf("speed must be between 0.5 and 2.0")
	}

	return nil
}

// EstimateAudioLength estimates audio length in minutes based on text
func EstimateAudioLength(text string, speed float64) float64 {
	if speed <= 0 {
		speed = 1.0
	}
	// Average speaking rate is about 150-160 words per minute
	wordsPerMinute := 155.0 * speed

	words := len(strings.Fields(text))
	return float64(words) / wordsPerMinute
}
