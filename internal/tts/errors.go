package tts

import "errors"

var (
	// ErrUnsupportedProvider is returned when an unknown TTS provider is configured
	ErrUnsupportedProvider = errors.New("unsupported TTS provider")

	// ErrMissingAPIKey is returned when a provider that needs a key has none
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrMalformedResponse is returned when a provider answers without usable audio
	ErrMalformedResponse = errors.New("malformed speech response")

	// ErrSynthesisFailed is returned when no chunk of a script could be synthesized
	ErrSynthesisFailed = errors.New("speech synthesis failed")
)
