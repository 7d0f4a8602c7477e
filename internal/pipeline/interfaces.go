package pipeline

import (
	"context"

	"podcaster/internal/llm"
	"podcaster/internal/research"
	"podcaster/internal/tts"
)

// Completer generates text for the intent, research and script steps
type Completer = llm.Completer

// WebResearcher gathers and persists web sources for a query
type WebResearcher interface {
	// Research searches, ranks, fetches and cleans sources for query
	Research(ctx context.Context, query string, maxResults, topN int) (*research.Result, error)
}

// AudioSynthesizer turns a finished script into stitched audio
type AudioSynthesizer interface {
	// Synthesize speaks text chunk by chunk and concatenates the audio
	Synthesize(ctx context.Context, text string) (*tts.Result, error)
}

// ProgressFunc receives human-readable status updates as a run advances
type ProgressFunc func(message string)
