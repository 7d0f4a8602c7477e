package tts

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"podcaster/internal/core"
	"podcaster/internal/logger"
	"podcaster/internal/metrics"
)

// Options configures a Synthesizer.
type Options struct {
	MaxChunkChars int
	// ChunkDelay is the pause between consecutive speaker calls.
	ChunkDelay time.Duration
	// Timeout bounds each speaker call.
	Timeout time.Duration
}

// DefaultOptions returns the chunking and pacing used against hosted TTS APIs.
func DefaultOptions() Options {
	return Options{
		MaxChunkChars: DefaultChunkChars,
		ChunkDelay:    3 * time.Second,
		Timeout:       60 * time.Second,
	}
}

// Result is the stitched audio of a script and how many chunks made it in.
type Result struct {
	Audio            []byte
	SuccessfulChunks int
	TotalChunks      int
	// FailedChunks holds the zero-based indexes of chunks missing from Audio.
	FailedChunks []int
}

// Synthesizer splits a script into chunks, speaks each one and concatenates
// the audio in chunk order.
type Synthesizer struct {
	speaker Speaker
	opts    Options
	metrics *metrics.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewSynthesizer creates a Synthesizer. Zero-valued options fall back to DefaultOptions.
func NewSynthesizer(speaker Speaker, opts Options) *Synthesizer {
	defaults := DefaultOptions()
	if opts.MaxChunkChars <= 0 {
		opts.MaxChunkChars = defaults.MaxChunkChars
	}
	if opts.ChunkDelay < 0 {
		opts.ChunkDelay = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	return &Synthesizer{speaker: speaker, opts: opts, sleep: sleepContext}
}

// WithMetrics records per-chunk outcomes on m.
func (s *Synthesizer) WithMetrics(m *metrics.Metrics) *Synthesizer {
	s.metrics = m
	return s
}

// Chunks returns the chunks text would be spoken in.
func (s *Synthesizer) Chunks(text string) []core.TextChunk {
	var parts []string
	if trimmed := strings.TrimSpace(text); trimmed != "" && utf8.RuneCountInString(text) <= s.opts.MaxChunkChars {
		parts = []string{trimmed}
	} else {
		parts = SplitText(text, s.opts.MaxChunkChars)
	}

	chunks := make([]core.TextChunk, len(parts))
	for i, p := range parts {
		chunks[i] = core.TextChunk{Index: i, Text: p}
	}
	return chunks
}

// Synthesize speaks text and returns the concatenated audio. Failed chunks are
// logged and left out; ErrSynthesisFailed is returned when none succeed.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*Result, error) {
	chunks := s.Chunks(text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no text to synthesize", ErrSynthesisFailed)
	}

	start := time.Now()
	defer func() { s.metrics.ObserveStage("synthesize", time.Since(start)) }()

	logger.Info("Synthesizing speech", "provider", s.speaker.GetName(), "chunks", len(chunks), "characters", utf8.RuneCountInString(text))

	result := &Result{TotalChunks: len(chunks)}
	var audio bytes.Buffer
	for i, chunk := range chunks {
		if i > 0 && s.opts.ChunkDelay > 0 {
			if err := s.sleep(ctx, s.opts.ChunkDelay); err != nil {
				return nil, err
			}
		}

		segment, err := s.speakChunk(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Skipping chunk", "chunk", chunk.Index+1, "total", len(chunks), "error", err.Error())
			s.metrics.SpeechChunk("failed")
			result.FailedChunks = append(result.FailedChunks, chunk.Index)
			continue
		}

		audio.Write(segment.Data)
		result.SuccessfulChunks++
		s.metrics.SpeechChunk("ok")
		logger.Debug("Chunk synthesized", "chunk", chunk.Index+1, "total", len(chunks), "bytes", len(segment.Data))
	}

	if result.SuccessfulChunks == 0 {
		return nil, fmt.Errorf("%w: all %d chunks failed", ErrSynthesisFailed, len(chunks))
	}

	result.Audio = audio.Bytes()
	logger.Info("Speech synthesized", "successful_chunks", result.SuccessfulChunks, "total_chunks", result.TotalChunks, "bytes", len(result.Audio))
	return result, nil
}

func (s *Synthesizer) speakChunk(ctx context.Context, chunk core.TextChunk) (core.AudioSegment, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	audio, err := s.speaker.Synthesize(callCtx, chunk.Text)
	if err != nil {
		return core.AudioSegment{}, err
	}
	if len(audio) == 0 {
		return core.AudioSegment{}, fmt.Errorf("%w: empty audio", ErrMalformedResponse)
	}
	return core.AudioSegment{Index: chunk.Index, Data: audio}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
