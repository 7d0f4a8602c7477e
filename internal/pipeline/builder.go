package pipeline

import (
	"fmt"
	"time"

	"podcaster/internal/metrics"
)

// Builder helps construct a fully configured Pipeline
type Builder struct {
	completer   Completer
	researcher  WebResearcher
	synthesizer AudioSynthesizer
	config      *Config
	metrics     *metrics.Metrics
	progress    ProgressFunc
	now         func() time.Time
	newID       func() string
}

// NewBuilder creates a new pipeline builder with default settings
func NewBuilder() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithCompleter sets the LLM used for every text step
func (b *Builder) WithCompleter(completer Completer) *Builder {
	b.completer = completer
	return b
}

// WithResearcher enables web research
func (b *Builder) WithResearcher(researcher WebResearcher) *Builder {
	b.researcher = researcher
	return b
}

// WithSynthesizer sets the audio synthesizer
func (b *Builder) WithSynthesizer(synthesizer AudioSynthesizer) *Builder {
	b.synthesizer = synthesizer
	return b
}

// WithConfig sets the pipeline configuration
func (b *Builder) WithConfig(config *Config) *Builder {
	b.config = config
	return b
}

// WithMetrics records stage durations and run outcomes on m
func (b *Builder) WithMetrics(m *metrics.Metrics) *Builder {
	b.metrics = m
	return b
}

// WithProgress sets the status callback
func (b *Builder) WithProgress(fn ProgressFunc) *Builder {
	b.progress = fn
	return b
}

// WithClock overrides the time source used for prompts and file names
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithIDGenerator overrides how episode IDs are generated
func (b *Builder) WithIDGenerator(newID func() string) *Builder {
	b.newID = newID
	return b
}

// Build constructs a fully configured Pipeline
func (b *Builder) Build() (*Pipeline, error) {
	if b.completer == nil {
		return nil, fmt.Errorf("LLM completer is required")
	}
	if b.synthesizer == nil {
		return nil, fmt.Errorf("audio synthesizer is required")
	}
	if b.config == nil {
		b.config = DefaultConfig()
	}
	switch b.config.WebResearch {
	case "", WebResearchAuto, WebResearchAlways, WebResearchNever:
	default:
		return nil, fmt.Errorf("invalid web research mode %q (use auto, always or never)", b.config.WebResearch)
	}

	p := NewPipeline(b.completer, b.researcher, b.synthesizer, b.config)
	p.metrics = b.metrics
	p.progress = b.progress
	if b.now != nil {
		p.now = b.now
	}
	if b.newID != nil {
		p.newID = b.newID
	}
	return p, nil
}
