// Package pipeline coordinates a podcast run: intent analysis, research,
// script generation and audio generation.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"podcaster/internal/core"
	"podcaster/internal/llm"
	"podcaster/internal/logger"
	"podcaster/internal/metrics"
	"podcaster/internal/research"
	"podcaster/internal/tts"
)

// Web research modes
const (
	WebResearchAuto   = "auto"   // search when the intent asks for current data
	WebResearchAlways = "always" // always search
	WebResearchNever  = "never"  // rely on model knowledge only
)

// ErrEmptyQuery is returned when Run is called without a query
var ErrEmptyQuery = errors.New("query cannot be empty")

// StageError reports the step at which a pipeline run stopped
type StageError struct {
	Step int
	Name string
	Err  error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("Pipeline failed at Step %d: %s failed: %v", e.Step, e.Name, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Config holds pipeline configuration
type Config struct {
	// Token budgets per step
	IntentMaxTokens   int
	ResearchMaxTokens int
	ScriptMaxTokens   int
	ScriptTemperature float32

	// Web research settings
	WebResearch        string // auto, always or never
	RequireWebResearch bool   // fail the run when web research fails
	MaxResults         int
	TopN               int
	MaxResearchChars   int // cap on web research text passed to the model

	// Output settings
	OutputDir      string
	AudioExtension string

	QualityGates QualityGateConfig
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		IntentMaxTokens:   800,
		ResearchMaxTokens: 2000,
		ScriptMaxTokens:   15000,
		ScriptTemperature: 0.8,
		WebResearch:       WebResearchAuto,
		MaxResults:        10,
		TopN:              6,
		MaxResearchChars:  20000,
		OutputDir:         ".",
		AudioExtension:    "mp3",
		QualityGates:      DefaultQualityGateConfig(),
	}
}

// Pipeline orchestrates the end-to-end podcast generation workflow
type Pipeline struct {
	completer   Completer
	researcher  WebResearcher // optional
	synthesizer AudioSynthesizer
	gates       []QualityGate
	metrics     *metrics.Metrics
	progress    ProgressFunc
	config      *Config

	now   func() time.Time
	newID func() string
}

// NewPipeline creates a new pipeline. researcher may be nil, in which case
// research relies on model knowledge only.
func NewPipeline(completer Completer, researcher WebResearcher, synthesizer AudioSynthesizer, config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pipeline{
		completer:   completer,
		researcher:  researcher,
		synthesizer: synthesizer,
		gates:       NewQualityGates(config.QualityGates),
		config:      config,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Run executes the four pipeline steps for query and returns the episode.
// A failed step is reported as *StageError.
func (p *Pipeline) Run(ctx context.Context, query, userProfile string) (*core.Episode, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	startTime := p.now()
	episode := &core.Episode{ID: p.newID(), Query: query}
	logger.Info("Starting podcast pipeline", "episode_id", episode.ID, "query", query, "has_profile", userProfile != "")

	episode, err := p.run(ctx, episode, userProfile)
	if err != nil {
		p.metrics.PipelineRun("failed")
		p.update(err.Error())
		logger.Error("Pipeline failed", err, "episode_id", episode.ID)
		return episode, err
	}

	p.metrics.PipelineRun("ok")
	p.metrics.ObserveStage("pipeline", p.now().Sub(startTime))
	p.update("Pipeline completed successfully!")
	logger.Info("Pipeline completed", "episode_id", episode.ID, "audio_file", episode.AudioPath, "script_file", episode.ScriptPath)
	return episode, nil
}

func (p *Pipeline) run(ctx context.Context, episode *core.Episode, userProfile string) (*core.Episode, error) {
	// Step 1: Intent analysis
	p.update("Step 1/4: Analyzing user intent...")
	intent, err := timed(p.metrics, "intent", func() (core.Intent, error) {
		return p.AnalyzeIntent(ctx, episode.Query, userProfile)
	})
	if err != nil {
		return episode, &StageError{Step: 1, Name: "Intent analysis", Err: err}
	}
	episode.Intent = intent
	p.update("Step 1 completed: Intent analysis generated")

	// Step 2: Research
	p.update("Step 2/4: Conducting research...")
	stageStart := time.Now()
	researchText, sources, err := p.ConductResearch(ctx, intent)
	p.metrics.ObserveStage("research_notes", time.Since(stageStart))
	if err != nil {
		return episode, &StageError{Step: 2, Name: "Research", Err: err}
	}
	episode.ResearchText = researchText
	episode.Sources = sources
	p.update(fmt.Sprintf("Step 2 completed: Research conducted (%d web sources)", len(sources)))

	// Step 3: Script generation
	p.update("Step 3/4: Generating podcast script...")
	script, err := timed(p.metrics, "script", func() (string, error) {
		return p.GenerateScript(ctx, intent, researchText)
	})
	if err != nil {
		return episode, &StageError{Step: 3, Name: "Script generation", Err: err}
	}
	episode.Script = script

	base := p.baseName(episode.Query)
	episode.ScriptPath = filepath.Join(p.config.OutputDir, base+".txt")
	if err := writeFile(episode.ScriptPath, []byte(script)); err != nil {
		return episode, &StageError{Step: 3, Name: "Script generation", Err: err}
	}
	p.update(fmt.Sprintf("Step 3 completed: Script generated (%d characters)", utf8.RuneCountInString(script)))

	// Step 4: Audio generation
	p.update("Step 4/4: Generating audio...")
	result, err := p.synthesizer.Synthesize(ctx, tts.PrepareScript(script))
	if err != nil {
		return episode, &StageError{Step: 4, Name: "Audio generation", Err: err}
	}
	episode.SuccessfulChunks = result.SuccessfulChunks
	episode.TotalChunks = result.TotalChunks

	episode.AudioPath = filepath.Join(p.config.OutputDir, base+"."+strings.TrimPrefix(p.config.AudioExtension, "."))
	if err := writeFile(episode.AudioPath, result.Audio); err != nil {
		return episode, &StageError{Step: 4, Name: "Audio generation", Err: err}
	}
	p.update(fmt.Sprintf("Step 4 completed: Audio generated (%d/%d chunks)", result.SuccessfulChunks, result.TotalChunks))

	episode.GeneratedAt = p.now()
	if err := p.saveEpisode(filepath.Join(p.config.OutputDir, base+".json"), episode); err != nil {
		logger.Warn("Failed to save episode metadata", "episode_id", episode.ID, "error", err.Error())
	}
	return episode, nil
}

// AnalyzeIntent asks the model to classify query and parses the answer.
func (p *Pipeline) AnalyzeIntent(ctx context.Context, query, userProfile string) (core.Intent, error) {
	prompt, err := render(intentPrompt, promptData{
		CurrentDate: p.now().Format("2006-01-02"),
		Query:       query,
		UserProfile: userProfile,
	})
	if err != nil {
		return core.Intent{}, err
	}

	response, err := p.completer.Complete(ctx, prompt, llm.Options{MaxTokens: p.config.IntentMaxTokens})
	if err != nil {
		return core.Intent{}, err
	}

	intent := ParseIntent(query, userProfile, strings.TrimSpace(response))
	logger.Info("Intent analysed",
		"categories", intent.PrimaryCategories,
		"data_sources", intent.DataSources,
		"mood_tone", intent.MoodTone)
	return intent, nil
}

// ConductResearch gathers web sources when the intent calls for them and
// asks the model for research notes. Web research failures are logged and
// the model falls back to its own knowledge unless RequireWebResearch is set.
func (p *Pipeline) ConductResearch(ctx context.Context, intent core.Intent) (string, []core.ScrapedSource, error) {
	var webDocument string
	var sources []core.ScrapedSource

	if p.shouldSearch(intent) {
		result, err := p.researcher.Research(ctx, intent.Query, p.config.MaxResults, p.config.TopN)
		switch {
		case err == nil:
			webDocument = truncateRunes(result.Document, p.config.MaxResearchChars)
			sources = result.Bundle.Sources
			p.update(fmt.Sprintf("Web research collected %d sources", len(sources)))
		case ctx.Err() != nil:
			return "", nil, ctx.Err()
		case p.config.RequireWebResearch:
			return "", nil, err
		default:
			logger.Warn("Web research failed, continuing with model knowledge", "query", intent.Query, "error", err.Error())
		}
	}

	prompt, err := render(researchPrompt, promptData{
		Query:       intent.Query,
		Intent:      intent,
		WebResearch: webDocument,
	})
	if err != nil {
		return "", nil, err
	}

	response, err := p.completer.Complete(ctx, prompt, llm.Options{MaxTokens: p.config.ResearchMaxTokens})
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(response), sources, nil
}

// GenerateScript writes the narration script from the research notes.
func (p *Pipeline) GenerateScript(ctx context.Context, intent core.Intent, researchText string) (string, error) {
	prompt, err := render(scriptPrompt, promptData{
		Query:           intent.Query,
		Intent:          intent,
		ResearchContent: researchText,
	})
	if err != nil {
		return "", err
	}

	response, err := p.completer.Complete(ctx, prompt, llm.Options{
		MaxTokens:   p.config.ScriptMaxTokens,
		Temperature: p.config.ScriptTemperature,
	})
	if err != nil {
		return "", err
	}

	script := CleanScript(response)
	if script == "" {
		return "", llm.ErrEmptyResponse
	}
	if err := runQualityGates(ctx, p.gates, script); err != nil {
		return "", err
	}
	return script, nil
}

func (p *Pipeline) shouldSearch(intent core.Intent) bool {
	if p.researcher == nil {
		return false
	}
	switch p.config.WebResearch {
	case WebResearchAlways:
		return true
	case WebResearchNever:
		return false
	default:
		return wantsWebResearch(intent)
	}
}

// baseName builds "podcast_audio_<query>_<timestamp>" with the query part
// limited to 30 characters.
func (p *Pipeline) baseName(query string) string {
	safe := []rune(research.SafeQuery(query))
	if len(safe) > 30 {
		safe = safe[:30]
	}
	return fmt.Sprintf("podcast_audio_%s_%s", string(safe), p.now().Format(core.TimestampLayout))
}

func (p *Pipeline) saveEpisode(path string, episode *core.Episode) error {
	data, err := json.MarshalIndent(episode, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal episode: %w", err)
	}
	return writeFile(path, data)
}

func (p *Pipeline) update(message string) {
	logger.Debug("Pipeline status", "status", message)
	if p.progress != nil {
		p.progress(message)
	}
}

// timed runs fn and records its duration under stage.
func timed[T any](m *metrics.Metrics, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	m.ObserveStage(stage, time.Since(start))
	return v, err
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
