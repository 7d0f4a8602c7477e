package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"podcaster/internal/config"
	"podcaster/internal/fetch"
	"podcaster/internal/llm"
	"podcaster/internal/metrics"
	"podcaster/internal/pipeline"
	"podcaster/internal/research"
	"podcaster/internal/search"
	"podcaster/internal/tts"
)

// appMetrics is shared by every component built for one command invocation.
var appMetrics = metrics.New()

func newSearchService(cfg *config.Config) (*search.Service, error) {
	provider, err := search.NewProviderFactory().CreateProvider(search.ProviderType(cfg.Search.Provider), cfg.SearchProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create search provider %q: %w", cfg.Search.Provider, err)
	}
	return search.NewService(provider, search.Config{Region: cfg.Search.Region}, appMetrics), nil
}

func newExtractor(cfg *config.Config) research.Extractor {
	opts := fetch.Options{
		UserAgent:     cfg.Fetch.UserAgent,
		Timeout:       config.Duration(cfg.Research.FetchTimeout, 0),
		MaxBodyBytes:  cfg.Fetch.MaxBodyBytes,
		RespectRobots: cfg.Fetch.RespectRobots,
	}
	if !cfg.Fetch.RenderJS {
		return fetch.NewHTTPExtractor(opts)
	}

	var robots *fetch.RobotsChecker
	if cfg.Fetch.RespectRobots {
		robots = fetch.NewRobotsChecker(&http.Client{Timeout: opts.Timeout}, opts.UserAgent)
	}
	return fetch.NewRenderingExtractor(opts, robots)
}

func newOrchestrator(cfg *config.Config, outputDir string, onState func(research.State)) (*research.Orchestrator, error) {
	searcher, err := newSearchService(cfg)
	if err != nil {
		return nil, err
	}
	if outputDir == "" {
		outputDir = cfg.Research.OutputDir
	}
	opts := research.Options{
		OutputDir:       outputDir,
		MinContentChars: cfg.Research.MinContentChars,
		SearchTimeout:   config.Duration(cfg.Search.Timeout, 0),
		FetchTimeout:    config.Duration(cfg.Research.FetchTimeout, 0),
		Concurrency:     cfg.Research.Concurrency,
		OnState:         onState,
	}
	return research.NewOrchestrator(searcher, newExtractor(cfg), opts).WithMetrics(appMetrics), nil
}

func newCompleter(ctx context.Context, cfg *config.Config) (llm.Completer, error) {
	llmCfg := llm.Config{
		Provider: llm.ProviderType(cfg.LLM.Provider),
		APIKey:   cfg.LLMAPIKey(),
		Model:    cfg.LLMModel(),
	}
	if cfg.LLM.Provider == "openai" {
		llmCfg.BaseURL = cfg.LLM.OpenAI.BaseURL
	}
	completer, err := llm.NewCompleter(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return llm.NewTracedClient(completer, appMetrics), nil
}

func newSynthesizer(cfg *config.Config, provider, voice string) (*tts.Synthesizer, error) {
	if provider == "" {
		provider = cfg.TTS.Provider
	}
	if voice == "" {
		voice = cfg.TTS.Voice
	}

	ttsCfg := *cfg
	ttsCfg.TTS.Provider = strings.ToLower(provider)
	speaker, err := tts.NewSpeaker(&tts.TTSConfig{
		Provider: tts.TTSProvider(ttsCfg.TTS.Provider),
		APIKey:   ttsCfg.TTSAPIKey(),
		Voice:    tts.TTSVoice{ID: voice},
		Speed:    float64(cfg.TTS.Speed),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create TTS provider: %w", err)
	}

	opts := tts.Options{
		MaxChunkChars: cfg.TTS.MaxChunkChars,
		ChunkDelay:    config.Duration(cfg.TTS.ChunkDelay, 0),
		Timeout:       config.Duration(cfg.TTS.Timeout, 0),
	}
	return tts.NewSynthesizer(speaker, opts).WithMetrics(appMetrics), nil
}

func pipelineConfig(cfg *config.Config, ttsProvider string) *pipeline.Config {
	pc := pipeline.DefaultConfig()
	pc.IntentMaxTokens = cfg.Pipeline.IntentMaxTokens
	pc.ResearchMaxTokens = cfg.Pipeline.ResearchMaxTokens
	pc.ScriptMaxTokens = cfg.Pipeline.ScriptMaxTokens
	pc.ScriptTemperature = cfg.Pipeline.ScriptTemperature
	pc.WebResearch = cfg.Pipeline.WebResearch
	pc.RequireWebResearch = cfg.Pipeline.RequireWebResearch
	pc.MaxResults = cfg.Search.MaxResults
	pc.TopN = cfg.Research.TopN
	pc.MaxResearchChars = cfg.Pipeline.MaxResearchChars
	pc.OutputDir = cfg.Pipeline.OutputDir
	pc.QualityGates.MinWords = cfg.Pipeline.MinScriptWords
	pc.QualityGates.BlockOnFailure = cfg.Pipeline.BlockOnGateFailure

	if ttsProvider == "" {
		ttsProvider = cfg.TTS.Provider
	}
	pc.AudioExtension = tts.AudioExtension(tts.TTSProvider(strings.ToLower(ttsProvider)))
	return pc
}

// pipelineOptions carries per-invocation overrides from flags.
type pipelineOptions struct {
	webResearch string
	outputDir   string
	ttsProvider string
	voice       string
}

func newPipeline(ctx context.Context, cfg *config.Config, opts pipelineOptions, progress pipeline.ProgressFunc) (*pipeline.Pipeline, error) {
	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	synthesizer, err := newSynthesizer(cfg, opts.ttsProvider, opts.voice)
	if err != nil {
		return nil, err
	}

	pc := pipelineConfig(cfg, opts.ttsProvider)
	if opts.webResearch != "" {
		pc.WebResearch = strings.ToLower(opts.webResearch)
	}
	if opts.outputDir != "" {
		pc.OutputDir = opts.outputDir
	}

	builder := pipeline.NewBuilder().
		WithCompleter(completer).
		WithSynthesizer(synthesizer).
		WithConfig(pc).
		WithMetrics(appMetrics).
		WithProgress(progress)

	if pc.WebResearch != pipeline.WebResearchNever {
		orchestrator, err := newOrchestrator(cfg, pc.OutputDir, nil)
		if err != nil {
			return nil, err
		}
		builder = builder.WithResearcher(orchestrator)
	}
	return builder.Build()
}
