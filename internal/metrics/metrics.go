// Package metrics exposes prometheus instrumentation for the research and
// synthesis stages. All recording methods are safe on a nil *Metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"podcaster/internal/logger"
)

const namespace = "podcaster"

// Metrics holds every collector registered by the application.
type Metrics struct {
	registry *prometheus.Registry

	SearchRequests *prometheus.CounterVec
	PageFetches    *prometheus.CounterVec
	LinesDropped   *prometheus.CounterVec
	ResearchRuns   *prometheus.CounterVec
	SpeechChunks   *prometheus.CounterVec
	PipelineRuns   *prometheus.CounterVec
	LLMCalls       *prometheus.CounterVec
	LLMTokens      *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec
}

// New creates a Metrics instance backed by a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SearchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search collaborator calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		PageFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_fetches_total",
			Help:      "Per-URL extraction attempts by outcome.",
		}, []string{"outcome"}),
		LinesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleaner_lines_dropped_total",
			Help:      "Lines rejected by the filter cascade, by rule.",
		}, []string{"rule"}),
		ResearchRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "research_runs_total",
			Help:      "Research runs by terminal state.",
		}, []string{"state"}),
		SpeechChunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "speech_chunks_total",
			Help:      "Speech synthesis chunk calls by outcome.",
		}, []string{"outcome"}),
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "End-to-end pipeline runs by outcome.",
		}, []string{"outcome"}),
		LLMCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_calls_total",
			Help:      "Completion calls by provider and outcome.",
		}, []string{"provider", "outcome"}),
		LLMTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_estimated_total",
			Help:      "Estimated prompt plus completion tokens by provider.",
		}, []string{"provider"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of pipeline stages.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
	}

	m.registry.MustRegister(
		m.SearchRequests,
		m.PageFetches,
		m.LinesDropped,
		m.ResearchRuns,
		m.SpeechChunks,
		m.PipelineRuns,
		m.LLMCalls,
		m.LLMTokens,
		m.StageDuration,
	)
	return m
}

// Registry returns the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics endpoint listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// SearchRequest records one search call.
func (m *Metrics) SearchRequest(provider, outcome string) {
	if m == nil {
		return
	}
	m.SearchRequests.WithLabelValues(provider, outcome).Inc()
}

// PageFetch records one extraction attempt.
func (m *Metrics) PageFetch(outcome string) {
	if m == nil {
		return
	}
	m.PageFetches.WithLabelValues(outcome).Inc()
}

// LineDropped records a line rejected by the named rule.
func (m *Metrics) LineDropped(rule string) {
	if m == nil {
		return
	}
	m.LinesDropped.WithLabelValues(rule).Inc()
}

// ResearchRun records the terminal state of a research run.
func (m *Metrics) ResearchRun(state string) {
	if m == nil {
		return
	}
	m.ResearchRuns.WithLabelValues(state).Inc()
}

// SpeechChunk records one synthesis chunk call.
func (m *Metrics) SpeechChunk(outcome string) {
	if m == nil {
		return
	}
	m.SpeechChunks.WithLabelValues(outcome).Inc()
}

// PipelineRun records the outcome of an end-to-end run.
func (m *Metrics) PipelineRun(outcome string) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(outcome).Inc()
}

// LLMCall records one completion call and its estimated token usage.
func (m *Metrics) LLMCall(provider, outcome string, tokens int) {
	if m == nil {
		return
	}
	m.LLMCalls.WithLabelValues(provider, outcome).Inc()
	if tokens > 0 {
		m.LLMTokens.WithLabelValues(provider).Add(float64(tokens))
	}
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
