package search

import (
	"context"
	"time"

	"podcaster/internal/core"
	"podcaster/internal/logger"
	"podcaster/internal/metrics"
)

// Service adapts a Provider to the (query, maxResults) call shape used by the
// research orchestrator, applying fixed provider settings and instrumentation.
type Service struct {
	provider Provider
	config   Config
	metrics  *metrics.Metrics
}

// NewService wraps provider. config.MaxResults is overridden per call.
func NewService(provider Provider, config Config, m *metrics.Metrics) *Service {
	return &Service{provider: provider, config: config, metrics: m}
}

// Provider returns the wrapped provider
func (s *Service) Provider() Provider {
	return s.provider
}

// Search runs one query against the wrapped provider
func (s *Service) Search(ctx context.Context, query string, maxResults int) ([]core.SearchHit, error) {
	cfg := s.config
	cfg.MaxResults = maxResults

	started := time.Now()
	hits, err := s.provider.Search(ctx, query, cfg)
	s.metrics.ObserveStage("search", time.Since(started))
	if err != nil {
		s.metrics.SearchRequest(s.provider.GetName(), "error")
		logger.Error("Search failed", err, "provider", s.provider.GetName(), "query", query)
		return nil, err
	}

	outcome := "ok"
	if len(hits) == 0 {
		outcome = "empty"
	}
	s.metrics.SearchRequest(s.provider.GetName(), outcome)
	return hits, nil
}
