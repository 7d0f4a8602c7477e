package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"podcaster/internal/core"
	"podcaster/internal/logger"
)

// SerpAPIProvider implements Provider using SerpAPI (premium option)
type SerpAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rateLimiter
}

// NewSerpAPIProvider creates a new SerpAPI search provider
func NewSerpAPIProvider(apiKey string) *SerpAPIProvider {
	return &SerpAPIProvider{
		apiKey:  apiKey,
		baseURL: "https://serpapi.com/search",
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: &rateLimiter{interval: time.Second},
	}
}

// GetName returns the name of this provider
func (s *SerpAPIProvider) GetName() string {
	return "SerpAPI"
}

// Search performs a Google search through SerpAPI
func (s *SerpAPIProvider) Search(ctx context.Context, query string, config Config) ([]core.SearchHit, error) {
	if err := s.limiter.wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", "google")
	params.Set("api_key", s.apiKey)
	if config.MaxResults > 0 {
		params.Set("num", strconv.Itoa(config.MaxResults))
	}

	if config.SinceTime > 0 {
		days := int(config.SinceTime.Hours() / 24)
		switch {
		case days <= 1:
			params.Set("tbs", "qdr:d")
		case days <= 7:
			params.Set("tbs", "qdr:w")
		case days <= 30:
			params.Set("tbs", "qdr:m")
		case days <= 365:
			params.Set("tbs", "qdr:y")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create SerpAPI request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute SerpAPI request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SerpAPI request failed with status: %d", resp.StatusCode)
	}

	var apiResponse struct {
		OrganicResults []struct {
			Title    string `json:"title"`
			Link     string `json:"link"`
			Snippet  string `json:"snippet"`
			Position int    `json:"position"`
		} `json:"organic_results"`
		Error string `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse SerpAPI response: %w", err)
	}
	if apiResponse.Error != "" {
		return nil, fmt.Errorf("SerpAPI error: %s", apiResponse.Error)
	}

	results := make([]core.SearchHit, 0, len(apiResponse.OrganicResults))
	for _, item := range apiResponse.OrganicResults {
		if extractFinalURL(item.Link) == "" {
			continue
		}
		results = append(results, core.NewSearchHit(item.Title, item.Link, item.Snippet))
		if config.MaxResults > 0 && len(results) >= config.MaxResults {
			break
		}
	}

	logger.Info("SerpAPI search completed", "query", query, "results_found", len(results))
	return results, nil
}
