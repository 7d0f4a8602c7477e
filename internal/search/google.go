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

// googleMaxResults is the per-request cap of the Custom Search JSON API.
const googleMaxResults = 10

// GoogleProvider implements Provider using Google Custom Search API
type GoogleProvider struct {
	apiKey   string
	searchID string
	baseURL  string
	client   *http.Client
	limiter  *rateLimiter
}

// NewGoogleProvider creates a new Google Custom Search provider
func NewGoogleProvider(apiKey, searchID string) *GoogleProvider {
	return &GoogleProvider{
		apiKey:   apiKey,
		searchID: searchID,
		baseURL:  "https://www.googleapis.com/customsearch/v1",
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  &rateLimiter{interval: 100 * time.Millisecond},
	}
}

// GetName returns the name of this provider
func (g *GoogleProvider) GetName() string {
	return "Google Custom Search"
}

// Search performs a search using Google Custom Search API
func (g *GoogleProvider) Search(ctx context.Context, query string, config Config) ([]core.SearchHit, error) {
	if err := g.limiter.wait(ctx); err != nil {
		return nil, err
	}

	num := config.MaxResults
	if num <= 0 || num > googleMaxResults {
		num = googleMaxResults
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.searchID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))

	if config.SinceTime > 0 {
		days := int(config.SinceTime.Hours()/24) + 1
		params.Set("dateRestrict", "d"+strconv.Itoa(days))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google CSE request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute Google CSE request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google CSE request failed with status: %d", resp.StatusCode)
	}

	var apiResponse struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse Google CSE response: %w", err)
	}
	if apiResponse.Error.Code != 0 {
		return nil, fmt.Errorf("google CSE API error (%d): %s", apiResponse.Error.Code, apiResponse.Error.Message)
	}

	results := make([]core.SearchHit, 0, len(apiResponse.Items))
	for _, item := range apiResponse.Items {
		results = append(results, core.NewSearchHit(item.Title, item.Link, item.Snippet))
	}

	logger.Info("Google Custom Search completed", "query", query, "results_found", len(results))
	return results, nil
}
