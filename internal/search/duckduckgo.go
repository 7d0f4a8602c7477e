package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"podcaster/internal/core"
	"podcaster/internal/logger"
)

const duckDuckGoHTMLURL = "https://html.duckduckgo.com/html/"

// minTitleChars drops anchors whose text is too short to be a result title.
const minTitleChars = 10

// skippedDomains never produce readable article content.
var skippedDomains = []string{
	"duckduckgo.com",
	"duck.co",
	"youtube.com",
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"linkedin.com",
}

// DuckDuckGoProvider implements the Provider interface using the DuckDuckGo HTML endpoint
type DuckDuckGoProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rateLimiter
}

// NewDuckDuckGoProvider creates a new DuckDuckGo search provider
func NewDuckDuckGoProvider() *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   duckDuckGoHTMLURL,
		userAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		limiter:   &rateLimiter{interval: 2 * time.Second},
	}
}

// GetName returns the name of this provider
func (d *DuckDuckGoProvider) GetName() string {
	return "DuckDuckGo"
}

// Search posts the query to DuckDuckGo and parses the result page
func (d *DuckDuckGoProvider) Search(ctx context.Context, query string, config Config) ([]core.SearchHit, error) {
	if err := d.limiter.wait(ctx); err != nil {
		return nil, err
	}

	form := d.buildForm(query, config)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	if strings.Contains(strings.ToLower(doc.Find("body").Text()), "captcha") && doc.Find(".result").Length() == 0 {
		logger.Warn("DuckDuckGo CAPTCHA detected", "query", query)
		return nil, ErrBlocked
	}

	results := d.parseSearchResults(doc, config.MaxResults)
	logger.Info("DuckDuckGo search completed", "query", query, "results_found", len(results))
	return results, nil
}

// buildForm constructs the POST form for the HTML endpoint
func (d *DuckDuckGoProvider) buildForm(query string, config Config) url.Values {
	form := url.Values{}
	form.Set("q", query)
	if config.Region != "" {
		form.Set("kl", config.Region)
	}

	if config.SinceTime > 0 {
		days := int(config.SinceTime.Hours() / 24)
		switch {
		case days <= 1:
			form.Set("df", "d")
		case days <= 7:
			form.Set("df", "w")
		case days <= 30:
			form.Set("df", "m")
		case days <= 365:
			form.Set("df", "y")
		}
	}
	return form
}

// parseSearchResults reads structured result blocks, falling back to a scan of
// every anchor when the page layout is not recognised.
func (d *DuckDuckGoProvider) parseSearchResults(doc *goquery.Document, maxResults int) []core.SearchHit {
	if maxResults <= 0 {
		maxResults = 10
	}

	var results []core.SearchHit
	seen := make(map[string]bool)
	add := func(href, title, snippet string) bool {
		finalURL := extractFinalURL(href)
		title = cleanText(title)
		if finalURL == "" || utf8.RuneCountInString(title) < minTitleChars || isSkippedURL(finalURL) || seen[finalURL] {
			return false
		}
		seen[finalURL] = true
		snippet = cleanText(snippet)
		if snippet == "" {
			snippet = title
		}
		results = append(results, core.NewSearchHit(title, finalURL, snippet))
		return len(results) >= maxResults
	}

	blocks := doc.Find(".result")
	if blocks.Length() > 0 {
		blocks.EachWithBreak(func(_ int, s *goquery.Selection) bool {
			link := s.Find("a.result__a").First()
			href, ok := link.Attr("href")
			if !ok {
				return true
			}
			return !add(href, link.Text(), s.Find(".result__snippet").First().Text())
		})
		return results
	}

	// Layout fallback: only the first 2*maxResults anchors are considered.
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxResults*2 {
			return false
		}
		href, _ := s.Attr("href")
		text := s.Text()
		return !add(href, text, text)
	})
	return results
}

// extractFinalURL resolves DuckDuckGo redirect links (/l/?uddg=...) to the
// target URL and rejects anything that is not absolute http(s).
func extractFinalURL(href string) string {
	href = strings.TrimSpace(href)
	if strings.Contains(href, "uddg=") {
		if strings.HasPrefix(href, "//") {
			href = "https:" + href
		}
		parsed, err := url.Parse(href)
		if err != nil {
			return ""
		}
		if target := parsed.Query().Get("uddg"); target != "" {
			href = target
		}
	}

	if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
		return ""
	}
	return href
}

func isSkippedURL(u string) bool {
	domain := strings.ToLower(extractDomain(u))
	for _, skip := range skippedDomains {
		if domain == skip || strings.HasSuffix(domain, "."+skip) {
			return true
		}
	}
	return false
}

// cleanText collapses whitespace in text extracted from HTML
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
