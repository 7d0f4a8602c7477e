// Package fetch turns a URL into plain page text for the research cleaner.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"podcaster/internal/logger"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var (
	// ErrDisallowedByRobots is returned when robots.txt forbids fetching the URL
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")

	// ErrUnsupportedContent is returned for responses that are not HTML, plain text or PDF
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrEmptyContent is returned when no text could be extracted
	ErrEmptyContent = errors.New("no text extracted")
)

// Extractor turns a URL into raw page text, one paragraph per line.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Options configures an HTTPExtractor.
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	MaxBodyBytes  int64
	RespectRobots bool
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{
		UserAgent:     defaultUserAgent,
		Timeout:       30 * time.Second,
		MaxBodyBytes:  5 << 20,
		RespectRobots: true,
	}
}

// HTTPExtractor fetches pages over plain HTTP and extracts the main content
// with readability. PDF responses are converted to text.
type HTTPExtractor struct {
	client *http.Client
	opts   Options
	robots *RobotsChecker
}

// NewHTTPExtractor creates an HTTPExtractor. Zero-valued options fall back to DefaultOptions.
func NewHTTPExtractor(opts Options) *HTTPExtractor {
	defaults := DefaultOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaults.MaxBodyBytes
	}

	client := &http.Client{Timeout: opts.Timeout}
	e := &HTTPExtractor{client: client, opts: opts}
	if opts.RespectRobots {
		e.robots = NewRobotsChecker(client, opts.UserAgent)
	}
	return e
}

// Extract downloads rawURL and returns its readable text
func (e *HTTPExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", fmt.Errorf("invalid url %q", rawURL)
	}

	if e.robots != nil && !e.robots.Allowed(ctx, pageURL) {
		return "", fmt.Errorf("%s: %w", rawURL, ErrDisallowedByRobots)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", e.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL %s: status code %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.opts.MaxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}

	text, err := e.toText(pageURL, resp.Header.Get("Content-Type"), body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", rawURL, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", rawURL, ErrEmptyContent)
	}

	logger.Debug("Extracted page text", "url", rawURL, "bytes", len(body), "characters", len(text))
	return text, nil
}

func (e *HTTPExtractor) toText(pageURL *url.URL, contentType string, body []byte) (string, error) {
	mediaType := "text/html"
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			mediaType = mt
		}
	}

	switch {
	case mediaType == "application/pdf" || DetectPDFURL(pageURL.String()):
		return ExtractPDFText(bytes.NewReader(body), int64(len(body)))
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		_, text, err := HTMLToText(string(body), pageURL)
		return text, err
	case mediaType == "text/plain":
		return string(body), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContent, mediaType)
	}
}
