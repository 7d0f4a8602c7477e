package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeExtractor renders pages in headless Chrome before extracting text, for
// sites that build their content with JavaScript.
type ChromeExtractor struct {
	userAgent string
	timeout   time.Duration
	robots    *RobotsChecker
}

// NewChromeExtractor creates a ChromeExtractor. robots may be nil.
func NewChromeExtractor(opts Options, robots *RobotsChecker) *ChromeExtractor {
	defaults := DefaultOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = defaults.UserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	return &ChromeExtractor{userAgent: opts.UserAgent, timeout: opts.Timeout, robots: robots}
}

// Extract renders rawURL and returns its readable text
func (c *ChromeExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", fmt.Errorf("invalid url %q", rawURL)
	}
	if c.robots != nil && !c.robots.Allowed(ctx, pageURL) {
		return "", fmt.Errorf("%s: %w", rawURL, ErrDisallowedByRobots)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	html, err := c.render(ctx, pageURL.String())
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", rawURL, err)
	}

	_, text, err := HTMLToText(html, pageURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", rawURL, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", rawURL, ErrEmptyContent)
	}
	return text, nil
}

func (c *ChromeExtractor) render(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(c.userAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

// Fallback tries primary first and falls back to secondary when primary fails.
type Fallback struct {
	Primary   Extractor
	Secondary Extractor
}

// NewRenderingExtractor renders pages in Chrome and falls back to plain HTTP.
// Chrome gets half of opts.Timeout so the fallback still has time to run
// inside a caller deadline of the same length.
func NewRenderingExtractor(opts Options, robots *RobotsChecker) Fallback {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	plain := NewHTTPExtractor(opts)
	chromeOpts := opts
	chromeOpts.Timeout = opts.Timeout / 2
	return Fallback{Primary: NewChromeExtractor(chromeOpts, robots), Secondary: plain}
}

// Extract implements Extractor
func (f Fallback) Extract(ctx context.Context, rawURL string) (string, error) {
	text, err := f.Primary.Extract(ctx, rawURL)
	if err == nil || f.Secondary == nil || ctx.Err() != nil || errors.Is(err, ErrDisallowedByRobots) {
		return text, err
	}
	return f.Secondary.Extract(ctx, rawURL)
}
