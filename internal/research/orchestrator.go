// Package research drives a single web research run: search, rank, fetch,
// clean, consolidate and persist.
package research

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"podcaster/internal/cleaner"
	"podcaster/internal/core"
	"podcaster/internal/logger"
	"podcaster/internal/metrics"
)

// State is a step of the research state machine.
type State string

const (
	StateSearching     State = "searching"
	StateRanking       State = "ranking"
	StateFetching      State = "fetching"
	StateFiltering     State = "filtering"
	StateConsolidating State = "consolidating"
	StatePersisted     State = "persisted"

	StateNoSearchResults    State = "no_search_results"
	StateNoRelevantURLs     State = "no_relevant_urls"
	StateNoScrapableContent State = "no_scrapable_content"
)

var (
	ErrNoSearchResults    = errors.New("no search results found")
	ErrNoRelevantURLs     = errors.New("no relevant URLs found")
	ErrNoScrapableContent = errors.New("failed to scrape content from URLs")
)

// Failure is a stage-fatal research outcome.
type Failure struct {
	State  State
	Reason string
	Cause  error
}

func (f *Failure) Error() string {
	return f.Reason
}

// Unwrap exposes the sentinel for the failure state and the underlying cause, if any.
func (f *Failure) Unwrap() []error {
	var sentinel error
	switch f.State {
	case StateNoSearchResults:
		sentinel = ErrNoSearchResults
	case StateNoRelevantURLs:
		sentinel = ErrNoRelevantURLs
	case StateNoScrapableContent:
		sentinel = ErrNoScrapableContent
	}
	errs := make([]error, 0, 2)
	if sentinel != nil {
		errs = append(errs, sentinel)
	}
	if f.Cause != nil {
		errs = append(errs, f.Cause)
	}
	return errs
}

// Searcher runs one web search.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]core.SearchHit, error)
}

// Extractor turns a URL into raw page text.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Options configures an Orchestrator.
type Options struct {
	OutputDir       string
	MinContentChars int
	SearchTimeout   time.Duration
	FetchTimeout    time.Duration
	Concurrency     int
	// OnState, when set, is called on every state transition.
	OnState func(State)
}

// DefaultOptions returns sequential fetching with the standard thresholds.
func DefaultOptions() Options {
	return Options{
		OutputDir:       ".",
		MinContentChars: 100,
		SearchTimeout:   10 * time.Second,
		FetchTimeout:    30 * time.Second,
		Concurrency:     1,
	}
}

// Result is a successful research run.
type Result struct {
	Bundle   core.ResearchBundle
	Document string
	Selected []core.SearchHit
	JSONPath string
	TextPath string
}

// Orchestrator runs research with injected search and extraction collaborators.
type Orchestrator struct {
	searcher  Searcher
	extractor Extractor
	cascade   *cleaner.Cascade
	metrics   *metrics.Metrics
	opts      Options
	now       func() time.Time
}

// NewOrchestrator creates an Orchestrator. Zero-valued options fall back to DefaultOptions.
func NewOrchestrator(searcher Searcher, extractor Extractor, opts Options) *Orchestrator {
	defaults := DefaultOptions()
	if opts.OutputDir == "" {
		opts.OutputDir = defaults.OutputDir
	}
	if opts.MinContentChars <= 0 {
		opts.MinContentChars = defaults.MinContentChars
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = defaults.SearchTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaults.FetchTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaults.Concurrency
	}

	return &Orchestrator{
		searcher:  searcher,
		extractor: extractor,
		cascade:   cleaner.Default(),
		opts:      opts,
		now:       time.Now,
	}
}

// WithMetrics attaches stage and per-rule instrumentation.
func (o *Orchestrator) WithMetrics(m *metrics.Metrics) *Orchestrator {
	o.metrics = m
	o.cascade = cleaner.Default().WithObserver(func(rule, _ string) {
		m.LineDropped(rule)
	})
	return o
}

// WithClock overrides the time source used for timestamps.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Research searches for query, keeps the topN best hits, fetches and cleans
// each page, and persists the consolidated result. Stage-fatal outcomes are
// returned as *Failure and leave no files behind.
func (o *Orchestrator) Research(ctx context.Context, query string, maxResults, topN int) (*Result, error) {
	started := time.Now()
	defer func() { o.metrics.ObserveStage("research", time.Since(started)) }()

	logger.Info("Starting research", "query", query, "max_results", maxResults, "top_n", topN)

	o.enter(StateSearching)
	hits, err := o.search(ctx, query, maxResults)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Search failed, treating as zero results", "query", query, "error", err.Error())
	}
	if len(hits) == 0 {
		return nil, o.fail(StateNoSearchResults, "No search results found", err)
	}
	logger.Info("Search completed", "query", query, "hits", len(hits))

	o.enter(StateRanking)
	selected := Rank(hits, query, topN)
	if len(selected) == 0 {
		return nil, o.fail(StateNoRelevantURLs, "No relevant URLs found", nil)
	}
	logger.Info("Selected most relevant URLs", "selected", len(selected))

	o.enter(StateFetching)
	sources, err := o.fetchAll(ctx, selected)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, o.fail(StateNoScrapableContent, "Failed to scrape content from URLs", nil)
	}
	logger.Info("Fetched sources", "succeeded", len(sources), "attempted", len(selected))

	o.enter(StateConsolidating)
	bundle := core.NewResearchBundle(query, o.now(), sources)
	document := Consolidate(query, sources)

	jsonPath, textPath, err := Save(o.opts.OutputDir, bundle, document)
	if err != nil {
		return nil, err
	}
	o.enter(StatePersisted)
	o.metrics.ResearchRun(string(StatePersisted))

	logger.Info("Research completed",
		"json_file", jsonPath,
		"text_file", textPath,
		"sources", bundle.TotalSources,
		"total_content_length", bundle.TotalContentLength,
		"duration", time.Since(started).String())

	return &Result{
		Bundle:   bundle,
		Document: document,
		Selected: selected,
		JSONPath: jsonPath,
		TextPath: textPath,
	}, nil
}

func (o *Orchestrator) search(ctx context.Context, query string, maxResults int) ([]core.SearchHit, error) {
	sctx, cancel := context.WithTimeout(ctx, o.opts.SearchTimeout)
	defer cancel()
	return o.searcher.Search(sctx, query, maxResults)
}

// fetchAll extracts every selected hit through a bounded pool. Sources are
// slotted by rank so the output follows selection order, not completion order.
func (o *Orchestrator) fetchAll(ctx context.Context, selected []core.SearchHit) ([]core.ScrapedSource, error) {
	slots := make([]*core.ScrapedSource, len(selected))

	var g errgroup.Group
	g.SetLimit(o.opts.Concurrency)
	for i, hit := range selected {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			logger.Debug("Fetching URL", "index", i+1, "total", len(selected), "url", hit.URL)
			slots[i] = o.fetchOne(ctx, hit)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.enter(StateFiltering)
	sources := make([]core.ScrapedSource, 0, len(selected))
	for _, src := range slots {
		if src != nil {
			sources = append(sources, *src)
		}
	}
	return sources, nil
}

// fetchOne returns nil when the URL fails or yields too little content.
func (o *Orchestrator) fetchOne(ctx context.Context, hit core.SearchHit) *core.ScrapedSource {
	fctx, cancel := context.WithTimeout(ctx, o.opts.FetchTimeout)
	defer cancel()

	raw, err := o.extractor.Extract(fctx, hit.URL)
	if err != nil {
		logger.Warn("Skipping URL: extraction failed", "url", hit.URL, "error", err.Error())
		o.metrics.PageFetch("error")
		return nil
	}

	content := o.cascade.Clean(raw)
	if n := utf8.RuneCountInString(strings.TrimSpace(content)); n < o.opts.MinContentChars {
		logger.Warn("Skipping URL: not enough content", "url", hit.URL, "characters", n, "minimum", o.opts.MinContentChars)
		o.metrics.PageFetch("too_short")
		return nil
	}

	o.metrics.PageFetch("ok")
	src := core.NewScrapedSource(hit.URL, hit.Title, content)
	logger.Debug("Scraped URL", "url", hit.URL, "characters", src.Length)
	return &src
}

func (o *Orchestrator) enter(state State) {
	logger.Debug("Research state", "state", string(state))
	if o.opts.OnState != nil {
		o.opts.OnState(state)
	}
}

func (o *Orchestrator) fail(state State, reason string, cause error) error {
	o.enter(state)
	o.metrics.ResearchRun(string(state))
	f := &Failure{State: state, Reason: reason, Cause: cause}
	logger.Error("Research failed", f, "state", string(state))
	return f
}
