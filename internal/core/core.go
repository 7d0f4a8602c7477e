package core

import (
	"time"
	"unicode/utf8"
)

// SnippetLimit is the maximum number of characters kept in a search snippet
// before it is truncated with an ellipsis marker.
const SnippetLimit = 200

// SearchHit represents one raw search-engine result before ranking.
type SearchHit struct {
	Title   string `json:"title"`   // Result title (anchor text)
	URL     string `json:"url"`     // Absolute http/https URL
	Snippet string `json:"snippet"` // Short description, at most SnippetLimit chars plus "..."
}

// NewSearchHit builds a SearchHit, truncating the snippet to SnippetLimit characters.
func NewSearchHit(title, url, snippet string) SearchHit {
	return SearchHit{
		Title:   title,
		URL:     url,
		Snippet: TruncateSnippet(snippet),
	}
}

// TruncateSnippet cuts s to SnippetLimit characters and appends "..." when it was longer.
func TruncateSnippet(s string) string {
	if utf8.RuneCountInString(s) <= SnippetLimit {
		return s
	}
	runes := []rune(s)
	return string(runes[:SnippetLimit]) + "..."
}

// ScoredHit is a SearchHit with its lexical relevance score. It only lives during ranking.
type ScoredHit struct {
	SearchHit
	Score float64 `json:"score"` // Non-negative relevance score
}

// ScrapedSource represents the cleaned content extracted from one selected URL.
type ScrapedSource struct {
	URL     string `json:"url"`     // Source URL
	Title   string `json:"title"`   // Title taken from the search hit
	Content string `json:"content"` // Cleaned prose
	Length  int    `json:"length"`  // Character count of Content
}

// NewScrapedSource builds a ScrapedSource and computes its character length.
func NewScrapedSource(url, title, content string) ScrapedSource {
	return ScrapedSource{
		URL:     url,
		Title:   title,
		Content: content,
		Length:  utf8.RuneCountInString(content),
	}
}

// ResearchBundle is the persisted outcome of a research run.
type ResearchBundle struct {
	Query              string          `json:"query"`                // Original query text
	Timestamp          string          `json:"timestamp"`            // Run timestamp, YYYYMMDD_HHMMSS
	Sources            []ScrapedSource `json:"sources"`              // Sources in ranked selection order
	TotalSources       int             `json:"total_sources"`        // len(Sources)
	TotalContentLength int             `json:"total_content_length"` // Sum of source lengths
}

// TimestampLayout is the layout used for bundle timestamps and artifact names.
const TimestampLayout = "20060102_150405"

// NewResearchBundle assembles a bundle and fills in the aggregate counters.
func NewResearchBundle(query string, at time.Time, sources []ScrapedSource) ResearchBundle {
	total := 0
	for _, s := range sources {
		total += s.Length
	}
	return ResearchBundle{
		Query:              query,
		Timestamp:          at.Format(TimestampLayout),
		Sources:            sources,
		TotalSources:       len(sources),
		TotalContentLength: total,
	}
}

// TextChunk is a bounded-length piece of a larger text sent to a speech provider.
type TextChunk struct {
	Index int    `json:"index"` // Position in the chunk sequence
	Text  string `json:"text"`  // Chunk text
}

// AudioSegment holds the encoded audio returned for one TextChunk.
type AudioSegment struct {
	Index int    `json:"index"` // Index of the chunk this audio belongs to
	Data  []byte `json:"-"`     // Raw encoded audio bytes
}

// Intent is the structured result of the intent-analysis step.
type Intent struct {
	Query             string `json:"query"`
	UserProfile       string `json:"user_profile"`
	RawResponse       string `json:"raw_response"`
	PrimaryCategories string `json:"primary_categories"`
	Timeline          string `json:"timeline"`
	Depth             string `json:"depth"`
	RecencyLevel      string `json:"recency_level"`
	DataSources       string `json:"data_sources"`
	SearchStrategy    string `json:"search_strategy"`
	MoodTone          string `json:"mood_tone"`
	Notes             string `json:"notes"`
}

// Episode is the outcome of a full pipeline run.
type Episode struct {
	ID               string          `json:"id"`                // Run identifier
	Query            string          `json:"query"`             // User query
	Intent           Intent          `json:"intent"`            // Parsed intent analysis
	Sources          []ScrapedSource `json:"sources"`           // Web sources used for research
	ResearchText     string          `json:"research_text"`     // LLM research notes
	Script           string          `json:"script"`            // Final narration script
	ScriptPath       string          `json:"script_path"`       // Where the script was saved
	AudioPath        string          `json:"audio_path"`        // Where the audio was saved
	SuccessfulChunks int             `json:"successful_chunks"` // Audio chunks synthesized
	TotalChunks      int             `json:"total_chunks"`      // Audio chunks attempted
	GeneratedAt      time.Time       `json:"generated_at"`      // Completion time
}
