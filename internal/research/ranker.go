package research

import (
	"net/url"
	"sort"
	"strings"

	"podcaster/internal/core"
)

const (
	titleWeight     = 2.0
	snippetWeight   = 1.0
	authorityWeight = 1.0
)

// authorityDomains receive a flat bonus when a hit's host is the domain or one of its subdomains.
var authorityDomains = []string{
	"nytimes.com",
	"washingtonpost.com",
	"bbc.com",
	"reuters.com",
	"cnn.com",
}

// Rank scores hits against query and returns the topN highest scoring hits.
// Hits with equal scores keep their input order.
func Rank(hits []core.SearchHit, query string, topN int) []core.SearchHit {
	if len(hits) == 0 || topN <= 0 {
		return []core.SearchHit{}
	}

	scored := ScoreHits(hits, query)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topN > len(scored) {
		topN = len(scored)
	}
	ranked := make([]core.SearchHit, topN)
	for i := 0; i < topN; i++ {
		ranked[i] = scored[i].SearchHit
	}
	return ranked
}

// ScoreHits computes the lexical relevance score of every hit, preserving input order.
func ScoreHits(hits []core.SearchHit, query string) []core.ScoredHit {
	terms := strings.Fields(strings.ToLower(query))
	scored := make([]core.ScoredHit, len(hits))
	for i, hit := range hits {
		scored[i] = core.ScoredHit{SearchHit: hit, Score: Score(hit, terms)}
	}
	return scored
}

// Score returns 2 points per query term found in the title, 1 per term found
// in the snippet, and 1 for an authority domain. terms must be lower-cased.
func Score(hit core.SearchHit, terms []string) float64 {
	title := strings.ToLower(hit.Title)
	snippet := strings.ToLower(hit.Snippet)

	score := 0.0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += titleWeight
		}
		if strings.Contains(snippet, term) {
			score += snippetWeight
		}
	}
	if isAuthorityHost(hit.URL) {
		score += authorityWeight
	}
	return score
}

func isAuthorityHost(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return false
	}
	for _, domain := range authorityDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
