package research

import (
	"testing"

	"podcaster/internal/core"
)

func TestRank_PrefersTitleAndAuthority(t *testing.T) {
	hits := []core.SearchHit{
		{Title: "cat video", URL: "https://youtube.com/y", Snippet: "..."},
		{Title: "AI trends 2024 report", URL: "https://reuters.com/x", Snippet: "..."},
	}

	ranked := Rank(hits, "AI trends 2024", 1)
	if len(ranked) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(ranked))
	}
	if ranked[0].URL != "https://reuters.com/x" {
		t.Errorf("Expected Reuters hit first, got %s", ranked[0].URL)
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank(nil, "anything", 5); len(got) != 0 {
		t.Errorf("Expected empty result, got %d hits", len(got))
	}
	hits := []core.SearchHit{{Title: "a"}}
	if got := Rank(hits, "a", 0); len(got) != 0 {
		t.Errorf("Expected empty result for topN 0, got %d hits", len(got))
	}
}

func TestRank_StableForTies(t *testing.T) {
	hits := []core.SearchHit{
		{Title: "first", URL: "https://a.example"},
		{Title: "second", URL: "https://b.example"},
		{Title: "golang news", URL: "https://c.example"},
		{Title: "third", URL: "https://d.example"},
	}

	ranked := Rank(hits, "golang", 10)
	if len(ranked) != 4 {
		t.Fatalf("Expected 4 results, got %d", len(ranked))
	}
	want := []string{"golang news", "first", "second", "third"}
	for i, title := range want {
		if ranked[i].Title != title {
			t.Errorf("Position %d: expected %q, got %q", i, title, ranked[i].Title)
		}
	}
}

func TestRank_ScoresNonIncreasing(t *testing.T) {
	hits := []core.SearchHit{
		{Title: "nothing relevant", URL: "https://x.example", Snippet: "unrelated"},
		{Title: "climate policy", URL: "https://www.bbc.com/news", Snippet: "climate policy explained"},
		{Title: "policy", URL: "https://y.example", Snippet: "climate"},
		{Title: "", URL: "", Snippet: ""},
	}

	ranked := Rank(hits, "Climate Policy", 3)
	if len(ranked) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(ranked))
	}

	terms := []string{"climate", "policy"}
	prev := Score(ranked[0], terms)
	for _, hit := range ranked[1:] {
		s := Score(hit, terms)
		if s > prev {
			t.Errorf("Expected non-increasing scores, got %v after %v", s, prev)
		}
		prev = s
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		hit  core.SearchHit
		want float64
	}{
		{"title and snippet", core.SearchHit{Title: "AI Trends", Snippet: "new ai research", URL: "https://example.com"}, 2*2 + 1},
		{"authority subdomain", core.SearchHit{Title: "other", URL: "https://edition.cnn.com/story"}, 1},
		{"lookalike domain", core.SearchHit{Title: "other", URL: "https://notcnn.com/story"}, 0},
		{"garbled url", core.SearchHit{Title: "ai", URL: "::not a url"}, 2},
		{"empty", core.SearchHit{}, 0},
	}

	terms := []string{"ai", "trends"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.hit, terms); got != tt.want {
				t.Errorf("Expected score %v, got %v", tt.want, got)
			}
		})
	}
}
