package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Central Bank Raises Rates</title>
    <meta property="og:title" content="OG Title">
</head>
<body>
    <nav><a href="/">Home</a><a href="/news">News</a></nav>
    <article>
        <h1>Central Bank Raises Rates</h1>
        <p>The central bank raised interest rates by 0.25 percent today, citing persistent inflation across the services sector and a tight labour market.</p>
        <p>Officials said further increases would depend on incoming data, and that the committee remained united in its assessment of the outlook for the coming year.</p>
        <p>Markets had largely priced in the move, and bond yields were little changed after the announcement was published in the early afternoon.</p>
    </article>
    <footer>Copyright 2024</footer>
</body>
</html>`

func newTestServer(t *testing.T, robots string, robotsHits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		if robotsHits != nil {
			atomic.AddInt32(robotsHits, 1)
		}
		if robots == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprint(w, robots)
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, articleHTML)
	})
	mux.HandleFunc("/private/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, articleHTML)
	})
	mux.HandleFunc("/notes.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, "plain text body")
	})
	mux.HandleFunc("/image", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

func TestHTTPExtractor_Article(t *testing.T) {
	server := newTestServer(t, "", nil)
	defer server.Close()

	e := NewHTTPExtractor(Options{RespectRobots: true})
	text, err := e.Extract(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !strings.Contains(text, "raised interest rates by 0.25 percent") {
		t.Errorf("Expected article paragraph in text, got %q", text)
	}
	if !strings.Contains(text, "bond yields were little changed") {
		t.Errorf("Expected last paragraph in text, got %q", text)
	}
}

func TestHTTPExtractor_RobotsDisallow(t *testing.T) {
	var hits int32
	server := newTestServer(t, "User-agent: *\nDisallow: /private\n", &hits)
	defer server.Close()

	e := NewHTTPExtractor(Options{RespectRobots: true})

	_, err := e.Extract(context.Background(), server.URL+"/private/article")
	if !errors.Is(err, ErrDisallowedByRobots) {
		t.Errorf("Expected ErrDisallowedByRobots, got %v", err)
	}

	if _, err := e.Extract(context.Background(), server.URL+"/article"); err != nil {
		t.Errorf("Expected allowed path to succeed, got %v", err)
	}

	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("Expected robots.txt to be fetched once per host, got %d", got)
	}
}

func TestHTTPExtractor_RobotsIgnoredWhenDisabled(t *testing.T) {
	server := newTestServer(t, "User-agent: *\nDisallow: /\n", nil)
	defer server.Close()

	e := NewHTTPExtractor(Options{RespectRobots: false})
	if _, err := e.Extract(context.Background(), server.URL+"/article"); err != nil {
		t.Errorf("Expected extraction to ignore robots.txt, got %v", err)
	}
}

func TestHTTPExtractor_ContentTypes(t *testing.T) {
	server := newTestServer(t, "", nil)
	defer server.Close()

	e := NewHTTPExtractor(Options{RespectRobots: false})

	text, err := e.Extract(context.Background(), server.URL+"/notes.txt")
	if err != nil || text != "plain text body" {
		t.Errorf("Expected plain text body, got %q (%v)", text, err)
	}

	if _, err := e.Extract(context.Background(), server.URL+"/image"); !errors.Is(err, ErrUnsupportedContent) {
		t.Errorf("Expected ErrUnsupportedContent, got %v", err)
	}
}

func TestHTTPExtractor_Errors(t *testing.T) {
	server := newTestServer(t, "", nil)
	defer server.Close()

	e := NewHTTPExtractor(Options{RespectRobots: false})

	_, err := e.Extract(context.Background(), server.URL+"/missing")
	if err == nil || !strings.Contains(err.Error(), "status code 404") {
		t.Errorf("Expected error to mention status code 404, got: %v", err)
	}

	if _, err := e.Extract(context.Background(), "invalid-url"); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestExtractTitle(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		expected string
	}{
		{"title tag", `<html><head><title> Page Title </title></head><body><h1>H1</h1></body></html>`, "Page Title"},
		{"og title", `<html><head><meta property="og:title" content="OG Title"></head><body><h1>H1</h1></body></html>`, "OG Title"},
		{"h1 fallback", `<html><body><h1>Heading</h1></body></html>`, "Heading"},
		{"none", `<html><body><p>text</p></body></html>`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractTitle(tc.html); got != tc.expected {
				t.Errorf("Expected title %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestBlocksToText(t *testing.T) {
	html := `<div>
<h2>Heading   text</h2>
<p>First
paragraph.</p>
<ul><li><p>Nested paragraph</p></li><li>Plain item</li></ul>
<script>var x = 1;</script>
</div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("Failed to parse HTML: %v", err)
	}

	got := blocksToText(doc.Selection)
	want := "Heading text\nFirst paragraph.\nNested paragraph\nPlain item"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestCleanPDFText(t *testing.T) {
	raw := "  Title line  \n\n ab \nBody text continues here\n"
	want := "Title line\nBody text continues here"
	if got := cleanPDFText(raw); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestDetectPDFURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/report.PDF":        true,
		"https://example.com/report.pdf?dl=1":   true,
		"https://example.com/pdf-guide":         false,
		"https://example.com/article.html":      false,
	}
	for in, want := range tests {
		if got := DetectPDFURL(in); got != want {
			t.Errorf("DetectPDFURL(%q): expected %v, got %v", in, want, got)
		}
	}
}

type stubExtractor struct {
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, url string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestFallback(t *testing.T) {
	primary := &stubExtractor{err: errors.New("empty page")}
	secondary := &stubExtractor{text: "rendered"}

	text, err := Fallback{Primary: primary, Secondary: secondary}.Extract(context.Background(), "https://a.example")
	if err != nil || text != "rendered" {
		t.Errorf("Expected secondary text, got %q (%v)", text, err)
	}

	blocked := &stubExtractor{err: fmt.Errorf("x: %w", ErrDisallowedByRobots)}
	secondary.calls = 0
	if _, err := (Fallback{Primary: blocked, Secondary: secondary}).Extract(context.Background(), "https://a.example"); !errors.Is(err, ErrDisallowedByRobots) {
		t.Errorf("Expected robots error to be returned, got %v", err)
	}
	if secondary.calls != 0 {
		t.Error("Expected secondary not to run for robots-disallowed URLs")
	}
}

func TestNewRenderingExtractor_SplitsBudget(t *testing.T) {
	fb := NewRenderingExtractor(Options{Timeout: 10 * time.Second}, nil)

	chrome, ok := fb.Primary.(*ChromeExtractor)
	if !ok {
		t.Fatalf("Expected ChromeExtractor primary, got %T", fb.Primary)
	}
	if chrome.timeout != 5*time.Second {
		t.Errorf("Expected chrome timeout 5s, got %v", chrome.timeout)
	}
	if _, ok := fb.Secondary.(*HTTPExtractor); !ok {
		t.Errorf("Expected HTTPExtractor secondary, got %T", fb.Secondary)
	}

	if got := NewRenderingExtractor(Options{}, nil).Primary.(*ChromeExtractor).timeout; got != DefaultOptions().Timeout/2 {
		t.Errorf("Expected half the default timeout, got %v", got)
	}
}
