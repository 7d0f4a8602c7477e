package fetch

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

const (
	noiseSelectors = "script, style, nav, footer, header, aside, form, iframe, noscript, figure, .sidebar, #sidebar, .ad, .advertisement, .popup, .modal, .cookie-banner"
	blockSelectors = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre"
)

// mainContentSelectors are tried in order when readability cannot isolate the article.
var mainContentSelectors = []string{
	"article", "main", ".main-content", ".entry-content", ".post-content", ".post-body", ".article-body",
	"[role='main']",
	".content", "#content",
}

// HTMLToText extracts the page title and main text from raw HTML. Each block
// element becomes one line.
func HTMLToText(rawHTML string, pageURL *url.URL) (title, text string, err error) {
	if pageURL == nil {
		pageURL = &url.URL{}
	}

	article, rerr := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if rerr == nil && strings.TrimSpace(article.Content) != "" {
		doc, derr := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
		if derr == nil {
			text = blocksToText(doc.Selection)
		}
		if text == "" {
			text = strings.TrimSpace(article.TextContent)
		}
		title = strings.TrimSpace(article.Title)
	}

	if text != "" {
		if title == "" {
			title = extractTitle(rawHTML)
		}
		return title, text, nil
	}

	// Fall back to selector-based extraction on the full document.
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", "", err
	}
	doc.Find(noiseSelectors).Remove()

	for _, selector := range mainContentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			if text = blocksToText(sel); text != "" {
				break
			}
		}
	}
	if text == "" {
		text = blocksToText(doc.Find("body"))
	}
	return extractTitleFromDoc(doc), text, nil
}

// blocksToText writes one line per block element, skipping containers whose
// text is already covered by nested blocks.
func blocksToText(root *goquery.Selection) string {
	root.Find(noiseSelectors).Remove()

	var lines []string
	root.Find(blockSelectors).Each(func(_ int, item *goquery.Selection) {
		if item.Find(blockSelectors).Length() > 0 {
			return
		}
		line := strings.Join(strings.Fields(item.Text()), " ")
		if line != "" {
			lines = append(lines, line)
		}
	})
	return strings.Join(lines, "\n")
}

// extractTitle tries to extract the title from HTML content.
func extractTitle(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	return extractTitleFromDoc(doc)
}

func extractTitleFromDoc(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("head title").First().Text()); title != "" {
		return title
	}
	if ogTitle, _ := doc.Find("meta[property='og:title']").Attr("content"); strings.TrimSpace(ogTitle) != "" {
		return strings.TrimSpace(ogTitle)
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
