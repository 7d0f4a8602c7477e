package fetch

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/ledongthuc/pdf"

	"podcaster/internal/logger"
)

// ExtractPDFText extracts the plain text of every page of a PDF document.
func ExtractPDFText(r io.ReaderAt, size int64) (string, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var textBuilder strings.Builder
	pageCount := pdfReader.NumPage()
	for i := 1; i <= pageCount; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("Failed to extract PDF page text", "page", i, "error", err.Error())
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	return cleanPDFText(textBuilder.String()), nil
}

// cleanPDFText trims every line and drops blank lines and stray fragments
func cleanPDFText(rawText string) string {
	lines := strings.Split(rawText, "\n")
	cleanLines := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 2 {
			cleanLines = append(cleanLines, trimmed)
		}
	}
	return strings.Join(cleanLines, "\n")
}

// DetectPDFURL checks if a URL path points to a PDF
func DetectPDFURL(rawURL string) bool {
	if u, err := url.Parse(rawURL); err == nil {
		return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
}
