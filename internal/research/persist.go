package research

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"podcaster/internal/core"
)

var (
	unsafeQueryChars = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	separatorRuns    = regexp.MustCompile(`[-\s]+`)
)

// SafeQuery turns a free-text query into a filename fragment: characters other
// than letters, digits, underscore, whitespace and hyphen are dropped, and runs
// of whitespace or hyphens become a single underscore.
func SafeQuery(query string) string {
	safe := unsafeQueryChars.ReplaceAllString(query, "")
	safe = strings.TrimSpace(safe)
	safe = separatorRuns.ReplaceAllString(safe, "_")
	if safe == "" {
		return "query"
	}
	return safe
}

// Consolidate renders sources into the human-readable research document.
func Consolidate(query string, sources []core.ScrapedSource) string {
	rule := strings.Repeat("=", 80)
	var b strings.Builder

	fmt.Fprintf(&b, "RESEARCH RESULTS FOR: %s\n", query)
	b.WriteString(rule + "\n\n")
	for i, src := range sources {
		fmt.Fprintf(&b, "SOURCE %d: %s\n", i+1, src.Title)
		fmt.Fprintf(&b, "URL: %s\n", src.URL)
		fmt.Fprintf(&b, "CONTENT LENGTH: %d characters\n", src.Length)
		b.WriteString(strings.Repeat("-", 40) + "\n")
		b.WriteString(src.Content)
		b.WriteString("\n\n" + rule + "\n\n")
	}
	return b.String()
}

// Paths returns the JSON and text artifact paths for a bundle.
func Paths(dir string, bundle core.ResearchBundle) (jsonPath, textPath string) {
	base := fmt.Sprintf("research_%s_%s", SafeQuery(bundle.Query), bundle.Timestamp)
	return filepath.Join(dir, base+".json"), filepath.Join(dir, base+".txt")
}

// Save writes the bundle as indented JSON and the consolidated document as
// plain text into dir, creating it when needed.
func Save(dir string, bundle core.ResearchBundle, document string) (jsonPath, textPath string, err error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	jsonPath, textPath = Paths(dir, bundle)

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal research bundle: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}
	if err := os.WriteFile(textPath, []byte(document), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", textPath, err)
	}
	return jsonPath, textPath, nil
}

// Load reads a bundle previously written by Save.
func Load(path string) (*core.ResearchBundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read research bundle: %w", err)
	}
	var bundle core.ResearchBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse research bundle %s: %w", path, err)
	}
	return &bundle, nil
}
