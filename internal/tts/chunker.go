package tts

import (
	"strings"
	"unicode/utf8"
)

const (
	paragraphBreak    = "\n\n"
	sentenceBoundary  = ". "
	DefaultChunkChars = 2000
)

// splitLevel describes one granularity of the chunker. A unit that does not
// fit at this level is split with next and fed back one level down.
type splitLevel struct {
	sep  string
	next func(string) []string
}

var (
	sentenceLevel  = &splitLevel{sep: ""}
	paragraphLevel = &splitLevel{
		sep: paragraphBreak,
		next: func(p string) []string {
			return strings.SplitAfter(p, sentenceBoundary)
		},
	}
)

type accumulator struct {
	max    int
	cur    string
	chunks []string
}

// SplitText splits text into chunks of at most maxChunkChars characters.
// Paragraphs are packed greedily; a paragraph that is too long on its own is
// packed sentence by sentence, and a sentence that is still too long is cut
// at exactly maxChunkChars with the remainder carried into the next chunk.
func SplitText(text string, maxChunkChars int) []string {
	if maxChunkChars <= 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	acc := &accumulator{max: maxChunkChars}
	for _, paragraph := range strings.Split(text, paragraphBreak) {
		acc.add(paragraph, paragraphLevel)
	}
	acc.flush()
	return acc.chunks
}

func (a *accumulator) add(unit string, level *splitLevel) {
	if strings.TrimSpace(unit) == "" {
		return
	}
	if a.fits(unit, level.sep) {
		if a.cur != "" {
			a.cur += level.sep
		}
		a.cur += unit
		return
	}

	a.flush()
	if utf8.RuneCountInString(unit) <= a.max {
		a.cur = unit
		return
	}

	if level.next != nil {
		for _, sub := range level.next(unit) {
			a.add(sub, sentenceLevel)
		}
		return
	}

	runes := []rune(unit)
	for len(runes) > a.max {
		a.emit(string(runes[:a.max]))
		runes = runes[a.max:]
	}
	a.cur = string(runes)
}

func (a *accumulator) fits(unit, sep string) bool {
	size := utf8.RuneCountInString(unit)
	if a.cur == "" {
		return size <= a.max
	}
	return utf8.RuneCountInString(a.cur)+utf8.RuneCountInString(sep)+size <= a.max
}

func (a *accumulator) flush() {
	a.emit(a.cur)
	a.cur = ""
}

func (a *accumulator) emit(chunk string) {
	if chunk = strings.TrimSpace(chunk); chunk != "" {
		a.chunks = append(a.chunks, chunk)
	}
}
