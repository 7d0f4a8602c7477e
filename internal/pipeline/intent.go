package pipeline

import (
	"strings"

	"podcaster/internal/core"
)

// Intent field defaults used when the model omits a field.
const (
	DefaultCategories     = "Unknown"
	DefaultTimeline       = "Unknown"
	DefaultDepth          = "Unknown"
	DefaultRecencyLevel   = "SHORT_TERM"
	DefaultDataSources    = "HISTORICAL"
	DefaultSearchStrategy = "Unknown"
	DefaultMoodTone       = "CASUAL"
	DefaultNotes          = "Analysis completed"
)

// NewIntent returns an intent for query with every field at its default.
func NewIntent(query, userProfile string) core.Intent {
	return core.Intent{
		Query:             query,
		UserProfile:       userProfile,
		PrimaryCategories: DefaultCategories,
		Timeline:          DefaultTimeline,
		Depth:             DefaultDepth,
		RecencyLevel:      DefaultRecencyLevel,
		DataSources:       DefaultDataSources,
		SearchStrategy:    DefaultSearchStrategy,
		MoodTone:          DefaultMoodTone,
		Notes:             DefaultNotes,
	}
}

// ParseIntent extracts the structured intent fields from a free-text model
// response. It never fails: fields that are missing or empty keep their
// defaults, and the first occurrence of a field wins. Keys are matched in
// either "MOOD_TONE:" or "Mood/Tone:" style, with markdown emphasis ignored.
func ParseIntent(query, userProfile, response string) core.Intent {
	intent := NewIntent(query, userProfile)
	intent.RawResponse = response

	seen := make(map[string]bool)
	for _, line := range strings.Split(response, "\n") {
		key, value, ok := splitField(line)
		if !ok || seen[key] {
			continue
		}

		var field *string
		switch key {
		case "PRIMARY_CATEGORIES":
			field = &intent.PrimaryCategories
		case "TIMELINE":
			field = &intent.Timeline
		case "DEPTH":
			field = &intent.Depth
		case "RECENCY_LEVEL":
			field = &intent.RecencyLevel
		case "DATA_SOURCES":
			field = &intent.DataSources
		case "SEARCH_STRATEGY":
			field = &intent.SearchStrategy
		case "MOOD_TONE":
			field = &intent.MoodTone
		case "NOTES":
			field = &intent.Notes
		default:
			continue
		}
		*field = value
		seen[key] = true
	}
	return intent
}

// splitField splits "Key: value" into a normalised key and a trimmed value.
func splitField(line string) (key, value string, ok bool) {
	line = strings.TrimLeft(strings.TrimSpace(line), "-*#> ")
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", "", false
	}

	key = strings.Trim(line[:idx], "* ")
	key = strings.ToUpper(key)
	key = strings.NewReplacer(" ", "_", "/", "_", "-", "_").Replace(key)

	value = strings.TrimSpace(line[idx+1:])
	value = strings.TrimSpace(strings.Trim(value, "*"))
	if value == "" {
		return "", "", false
	}
	return key, value, true
}

// wantsWebResearch reports whether the intent asks for current information.
func wantsWebResearch(intent core.Intent) bool {
	return !strings.EqualFold(strings.TrimSpace(intent.DataSources), "HISTORICAL")
}
