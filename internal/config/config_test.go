package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY",
		"HUME_API_KEY", "ELEVENLABS_API_KEY", "ELEVEN_LABS_API_KEY", "SERPAPI_API_KEY", "SERPAPI_KEY",
		"PODCASTER_LOG_LEVEL", "LOG_LEVEL", "PODCASTER_SEARCH_PROVIDER", "SEARCH_PROVIDER",
		"PODCASTER_TTS_PROVIDER", "TTS_PROVIDER", "DEBUG", "PODCASTER_DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Provider != "openai" || cfg.LLM.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("Expected openai/gpt-4o-mini, got %s/%s", cfg.LLM.Provider, cfg.LLM.OpenAI.Model)
	}
	if cfg.Search.Provider != "duckduckgo" || cfg.Search.MaxResults != 10 {
		t.Errorf("Expected duckduckgo with 10 results, got %s/%d", cfg.Search.Provider, cfg.Search.MaxResults)
	}
	if cfg.Research.TopN != 6 || cfg.Research.MinContentChars != 100 {
		t.Errorf("Expected top 6 and 100 chars, got %d/%d", cfg.Research.TopN, cfg.Research.MinContentChars)
	}
	if cfg.TTS.Provider != "hume" || cfg.TTS.MaxChunkChars != 2000 {
		t.Errorf("Expected hume with 2000 chars, got %s/%d", cfg.TTS.Provider, cfg.TTS.MaxChunkChars)
	}
	if Duration(cfg.TTS.ChunkDelay, 0) != 3*time.Second {
		t.Errorf("Expected 3s chunk delay, got %s", cfg.TTS.ChunkDelay)
	}
	if cfg.Pipeline.ScriptMaxTokens != 15000 || cfg.Pipeline.WebResearch != "auto" {
		t.Errorf("Unexpected pipeline defaults %+v", cfg.Pipeline)
	}
	if !cfg.Fetch.RespectRobots || cfg.Fetch.RenderJS {
		t.Errorf("Expected robots on and JS rendering off")
	}
	if cfg.HasValidLLMKey() {
		t.Error("Expected no LLM key without environment")
	}
}

func TestLoad_EnvironmentAliases(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_AI_API_KEY", "gem-key")
	t.Setenv("HUME_API_KEY", "hume-key")
	t.Setenv("PODCASTER_LOG_LEVEL", "debug")
	t.Setenv("PODCASTER_TTS_PROVIDER", "ElevenLabs")
	t.Setenv("ELEVEN_LABS_API_KEY", "el-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLM.Gemini.APIKey != "gem-key" {
		t.Errorf("Expected gemini key from alias, got %q", cfg.LLM.Gemini.APIKey)
	}
	if cfg.TTS.Providers.Hume.APIKey != "hume-key" {
		t.Errorf("Expected hume key, got %q", cfg.TTS.Providers.Hume.APIKey)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug log level, got %q", cfg.Logging.Level)
	}
	if cfg.TTS.Provider != "elevenlabs" || cfg.TTSAPIKey() != "el-key" {
		t.Errorf("Expected elevenlabs with key, got %s/%q", cfg.TTS.Provider, cfg.TTSAPIKey())
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "podcaster.yaml")
	content := `
llm:
  provider: gemini
  gemini:
    api_key: file-key
research:
  top_n: 3
  concurrency: 4
tts:
  provider: mock
  chunk_delay: 500ms
pipeline:
  web_research: always
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.LLMAPIKey() != "file-key" || cfg.LLMModel() != "gemini-flash-lite-latest" {
		t.Errorf("Expected gemini key and default model, got %q/%q", cfg.LLMAPIKey(), cfg.LLMModel())
	}
	if cfg.Research.TopN != 3 || cfg.Research.Concurrency != 4 {
		t.Errorf("Expected top 3 with 4 workers, got %d/%d", cfg.Research.TopN, cfg.Research.Concurrency)
	}
	if Duration(cfg.TTS.ChunkDelay, time.Second) != 500*time.Millisecond {
		t.Errorf("Expected 500ms delay, got %s", cfg.TTS.ChunkDelay)
	}
	if cfg.Pipeline.WebResearch != "always" {
		t.Errorf("Expected always, got %s", cfg.Pipeline.WebResearch)
	}
	if cfg.App.ConfigFile != path {
		t.Errorf("Expected config file %s, got %s", path, cfg.App.ConfigFile)
	}

	again, _ := Load("")
	if again != cfg {
		t.Error("Expected Load to return the cached configuration")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad duration", "tts:\n  timeout: soon\n", "invalid duration for tts.timeout"},
		{"unknown tts provider", "tts:\n  provider: google\n", "Unknown TTS provider: google"},
		{"speed out of range", "tts:\n  speed: 3\n", "tts.speed must be between"},
		{"web research mode", "pipeline:\n  web_research: sometimes\n", "Invalid pipeline.web_research"},
		{"google without id", "search:\n  provider: google\n  google:\n    api_key: k\n", "requires both API key and Search ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			path := filepath.Join(t.TempDir(), "podcaster.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}

			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSearchProviderConfig(t *testing.T) {
	cfg := &Config{Search: Search{
		Provider: "google",
		Google:   GoogleSearchConfig{APIKey: "k", SearchID: "cx"},
	}}
	got := cfg.SearchProviderConfig()
	if got["api_key"] != "k" || got["search_id"] != "cx" {
		t.Errorf("Unexpected google config %v", got)
	}

	cfg.Search.Provider = "duckduckgo"
	if len(cfg.SearchProviderConfig()) != 0 {
		t.Error("Expected empty config for duckduckgo")
	}
}

func TestIsValidAPIKey(t *testing.T) {
	if isValidAPIKey("") || isValidAPIKey("CHANGE_ME") {
		t.Error("Expected empty and placeholder keys to be invalid")
	}
	if !isValidAPIKey("sk-real") {
		t.Error("Expected real key to be valid")
	}
}

func TestDuration(t *testing.T) {
	if Duration("", time.Second) != time.Second {
		t.Error("Expected fallback for empty value")
	}
	if Duration("2m", time.Second) != 2*time.Minute {
		t.Error("Expected parsed duration")
	}
}
