package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	LLM      LLM      `mapstructure:"llm"`
	Search   Search   `mapstructure:"search"`
	Research Research `mapstructure:"research"`
	Fetch    Fetch    `mapstructure:"fetch"`
	TTS      TTS      `mapstructure:"tts"`
	Pipeline Pipeline `mapstructure:"pipeline"`
	Logging  Logging  `mapstructure:"logging"`
	Metrics  Metrics  `mapstructure:"metrics"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	ConfigFile string `mapstructure:"config_file"`
}

// LLM holds chat-completion configuration
type LLM struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// Search holds search provider configuration
type Search struct {
	Provider   string             `mapstructure:"provider"`
	MaxResults int                `mapstructure:"max_results"`
	Timeout    string             `mapstructure:"timeout"`
	Region     string             `mapstructure:"region"`
	Google     GoogleSearchConfig `mapstructure:"google"`
	SerpAPI    SerpAPIConfig      `mapstructure:"serpapi"`
}

// GoogleSearchConfig holds Google Custom Search configuration
type GoogleSearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	SearchID string `mapstructure:"search_id"`
}

// SerpAPIConfig holds SerpAPI configuration
type SerpAPIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Research holds research orchestration configuration
type Research struct {
	TopN            int    `mapstructure:"top_n"`
	MinContentChars int    `mapstructure:"min_content_chars"`
	FetchTimeout    string `mapstructure:"fetch_timeout"`
	Concurrency     int    `mapstructure:"concurrency"`
	OutputDir       string `mapstructure:"output_dir"`
}

// Fetch holds page extraction configuration
type Fetch struct {
	UserAgent     string `mapstructure:"user_agent"`
	RenderJS      bool   `mapstructure:"render_js"`
	RespectRobots bool   `mapstructure:"respect_robots"`
	MaxBodyBytes  int64  `mapstructure:"max_body_bytes"`
}

// TTS holds text-to-speech configuration
type TTS struct {
	Provider      string       `mapstructure:"provider"`
	Voice         string       `mapstructure:"voice"`
	Speed         float32      `mapstructure:"speed"`
	MaxChunkChars int          `mapstructure:"max_chunk_chars"`
	ChunkDelay    string       `mapstructure:"chunk_delay"`
	Timeout       string       `mapstructure:"timeout"`
	OutputDir     string       `mapstructure:"output_dir"`
	Providers     TTSProviders `mapstructure:"providers"`
}

// TTSProviders holds per-provider credentials
type TTSProviders struct {
	Hume       APIKeyConfig `mapstructure:"hume"`
	OpenAI     APIKeyConfig `mapstructure:"openai"`
	ElevenLabs APIKeyConfig `mapstructure:"elevenlabs"`
}

// APIKeyConfig holds a single API key
type APIKeyConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Pipeline holds podcast pipeline configuration
type Pipeline struct {
	IntentMaxTokens    int     `mapstructure:"intent_max_tokens"`
	ResearchMaxTokens  int     `mapstructure:"research_max_tokens"`
	ScriptMaxTokens    int     `mapstructure:"script_max_tokens"`
	ScriptTemperature  float32 `mapstructure:"script_temperature"`
	WebResearch        string  `mapstructure:"web_research"`
	RequireWebResearch bool    `mapstructure:"require_web_research"`
	MaxResearchChars   int     `mapstructure:"max_research_chars"`
	MinScriptWords     int     `mapstructure:"min_script_words"`
	BlockOnGateFailure bool    `mapstructure:"block_on_gate_failure"`
	OutputDir          string  `mapstructure:"output_dir"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Metrics holds the Prometheus endpoint configuration
type Metrics struct {
	Addr string `mapstructure:"addr"`
}

var globalConfig *Config

// Load loads the configuration from .env, the config file and the environment
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".podcaster")
		v.SetConfigType("yaml")
	}

	setDefaults(v)
	bindEnvironmentVariables(v)

	v.SetEnvPrefix("PODCASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = v.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.debug", false)

	// LLM defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.gemini.model", "gemini-flash-lite-latest")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")

	// Search defaults
	v.SetDefault("search.provider", "duckduckgo")
	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.timeout", "10s")
	v.SetDefault("search.region", "us-en")

	// Research defaults
	v.SetDefault("research.top_n", 6)
	v.SetDefault("research.min_content_chars", 100)
	v.SetDefault("research.fetch_timeout", "30s")
	v.SetDefault("research.concurrency", 1)
	v.SetDefault("research.output_dir", ".")

	// Fetch defaults
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; podcaster/1.0)")
	v.SetDefault("fetch.render_js", false)
	v.SetDefault("fetch.respect_robots", true)
	v.SetDefault("fetch.max_body_bytes", 5<<20)

	// TTS defaults
	v.SetDefault("tts.provider", "hume")
	v.SetDefault("tts.speed", 1.0)
	v.SetDefault("tts.max_chunk_chars", 2000)
	v.SetDefault("tts.chunk_delay", "3s")
	v.SetDefault("tts.timeout", "60s")
	v.SetDefault("tts.output_dir", ".")

	// Pipeline defaults
	v.SetDefault("pipeline.intent_max_tokens", 800)
	v.SetDefault("pipeline.research_max_tokens", 2000)
	v.SetDefault("pipeline.script_max_tokens", 15000)
	v.SetDefault("pipeline.script_temperature", 0.8)
	v.SetDefault("pipeline.web_research", "auto")
	v.SetDefault("pipeline.require_web_research", false)
	v.SetDefault("pipeline.max_research_chars", 20000)
	v.SetDefault("pipeline.min_script_words", 1800)
	v.SetDefault("pipeline.block_on_gate_failure", false)
	v.SetDefault("pipeline.output_dir", ".")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.addr", "")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables(v *viper.Viper) {
	// Gemini API key - support multiple formats
	bindEnvKeys(v, "llm.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys(v, "llm.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	// Google Custom Search - support multiple formats
	bindEnvKeys(v, "search.google.api_key", []string{
		"GOOGLE_CUSTOM_SEARCH_API_KEY",
		"GOOGLE_CSE_API_KEY",
		"GOOGLE_SEARCH_API_KEY",
	})

	bindEnvKeys(v, "search.google.search_id", []string{
		"GOOGLE_CUSTOM_SEARCH_ID",
		"GOOGLE_CSE_ID",
		"GOOGLE_SEARCH_ENGINE_ID",
	})

	bindEnvKeys(v, "search.serpapi.api_key", []string{
		"SERPAPI_API_KEY",
		"SERPAPI_KEY",
	})

	// TTS providers
	bindEnvKeys(v, "tts.providers.hume.api_key", []string{
		"HUME_API_KEY",
	})

	bindEnvKeys(v, "tts.providers.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys(v, "tts.providers.elevenlabs.api_key", []string{
		"ELEVENLABS_API_KEY",
		"ELEVEN_LABS_API_KEY",
	})

	// General settings
	bindEnvKeys(v, "app.debug", []string{
		"DEBUG",
		"PODCASTER_DEBUG",
	})

	bindEnvKeys(v, "logging.level", []string{
		"PODCASTER_LOG_LEVEL",
		"LOG_LEVEL",
	})

	bindEnvKeys(v, "search.provider", []string{
		"PODCASTER_SEARCH_PROVIDER",
		"SEARCH_PROVIDER",
	})

	bindEnvKeys(v, "tts.provider", []string{
		"PODCASTER_TTS_PROVIDER",
		"TTS_PROVIDER",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	// Expand paths
	for _, dir := range []*string{&config.Research.OutputDir, &config.TTS.OutputDir, &config.Pipeline.OutputDir} {
		if *dir != "" {
			*dir = expandPath(*dir)
		}
	}

	config.LLM.Provider = strings.ToLower(strings.TrimSpace(config.LLM.Provider))
	config.Search.Provider = strings.ToLower(strings.TrimSpace(config.Search.Provider))
	config.TTS.Provider = strings.ToLower(strings.TrimSpace(config.TTS.Provider))
	config.Pipeline.WebResearch = strings.ToLower(strings.TrimSpace(config.Pipeline.WebResearch))

	// Validate durations
	durations := map[string]string{
		"search.timeout":         config.Search.Timeout,
		"research.fetch_timeout": config.Research.FetchTimeout,
		"tts.chunk_delay":        config.TTS.ChunkDelay,
		"tts.timeout":            config.TTS.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig checks enumerations and numeric ranges. Missing API keys are
// reported by the provider factories when a command actually needs them.
func validateConfig(config *Config) error {
	var errors []string

	switch config.LLM.Provider {
	case "openai", "gemini", "mock":
	default:
		errors = append(errors, fmt.Sprintf("Unknown LLM provider: %s. Supported: openai, gemini, mock", config.LLM.Provider))
	}

	switch config.Search.Provider {
	case "google":
		if config.Search.Google.APIKey == "" || config.Search.Google.SearchID == "" {
			errors = append(errors, "Google Custom Search requires both API key and Search ID. Set GOOGLE_CUSTOM_SEARCH_API_KEY and GOOGLE_CUSTOM_SEARCH_ID")
		}
	case "serpapi":
		if config.Search.SerpAPI.APIKey == "" {
			errors = append(errors, "SerpAPI requires API key. Set SERPAPI_API_KEY environment variable")
		}
	case "duckduckgo", "mock":
		// No validation needed for these providers
	default:
		errors = append(errors, fmt.Sprintf("Unknown search provider: %s. Supported: duckduckgo, google, serpapi, mock", config.Search.Provider))
	}

	switch config.TTS.Provider {
	case "hume", "openai", "elevenlabs", "mock":
	default:
		errors = append(errors, fmt.Sprintf("Unknown TTS provider: %s. Supported: hume, openai, elevenlabs, mock", config.TTS.Provider))
	}

	switch config.Pipeline.WebResearch {
	case "auto", "always", "never":
	default:
		errors = append(errors, fmt.Sprintf("Invalid pipeline.web_research: %s. Use auto, always or never", config.Pipeline.WebResearch))
	}

	if config.TTS.Speed < 0.5 || config.TTS.Speed > 2.0 {
		errors = append(errors, fmt.Sprintf("tts.speed must be between 0.5 and 2.0, got %.2f", config.TTS.Speed))
	}
	if config.TTS.MaxChunkChars <= 0 {
		errors = append(errors, "tts.max_chunk_chars must be positive")
	}
	if config.Search.MaxResults <= 0 || config.Research.TopN <= 0 {
		errors = append(errors, "search.max_results and research.top_n must be positive")
	}
	if config.Research.Concurrency <= 0 {
		errors = append(errors, "research.concurrency must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Duration parses a duration validated at load time, returning fallback when empty
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// LLMAPIKey returns the key for the configured LLM provider
func (c *Config) LLMAPIKey() string {
	switch c.LLM.Provider {
	case "gemini":
		return c.LLM.Gemini.APIKey
	case "openai":
		return c.LLM.OpenAI.APIKey
	default:
		return ""
	}
}

// LLMModel returns the model for the configured LLM provider
func (c *Config) LLMModel() string {
	if c.LLM.Provider == "gemini" {
		return c.LLM.Gemini.Model
	}
	return c.LLM.OpenAI.Model
}

// TTSAPIKey returns the key for the configured TTS provider
func (c *Config) TTSAPIKey() string {
	switch c.TTS.Provider {
	case "hume":
		return c.TTS.Providers.Hume.APIKey
	case "openai":
		return c.TTS.Providers.OpenAI.APIKey
	case "elevenlabs":
		return c.TTS.Providers.ElevenLabs.APIKey
	default:
		return ""
	}
}

// SearchProviderConfig returns configuration for creating a search provider
func (c *Config) SearchProviderConfig() map[string]string {
	switch c.Search.Provider {
	case "google":
		return map[string]string{
			"api_key":   c.Search.Google.APIKey,
			"search_id": c.Search.Google.SearchID,
		}
	case "serpapi":
		return map[string]string{
			"api_key": c.Search.SerpAPI.APIKey,
		}
	default:
		return map[string]string{}
	}
}

// HasValidLLMKey returns true if the configured LLM provider has a usable key
func (c *Config) HasValidLLMKey() bool {
	return c.LLM.Provider == "mock" || isValidAPIKey(c.LLMAPIKey())
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	// Check for common placeholder values
	placeholders := []string{
		"your-api-key", "your-openai-key", "your-gemini-key", "your-hume-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
}
