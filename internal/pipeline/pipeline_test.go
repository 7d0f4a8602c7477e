package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"podcaster/internal/core"
	"podcaster/internal/llm"
	"podcaster/internal/research"
	"podcaster/internal/tts"
)

const (
	intentMarker   = "expert content analyst"
	researchMarker = "expert content researcher"
	scriptMarker   = "podcast host scriptwriter"

	currentIntent = `PRIMARY_CATEGORIES: NEWS, ECONOMICS, FINANCE
TIMELINE: Recent
DEPTH: Deep
RECENCY_LEVEL: SHORT_TERM
DATA_SOURCES: CURRENT
SEARCH_STRATEGY: Search central bank announcements
MOOD_TONE: SERIOUS
NOTES: The listener wants to understand the latest rate decision.`

	generatedScript = "So the central bank did it again. “Another hike,” they said — and markets shrugged…\n\nHere’s why that matters for your mortgage."
)

var fixedTime = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

type fakeResearcher struct {
	calls  int
	err    error
	result *research.Result
}

func (f *fakeResearcher) Research(ctx context.Context, query string, maxResults, topN int) (*research.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	sources := []core.ScrapedSource{
		core.NewScrapedSource("https://reuters.com/rates", "Rates rise", "The central bank raised interest rates by 0.25 percent today."),
	}
	return &research.Result{
		Bundle:   core.NewResearchBundle(query, fixedTime, sources),
		Document: research.Consolidate(query, sources),
	}, nil
}

type testEnv struct {
	completer  *llm.MockCompleter
	researcher *fakeResearcher
	speaker    *tts.MockSpeaker
	progress   []string
	dir        string
	pipeline   *Pipeline
}

func newTestEnv(t *testing.T, intent string, configure func(*Config)) *testEnv {
	t.Helper()
	env := &testEnv{
		completer: llm.NewMockCompleter().
			On(intentMarker, intent).
			On(researchMarker, "Research notes about the rate decision.").
			On(scriptMarker, generatedScript),
		researcher: &fakeResearcher{},
		speaker:    tts.NewMockSpeaker(),
		dir:        t.TempDir(),
	}

	config := DefaultConfig()
	config.OutputDir = env.dir
	config.AudioExtension = "bin"
	if configure != nil {
		configure(config)
	}

	p, err := NewBuilder().
		WithCompleter(env.completer).
		WithResearcher(env.researcher).
		WithSynthesizer(tts.NewSynthesizer(env.speaker, tts.Options{})).
		WithConfig(config).
		WithProgress(func(msg string) { env.progress = append(env.progress, msg) }).
		WithClock(func() time.Time { return fixedTime }).
		WithIDGenerator(func() string { return "episode-1" }).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	env.pipeline = p
	return env
}

func TestPipeline_Run(t *testing.T) {
	env := newTestEnv(t, currentIntent, nil)

	episode, err := env.pipeline.Run(context.Background(), "Interest rates today?", "economist")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if episode.ID != "episode-1" {
		t.Errorf("Expected episode ID episode-1, got %s", episode.ID)
	}
	if episode.Intent.DataSources != "CURRENT" || episode.Intent.MoodTone != "SERIOUS" {
		t.Errorf("Expected parsed intent, got %+v", episode.Intent)
	}
	if len(episode.Sources) != 1 || env.researcher.calls != 1 {
		t.Errorf("Expected one web research call with one source, got %d calls and %d sources", env.researcher.calls, len(episode.Sources))
	}
	if strings.ContainsAny(episode.Script, "“”’—…") {
		t.Errorf("Expected typographic characters to be normalised, got %q", episode.Script)
	}
	if episode.SuccessfulChunks != 1 || episode.TotalChunks != 1 {
		t.Errorf("Expected 1/1 chunks, got %d/%d", episode.SuccessfulChunks, episode.TotalChunks)
	}

	base := filepath.Join(env.dir, "podcast_audio_Interest_rates_today_20240305_140709")
	if episode.ScriptPath != base+".txt" || episode.AudioPath != base+".bin" {
		t.Errorf("Unexpected output paths %s, %s", episode.ScriptPath, episode.AudioPath)
	}
	for _, path := range []string{base + ".txt", base + ".bin", base + ".json"} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}
	script, _ := os.ReadFile(base + ".txt")
	if string(script) != episode.Script {
		t.Errorf("Expected saved script to match episode script")
	}

	prompts := env.completer.Prompts()
	if len(prompts) != 3 {
		t.Fatalf("Expected 3 LLM calls, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], "USER PROFILE: economist") || !strings.Contains(prompts[0], "2024-03-05") {
		t.Errorf("Expected intent prompt to carry profile and date")
	}
	if !strings.Contains(prompts[1], "RESEARCH RESULTS FOR: Interest rates today?") {
		t.Errorf("Expected research prompt to include web research document")
	}
	if !strings.Contains(prompts[2], "Research notes about the rate decision.") {
		t.Errorf("Expected script prompt to include research notes")
	}

	opts := env.completer.Options()
	if opts[0].MaxTokens != 800 || opts[1].MaxTokens != 2000 || opts[2].MaxTokens != 15000 || opts[2].Temperature != 0.8 {
		t.Errorf("Unexpected token budgets %+v", opts)
	}

	expected := []string{
		"Step 1/4: Analyzing user intent...",
		"Step 1 completed: Intent analysis generated",
		"Step 2/4: Conducting research...",
		"Web research collected 1 sources",
		"Step 2 completed: Research conducted (1 web sources)",
		"Step 3/4: Generating podcast script...",
	}
	for i, msg := range expected {
		if i >= len(env.progress) || env.progress[i] != msg {
			t.Errorf("Expected progress[%d] = %q, got %q", i, msg, env.progress)
			break
		}
	}
	if last := env.progress[len(env.progress)-1]; last != "Pipeline completed successfully!" {
		t.Errorf("Expected final status, got %q", last)
	}
}

func TestPipeline_HistoricalIntentSkipsWebResearch(t *testing.T) {
	env := newTestEnv(t, "DATA_SOURCES: HISTORICAL\nMOOD_TONE: FUNNY", nil)

	episode, err := env.pipeline.Run(context.Background(), "history of the printing press", "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if env.researcher.calls != 0 {
		t.Errorf("Expected no web research, got %d calls", env.researcher.calls)
	}
	if len(episode.Sources) != 0 {
		t.Errorf("Expected no sources, got %d", len(episode.Sources))
	}
}

func TestPipeline_WebResearchAlways(t *testing.T) {
	env := newTestEnv(t, "DATA_SOURCES: HISTORICAL", func(c *Config) { c.WebResearch = WebResearchAlways })

	if _, err := env.pipeline.Run(context.Background(), "printing press", ""); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if env.researcher.calls != 1 {
		t.Errorf("Expected web research to run, got %d calls", env.researcher.calls)
	}
}

func TestPipeline_WebResearchFailureFallsBack(t *testing.T) {
	env := newTestEnv(t, currentIntent, nil)
	env.researcher.err = &research.Failure{State: research.StateNoScrapableContent, Reason: "Failed to scrape content from URLs"}

	episode, err := env.pipeline.Run(context.Background(), "rates", "")
	if err != nil {
		t.Fatalf("Expected run to continue without web sources, got %v", err)
	}
	if len(episode.Sources) != 0 {
		t.Errorf("Expected no sources, got %d", len(episode.Sources))
	}
}

func TestPipeline_RequiredWebResearchFails(t *testing.T) {
	env := newTestEnv(t, currentIntent, func(c *Config) { c.RequireWebResearch = true })
	env.researcher.err = &research.Failure{State: research.StateNoSearchResults, Reason: "No search results found"}

	_, err := env.pipeline.Run(context.Background(), "rates", "")

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Step != 2 {
		t.Fatalf("Expected StageError at step 2, got %v", err)
	}
	if !errors.Is(err, research.ErrNoSearchResults) {
		t.Errorf("Expected ErrNoSearchResults in chain, got %v", err)
	}
	if err.Error() != "Pipeline failed at Step 2: Research failed: No search results found" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestPipeline_IntentFailure(t *testing.T) {
	env := newTestEnv(t, currentIntent, nil)
	env.completer = llm.NewMockCompleter().FailOn(intentMarker, errors.New("quota exceeded"))
	env.pipeline.completer = env.completer

	episode, err := env.pipeline.Run(context.Background(), "rates", "")

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Step != 1 {
		t.Fatalf("Expected StageError at step 1, got %v", err)
	}
	if err.Error() != "Pipeline failed at Step 1: Intent analysis failed: quota exceeded" {
		t.Errorf("Unexpected message %q", err.Error())
	}
	if episode == nil || episode.Query != "rates" {
		t.Errorf("Expected partial episode with query, got %+v", episode)
	}
	if last := env.progress[len(env.progress)-1]; last != err.Error() {
		t.Errorf("Expected failure in status stream, got %q", last)
	}
}

func TestPipeline_AudioFailureKeepsScript(t *testing.T) {
	env := newTestEnv(t, currentIntent, nil)
	env.speaker.FailCall(0, errors.New("provider down"))

	episode, err := env.pipeline.Run(context.Background(), "rates", "")

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Step != 4 {
		t.Fatalf("Expected StageError at step 4, got %v", err)
	}
	if !errors.Is(err, tts.ErrSynthesisFailed) {
		t.Errorf("Expected ErrSynthesisFailed in chain, got %v", err)
	}
	if _, statErr := os.Stat(episode.ScriptPath); statErr != nil {
		t.Errorf("Expected script to be saved before audio generation: %v", statErr)
	}
	if episode.AudioPath != "" {
		t.Errorf("Expected no audio path, got %s", episode.AudioPath)
	}
}

func TestPipeline_EmptyScript(t *testing.T) {
	env := newTestEnv(t, currentIntent, nil)
	env.completer = llm.NewMockCompleter().
		On(intentMarker, currentIntent).
		On(scriptMarker, "   ")
	env.pipeline.completer = env.completer

	_, err := env.pipeline.Run(context.Background(), "rates", "")
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}
}

func TestPipeline_EmptyQuery(t *testing.T) {
	env := newTestEnv(t, currentIntent, nil)
	if _, err := env.pipeline.Run(context.Background(), "   ", ""); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Expected ErrEmptyQuery, got %v", err)
	}
}

func TestBuilder_Validation(t *testing.T) {
	synth := tts.NewSynthesizer(tts.NewMockSpeaker(), tts.Options{})

	if _, err := NewBuilder().WithSynthesizer(synth).Build(); err == nil {
		t.Error("Expected error without completer")
	}
	if _, err := NewBuilder().WithCompleter(llm.NewMockCompleter()).Build(); err == nil {
		t.Error("Expected error without synthesizer")
	}

	config := DefaultConfig()
	config.WebResearch = "sometimes"
	if _, err := NewBuilder().WithCompleter(llm.NewMockCompleter()).WithSynthesizer(synth).WithConfig(config).Build(); err == nil {
		t.Error("Expected error for invalid web research mode")
	}
}
