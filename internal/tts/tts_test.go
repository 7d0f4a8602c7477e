package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"podcaster/internal/metrics"
)

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestSplitText_HardTruncate(t *testing.T) {
	text := strings.Repeat("a", 4500)
	chunks := SplitText(text, 2000)

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	expected := []int{2000, 2000, 500}
	for i, chunk := range chunks {
		if len(chunk) != expected[i] {
			t.Errorf("Expected chunk %d to have %d chars, got %d", i, expected[i], len(chunk))
		}
	}
}

func TestSplitText_Paragraphs(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."

	chunks := SplitText(text, 100)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("Expected single chunk equal to input, got %q", chunks)
	}

	chunks = SplitText(text, 36)
	expected := []string{"First paragraph.\n\nSecond paragraph.", "Third paragraph."}
	if len(chunks) != len(expected) {
		t.Fatalf("Expected %d chunks, got %d: %q", len(expected), len(chunks), chunks)
	}
	for i := range expected {
		if chunks[i] != expected[i] {
			t.Errorf("Expected chunk %d to be %q, got %q", i, expected[i], chunks[i])
		}
	}
}

func TestSplitText_Sentences(t *testing.T) {
	text := "First sentence here. Second one is here. Third."
	chunks := SplitText(text, 25)

	expected := []string{"First sentence here.", "Second one is here.", "Third."}
	if len(chunks) != len(expected) {
		t.Fatalf("Expected %d chunks, got %d: %q", len(expected), len(chunks), chunks)
	}
	for i := range expected {
		if chunks[i] != expected[i] {
			t.Errorf("Expected chunk %d to be %q, got %q", i, expected[i], chunks[i])
		}
	}
}

func TestSplitText_Blank(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\n\n"} {
		if chunks := SplitText(text, 100); len(chunks) != 0 {
			t.Errorf("Expected no chunks for %q, got %q", text, chunks)
		}
	}
	if chunks := SplitText("hello", 0); len(chunks) != 0 {
		t.Errorf("Expected no chunks for non-positive limit, got %q", chunks)
	}
}

func TestSplitText_Bounds(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Paragraph %d talks about rates. ", i)
		b.WriteString(strings.Repeat("word ", i*7))
		b.WriteString(strings.Repeat("x", i*13))
		b.WriteString(". Done ünïcödé.")
		if i%3 == 0 {
			b.WriteString("\n\n")
		} else {
			b.WriteString("\n")
		}
	}
	text := b.String()

	for _, limit := range []int{1, 7, 50, 333, 2000} {
		chunks := SplitText(text, limit)
		if len(chunks) == 0 {
			t.Fatalf("Expected chunks for limit %d", limit)
		}
		for i, chunk := range chunks {
			if n := utf8.RuneCountInString(chunk); n > limit {
				t.Errorf("limit %d: chunk %d has %d chars", limit, i, n)
			}
		}
		if got, want := stripSpace(strings.Join(chunks, "")), stripSpace(text); got != want {
			t.Errorf("limit %d: expected chunks to recover all non-whitespace characters", limit)
		}
	}
}

type instantSleeps struct {
	delays []time.Duration
}

func (s *instantSleeps) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

func newTestSynthesizer(speaker Speaker, maxChars int) (*Synthesizer, *instantSleeps) {
	synth := NewSynthesizer(speaker, Options{MaxChunkChars: maxChars, ChunkDelay: 3 * time.Second, Timeout: time.Second})
	sleeps := &instantSleeps{}
	synth.sleep = sleeps.sleep
	return synth, sleeps
}

func TestSynthesizer_FastPath(t *testing.T) {
	speaker := NewMockSpeaker()
	synth, sleeps := newTestSynthesizer(speaker, 2000)

	result, err := synth.Synthesize(context.Background(), "  A short script.  ")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if inputs := speaker.Inputs(); len(inputs) != 1 || inputs[0] != "A short script." {
		t.Errorf("Expected one call with trimmed text, got %q", inputs)
	}
	if result.SuccessfulChunks != 1 || result.TotalChunks != 1 {
		t.Errorf("Expected 1/1 chunks, got %d/%d", result.SuccessfulChunks, result.TotalChunks)
	}
	if len(sleeps.delays) != 0 {
		t.Errorf("Expected no pacing delay for a single chunk, got %v", sleeps.delays)
	}
}

func TestSynthesizer_StitchesInOrderAndPaces(t *testing.T) {
	speaker := NewMockSpeaker()
	synth, sleeps := newTestSynthesizer(speaker, 2000)

	result, err := synth.Synthesize(context.Background(), strings.Repeat("b", 4500))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got := string(result.Audio); got != "[0:2000][1:2000][2:500]" {
		t.Errorf("Expected audio in chunk order, got %q", got)
	}
	if len(sleeps.delays) != 2 {
		t.Errorf("Expected 2 pacing delays between 3 chunks, got %d", len(sleeps.delays))
	}
	for _, d := range sleeps.delays {
		if d != 3*time.Second {
			t.Errorf("Expected 3s pacing delay, got %v", d)
		}
	}
}

func TestSynthesizer_SkipsFailedChunk(t *testing.T) {
	m := metrics.New()
	speaker := NewMockSpeaker()
	speaker.FailCall(1, errors.New("rate limited"))
	synth, _ := newTestSynthesizer(speaker, 2000)
	synth.WithMetrics(m)

	result, err := synth.Synthesize(context.Background(), strings.Repeat("c", 4500))
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if got := string(result.Audio); got != "[0:2000][2:500]" {
		t.Errorf("Expected gap for failed chunk, got %q", got)
	}
	if result.SuccessfulChunks != 2 || result.TotalChunks != 3 {
		t.Errorf("Expected 2/3 chunks, got %d/%d", result.SuccessfulChunks, result.TotalChunks)
	}
	if len(result.FailedChunks) != 1 || result.FailedChunks[0] != 1 {
		t.Errorf("Expected failed chunk index 1, got %v", result.FailedChunks)
	}
	if got := testutil.ToFloat64(m.SpeechChunks.WithLabelValues("failed")); got != 1 {
		t.Errorf("Expected 1 failed chunk metric, got %v", got)
	}
	if got := testutil.ToFloat64(m.SpeechChunks.WithLabelValues("ok")); got != 2 {
		t.Errorf("Expected 2 ok chunk metrics, got %v", got)
	}
}

func TestSynthesizer_AllChunksFail(t *testing.T) {
	speaker := NewMockSpeaker()
	for i := 0; i < 3; i++ {
		speaker.FailCall(i, errors.New("down"))
	}
	synth, _ := newTestSynthesizer(speaker, 2000)

	_, err := synth.Synthesize(context.Background(), strings.Repeat("d", 4500))
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Errorf("Expected ErrSynthesisFailed, got %v", err)
	}
}

func TestSynthesizer_BlankTextNeverCallsSpeaker(t *testing.T) {
	speaker := NewMockSpeaker()
	synth, _ := newTestSynthesizer(speaker, 2000)

	_, err := synth.Synthesize(context.Background(), " \n\n ")
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Errorf("Expected ErrSynthesisFailed, got %v", err)
	}
	if n := len(speaker.Inputs()); n != 0 {
		t.Errorf("Expected no speaker calls, got %d", n)
	}
}

func TestSynthesizer_Cancelled(t *testing.T) {
	speaker := NewMockSpeaker()
	synth := NewSynthesizer(speaker, Options{MaxChunkChars: 10, ChunkDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := synth.Synthesize(ctx, strings.Repeat("e", 30))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if n := len(speaker.Inputs()); n != 1 {
		t.Errorf("Expected exactly one call before cancellation, got %d", n)
	}
}

func TestHumeSpeaker(t *testing.T) {
	var got humeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Hume-Api-Key") != "hume-key" {
			t.Errorf("Expected API key header, got %q", r.Header.Get("X-Hume-Api-Key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		audio := base64.StdEncoding.EncodeToString([]byte("RIFFdata"))
		_, _ = fmt.Fprintf(w, `{"generations":[{"generation_id":"g1","audio":%q}],"request_id":"r1"}`, audio)
	}))
	defer server.Close()

	speaker, err := NewSpeaker(&TTSConfig{Provider: ProviderHume, APIKey: "hume-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewSpeaker failed: %v", err)
	}

	audio, err := speaker.Synthesize(context.Background(), "Hello listeners.")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "RIFFdata" {
		t.Errorf("Expected decoded audio, got %q", audio)
	}
	if len(got.Utterances) != 1 || got.Utterances[0].Text != "Hello listeners." {
		t.Errorf("Expected one utterance with the text, got %+v", got.Utterances)
	}
	if got.Utterances[0].Voice.Name != humeDefaultVoice || got.Utterances[0].Voice.Provider != "HUME_AI" {
		t.Errorf("Expected default library voice, got %+v", got.Utterances[0].Voice)
	}
	if got.NumGenerations != 1 {
		t.Errorf("Expected num_generations 1, got %d", got.NumGenerations)
	}
}

func TestHumeSpeaker_VoiceID(t *testing.T) {
	id := "5bb7de05-c8fe-426a-8fcc-ba4fc4ce9f9c"
	speaker := NewHumeSpeaker(&TTSConfig{APIKey: "k", Voice: TTSVoice{ID: id}})
	if speaker.voice.ID != id || speaker.voice.Name != "" {
		t.Errorf("Expected UUID to be sent as voice id, got %+v", speaker.voice)
	}
}

func TestHumeSpeaker_MalformedResponse(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"generations":[]}`,
		`{"generations":[{"audio":"%%%not-base64"}]}`,
	}
	for _, body := range bodies {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		}))

		speaker := NewHumeSpeaker(&TTSConfig{APIKey: "k", BaseURL: server.URL})
		if _, err := speaker.Synthesize(context.Background(), "text"); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("Expected ErrMalformedResponse for %q, got %v", body, err)
		}
		server.Close()
	}
}

func TestElevenLabsSpeaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/text-to-speech/"+elevenLabsDefaultVoice {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "eleven-key" {
			t.Errorf("Expected xi-api-key header")
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3mp3"))
	}))
	defer server.Close()

	speaker := NewElevenLabsSpeaker(&TTSConfig{APIKey: "eleven-key", BaseURL: server.URL})
	audio, err := speaker.Synthesize(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "ID3mp3" {
		t.Errorf("Expected audio body, got %q", audio)
	}
}

func TestElevenLabsSpeaker_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "bad key")
	}))
	defer server.Close()

	speaker := NewElevenLabsSpeaker(&TTSConfig{APIKey: "k", BaseURL: server.URL})
	_, err := speaker.Synthesize(context.Background(), "Hello")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Expected error mentioning 401, got %v", err)
	}
}

func TestOpenAISpeaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["model"] != "tts-1" || req["voice"] != "nova" {
			t.Errorf("Unexpected request %v", req)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("openai-mp3"))
	}))
	defer server.Close()

	speaker, err := NewSpeaker(&TTSConfig{
		Provider: ProviderOpenAI,
		APIKey:   "sk-test",
		Voice:    TTSVoice{ID: "nova"},
		BaseURL:  server.URL + "/v1",
	})
	if err != nil {
		t.Fatalf("NewSpeaker failed: %v", err)
	}
	audio, err := speaker.Synthesize(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "openai-mp3" {
		t.Errorf("Expected audio body, got %q", audio)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  TTSConfig
		wantErr error
	}{
		{"mock needs no key", TTSConfig{Provider: ProviderMock}, nil},
		{"hume with key", TTSConfig{Provider: ProviderHume, APIKey: "k", Speed: 1.2}, nil},
		{"missing key", TTSConfig{Provider: ProviderOpenAI}, ErrMissingAPIKey},
		{"unknown provider", TTSConfig{Provider: "google", APIKey: "k"}, ErrUnsupportedProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(&tt.config)
			if tt.wantErr == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if err := ValidateConfig(&TTSConfig{Provider: ProviderMock, Speed: 3}); err == nil {
		t.Error("Expected error for speed out of range")
	}
}

func TestPrepareScript(t *testing.T) {
	script := "# Welcome\n\nToday we cover **interest rates** & inflation, up 3% (see https://example.com).\n\n\n\nRead [the report](https://example.com/r)."
	want := "Welcome\n\nToday we cover interest rates and inflation, up 3 percent (see\n\nRead the report."
	if got := PrepareScript(script); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestEstimateAudioLength(t *testing.T) {
	text := strings.Repeat("word ", 310)
	if got := EstimateAudioLength(text, 1.0); got != 2.0 {
		t.Errorf("Expected 2 minutes, got %v", got)
	}
	if got := EstimateAudioLength(text, 2.0); got != 1.0 {
		t.Errorf("Expected 1 minute at double speed, got %v", got)
	}
}
