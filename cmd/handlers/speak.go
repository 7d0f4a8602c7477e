package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"podcaster/internal/config"
	"podcaster/internal/tts"
)

// NewSpeakCmd creates the command that narrates an existing script
func NewSpeakCmd() *cobra.Command {
	speakCmd := &cobra.Command{
		Use:   "speak [script-file]",
		Short: "Narrate a text file with the configured TTS provider",
		Long: `Splits a script into provider-sized chunks, synthesizes each chunk and
stitches the audio into one file. Failed chunks are skipped and reported.

Examples:
  podcaster speak script.txt
  podcaster speak script.txt --tts openai --voice onyx --out episode.mp3
  podcaster speak script.txt --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: speakRunFunc,
	}

	speakCmd.Flags().String("out", "", "Output audio file (default: script name with the provider's extension)")
	speakCmd.Flags().String("tts", "", "TTS provider: hume, openai, elevenlabs, mock (default from config)")
	speakCmd.Flags().String("voice", "", "Voice name or ID for the TTS provider")
	speakCmd.Flags().Bool("dry-run", false, "Show the chunks and estimated duration without calling the provider")

	return speakCmd
}

func speakRunFunc(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	provider, _ := cmd.Flags().GetString("tts")
	voice, _ := cmd.Flags().GetString("voice")
	outPath, _ := cmd.Flags().GetString("out")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	text := tts.PrepareScript(string(raw))
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("script %s has no speakable text", args[0])
	}

	if provider == "" {
		provider = cfg.TTS.Provider
	}
	if dryRun {
		provider = string(tts.ProviderMock)
	}
	synthesizer, err := newSynthesizer(cfg, provider, voice)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	chunks := synthesizer.Chunks(text)
	minutes := tts.EstimateAudioLength(text, float64(cfg.TTS.Speed))
	fmt.Fprintf(out, "%d chunks, about %.1f minutes of audio\n", len(chunks), minutes)

	if dryRun {
		for _, chunk := range chunks {
			fmt.Fprintf(out, "  chunk %d: %d chars\n", chunk.Index+1, len([]rune(chunk.Text)))
		}
		return nil
	}

	result, err := synthesizer.Synthesize(cmd.Context(), text)
	if err != nil {
		return err
	}

	if outPath == "" {
		dir := cfg.TTS.OutputDir
		if dir == "" || dir == "." {
			dir = filepath.Dir(args[0])
		}
		base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		outPath = filepath.Join(dir, base+"."+tts.AudioExtension(tts.TTSProvider(strings.ToLower(provider))))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, result.Audio, 0644); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}

	fmt.Fprintf(out, "Audio saved to %s (%d/%d chunks)\n", outPath, result.SuccessfulChunks, result.TotalChunks)
	if len(result.FailedChunks) > 0 {
		fmt.Fprintf(out, "Skipped chunks: %v\n", result.FailedChunks)
	}
	return nil
}
