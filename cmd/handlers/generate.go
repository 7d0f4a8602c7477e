package handlers

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"podcaster/internal/config"
)

// NewGenerateCmd creates the full pipeline command
func NewGenerateCmd() *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate a complete podcast episode for a topic",
		Long: `Runs the four pipeline steps for a topic:
  1. intent analysis
  2. research (web research when the topic needs current information)
  3. script generation
  4. audio generation

The script (.txt), audio and episode metadata (.json) are written to the output directory.

Examples:
  podcaster generate "Manchester United transfer news"
  podcaster generate "history of the printing press" --web-research never
  podcaster generate "AI regulation" --profile "policy analyst" --tts openai --voice nova`,
		Args: cobra.ExactArgs(1),
		RunE: generateRunFunc,
	}

	generateCmd.Flags().String("profile", "", "A short description of the listener")
	generateCmd.Flags().String("web-research", "", "Web research mode: auto, always or never (default from config)")
	generateCmd.Flags().String("output", "", "Output directory (default from config)")
	generateCmd.Flags().String("tts", "", "TTS provider: hume, openai, elevenlabs, mock (default from config)")
	generateCmd.Flags().String("voice", "", "Voice name or ID for the TTS provider")

	return generateCmd
}

func generateRunFunc(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	profile, _ := cmd.Flags().GetString("profile")

	var opts pipelineOptions
	opts.webResearch, _ = cmd.Flags().GetString("web-research")
	opts.outputDir, _ = cmd.Flags().GetString("output")
	opts.ttsProvider, _ = cmd.Flags().GetString("tts")
	opts.voice, _ = cmd.Flags().GetString("voice")

	out := cmd.OutOrStdout()
	p, err := newPipeline(cmd.Context(), cfg, opts, func(status string) {
		fmt.Fprintln(out, status)
	})
	if err != nil {
		return err
	}

	started := time.Now()
	episode, err := p.Run(cmd.Context(), args[0], profile)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nEpisode %s ready in %s\n", episode.ID, time.Since(started).Round(time.Second))
	fmt.Fprintf(out, "  Script: %s\n", episode.ScriptPath)
	fmt.Fprintf(out, "  Audio:  %s (%d/%d chunks)\n", episode.AudioPath, episode.SuccessfulChunks, episode.TotalChunks)
	if len(episode.Sources) > 0 {
		fmt.Fprintf(out, "  Sources: %d web pages\n", len(episode.Sources))
	}
	return nil
}
