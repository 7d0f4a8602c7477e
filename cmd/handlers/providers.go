package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"podcaster/internal/llm"
	"podcaster/internal/search"
	"podcaster/internal/tts"
)

// NewProvidersCmd creates the command that lists supported providers and voices
func NewProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported LLM, search and TTS providers and their default voices",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "LLM providers:    %s\n", strings.Join(llm.GetAvailableProviders(), ", "))

			var searchProviders []string
			for _, p := range search.NewProviderFactory().GetAvailableProviders() {
				searchProviders = append(searchProviders, string(p))
			}
			fmt.Fprintf(out, "Search providers: %s\n", strings.Join(searchProviders, ", "))
			fmt.Fprintf(out, "TTS providers:    %s\n", strings.Join(tts.GetAvailableProviders(), ", "))

			voices := tts.GetDefaultVoices()
			providers := make([]string, 0, len(voices))
			for p := range voices {
				providers = append(providers, string(p))
			}
			sort.Strings(providers)

			fmt.Fprintln(out, "\nVoices:")
			for _, p := range providers {
				fmt.Fprintf(out, "  %s:\n", p)
				for _, v := range voices[tts.TTSProvider(p)] {
					fmt.Fprintf(out, "    %-22s %s (%s, %s)\n", v.ID, v.Name, v.Gender, v.Accent)
				}
			}
		},
	}
}
