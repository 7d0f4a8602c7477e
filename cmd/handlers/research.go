package handlers

import (
	"fmt"

	"github.com/spf13/cobra"

	"podcaster/internal/config"
	"podcaster/internal/research"
)

// NewResearchCmd creates the research command
func NewResearchCmd() *cobra.Command {
	researchCmd := &cobra.Command{
		Use:   "research [topic]",
		Short: "Search the web for a topic and save the cleaned sources",
		Long: `Runs a single web research pass:
- search the configured provider
- rank hits by query-term overlap plus a small authority bonus
- fetch and clean the top pages
- save research_<topic>_<timestamp>.json and .txt

Examples:
  podcaster research "AI coding tools"
  podcaster research "AI coding tools" --max-results 20 --top 4 --output research`,
		Args: cobra.ExactArgs(1),
		RunE: researchRunFunc,
	}

	researchCmd.Flags().Int("max-results", 0, "Maximum search results to rank (default from config)")
	researchCmd.Flags().Int("top", 0, "Number of pages to fetch (default from config)")
	researchCmd.Flags().String("output", "", "Output directory for research files (default from config)")

	return researchCmd
}

func researchRunFunc(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults <= 0 {
		maxResults = cfg.Search.MaxResults
	}
	topN, _ := cmd.Flags().GetInt("top")
	if topN <= 0 {
		topN = cfg.Research.TopN
	}
	outputDir, _ := cmd.Flags().GetString("output")

	orchestrator, err := newOrchestrator(cfg, outputDir, func(state research.State) {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s...\n", state)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Researching %q\n", args[0])
	result, err := orchestrator.Research(cmd.Context(), args[0], maxResults, topN)
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nCollected %d sources:\n", len(result.Bundle.Sources))
	for i, src := range result.Bundle.Sources {
		fmt.Fprintf(out, "  %d. %s (%d chars)\n     %s\n", i+1, src.Title, src.Length, src.URL)
	}
	fmt.Fprintf(out, "\nSaved:\n  %s\n  %s\n", result.JSONPath, result.TextPath)
	return nil
}
