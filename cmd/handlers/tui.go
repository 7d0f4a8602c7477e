package handlers

import (
	"context"

	"github.com/spf13/cobra"

	"podcaster/internal/config"
	"podcaster/internal/core"
	"podcaster/internal/tui"
)

// NewTUICmd creates the TUI command
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the interactive podcast form",
		Long:  `Enter a topic and an optional listener profile, then watch the pipeline progress live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			return tui.Start(cmd.Context(), func(ctx context.Context, query, profile string, progress func(string)) (*core.Episode, error) {
				p, err := newPipeline(ctx, cfg, pipelineOptions{}, progress)
				if err != nil {
					return nil, err
				}
				return p.Run(ctx, query, profile)
			})
		},
	}
}
