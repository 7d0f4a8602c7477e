/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"podcaster/internal/config"
	"podcaster/internal/logger"
)

var (
	cfgFile     string
	logLevel    string
	metricsAddr string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "podcaster",
		Short: "Turn a topic into a researched, narrated podcast episode",
		Long: `Podcaster - Topic to Podcast Generator

Searches the web for a topic, extracts and cleans the best pages, asks an LLM
for research notes and a solo-host script, then narrates the script with a
text-to-speech provider.

Examples:
  # Research only: search, rank, fetch and save the consolidated sources
  podcaster research "quantum error correction"

  # Full episode
  podcaster generate "Interest rates today" --profile "first-time home buyer"

  # Narrate an existing script
  podcaster speak script.txt --out episode.wav

  # Interactive form
  podcaster tui`,
		Version:           "1.0.0",
		SilenceUsage:      true,
		PersistentPreRunE: initApp,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.podcaster.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	// Add subcommands
	rootCmd.AddCommand(NewResearchCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewSpeakCmd())
	rootCmd.AddCommand(NewTUICmd())
	rootCmd.AddCommand(NewProvidersCmd())

	return rootCmd
}

// Execute runs the root command, cancelling in-flight work on SIGINT/SIGTERM
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// initApp loads configuration, configures logging and starts the metrics endpoint.
func initApp(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	if cfg.App.Debug {
		level = "debug"
	}
	logger.Configure(level, cfg.Logging.Format, os.Stderr)

	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}

	addr := cfg.Metrics.Addr
	if metricsAddr != "" {
		addr = metricsAddr
	}
	if addr != "" {
		go func() {
			if err := appMetrics.Serve(cmd.Context(), addr); err != nil {
				logger.Error("Metrics endpoint failed", err, "addr", addr)
			}
		}()
	}
	return nil
}
