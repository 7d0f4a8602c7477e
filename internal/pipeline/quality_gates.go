package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"podcaster/internal/logger"
)

// QualityGate represents a validation checkpoint for a generated script
type QualityGate interface {
	// Validate checks if the script meets quality requirements
	Validate(ctx context.Context, script string) error

	// Name returns the gate name for logging
	Name() string

	// IsBlocking returns whether failure should stop the pipeline
	IsBlocking() bool
}

// QualityGateConfig holds configuration for quality gates
type QualityGateConfig struct {
	EnableLengthGate bool // Check the script is long enough to narrate
	EnableFormatGate bool // Check the script is plain spoken text
	MinWords         int  // Minimum words in the script
	MaxFormatIssues  int  // Formatting artefacts tolerated before the gate fails
	BlockOnFailure   bool // Stop pipeline on gate failure
}

// DefaultQualityGateConfig returns default configuration
func DefaultQualityGateConfig() QualityGateConfig {
	return QualityGateConfig{
		EnableLengthGate: true,
		EnableFormatGate: true,
		MinWords:         1800,
		MaxFormatIssues:  0,
		BlockOnFailure:   false, // Non-blocking by default (warn only)
	}
}

// NewQualityGates returns the enabled gates for config
func NewQualityGates(config QualityGateConfig) []QualityGate {
	var gates []QualityGate
	if config.EnableLengthGate {
		gates = append(gates, &ScriptLengthGate{config: config})
	}
	if config.EnableFormatGate {
		gates = append(gates, &ScriptFormatGate{config: config})
	}
	return gates
}

// ScriptLengthGate validates that a script is long enough for a full episode
type ScriptLengthGate struct {
	config QualityGateConfig
}

// Name returns the gate name
func (g *ScriptLengthGate) Name() string {
	return "Script Length Gate"
}

// IsBlocking returns whether this gate blocks the pipeline
func (g *ScriptLengthGate) IsBlocking() bool {
	return g.config.BlockOnFailure
}

// Validate checks the script word count
func (g *ScriptLengthGate) Validate(ctx context.Context, script string) error {
	words := len(strings.Fields(script))
	if words < g.config.MinWords {
		return fmt.Errorf("script too short: %d words (min: %d)", words, g.config.MinWords)
	}
	return nil
}

var formatArtefacts = []*regexp.Regexp{
	regexp.MustCompile(`^#{1,6}\s`),                            // markdown heading
	regexp.MustCompile(`^\*\*[^*]+\*\*:?$`),                    // bold line used as a heading
	regexp.MustCompile(`(?i)^\[(intro|outro|music|sound)[^\]]*\]`), // stage direction
	regexp.MustCompile(`(?i)^(host|narrator|speaker)\s*\d*:`),  // speaker label
}

// ScriptFormatGate validates that a script contains only spoken text
type ScriptFormatGate struct {
	config QualityGateConfig
}

// Name returns the gate name
func (g *ScriptFormatGate) Name() string {
	return "Script Format Gate"
}

// IsBlocking returns whether this gate blocks the pipeline
func (g *ScriptFormatGate) IsBlocking() bool {
	return g.config.BlockOnFailure
}

// Validate counts headings, stage directions and speaker labels
func (g *ScriptFormatGate) Validate(ctx context.Context, script string) error {
	issues := 0
	var first string
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		for _, re := range formatArtefacts {
			if re.MatchString(line) {
				if issues == 0 {
					first = line
				}
				issues++
				break
			}
		}
	}
	if issues > g.config.MaxFormatIssues {
		return fmt.Errorf("script contains %d formatting artefacts (first: %q)", issues, first)
	}
	return nil
}

// runQualityGates validates script against every gate. Non-blocking failures
// are logged; the first blocking failure is returned.
func runQualityGates(ctx context.Context, gates []QualityGate, script string) error {
	for _, gate := range gates {
		err := gate.Validate(ctx, script)
		if err == nil {
			logger.Debug("Quality gate passed", "gate", gate.Name())
			continue
		}
		if gate.IsBlocking() {
			logger.Error("Quality gate failed", err, "gate", gate.Name())
			return fmt.Errorf("%s: %w", gate.Name(), err)
		}
		logger.Warn("Quality gate warning", "gate", gate.Name(), "error", err.Error())
	}
	return nil
}
