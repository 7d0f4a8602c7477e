// Package cleaner turns raw extracted page text into prose by dropping every
// line that an ordered cascade of lexical rules classifies as noise.
package cleaner

import (
	"sort"
	"strings"
)

// Rule is one rejection test in the cascade. Matches receives a trimmed,
// non-empty line and reports whether the line is noise.
type Rule interface {
	Name() string
	Priority() int
	Matches(line string) bool
}

// Cascade applies rules in ascending priority order; the first match drops the line.
type Cascade struct {
	rules    []Rule
	observer func(rule, line string)
}

// New builds a cascade from rules, ordering them by priority. Rules with equal
// priority keep the order they were given in.
func New(rules ...Rule) *Cascade {
	ordered := make([]Rule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	return &Cascade{rules: ordered}
}

var defaultCascade = New(DefaultRules()...)

// Default returns the standard ten-rule cascade.
func Default() *Cascade {
	return defaultCascade
}

// Clean runs raw through the default cascade.
func Clean(raw string) string {
	return defaultCascade.Clean(raw)
}

// WithObserver returns a copy of the cascade that calls fn for every dropped line.
func (c *Cascade) WithObserver(fn func(rule, line string)) *Cascade {
	return &Cascade{rules: c.rules, observer: fn}
}

// Rules returns the rules in evaluation order.
func (c *Cascade) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the name of the first rule matching line, or "" when the
// line survives. line is trimmed before evaluation; blank lines classify as "empty".
func (c *Cascade) Classify(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return "empty"
	}
	for _, r := range c.rules {
		if r.Matches(line) {
			return r.Name()
		}
	}
	return ""
}

// Clean splits raw on newlines, trims each line and keeps only the lines no
// rule matches, joined with "\n" in their original order.
func (c *Cascade) Clean(raw string) string {
	if raw == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if rule := c.Classify(line); rule != "" {
			if c.observer != nil {
				c.observer(rule, line)
			}
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
