// Package ahocorasick implements the ports.EventScanner interface using an
// Aho-Corasick automaton. It wraps the petar-dambovaliev/aho-corasick
// library for O(n + m + z) multi-keyword matching over observer notes.
package ahocorasick

import (
	"fmt"
	"strings"

	aho "github.com/petar-dambovaliev/aho-corasick"

	"github.com/tomas/vigia/internal/domain/risk"
)

// Scanner maps free-text keywords to ignition event types.
// Build() compiles an automaton; Scan() returns the matched event types.
type Scanner struct {
	automaton aho.AhoCorasick
	events    []string // pattern index → event type
	built     bool
}

// NewScanner compiles a scanner from a keyword → event-type table.
// Keywords are matched case-insensitively; empty keywords are rejected.
func NewScanner(table map[string]string) (*Scanner, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("empty keyword table")
	}

	patterns := make([]string, 0, len(table))
	events := make([]string, 0, len(table))
	for kw, event := range table {
		if kw == "" {
			return nil, fmt.Errorf("empty keyword for event %q", event)
		}
		patterns = append(patterns, strings.ToLower(kw))
		events = append(events, event)
	}

	builder := aho.NewAhoCorasickBuilder(aho.Opts{
		DFA: true,
	})
	return &Scanner{
		automaton: builder.Build(patterns),
		events:    events,
		built:     true,
	}, nil
}

// DefaultTable is the built-in keyword table, covering English and
// Portuguese field-report phrasing.
func DefaultTable() map[string]string {
	return map[string]string{
		"dry lightning":        risk.EventDryLightning,
		"raio seco":            risk.EventDryLightning,
		"lightning strike":     risk.EventDryLightning,
		"trovoada seca":        risk.EventDryLightning,
		"campfire":             risk.EventCampfire,
		"fogueira":             risk.EventCampfire,
		"bonfire":              risk.EventCampfire,
		"machinery sparks":     risk.EventMachinery,
		"faíscas de máquina":   risk.EventMachinery,
		"harvester":            risk.EventMachinery,
		"power line":           risk.EventPowerLine,
		"linha elétrica":       risk.EventPowerLine,
		"downed line":          risk.EventPowerLine,
	}
}

// Scan returns the event types whose keywords appear in the note,
// deduplicated, in first-match order.
func (s *Scanner) Scan(note string) []string {
	if !s.built || note == "" {
		return nil
	}
	matches := s.automaton.FindAll(strings.ToLower(note))
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var result []string
	for i := range matches {
		event := s.events[matches[i].Pattern()]
		if !seen[event] {
			seen[event] = true
			result = append(result, event)
		}
	}
	return result
}
