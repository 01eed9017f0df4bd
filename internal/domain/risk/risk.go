// Package risk defines the core domain types for fire-risk assessment.
// All types are pure Go with no external dependencies.
package risk

import (
	"sort"
	"time"
)

// Level represents a fire-risk level produced by rule evaluation.
// Ordering is by urgency: Critical outranks High outranks Medium, etc.
type Level int

const (
	LevelNormal   Level = 0
	LevelLow      Level = 1
	LevelMedium   Level = 2
	LevelHigh     Level = 3
	LevelCritical Level = 4
)

// LevelCount is the number of defined risk levels.
const LevelCount = 5

// LevelName returns the string label for a level constant.
func LevelName(l Level) string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// LevelFromName maps a string level name to its Level constant.
// Returns -1 for unknown names.
func LevelFromName(name string) Level {
	switch name {
	case "normal":
		return LevelNormal
	case "low":
		return LevelLow
	case "medium":
		return LevelMedium
	case "high":
		return LevelHigh
	case "critical":
		return LevelCritical
	default:
		return -1
	}
}

// Event types carried on readings. EventNone means no observed ignition event.
const (
	EventNone         = "none"
	EventDryLightning = "dry_lightning"
	EventCampfire     = "unattended_campfire"
	EventMachinery    = "machinery_sparks"
	EventPowerLine    = "power_line"
)

// Reading is a single sensor observation for one zone.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	Zone      string    `json:"zone"`
	TempC     float64   `json:"temp"`
	Humidity  float64   `json:"humidity"`
	WindKmh   float64   `json:"wind"`
	Event     string    `json:"event,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// NoRuleID is the sentinel rule ID recorded when no rule fired.
const NoRuleID = "no_rule"

// Assessment is the outcome of evaluating one reading.
//
// Posterior is the Bayesian model's distribution over risk states
// (state name → probability). It is nil when the model is untrained or
// the reading could not be discretized. ModelLevel is the argmax state
// name of the posterior, empty when Posterior is nil.
type Assessment struct {
	ID         string             `json:"id"`
	Reading    Reading            `json:"reading"`
	Level      Level              `json:"level"`
	Action     string             `json:"action"`
	RuleID     string             `json:"rule_id"`
	Posterior  map[string]float64 `json:"posterior,omitempty"`
	ModelLevel string             `json:"model_level,omitempty"`
	AssessedAt time.Time          `json:"assessed_at"`
}

// Actionable reports whether the assessment requires operator attention.
func (a *Assessment) Actionable() bool {
	return a.Level != LevelNormal
}

// Report aggregates a batch of assessments into per-level counts and an
// actionable subset ordered by severity, then by reading timestamp.
type Report struct {
	Total      int                `json:"total"`
	Counts     map[string]int     `json:"counts"`
	Actionable []Assessment       `json:"actionable"`
	Skipped    int                `json:"skipped"` // rows that failed to parse or discretize
}

// BuildReport aggregates assessments into a Report. The input slice is not
// modified; the actionable subset is copied before sorting.
func BuildReport(assessments []Assessment, skipped int) *Report {
	r := &Report{
		Total:   len(assessments),
		Counts:  make(map[string]int, LevelCount),
		Skipped: skipped,
	}

	for i := range assessments {
		r.Counts[LevelName(assessments[i].Level)]++
		if assessments[i].Actionable() {
			r.Actionable = append(r.Actionable, assessments[i])
		}
	}

	// Most urgent first; ties break on reading time, oldest first.
	sort.SliceStable(r.Actionable, func(i, j int) bool {
		if r.Actionable[i].Level != r.Actionable[j].Level {
			return r.Actionable[i].Level > r.Actionable[j].Level
		}
		return r.Actionable[i].Reading.Timestamp.Before(r.Actionable[j].Reading.Timestamp)
	})

	return r
}
