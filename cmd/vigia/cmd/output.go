package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/domain/bayes"
	"github.com/tomas/vigia/internal/domain/risk"
	"github.com/tomas/vigia/internal/domain/rules"
)

// ANSI color codes for terminal output.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorGray    = "\033[90m"
)

// levelColor maps a risk level to its display color.
func levelColor(l risk.Level) string {
	switch l {
	case risk.LevelCritical:
		return colorRed
	case risk.LevelHigh:
		return colorMagenta
	case risk.LevelMedium:
		return colorYellow
	case risk.LevelLow:
		return colorGreen
	default:
		return colorGray
	}
}

// formatAssessment formats a single assessment for terminal display.
//
//	▲ Monchique  CRITICAL  (rule critical_heat_drought)
//	  42.0°C │ 15.0% RH │ 20.0 km/h
//	  → Immediate dispatch.
func formatAssessment(a *risk.Assessment) string {
	var sb strings.Builder
	name := strings.ToUpper(risk.LevelName(a.Level))
	sb.WriteString(fmt.Sprintf("%s▲ %s%s  %s%s%s  %s(rule %s)%s\n",
		colorBold, a.Reading.Zone, colorReset,
		levelColor(a.Level), name, colorReset,
		colorGray, a.RuleID, colorReset))
	sb.WriteString(fmt.Sprintf("  %.1f°C │ %.1f%% RH │ %.1f km/h",
		a.Reading.TempC, a.Reading.Humidity, a.Reading.WindKmh))
	if a.Reading.Event != "" && a.Reading.Event != risk.EventNone {
		sb.WriteString(fmt.Sprintf(" │ %s%s%s", colorCyan, a.Reading.Event, colorReset))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  → %s\n", a.Action))
	if len(a.Posterior) > 0 {
		sb.WriteString(fmt.Sprintf("  model: %s\n", posteriorLine(a.Posterior, a.ModelLevel)))
	}
	return sb.String()
}

// formatReport formats an aggregated report for terminal display.
func formatReport(r *risk.Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s▲ %d readings assessed%s", colorBold, r.Total, colorReset))
	if r.Skipped > 0 {
		sb.WriteString(fmt.Sprintf(" %s│ %d skipped%s", colorGray, r.Skipped, colorReset))
	}
	sb.WriteString("\n")

	// Severity breakdown in descending order
	for l := risk.LevelCritical; l >= risk.LevelNormal; l-- {
		name := risk.LevelName(l)
		if count := r.Counts[name]; count > 0 {
			sb.WriteString(fmt.Sprintf("  %s%-8s%s %d\n", levelColor(l), name, colorReset, count))
		}
	}

	if len(r.Actionable) == 0 {
		sb.WriteString(fmt.Sprintf("  %sno actionable risk%s\n", colorGreen, colorReset))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\n%s▲ %d actionable%s\n", colorBold, len(r.Actionable), colorReset))
	for _, a := range r.Actionable {
		name := strings.ToUpper(risk.LevelName(a.Level))
		sb.WriteString(fmt.Sprintf("  %s%-8s%s %s%s%s  %s  %s%s%s\n",
			levelColor(a.Level), name, colorReset,
			colorCyan, a.Reading.Zone, colorReset,
			a.Reading.Timestamp.Format("2006-01-02 15:04"),
			colorGray, a.Action, colorReset))
	}
	return sb.String()
}

// formatHealth formats a HealthResult for terminal display.
func formatHealth(h *socket.HealthResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s▲ vigia daemon%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Status:  %s%s%s\n", colorGreen, h.Status, colorReset))
	if h.ModelTrained {
		sb.WriteString(fmt.Sprintf("  Model:   trained (%d samples)\n", h.ModelSamples))
	} else {
		sb.WriteString(fmt.Sprintf("  Model:   %suntrained%s\n", colorYellow, colorReset))
	}
	sb.WriteString(fmt.Sprintf("  Zones:   %d\n", h.ZoneCount))
	sb.WriteString(fmt.Sprintf("  Uptime:  %s\n", h.Uptime))
	return sb.String()
}

// formatStats formats a StatsResult for terminal display.
func formatStats(s *socket.StatsResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s▲ vigia stats%s\n", colorBold, colorReset))
	sb.WriteString(fmt.Sprintf("  Assessed:    %d\n", s.Assessed))
	sb.WriteString(fmt.Sprintf("  Actionable:  %d\n", s.Actionable))
	for l := risk.LevelCritical; l >= risk.LevelNormal; l-- {
		name := risk.LevelName(l)
		if count := s.ByLevel[name]; count > 0 {
			sb.WriteString(fmt.Sprintf("    %s%-8s%s %d\n", levelColor(l), name, colorReset, count))
		}
	}
	sb.WriteString(fmt.Sprintf("  Skipped:     %d\n", s.SkippedRows))
	sb.WriteString(fmt.Sprintf("  Zones:       %d\n", s.ZoneCount))
	sb.WriteString(fmt.Sprintf("  Rules:       %d\n", s.RuleCount))
	if s.ModelTrained {
		sb.WriteString(fmt.Sprintf("  Model:       trained (%d samples)\n", s.ModelSamples))
	} else {
		sb.WriteString("  Model:       untrained\n")
	}
	return sb.String()
}

// formatRules formats the rule base for terminal display, priority order.
func formatRules(ruleSet []rules.Rule) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s▲ %d rules%s\n", colorBold, len(ruleSet), colorReset))
	for _, r := range ruleSet {
		name := strings.ToUpper(risk.LevelName(r.Outcome.Level))
		sb.WriteString(fmt.Sprintf("  %sP%d%s %s%-24s%s %s%-8s%s %s\n",
			colorGray, r.Priority, colorReset,
			colorCyan, r.ID, colorReset,
			levelColor(r.Outcome.Level), name, colorReset,
			r.Description))
	}
	return sb.String()
}

// formatPosterior formats a model posterior for terminal display.
func formatPosterior(posterior map[string]float64, level string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s▲ model risk: %s%s\n", colorBold, strings.ToUpper(level), colorReset))
	sb.WriteString(fmt.Sprintf("  %s\n", posteriorLine(posterior, level)))
	return sb.String()
}

// posteriorLine renders "low 0.12 │ medium 0.31 │ high 0.57" with the most
// likely state highlighted, always in fixed state order.
func posteriorLine(posterior map[string]float64, level string) string {
	order := []string{bayes.RiskLow, bayes.RiskMedium, bayes.RiskHigh}

	// Tolerate unexpected states by appending them sorted
	var extra []string
	for state := range posterior {
		if state != bayes.RiskLow && state != bayes.RiskMedium && state != bayes.RiskHigh {
			extra = append(extra, state)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	var parts []string
	for _, state := range order {
		p, ok := posterior[state]
		if !ok {
			continue
		}
		if state == level {
			parts = append(parts, fmt.Sprintf("%s%s %.2f%s", colorBold, state, p, colorReset))
		} else {
			parts = append(parts, fmt.Sprintf("%s %.2f", state, p))
		}
	}
	return strings.Join(parts, " │ ")
}
