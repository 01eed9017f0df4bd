package app

import (
	"fmt"

	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/domain/risk"
)

// ZoneStates returns the latest assessment per zone.
// Implements socket.AppQueries.
func (a *App) ZoneStates() (map[string]risk.Assessment, error) {
	return a.Store.LoadZoneStates(a.ProjectID)
}

// ReportRecent builds a report over the most recent persisted assessments.
// Implements socket.AppQueries.
func (a *App) ReportRecent(limit int) (*risk.Report, error) {
	assessments, err := a.Store.RecentAssessments(a.ProjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}

	a.mu.Lock()
	skipped := a.skippedRows
	a.mu.Unlock()

	return risk.BuildReport(assessments, skipped), nil
}

// StatsSnapshot returns daemon counters.
// Implements socket.AppQueries.
func (a *App) StatsSnapshot() socket.StatsResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	byLevel := make(map[string]int, len(a.byLevel))
	for k, v := range a.byLevel {
		byLevel[k] = v
	}

	zoneCount := 0
	if zones, err := a.Store.LoadZoneStates(a.ProjectID); err == nil {
		zoneCount = len(zones)
	}

	trained := a.model != nil
	samples := 0
	if trained {
		samples = a.model.Samples()
	}

	return socket.StatsResult{
		Assessed:     a.assessed,
		Actionable:   a.actionable,
		ByLevel:      byLevel,
		SkippedRows:  a.skippedRows,
		ZoneCount:    zoneCount,
		ModelTrained: trained,
		ModelSamples: samples,
		RuleCount:    len(a.Engine.Rules()),
	}
}

// ModelInfo reports whether a model is trained and on how many samples.
// Implements socket.AppQueries.
func (a *App) ModelInfo() (bool, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.model == nil {
		return false, 0
	}
	return true, a.model.Samples()
}

// WipeProject removes all persisted data for the project and resets
// in-memory state. Implements socket.AppQueries.
func (a *App) WipeProject() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.Store.DeleteProject(a.ProjectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	a.model = nil
	a.assessed = 0
	a.actionable = 0
	a.skippedRows = 0
	a.byLevel = make(map[string]int)
	a.recentHead = 0
	a.recentCount = 0
	return nil
}
