package app

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tomas/vigia/internal/adapters/csvfeed"
	"github.com/tomas/vigia/internal/domain/bayes"
	"github.com/tomas/vigia/internal/domain/risk"
)

// AssessReading runs one reading through the full pipeline: event scan,
// rule evaluation, model inference, then persistence.
// Implements socket.AppQueries.
func (a *App) AssessReading(r risk.Reading) (*risk.Assessment, error) {
	if r.Zone == "" {
		return nil, fmt.Errorf("reading needs a zone")
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}

	// Observer notes can carry event mentions the station didn't flag
	if r.Event == "" && r.Note != "" {
		if events := a.Scanner.Scan(r.Note); len(events) > 0 {
			r.Event = events[0]
		}
	}

	verdict := a.Engine.Evaluate(r)

	assessment := risk.Assessment{
		ID:         uuid.NewString(),
		Reading:    r,
		Level:      verdict.Level,
		Action:     verdict.Action,
		RuleID:     verdict.RuleID,
		AssessedAt: time.Now(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// The rule verdict is authoritative; the model posterior is advisory
	// context attached when a trained model exists and the reading is in
	// range of the discretization bins.
	if a.model != nil {
		if obs, err := bayes.Discretize(r); err == nil {
			if posterior, err := a.model.Query(bayes.VarRisk, obs); err == nil {
				assessment.Posterior = posterior
				if state, _, err := a.model.MostLikely(bayes.VarRisk, obs); err == nil {
					assessment.ModelLevel = state
				}
			}
		}
	}

	if err := a.Store.AppendAssessments(a.ProjectID, []risk.Assessment{assessment}); err != nil {
		return nil, fmt.Errorf("persist assessment: %w", err)
	}
	if err := a.Store.SaveZoneState(a.ProjectID, r.Zone, &assessment); err != nil {
		return nil, fmt.Errorf("persist zone state: %w", err)
	}

	a.pushRecent(assessment)
	a.assessed++
	a.byLevel[risk.LevelName(assessment.Level)]++
	if assessment.Actionable() {
		a.actionable++
		a.log.Info("actionable assessment",
			zap.String("zone", r.Zone),
			zap.String("level", risk.LevelName(assessment.Level)),
			zap.String("rule", assessment.RuleID))
	}

	return &assessment, nil
}

// AssessFile runs every reading in a CSV file through the pipeline and
// returns an aggregated report. Malformed rows are counted, not fatal.
func (a *App) AssessFile(path string) (*risk.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	readings, rowErrs, err := csvfeed.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Readings are independent, so assess them concurrently. Results land
	// in indexed slots; the report sort restores severity ordering anyway.
	results := make([]*risk.Assessment, len(readings))
	var g errgroup.Group
	g.SetLimit(4)
	for i, r := range readings {
		g.Go(func() error {
			assessment, err := a.AssessReading(r)
			if err != nil {
				a.log.Warn("reading rejected", zap.String("zone", r.Zone), zap.Error(err))
				return nil
			}
			results[i] = assessment
			return nil
		})
	}
	_ = g.Wait() // workers only log, they never fail the batch

	skipped := len(rowErrs)
	assessments := make([]risk.Assessment, 0, len(readings))
	for _, assessment := range results {
		if assessment == nil {
			skipped++
			continue
		}
		assessments = append(assessments, *assessment)
	}

	a.mu.Lock()
	a.skippedRows += skipped
	a.mu.Unlock()

	return risk.BuildReport(assessments, skipped), nil
}

// onFileDropped handles a CSV file appearing in the drop directory.
func (a *App) onFileDropped(path string) {
	report, err := a.AssessFile(path)
	if err != nil {
		a.log.Error("drop file failed", zap.String("path", path), zap.Error(err))
		return
	}
	a.log.Info("drop file assessed",
		zap.String("path", path),
		zap.Int("total", report.Total),
		zap.Int("actionable", len(report.Actionable)),
		zap.Int("skipped", report.Skipped))
}

// onFeedReading handles one row from the live feed tailer.
func (a *App) onFeedReading(r risk.Reading) {
	if _, err := a.AssessReading(r); err != nil {
		a.mu.Lock()
		a.skippedRows++
		a.mu.Unlock()
		a.log.Warn("feed reading rejected", zap.String("zone", r.Zone), zap.Error(err))
	}
}

// pushRecent adds an assessment to the ring buffer.
// Must be called with a.mu held.
func (a *App) pushRecent(assessment risk.Assessment) {
	a.recentRing[a.recentHead] = assessment
	a.recentHead = (a.recentHead + 1) % recentRingSize
	if a.recentCount < recentRingSize {
		a.recentCount++
	}
}

// Recent returns up to limit assessments from the ring buffer, newest first.
func (a *App) Recent(limit int) []risk.Assessment {
	a.mu.Lock()
	defer a.mu.Unlock()

	if limit <= 0 || a.recentCount == 0 {
		return nil
	}
	if limit > a.recentCount {
		limit = a.recentCount
	}
	out := make([]risk.Assessment, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (a.recentHead - 1 - i + recentRingSize) % recentRingSize
		out = append(out, a.recentRing[idx])
	}
	return out
}
