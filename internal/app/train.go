package app

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/tomas/vigia/internal/adapters/csvfeed"
	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/domain/bayes"
	"github.com/tomas/vigia/internal/domain/risk"
	"github.com/tomas/vigia/internal/domain/synth"
)

// Train fits the fire-risk model from a labeled CSV or from synthetic
// samples, persists the fitted state, and swaps it in.
// Implements socket.AppQueries.
func (a *App) Train(params socket.TrainParams) (socket.TrainResult, error) {
	var observations []bayes.Observation
	skipped := 0

	switch {
	case params.Path != "":
		f, err := os.Open(params.Path)
		if err != nil {
			return socket.TrainResult{}, fmt.Errorf("open %s: %w", params.Path, err)
		}
		rows, rowErrs, err := csvfeed.ParseTraining(f)
		f.Close()
		if err != nil {
			return socket.TrainResult{}, fmt.Errorf("parse %s: %w", params.Path, err)
		}
		skipped = len(rowErrs)
		for _, row := range rows {
			obs, err := bayes.DiscretizeSample(row.TempC, row.Humidity, row.WindKmh, row.Risk)
			if err != nil {
				skipped++
				continue
			}
			observations = append(observations, obs)
		}

	case params.Synthetic > 0:
		seed := params.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		samples := synth.TrainingSamples(rng, params.Synthetic)
		observations, skipped = synth.Observations(samples)

	default:
		return socket.TrainResult{}, fmt.Errorf("train needs a path or a synthetic sample count")
	}

	if len(observations) == 0 {
		return socket.TrainResult{}, fmt.Errorf("no usable training samples")
	}

	model, err := bayes.Fit(bayes.FireRisk(), observations, bayes.FitOptions{Laplace: params.Laplace})
	if err != nil {
		return socket.TrainResult{}, fmt.Errorf("fit model: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.Store.SaveModel(a.ProjectID, model.State()); err != nil {
		return socket.TrainResult{}, fmt.Errorf("persist model: %w", err)
	}
	a.model = model

	a.log.Info("model trained",
		zap.Int("samples", len(observations)),
		zap.Int("skipped", skipped),
		zap.Bool("laplace", params.Laplace))

	return socket.TrainResult{Samples: len(observations), Skipped: skipped}, nil
}

// Posterior queries the trained model for raw sensor values without
// persisting anything. Returns the per-state distribution and the most
// likely risk state.
func (a *App) Posterior(tempC, humidity, windKmh float64) (map[string]float64, string, error) {
	a.mu.Lock()
	model := a.model
	a.mu.Unlock()

	if model == nil {
		return nil, "", fmt.Errorf("no trained model, run train first")
	}

	obs, err := bayes.Discretize(risk.Reading{TempC: tempC, Humidity: humidity, WindKmh: windKmh})
	if err != nil {
		return nil, "", err
	}
	posterior, err := model.Query(bayes.VarRisk, obs)
	if err != nil {
		return nil, "", err
	}
	state, _, err := model.MostLikely(bayes.VarRisk, obs)
	if err != nil {
		return nil, "", err
	}
	return posterior, state, nil
}

// Simulate generates a synthetic reading stream and runs every reading
// through the assessment pipeline.
func (a *App) Simulate(n int, seed int64) (*risk.Report, error) {
	if n <= 0 {
		return nil, fmt.Errorf("simulate needs a positive reading count")
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	start := time.Now().AddDate(0, 0, -n/8) // 3-hourly readings reach back accordingly

	skipped := 0
	var assessments []risk.Assessment
	for _, r := range synth.ReadingStream(rng, start, n) {
		assessment, err := a.AssessReading(r)
		if err != nil {
			skipped++
			continue
		}
		assessments = append(assessments, *assessment)
	}

	return risk.BuildReport(assessments, skipped), nil
}
