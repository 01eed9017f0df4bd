// Package synth generates synthetic sensor data: labeled training samples
// for fitting the Bayesian model and a simulated reading stream for
// exercising the rule engine. Generation is driven by an injected
// *rand.Rand so callers control reproducibility.
package synth

import (
	"math"
	"math/rand"
	"time"

	"github.com/tomas/vigia/internal/domain/bayes"
	"github.com/tomas/vigia/internal/domain/risk"
)

// Zones used by the reading stream generator.
var Zones = []string{"Serra da Estrela", "Monchique", "Peneda-Gerês", "Sintra"}

// TrainingSample is one labeled observation for model fitting.
type TrainingSample struct {
	TempC    float64
	Humidity float64
	WindKmh  float64
	Risk     string // bayes.RiskLow / RiskMedium / RiskHigh
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// TrainingSamples generates n labeled samples. Conditions are drawn from
// correlated normals (hotter days are drier), the label from an additive
// severity score, and 10% of labels are replaced with uniform noise so the
// fitted CPTs never collapse to determinism.
func TrainingSamples(rng *rand.Rand, n int) []TrainingSample {
	samples := make([]TrainingSample, 0, n)
	labels := []string{bayes.RiskLow, bayes.RiskMedium, bayes.RiskHigh}

	for i := 0; i < n; i++ {
		temp := rng.NormFloat64()*8 + 25
		hum := rng.NormFloat64()*20 + 60 - temp*0.5
		wind := rng.NormFloat64()*15 + 20

		score := 0
		if temp > 30 {
			score += 2
		}
		if temp > 38 {
			score += 3
		}
		if hum < 40 {
			score++
		}
		if hum < 20 {
			score += 3
		}
		if wind > 40 {
			score++
		}
		if wind > 60 {
			score += 2
		}

		label := bayes.RiskLow
		switch {
		case score > 5:
			label = bayes.RiskHigh
		case score > 2:
			label = bayes.RiskMedium
		}

		if rng.Float64() < 0.1 {
			label = labels[rng.Intn(len(labels))]
		}

		samples = append(samples, TrainingSample{
			TempC:    clip(temp, 0, 50),
			Humidity: clip(hum, 10, 100),
			WindKmh:  clip(wind, 0, 100),
			Risk:     label,
		})
	}
	return samples
}

// Observations discretizes training samples into fit-ready observations.
// Samples stay in range by construction, so discretization cannot fail,
// but the conversion reports how many (if any) were skipped anyway.
func Observations(samples []TrainingSample) ([]bayes.Observation, int) {
	obs := make([]bayes.Observation, 0, len(samples))
	skipped := 0
	for _, s := range samples {
		o, err := bayes.DiscretizeSample(s.TempC, s.Humidity, s.WindKmh, s.Risk)
		if err != nil {
			skipped++
			continue
		}
		obs = append(obs, o)
	}
	return obs, skipped
}

// eventTypes and their draw probabilities for the reading stream.
var eventTypes = []string{
	risk.EventNone,
	risk.EventCampfire,
	risk.EventDryLightning,
	risk.EventMachinery,
	risk.EventPowerLine,
}
var eventProbs = []float64{0.8, 0.05, 0.05, 0.05, 0.05}

func drawEvent(rng *rand.Rand) string {
	r := rng.Float64()
	acc := 0.0
	for i, p := range eventProbs {
		acc += p
		if r < acc {
			return eventTypes[i]
		}
	}
	return eventTypes[len(eventTypes)-1]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ReadingStream generates n simulated readings at 3-hour intervals starting
// from start. Every 20th reading is forced into critical heat/drought
// conditions and every 15th into a dry-lightning event, so downstream
// reports always have actionable rows to show.
func ReadingStream(rng *rand.Rand, start time.Time, n int) []risk.Reading {
	readings := make([]risk.Reading, 0, n)

	for i := 0; i < n; i++ {
		temp := rng.NormFloat64()*8 + 30
		hum := rng.NormFloat64()*15 + 40
		wind := rng.NormFloat64()*15 + 30
		event := drawEvent(rng)

		if i%20 == 0 {
			temp = 42
			hum = 18
		}
		if i%15 == 0 {
			event = risk.EventDryLightning
		}

		readings = append(readings, risk.Reading{
			Timestamp: start.Add(time.Duration(i) * 3 * time.Hour),
			Zone:      Zones[rng.Intn(len(Zones))],
			TempC:     round1(clip(temp, 15, 50)),
			Humidity:  round1(clip(hum, 10, 90)),
			WindKmh:   round1(clip(wind, 0, 80)),
			Event:     event,
		})
	}
	return readings
}
