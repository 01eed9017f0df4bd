package bayes

import (
	"fmt"

	"github.com/tomas/vigia/internal/domain/risk"
)

// Observation is a complete or partial assignment of network variables to
// state names.
type Observation map[string]string

// Bin edges are left-closed, right-open: a value lands in bin i when
// edges[i] <= v < edges[i+1]. Values outside the overall range are errors
// and the reading is skipped by callers.
var (
	tempEdges  = []float64{0, 30, 38, 51}
	tempLabels = []string{HeatNormal, HeatHigh, HeatExtreme}

	humidityEdges  = []float64{0, 30, 60, 101}
	humidityLabels = []string{HumidityDry, HumidityNormal, HumidityHumid}

	windEdges  = []float64{0, 30, 60, 101}
	windLabels = []string{WindWeak, WindModerate, WindStrong}
)

// cut assigns a value to a labeled bin.
func cut(v float64, edges []float64, labels []string) (string, error) {
	if v < edges[0] || v >= edges[len(edges)-1] {
		return "", fmt.Errorf("value %.2f outside range [%.0f, %.0f)", v, edges[0], edges[len(edges)-1])
	}
	for i := 1; i < len(edges); i++ {
		if v < edges[i] {
			return labels[i-1], nil
		}
	}
	// Unreachable given the range check above.
	return labels[len(labels)-1], nil
}

// Discretize maps a continuous reading onto the condition variables of the
// fire-risk network (heat, humidity, wind). The risk variable is absent:
// it is what inference estimates.
func Discretize(r risk.Reading) (Observation, error) {
	heat, err := cut(r.TempC, tempEdges, tempLabels)
	if err != nil {
		return nil, fmt.Errorf("temp: %w", err)
	}
	hum, err := cut(r.Humidity, humidityEdges, humidityLabels)
	if err != nil {
		return nil, fmt.Errorf("humidity: %w", err)
	}
	wind, err := cut(r.WindKmh, windEdges, windLabels)
	if err != nil {
		return nil, fmt.Errorf("wind: %w", err)
	}
	return Observation{VarHeat: heat, VarHumidity: hum, VarWind: wind}, nil
}

// DiscretizeSample maps a labeled training sample onto all four network
// variables, including the risk label.
func DiscretizeSample(tempC, humidity, windKmh float64, riskState string) (Observation, error) {
	obs, err := Discretize(risk.Reading{TempC: tempC, Humidity: humidity, WindKmh: windKmh})
	if err != nil {
		return nil, err
	}
	switch riskState {
	case RiskLow, RiskMedium, RiskHigh:
	default:
		return nil, fmt.Errorf("unknown risk state %q", riskState)
	}
	obs[VarRisk] = riskState
	return obs, nil
}
