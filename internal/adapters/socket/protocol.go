// Package socket implements a JSON-over-Unix-socket protocol for the vigia daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/tomas/vigia/internal/domain/risk"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/vigia-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/vigia-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodHealth   = "health"
	MethodAssess   = "assess"
	MethodRisk     = "risk"
	MethodReport   = "report"
	MethodStats    = "stats"
	MethodTrain    = "train"
	MethodInfer    = "infer"
	MethodWipe     = "wipe"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// AssessParams carries one reading to evaluate.
type AssessParams struct {
	Reading risk.Reading `json:"reading"`
}

// AssessResult returns the evaluated assessment.
type AssessResult struct {
	Assessment risk.Assessment `json:"assessment"`
}

// RiskResult returns the latest assessment per zone.
type RiskResult struct {
	Zones map[string]risk.Assessment `json:"zones"`
	Count int                        `json:"count"`
}

// ReportParams bounds the report to the most recent assessments.
type ReportParams struct {
	Limit int `json:"limit,omitempty"` // default 100
}

// ReportResult wraps an aggregated report.
type ReportResult struct {
	Report *risk.Report `json:"report"`
}

// HealthResult reports daemon liveness and model readiness.
type HealthResult struct {
	Status       string `json:"status"`
	ModelTrained bool   `json:"model_trained"`
	ModelSamples int    `json:"model_samples"`
	ZoneCount    int    `json:"zone_count"`
	Uptime       string `json:"uptime"`
}

// StatsResult carries daemon counters.
type StatsResult struct {
	Assessed     int            `json:"assessed"`     // total readings assessed since start
	Actionable   int            `json:"actionable"`   // assessments above normal since start
	ByLevel      map[string]int `json:"by_level"`     // level name → count since start
	SkippedRows  int            `json:"skipped_rows"` // feed/batch rows that failed to parse
	ZoneCount    int            `json:"zone_count"`
	ModelTrained bool           `json:"model_trained"`
	ModelSamples int            `json:"model_samples"`
	RuleCount    int            `json:"rule_count"`
}

// TrainParams selects a training source: a CSV of labeled samples, or
// synthetic generation when Synthetic > 0.
type TrainParams struct {
	Path      string `json:"path,omitempty"`
	Synthetic int    `json:"synthetic,omitempty"`
	Laplace   bool   `json:"laplace,omitempty"`
	Seed      int64  `json:"seed,omitempty"`
}

// TrainResult reports the fit outcome.
type TrainResult struct {
	Samples int `json:"samples"`
	Skipped int `json:"skipped"`
}

// InferParams carries raw sensor values for a model query.
type InferParams struct {
	TempC    float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
	WindKmh  float64 `json:"wind"`
}

// InferResult returns the posterior risk distribution.
type InferResult struct {
	Posterior map[string]float64 `json:"posterior"`
	Level     string             `json:"level"` // most likely risk state
}
