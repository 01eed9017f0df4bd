package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/domain/risk"
)

// mockQueries implements socket.AppQueries for testing.
type mockQueries struct {
	zones map[string]risk.Assessment
}

func (m *mockQueries) AssessReading(r risk.Reading) (*risk.Assessment, error) {
	return &risk.Assessment{
		ID:         "web-test",
		Reading:    r,
		Level:      risk.LevelHigh,
		Action:     "dispatch",
		RuleID:     "r1",
		AssessedAt: time.Now(),
	}, nil
}

func (m *mockQueries) ZoneStates() (map[string]risk.Assessment, error) {
	return m.zones, nil
}

func (m *mockQueries) ReportRecent(limit int) (*risk.Report, error) {
	return risk.BuildReport([]risk.Assessment{
		{Level: risk.LevelHigh},
		{Level: risk.LevelNormal},
	}, 0), nil
}

func (m *mockQueries) StatsSnapshot() socket.StatsResult {
	return socket.StatsResult{Assessed: 7, Actionable: 2, ModelSamples: 2000, ModelTrained: true}
}

func (m *mockQueries) Train(params socket.TrainParams) (socket.TrainResult, error) {
	return socket.TrainResult{}, nil
}

func (m *mockQueries) Posterior(tempC, humidity, windKmh float64) (map[string]float64, string, error) {
	return map[string]float64{"low": 0.2, "medium": 0.3, "high": 0.5}, "high", nil
}

func (m *mockQueries) WipeProject() error { return nil }

func (m *mockQueries) ModelInfo() (bool, int) { return true, 2000 }

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	queries := &mockQueries{
		zones: map[string]risk.Assessment{
			"Monchique": {ID: "m1", Level: risk.LevelMedium, Action: "watch"},
		},
	}
	recent := func(limit int) []risk.Assessment {
		return []risk.Assessment{{ID: "a1", Level: risk.LevelLow}}
	}

	srv := NewServer(queries, recent, "")
	srv.started = time.Now()
	return httptest.NewServer(srv.routes())
}

func getJSON(t *testing.T, url string, into interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	var result socket.HealthResult
	resp := getJSON(t, ts.URL+"/api/health", &result)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, "ok", result.Status)
	assert.True(t, result.ModelTrained)
	assert.Equal(t, 1, result.ZoneCount)
}

func TestStatsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	var result socket.StatsResult
	getJSON(t, ts.URL+"/api/stats", &result)
	assert.Equal(t, 7, result.Assessed)
	assert.Equal(t, 2, result.Actionable)
}

func TestZonesEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	var result socket.RiskResult
	getJSON(t, ts.URL+"/api/zones", &result)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, risk.LevelMedium, result.Zones["Monchique"].Level)
}

func TestAssessmentsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	var result struct {
		Assessments []risk.Assessment `json:"assessments"`
		Count       int               `json:"count"`
	}
	getJSON(t, ts.URL+"/api/assessments?limit=10", &result)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "a1", result.Assessments[0].ID)
}

func TestReportEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	var result socket.ReportResult
	getJSON(t, ts.URL+"/api/report", &result)
	require.NotNil(t, result.Report)
	assert.Equal(t, 2, result.Report.Total)
	assert.Len(t, result.Report.Actionable, 1)
}

func TestAssessEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	body, _ := json.Marshal(risk.Reading{Zone: "Sintra", TempC: 39, Humidity: 25})
	resp, err := http.Post(ts.URL+"/api/assess", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	var result socket.AssessResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, risk.LevelHigh, result.Assessment.Level)
	assert.Equal(t, "Sintra", result.Assessment.Reading.Zone)
}

func TestAssessEndpoint_MissingZone(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/assess", "application/json", strings.NewReader(`{"temp":39}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssessEndpoint_BadJSON(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/assess", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDashboardServed(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/static/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}

func TestDefaultPort_Deterministic(t *testing.T) {
	a := DefaultPort("/proj/a")
	assert.Equal(t, a, DefaultPort("/proj/a"))
	assert.GreaterOrEqual(t, a, 21000)
	assert.Less(t, a, 22000)
}
