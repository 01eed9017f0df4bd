package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tomas/vigia/internal/adapters/socket"
	"github.com/tomas/vigia/internal/domain/risk"
)

// Server serves the web dashboard and JSON API over HTTP.
type Server struct {
	queries  socket.AppQueries
	recent   func(limit int) []risk.Assessment
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once

	portFilePath string // .vigia/http.port
}

// NewServer creates an HTTP server for the dashboard. recent returns the
// latest assessments newest-first and may be nil. The portFilePath is where
// the bound port is written for discovery.
func NewServer(queries socket.AppQueries, recent func(limit int) []risk.Assessment, portFilePath string) *Server {
	return &Server{
		queries:      queries,
		recent:       recent,
		portFilePath: portFilePath,
	}
}

// DefaultPort computes a project-specific port: 21000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	// Use first 4 bytes as uint32
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 21000 + int(n%1000)
}

// Start begins listening on the preferred port. Writes the port to .vigia/http.port.
func (s *Server) Start(preferredPort int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", preferredPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{Handler: s.routes()}

	// Write port file for discovery
	if s.portFilePath != "" {
		os.WriteFile(s.portFilePath, []byte(fmt.Sprintf("%d", s.port)), 0644)
	}

	go s.httpSrv.Serve(ln)
	return nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/zones", s.handleZones)
	mux.HandleFunc("GET /api/assessments", s.handleAssessments)
	mux.HandleFunc("GET /api/report", s.handleReport)
	mux.HandleFunc("GET /api/model", s.handleModel)
	mux.HandleFunc("POST /api/assess", s.handleAssess)
	return mux
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
		if s.portFilePath != "" {
			os.Remove(s.portFilePath)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the dashboard URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	trained, samples := s.queries.ModelInfo()

	zoneCount := 0
	if zones, err := s.queries.ZoneStates(); err == nil {
		zoneCount = len(zones)
	}

	writeJSON(w, http.StatusOK, socket.HealthResult{
		Status:       "ok",
		ModelTrained: trained,
		ModelSamples: samples,
		ZoneCount:    zoneCount,
		Uptime:       time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.queries.StatsSnapshot())
}

func (s *Server) handleZones(w http.ResponseWriter, r *http.Request) {
	zones, err := s.queries.ZoneStates()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, socket.RiskResult{Zones: zones, Count: len(zones)})
}

func (s *Server) handleAssessments(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)
	var items []risk.Assessment
	if s.recent != nil {
		items = s.recent(limit)
	}
	if items == nil {
		items = []risk.Assessment{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"assessments": items,
		"count":       len(items),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.queries.ReportRecent(parseLimit(r, 100))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, socket.ReportResult{Report: report})
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	trained, samples := s.queries.ModelInfo()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trained": trained,
		"samples": samples,
	})
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var reading risk.Reading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("decode reading: %v", err))
		return
	}
	if reading.Zone == "" {
		writeError(w, http.StatusBadRequest, "reading needs a zone")
		return
	}

	assessment, err := s.queries.AssessReading(reading)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, socket.AssessResult{Assessment: *assessment})
}

func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n <= 0 {
		return def
	}
	return n
}
