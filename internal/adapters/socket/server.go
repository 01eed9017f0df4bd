package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/tomas/vigia/internal/domain/risk"
)

// AppQueries provides access to app state for server handlers.
// Thread safety is the implementor's responsibility.
type AppQueries interface {
	AssessReading(r risk.Reading) (*risk.Assessment, error)
	ZoneStates() (map[string]risk.Assessment, error)
	ReportRecent(limit int) (*risk.Report, error)
	StatsSnapshot() StatsResult
	Train(params TrainParams) (TrainResult, error)
	Posterior(tempC, humidity, windKmh float64) (map[string]float64, string, error)
	WipeProject() error
	ModelInfo() (trained bool, samples int)
}

// Server is the daemon that listens on a Unix socket and serves
// assessment requests.
type Server struct {
	queries  AppQueries
	listener net.Listener
	sockPath string
	started  time.Time

	done         chan struct{}
	shutdownCh   chan struct{} // closed when a remote shutdown request is received
	shutdownOnce sync.Once
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a daemon server backed by the given query provider.
func NewServer(queries AppQueries, sockPath string) *Server {
	return &Server{
		queries:    queries,
		sockPath:   sockPath,
		done:       make(chan struct{}),
		shutdownCh: make(chan struct{}),
	}
}

// Start begins listening on the Unix socket. It handles stale sockets by
// attempting a connection first; if the connection fails, the stale socket
// is removed before binding.
func (s *Server) Start() error {
	// Handle stale socket
	if _, err := os.Stat(s.sockPath); err == nil {
		conn, err := net.DialTimeout("unix", s.sockPath, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return fmt.Errorf("daemon already running at %s", s.sockPath)
		}
		// Stale socket from a dead daemon, remove it
		os.Remove(s.sockPath)
	}

	ln, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop gracefully shuts down the server, closing the listener and removing
// the socket file. Safe to call multiple times (e.g. after a remote
// shutdown followed by a signal).
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.wg.Wait()
		os.Remove(s.sockPath)
	})
	return nil
}

// ShutdownCh returns a channel that is closed when a remote shutdown request
// is received. The daemon's main goroutine should select on this alongside
// OS signals so the process actually exits after a remote stop.
func (s *Server) ShutdownCh() <-chan struct{} {
	return s.shutdownCh
}

// Addr returns the socket path the server is listening on.
func (s *Server) Addr() string {
	return s.sockPath
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB max message

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(conn, Response{Error: "invalid request JSON"})
			continue
		}

		resp := s.handleRequest(req)
		s.writeResponse(conn, resp)

		if req.Method == MethodShutdown {
			s.shutdownOnce.Do(func() { close(s.shutdownCh) })
			return
		}
	}
}

func (s *Server) handleRequest(req Request) Response {
	switch req.Method {
	case MethodHealth:
		return s.handleHealth(req)
	case MethodAssess:
		return s.handleAssess(req)
	case MethodRisk:
		return s.handleRisk(req)
	case MethodReport:
		return s.handleReport(req)
	case MethodStats:
		return Response{ID: req.ID, Result: s.queries.StatsSnapshot()}
	case MethodTrain:
		return s.handleTrain(req)
	case MethodInfer:
		return s.handleInfer(req)
	case MethodWipe:
		return s.handleWipe(req)
	case MethodShutdown:
		return Response{ID: req.ID, Result: struct{}{}}
	default:
		return Response{ID: req.ID, Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// decodeParams re-marshals the loosely-typed params into a concrete struct.
func decodeParams(params interface{}, into interface{}) error {
	data, err := json.Marshal(params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, into)
}

func (s *Server) handleHealth(req Request) Response {
	trained, samples := s.queries.ModelInfo()
	zones, err := s.queries.ZoneStates()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}

	return Response{
		ID: req.ID,
		Result: HealthResult{
			Status:       "ok",
			ModelTrained: trained,
			ModelSamples: samples,
			ZoneCount:    len(zones),
			Uptime:       time.Since(s.started).Round(time.Second).String(),
		},
	}
}

func (s *Server) handleAssess(req Request) Response {
	var params AssessParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid assess params"}
	}
	if params.Reading.Zone == "" {
		return Response{ID: req.ID, Error: "reading needs a zone"}
	}

	a, err := s.queries.AssessReading(params.Reading)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: AssessResult{Assessment: *a}}
}

func (s *Server) handleRisk(req Request) Response {
	zones, err := s.queries.ZoneStates()
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: RiskResult{Zones: zones, Count: len(zones)}}
}

func (s *Server) handleReport(req Request) Response {
	var params ReportParams
	if req.Params != nil {
		if err := decodeParams(req.Params, &params); err != nil {
			return Response{ID: req.ID, Error: "invalid report params"}
		}
	}
	if params.Limit <= 0 {
		params.Limit = 100
	}

	report, err := s.queries.ReportRecent(params.Limit)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: ReportResult{Report: report}}
}

func (s *Server) handleTrain(req Request) Response {
	var params TrainParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid train params"}
	}
	if params.Path == "" && params.Synthetic <= 0 {
		return Response{ID: req.ID, Error: "train needs a path or a synthetic sample count"}
	}

	result, err := s.queries.Train(params)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: result}
}

func (s *Server) handleInfer(req Request) Response {
	var params InferParams
	if err := decodeParams(req.Params, &params); err != nil {
		return Response{ID: req.ID, Error: "invalid infer params"}
	}

	posterior, level, err := s.queries.Posterior(params.TempC, params.Humidity, params.WindKmh)
	if err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: InferResult{Posterior: posterior, Level: level}}
}

func (s *Server) handleWipe(req Request) Response {
	if err := s.queries.WipeProject(); err != nil {
		return Response{ID: req.ID, Error: err.Error()}
	}
	return Response{ID: req.ID, Result: struct{}{}}
}

func (s *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}
